package config

import (
	"github.com/pkg/errors"
	"github.com/witnessdag/witnessd/domain/dagconfig"
)

// NetworkFlags holds the network configuration, that is which network is selected.
type NetworkFlags struct {
	Simnet bool `long:"simnet" description:"Use the simulation test network"`
	Devnet bool `long:"devnet" description:"Use the development test network"`

	ActiveNetParams *dagconfig.Params
}

// ResolveNetwork sets ActiveNetParams according to the network flags. It
// returns an error unless exactly one network was selected.
func (networkFlags *NetworkFlags) ResolveNetwork() error {
	numNets := 0
	if networkFlags.Simnet {
		numNets++
		networkFlags.ActiveNetParams = &dagconfig.SimnetParams
	}
	if networkFlags.Devnet {
		numNets++
		networkFlags.ActiveNetParams = &dagconfig.DevnetParams
	}
	if numNets > 1 {
		return errors.New("multiple network parameters (simnet, devnet) cannot be used together. " +
			"Please choose only one network")
	}
	if numNets == 0 {
		return errors.New("no network was selected, use --simnet or --devnet")
	}
	return nil
}

// NetParams returns the ActiveNetParams
func (networkFlags *NetworkFlags) NetParams() *dagconfig.Params {
	return networkFlags.ActiveNetParams
}
