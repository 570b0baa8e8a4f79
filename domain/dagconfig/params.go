package dagconfig

import (
	"github.com/pkg/errors"
	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
	"golang.org/x/crypto/ed25519"
)

const (
	countWitnesses          = 12
	maxWitnessListMutations = 1
	majorityOfWitnesses     = (countWitnesses / 2) + 1
	maxParentsPerUnit       = 16
	maxAuthorsPerUnit       = 16
	skiplistBase            = 10
	defaultMaxHashTreeSpan  = 1000
	defaultMaxHashTreeBalls = 2000
	defaultMaxAltBranchSize = 100000
	defaultMaxCatchupChain  = 10000
	defaultMaxProofJoints   = 10000
	defaultMaxAncestorScan  = 100000
)

// Params defines a witnessd network by its parameters
type Params struct {
	// Name defines a human-readable identifier for the network.
	Name string

	// DefaultGRPCPort is the default port of the catchup service
	DefaultGRPCPort string

	// DefaultAPIPort is the default port of the HTTP read API
	DefaultAPIPort string

	// CountWitnesses is the exact length of every witness list
	CountWitnesses int

	// MaxWitnessListMutations is how many witnesses two lists may differ in
	// and still be considered compatible
	MaxWitnessListMutations int

	// MajorityOfWitnesses is the number of distinct witnesses needed to
	// establish a witnessed level or a stability decision
	MajorityOfWitnesses int

	MaxParentsPerUnit int
	MaxAuthorsPerUnit int

	// SkiplistBase is the interval multiplier of skiplist references: a
	// main chain unit whose index is divisible by SkiplistBase^k references
	// the main chain unit SkiplistBase^k indexes back
	SkiplistBase uint64

	// MaxHashTreeSpan is the largest main chain index span a single hash
	// tree request may cover
	MaxHashTreeSpan uint64

	// MaxHashTreeBalls is the number of ball records after which a hash tree
	// response is cut at the next main chain index boundary
	MaxHashTreeBalls int

	// MaxAltBranchSize caps the number of units visited while bounding
	// alternative branches. When exceeded, stability is not advanced.
	MaxAltBranchSize int

	// MaxCatchupChainLength caps the number of stable last ball joints in a
	// catchup chain
	MaxCatchupChainLength int

	// MaxWitnessProofJoints caps the number of unstable main chain joints in
	// a witness proof
	MaxWitnessProofJoints int

	// MaxAncestorSearchSize caps the number of units visited when checking
	// whether one parent of a unit is an ancestor of another
	MaxAncestorSearchSize int

	// GenesisUnit is the first unit of the DAG. It is authored by all the
	// genesis witnesses.
	GenesisUnit *externalapi.DomainUnit

	// GenesisHash is the hash of GenesisUnit
	GenesisHash *externalapi.DomainHash

	// GenesisWitnesses is the witness list declared by the genesis unit
	GenesisWitnesses []string

	// WitnessKeys are the private keys of GenesisWitnesses, in the same
	// order. They are only known for test networks.
	WitnessKeys []ed25519.PrivateKey
}

// SimnetParams defines the network parameters for the simulation test network.
var SimnetParams = newTestNetworkParams("simnet", "18611", "18612", simnetGenesisTimestamp)

// DevnetParams defines the network parameters for the development network.
var DevnetParams = newTestNetworkParams("devnet", "18711", "18712", devnetGenesisTimestamp)

// ErrUnknownNet describes an error where the requested network is not known
var ErrUnknownNet = errors.New("unknown network")

// ParamsByName returns the parameters of the network with the given name
func ParamsByName(name string) (*Params, error) {
	for _, params := range []*Params{&SimnetParams, &DevnetParams} {
		if params.Name == name {
			return params, nil
		}
	}
	return nil, errors.Wrapf(ErrUnknownNet, "%s", name)
}

func newTestNetworkParams(name, grpcPort, apiPort string, genesisTimestamp int64) Params {
	keys := deriveWitnessKeys(name, countWitnesses)
	genesis := newGenesis(name, keys, genesisTimestamp)

	return Params{
		Name:            name,
		DefaultGRPCPort: grpcPort,
		DefaultAPIPort:  apiPort,

		CountWitnesses:          countWitnesses,
		MaxWitnessListMutations: maxWitnessListMutations,
		MajorityOfWitnesses:     majorityOfWitnesses,
		MaxParentsPerUnit:       maxParentsPerUnit,
		MaxAuthorsPerUnit:       maxAuthorsPerUnit,
		SkiplistBase:            skiplistBase,

		MaxHashTreeSpan:       defaultMaxHashTreeSpan,
		MaxHashTreeBalls:      defaultMaxHashTreeBalls,
		MaxAltBranchSize:      defaultMaxAltBranchSize,
		MaxCatchupChainLength: defaultMaxCatchupChain,
		MaxWitnessProofJoints: defaultMaxProofJoints,
		MaxAncestorSearchSize: defaultMaxAncestorScan,

		GenesisUnit:      genesis.unit,
		GenesisHash:      genesis.hash,
		GenesisWitnesses: genesis.witnesses,
		WitnessKeys:      genesis.keys,
	}
}
