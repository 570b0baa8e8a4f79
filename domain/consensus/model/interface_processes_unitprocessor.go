package model

import "github.com/witnessdag/witnessd/domain/consensus/model/externalapi"

// UnitInsertionResult describes what inserting a unit changed
type UnitInsertionResult struct {
	UnitHash         *externalapi.DomainHash
	MainChainChanges *MainChainChanges
	NewlyStableMCIs  []uint64
}

// UnitProcessor is responsible for processing incoming units
// and creating units from the current state
type UnitProcessor interface {
	ValidateAndInsertUnit(unit *externalapi.DomainUnit, sequence externalapi.Sequence) (*UnitInsertionResult, error)
	InitGenesis(genesis *externalapi.DomainUnit) error
}
