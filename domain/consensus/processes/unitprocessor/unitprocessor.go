package unitprocessor

import (
	"github.com/witnessdag/witnessd/domain/consensus/model"
	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
)

// unitProcessor is responsible for processing incoming units
type unitProcessor struct {
	genesisHash    *externalapi.DomainHash
	countWitnesses int

	databaseContext  model.DBManager
	unitValidator    model.UnitValidator
	mainChainManager model.MainChainManager
	stabilityManager model.StabilityManager

	unitStore           model.UnitStore
	unitPropsStore      model.UnitPropsStore
	unitRelationStore   model.UnitRelationStore
	witnessListStore    model.WitnessListStore
	ballStore           model.BallStore
	mainChainStore      model.MainChainStore
	definitionStore     model.DefinitionStore
	consensusStateStore model.ConsensusStateStore
}

// New instantiates a new UnitProcessor
func New(
	genesisHash *externalapi.DomainHash,
	countWitnesses int,

	databaseContext model.DBManager,

	unitValidator model.UnitValidator,
	mainChainManager model.MainChainManager,
	stabilityManager model.StabilityManager,

	unitStore model.UnitStore,
	unitPropsStore model.UnitPropsStore,
	unitRelationStore model.UnitRelationStore,
	witnessListStore model.WitnessListStore,
	ballStore model.BallStore,
	mainChainStore model.MainChainStore,
	definitionStore model.DefinitionStore,
	consensusStateStore model.ConsensusStateStore,
) model.UnitProcessor {

	return &unitProcessor{
		genesisHash:    genesisHash,
		countWitnesses: countWitnesses,

		databaseContext:  databaseContext,
		unitValidator:    unitValidator,
		mainChainManager: mainChainManager,
		stabilityManager: stabilityManager,

		unitStore:           unitStore,
		unitPropsStore:      unitPropsStore,
		unitRelationStore:   unitRelationStore,
		witnessListStore:    witnessListStore,
		ballStore:           ballStore,
		mainChainStore:      mainChainStore,
		definitionStore:     definitionStore,
		consensusStateStore: consensusStateStore,
	}
}

// ValidateAndInsertUnit validates the given unit and, if valid, inserts it,
// updates the main chain and advances stability. All of it is committed in
// a single database transaction, and nothing is committed on failure.
func (up *unitProcessor) ValidateAndInsertUnit(unit *externalapi.DomainUnit,
	sequence externalapi.Sequence) (*model.UnitInsertionResult, error) {

	return up.validateAndInsertUnit(unit, sequence)
}

// InitGenesis inserts the genesis unit as the stable main chain unit at
// mci 0, unless the database was already initialized with it
func (up *unitProcessor) InitGenesis(genesis *externalapi.DomainUnit) error {
	return up.initGenesis(genesis)
}
