package unitvalidator

import (
	"github.com/witnessdag/witnessd/domain/consensus/model"
	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
)

// unitValidator exposes a set of validation classes, after which
// it's possible to determine whether a unit is valid
type unitValidator struct {
	countWitnesses    int
	maxParentsPerUnit int
	maxAuthorsPerUnit int
	genesisHash       *externalapi.DomainHash

	databaseContext             model.DBReader
	dagTopologyManager          model.DAGTopologyManager
	witnessCompatibilityChecker model.WitnessCompatibilityChecker
	bestParentSelector          model.BestParentSelector
	witnessedLevelManager       model.WitnessedLevelManager

	unitStore        model.UnitStore
	unitPropsStore   model.UnitPropsStore
	witnessListStore model.WitnessListStore
	ballStore        model.BallStore
	definitionStore  model.DefinitionStore
}

// New instantiates a new UnitValidator
func New(
	countWitnesses int,
	maxParentsPerUnit int,
	maxAuthorsPerUnit int,
	genesisHash *externalapi.DomainHash,

	databaseContext model.DBReader,

	dagTopologyManager model.DAGTopologyManager,
	witnessCompatibilityChecker model.WitnessCompatibilityChecker,
	bestParentSelector model.BestParentSelector,
	witnessedLevelManager model.WitnessedLevelManager,

	unitStore model.UnitStore,
	unitPropsStore model.UnitPropsStore,
	witnessListStore model.WitnessListStore,
	ballStore model.BallStore,
	definitionStore model.DefinitionStore,
) model.UnitValidator {

	return &unitValidator{
		countWitnesses:    countWitnesses,
		maxParentsPerUnit: maxParentsPerUnit,
		maxAuthorsPerUnit: maxAuthorsPerUnit,
		genesisHash:       genesisHash,

		databaseContext:             databaseContext,
		dagTopologyManager:          dagTopologyManager,
		witnessCompatibilityChecker: witnessCompatibilityChecker,
		bestParentSelector:          bestParentSelector,
		witnessedLevelManager:       witnessedLevelManager,

		unitStore:        unitStore,
		unitPropsStore:   unitPropsStore,
		witnessListStore: witnessListStore,
		ballStore:        ballStore,
		definitionStore:  definitionStore,
	}
}
