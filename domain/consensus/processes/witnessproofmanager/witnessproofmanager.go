package witnessproofmanager

import (
	"github.com/witnessdag/witnessd/domain/consensus/model"
)

type witnessProofManager struct {
	majorityOfWitnesses   int
	maxWitnessProofJoints int

	databaseContext     model.DBReader
	unitStore           model.UnitStore
	unitPropsStore      model.UnitPropsStore
	ballStore           model.BallStore
	mainChainStore      model.MainChainStore
	definitionStore     model.DefinitionStore
	consensusStateStore model.ConsensusStateStore
}

// New instantiates a new WitnessProofManager
func New(
	majorityOfWitnesses int,
	maxWitnessProofJoints int,

	databaseContext model.DBReader,

	unitStore model.UnitStore,
	unitPropsStore model.UnitPropsStore,
	ballStore model.BallStore,
	mainChainStore model.MainChainStore,
	definitionStore model.DefinitionStore,
	consensusStateStore model.ConsensusStateStore,
) model.WitnessProofManager {

	return &witnessProofManager{
		majorityOfWitnesses:   majorityOfWitnesses,
		maxWitnessProofJoints: maxWitnessProofJoints,

		databaseContext:     databaseContext,
		unitStore:           unitStore,
		unitPropsStore:      unitPropsStore,
		ballStore:           ballStore,
		mainChainStore:      mainChainStore,
		definitionStore:     definitionStore,
		consensusStateStore: consensusStateStore,
	}
}

func isWitness(address string, witnesses []string) bool {
	for _, witness := range witnesses {
		if address == witness {
			return true
		}
	}
	return false
}
