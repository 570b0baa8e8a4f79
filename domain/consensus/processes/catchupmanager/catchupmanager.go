package catchupmanager

import (
	"github.com/witnessdag/witnessd/domain/consensus/model"
)

type catchupManager struct {
	countWitnesses        int
	maxHashTreeSpan       uint64
	maxHashTreeBalls      int
	maxCatchupChainLength int

	databaseContext     model.DBReader
	dagTopologyManager  model.DAGTopologyManager
	witnessProofManager model.WitnessProofManager

	unitStore           model.UnitStore
	unitPropsStore      model.UnitPropsStore
	ballStore           model.BallStore
	skiplistStore       model.SkiplistStore
	mainChainStore      model.MainChainStore
	consensusStateStore model.ConsensusStateStore
}

// New instantiates a new CatchupManager
func New(
	countWitnesses int,
	maxHashTreeSpan uint64,
	maxHashTreeBalls int,
	maxCatchupChainLength int,

	databaseContext model.DBReader,

	dagTopologyManager model.DAGTopologyManager,
	witnessProofManager model.WitnessProofManager,

	unitStore model.UnitStore,
	unitPropsStore model.UnitPropsStore,
	ballStore model.BallStore,
	skiplistStore model.SkiplistStore,
	mainChainStore model.MainChainStore,
	consensusStateStore model.ConsensusStateStore,
) model.CatchupManager {

	return &catchupManager{
		countWitnesses:        countWitnesses,
		maxHashTreeSpan:       maxHashTreeSpan,
		maxHashTreeBalls:      maxHashTreeBalls,
		maxCatchupChainLength: maxCatchupChainLength,

		databaseContext:     databaseContext,
		dagTopologyManager:  dagTopologyManager,
		witnessProofManager: witnessProofManager,

		unitStore:           unitStore,
		unitPropsStore:      unitPropsStore,
		ballStore:           ballStore,
		skiplistStore:       skiplistStore,
		mainChainStore:      mainChainStore,
		consensusStateStore: consensusStateStore,
	}
}
