package stabilitymanager

import (
	"github.com/witnessdag/witnessd/domain/consensus/model"
)

type stabilityManager struct {
	skiplistBase uint64

	databaseContext       model.DBReader
	dagTopologyManager    model.DAGTopologyManager
	mainChainManager      model.MainChainManager
	witnessedLevelManager model.WitnessedLevelManager
	branchBoundCalculator model.BranchBoundCalculator

	unitPropsStore      model.UnitPropsStore
	unitRelationStore   model.UnitRelationStore
	witnessListStore    model.WitnessListStore
	mainChainStore      model.MainChainStore
	ballStore           model.BallStore
	skiplistStore       model.SkiplistStore
	consensusStateStore model.ConsensusStateStore
}

// New instantiates a new StabilityManager
func New(
	skiplistBase uint64,

	databaseContext model.DBReader,

	dagTopologyManager model.DAGTopologyManager,
	mainChainManager model.MainChainManager,
	witnessedLevelManager model.WitnessedLevelManager,
	branchBoundCalculator model.BranchBoundCalculator,

	unitPropsStore model.UnitPropsStore,
	unitRelationStore model.UnitRelationStore,
	witnessListStore model.WitnessListStore,
	mainChainStore model.MainChainStore,
	ballStore model.BallStore,
	skiplistStore model.SkiplistStore,
	consensusStateStore model.ConsensusStateStore,
) model.StabilityManager {

	return &stabilityManager{
		skiplistBase: skiplistBase,

		databaseContext:       databaseContext,
		dagTopologyManager:    dagTopologyManager,
		mainChainManager:      mainChainManager,
		witnessedLevelManager: witnessedLevelManager,
		branchBoundCalculator: branchBoundCalculator,

		unitPropsStore:      unitPropsStore,
		unitRelationStore:   unitRelationStore,
		witnessListStore:    witnessListStore,
		mainChainStore:      mainChainStore,
		ballStore:           ballStore,
		skiplistStore:       skiplistStore,
		consensusStateStore: consensusStateStore,
	}
}

// AdvanceStability marks main chain indexes stable one by one, for as long
// as the next one is stable. The check and the marking of every index
// happen on the same staging area, so both are committed together.
func (sm *stabilityManager) AdvanceStability(stagingArea *model.StagingArea) (newlyStableMCIs []uint64, err error) {
	for {
		isStable, err := sm.IsNextMCIStable(stagingArea)
		if err != nil {
			return nil, err
		}
		if !isStable {
			return newlyStableMCIs, nil
		}

		lastStableMCI, err := sm.consensusStateStore.LastStableMCI(sm.databaseContext, stagingArea)
		if err != nil {
			return nil, err
		}
		err = sm.markMCIStable(stagingArea, lastStableMCI+1)
		if err != nil {
			return nil, err
		}
		newlyStableMCIs = append(newlyStableMCIs, lastStableMCI+1)
	}
}
