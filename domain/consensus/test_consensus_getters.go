package consensus

import (
	"github.com/witnessdag/witnessd/domain/consensus/model"
	"github.com/witnessdag/witnessd/domain/dagconfig"
)

func (tc *testConsensus) DAGParams() *dagconfig.Params {
	return tc.params
}

func (tc *testConsensus) DatabaseContext() model.DBManager {
	return tc.databaseContext
}

func (tc *testConsensus) UnitStore() model.UnitStore {
	return tc.unitStore
}

func (tc *testConsensus) UnitPropsStore() model.UnitPropsStore {
	return tc.unitPropsStore
}

func (tc *testConsensus) UnitRelationStore() model.UnitRelationStore {
	return tc.unitRelationStore
}

func (tc *testConsensus) WitnessListStore() model.WitnessListStore {
	return tc.witnessListStore
}

func (tc *testConsensus) BallStore() model.BallStore {
	return tc.ballStore
}

func (tc *testConsensus) SkiplistStore() model.SkiplistStore {
	return tc.skiplistStore
}

func (tc *testConsensus) MainChainStore() model.MainChainStore {
	return tc.mainChainStore
}

func (tc *testConsensus) DefinitionStore() model.DefinitionStore {
	return tc.definitionStore
}

func (tc *testConsensus) ConsensusStateStore() model.ConsensusStateStore {
	return tc.consensusStateStore
}

func (tc *testConsensus) DAGTopologyManager() model.DAGTopologyManager {
	return tc.dagTopologyManager
}

func (tc *testConsensus) WitnessCompatibilityChecker() model.WitnessCompatibilityChecker {
	return tc.witnessCompatibilityChecker
}

func (tc *testConsensus) BestParentSelector() model.BestParentSelector {
	return tc.bestParentSelector
}

func (tc *testConsensus) WitnessedLevelManager() model.WitnessedLevelManager {
	return tc.witnessedLevelManager
}

func (tc *testConsensus) MainChainManager() model.MainChainManager {
	return tc.mainChainManager
}

func (tc *testConsensus) BranchBoundCalculator() model.BranchBoundCalculator {
	return tc.branchBoundCalculator
}

func (tc *testConsensus) StabilityManager() model.StabilityManager {
	return tc.stabilityManager
}

func (tc *testConsensus) WitnessProofManager() model.WitnessProofManager {
	return tc.witnessProofManager
}

func (tc *testConsensus) CatchupManager() model.CatchupManager {
	return tc.catchupManager
}

func (tc *testConsensus) ParentComposer() model.ParentComposer {
	return tc.parentComposer
}

func (tc *testConsensus) UnitValidator() model.UnitValidator {
	return tc.unitValidator
}

func (tc *testConsensus) UnitProcessor() model.UnitProcessor {
	return tc.unitProcessor
}
