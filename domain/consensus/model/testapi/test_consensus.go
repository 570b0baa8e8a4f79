package testapi

import (
	"github.com/witnessdag/witnessd/domain/consensus/model"
	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
	"github.com/witnessdag/witnessd/domain/dagconfig"
	"golang.org/x/crypto/ed25519"
)

// TestConsensus wraps the Consensus interface with some methods that are needed by tests only
type TestConsensus interface {
	externalapi.Consensus

	DAGParams() *dagconfig.Params
	DatabaseContext() model.DBManager

	// BuildUnitWithParents builds a unit over the given parents, authored and
	// signed by the given keys. It declares the genesis witness list and
	// references the highest stable main chain unit in the past of parents.
	BuildUnitWithParents(parentHashes []*externalapi.DomainHash,
		authorKeys []ed25519.PrivateKey) (*externalapi.DomainUnit, error)

	// AddUnit builds a unit with given information and adds it to the DAG.
	// Returns the hash of the added unit
	AddUnit(parentHashes []*externalapi.DomainHash, authorKeys []ed25519.PrivateKey) (*externalapi.DomainHash, error)

	UnitStore() model.UnitStore
	UnitPropsStore() model.UnitPropsStore
	UnitRelationStore() model.UnitRelationStore
	WitnessListStore() model.WitnessListStore
	BallStore() model.BallStore
	SkiplistStore() model.SkiplistStore
	MainChainStore() model.MainChainStore
	DefinitionStore() model.DefinitionStore
	ConsensusStateStore() model.ConsensusStateStore

	DAGTopologyManager() model.DAGTopologyManager
	WitnessCompatibilityChecker() model.WitnessCompatibilityChecker
	BestParentSelector() model.BestParentSelector
	WitnessedLevelManager() model.WitnessedLevelManager
	MainChainManager() model.MainChainManager
	BranchBoundCalculator() model.BranchBoundCalculator
	StabilityManager() model.StabilityManager
	WitnessProofManager() model.WitnessProofManager
	CatchupManager() model.CatchupManager
	ParentComposer() model.ParentComposer
	UnitValidator() model.UnitValidator
	UnitProcessor() model.UnitProcessor
}
