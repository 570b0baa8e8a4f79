package consensus

import (
	"github.com/witnessdag/witnessd/domain/consensus/database"
	"github.com/witnessdag/witnessd/domain/consensus/datastructures/ballstore"
	"github.com/witnessdag/witnessd/domain/consensus/datastructures/consensusstatestore"
	"github.com/witnessdag/witnessd/domain/consensus/datastructures/definitionstore"
	"github.com/witnessdag/witnessd/domain/consensus/datastructures/mainchainstore"
	"github.com/witnessdag/witnessd/domain/consensus/datastructures/skipliststore"
	"github.com/witnessdag/witnessd/domain/consensus/datastructures/unitpropsstore"
	"github.com/witnessdag/witnessd/domain/consensus/datastructures/unitrelationstore"
	"github.com/witnessdag/witnessd/domain/consensus/datastructures/unitstore"
	"github.com/witnessdag/witnessd/domain/consensus/datastructures/witnessliststore"
	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
	"github.com/witnessdag/witnessd/domain/consensus/model/testapi"
	"github.com/witnessdag/witnessd/domain/consensus/processes/bestparentselector"
	"github.com/witnessdag/witnessd/domain/consensus/processes/branchbound"
	"github.com/witnessdag/witnessd/domain/consensus/processes/catchupmanager"
	"github.com/witnessdag/witnessd/domain/consensus/processes/dagtopologymanager"
	"github.com/witnessdag/witnessd/domain/consensus/processes/mainchainmanager"
	"github.com/witnessdag/witnessd/domain/consensus/processes/parentcomposer"
	"github.com/witnessdag/witnessd/domain/consensus/processes/stabilitymanager"
	"github.com/witnessdag/witnessd/domain/consensus/processes/unitprocessor"
	"github.com/witnessdag/witnessd/domain/consensus/processes/unitvalidator"
	"github.com/witnessdag/witnessd/domain/consensus/processes/witnesscompatibility"
	"github.com/witnessdag/witnessd/domain/consensus/processes/witnessedlevelmanager"
	"github.com/witnessdag/witnessd/domain/consensus/processes/witnessproofmanager"
	"github.com/witnessdag/witnessd/domain/dagconfig"
	infrastructuredatabase "github.com/witnessdag/witnessd/infrastructure/db/database"
	"github.com/witnessdag/witnessd/infrastructure/db/database/ldb"
	"github.com/witnessdag/witnessd/util/prioritylock"
)

const defaultCacheSize = 10000

// Config is the configuration of a consensus instance
type Config struct {
	dagconfig.Params

	// CacheSize is the number of entries each store keeps in memory
	CacheSize int
}

// NewConfig returns the default consensus configuration for the given network
func NewConfig(params *dagconfig.Params) *Config {
	return &Config{
		Params:    *params,
		CacheSize: defaultCacheSize,
	}
}

// Factory instantiates new Consensuses
type Factory interface {
	NewConsensus(config *Config, db infrastructuredatabase.Database) (externalapi.Consensus, error)
	NewTestConsensus(config *Config, testName string) (
		tc testapi.TestConsensus, teardown func(), err error)
}

type factory struct{}

// NewFactory creates a new Consensus factory
func NewFactory() Factory {
	return &factory{}
}

// NewConsensus instantiates a new Consensus over db, initializing it with
// the genesis unit of the network if db is empty
func (f *factory) NewConsensus(config *Config, db infrastructuredatabase.Database) (externalapi.Consensus, error) {
	consensusAsImplementation, _, err := f.newConsensus(config, db)
	if err != nil {
		return nil, err
	}
	return consensusAsImplementation, nil
}

func (f *factory) newConsensus(config *Config, db infrastructuredatabase.Database) (
	*consensus, *testConsensus, error) {

	dbManager := database.New(db)
	cacheSize := config.CacheSize
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}

	// Data Structures
	unitStore, err := unitstore.New(dbManager, cacheSize)
	if err != nil {
		return nil, nil, err
	}
	unitPropsStore := unitpropsstore.New(cacheSize)
	unitRelationStore := unitrelationstore.New(cacheSize)
	witnessListStore := witnessliststore.New(cacheSize)
	ballStore := ballstore.New(cacheSize)
	skiplistStore := skipliststore.New()
	mainChainStore := mainchainstore.New(cacheSize)
	definitionStore := definitionstore.New()
	consensusStateStore := consensusstatestore.New()

	// Processes
	dagTopologyManager := dagtopologymanager.New(
		config.MaxAncestorSearchSize,
		dbManager,
		unitRelationStore,
		unitPropsStore)
	witnessCompatibilityChecker := witnesscompatibility.New(
		config.CountWitnesses,
		config.MaxWitnessListMutations,
		dbManager,
		witnessListStore)
	bestParentSelector := bestparentselector.New(
		dbManager,
		unitPropsStore,
		consensusStateStore)
	witnessedLevelManager := witnessedlevelmanager.New(
		config.MajorityOfWitnesses,
		dbManager,
		unitPropsStore)
	mainChainManager := mainchainmanager.New(
		dbManager,
		bestParentSelector,
		dagTopologyManager,
		unitPropsStore,
		mainChainStore,
		consensusStateStore)
	branchBoundCalculator := branchbound.New(
		config.MaxAltBranchSize,
		dbManager,
		dagTopologyManager,
		unitPropsStore)
	stabilityManager := stabilitymanager.New(
		config.SkiplistBase,
		dbManager,
		dagTopologyManager,
		mainChainManager,
		witnessedLevelManager,
		branchBoundCalculator,
		unitPropsStore,
		unitRelationStore,
		witnessListStore,
		mainChainStore,
		ballStore,
		skiplistStore,
		consensusStateStore)
	witnessProofManager := witnessproofmanager.New(
		config.MajorityOfWitnesses,
		config.MaxWitnessProofJoints,
		dbManager,
		unitStore,
		unitPropsStore,
		ballStore,
		mainChainStore,
		definitionStore,
		consensusStateStore)
	catchupManager := catchupmanager.New(
		config.CountWitnesses,
		config.MaxHashTreeSpan,
		config.MaxHashTreeBalls,
		config.MaxCatchupChainLength,
		dbManager,
		dagTopologyManager,
		witnessProofManager,
		unitStore,
		unitPropsStore,
		ballStore,
		skiplistStore,
		mainChainStore,
		consensusStateStore)
	parentComposer := parentcomposer.New(
		config.MaxParentsPerUnit,
		dbManager,
		dagTopologyManager,
		bestParentSelector,
		witnessCompatibilityChecker,
		ballStore,
		mainChainStore,
		consensusStateStore)
	unitValidator := unitvalidator.New(
		config.CountWitnesses,
		config.MaxParentsPerUnit,
		config.MaxAuthorsPerUnit,
		config.GenesisHash,
		dbManager,
		dagTopologyManager,
		witnessCompatibilityChecker,
		bestParentSelector,
		witnessedLevelManager,
		unitStore,
		unitPropsStore,
		witnessListStore,
		ballStore,
		definitionStore)
	unitProcessor := unitprocessor.New(
		config.GenesisHash,
		config.CountWitnesses,
		dbManager,
		unitValidator,
		mainChainManager,
		stabilityManager,
		unitStore,
		unitPropsStore,
		unitRelationStore,
		witnessListStore,
		ballStore,
		mainChainStore,
		definitionStore,
		consensusStateStore)

	c := &consensus{
		lock:            prioritylock.New(),
		databaseContext: dbManager,

		unitProcessor:       unitProcessor,
		parentComposer:      parentComposer,
		witnessProofManager: witnessProofManager,
		catchupManager:      catchupManager,

		unitStore:           unitStore,
		unitPropsStore:      unitPropsStore,
		witnessListStore:    witnessListStore,
		ballStore:           ballStore,
		mainChainStore:      mainChainStore,
		consensusStateStore: consensusStateStore,
	}

	err = unitProcessor.InitGenesis(config.GenesisUnit)
	if err != nil {
		return nil, nil, err
	}

	tc := &testConsensus{
		consensus: c,
		params:    &config.Params,

		dagTopologyManager:          dagTopologyManager,
		witnessCompatibilityChecker: witnessCompatibilityChecker,
		bestParentSelector:          bestParentSelector,
		witnessedLevelManager:       witnessedLevelManager,
		mainChainManager:            mainChainManager,
		branchBoundCalculator:       branchBoundCalculator,
		stabilityManager:            stabilityManager,
		unitValidator:               unitValidator,

		unitRelationStore: unitRelationStore,
		skiplistStore:     skiplistStore,
		definitionStore:   definitionStore,
	}
	return c, tc, nil
}

// NewTestConsensus creates a consensus over an in-memory database. The
// returned teardown function closes the database.
func (f *factory) NewTestConsensus(config *Config, testName string) (
	tc testapi.TestConsensus, teardown func(), err error) {

	db, err := ldb.NewInMemoryLevelDB()
	if err != nil {
		return nil, nil, err
	}
	_, testConsensusAsImplementation, err := f.newConsensus(config, db)
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	log.Debugf("Created test consensus %s on network %s", testName, config.Name)
	teardown = func() {
		err := db.Close()
		if err != nil {
			log.Errorf("Error closing the database of test consensus %s: %s", testName, err)
		}
	}
	return testConsensusAsImplementation, teardown, nil
}
