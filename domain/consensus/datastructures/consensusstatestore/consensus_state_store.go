package consensusstatestore

import (
	"sync"

	"github.com/witnessdag/witnessd/domain/consensus/database"
	"github.com/witnessdag/witnessd/domain/consensus/database/serialization"
	"github.com/witnessdag/witnessd/domain/consensus/model"
	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
)

var lastStableMCIKey = database.MakeBucket(nil).Key([]byte("last-stable-mci"))
var lastMCIKey = database.MakeBucket(nil).Key([]byte("last-mci"))

// consensusStateStore represents a store for the current consensus state
type consensusStateStore struct {
	// cacheLock guards the caches below, which readers fill concurrently
	cacheLock          sync.RWMutex
	lastStableMCICache *uint64
	lastMCICache       *uint64
	tipsCache          []*externalapi.DomainHash
}

// New instantiates a new ConsensusStateStore
func New() model.ConsensusStateStore {
	return &consensusStateStore{}
}

func (css *consensusStateStore) IsStaged(stagingArea *model.StagingArea) bool {
	return css.stagingShard(stagingArea).isStaged()
}

func (css *consensusStateStore) StageLastStableMCI(stagingArea *model.StagingArea, mci uint64) {
	css.stagingShard(stagingArea).lastStableMCI = &mci
}

func (css *consensusStateStore) LastStableMCI(dbContext model.DBReader, stagingArea *model.StagingArea) (uint64, error) {
	stagingShard := css.stagingShard(stagingArea)
	if stagingShard.lastStableMCI != nil {
		return *stagingShard.lastStableMCI, nil
	}
	if cached, ok := css.cachedUint64(&css.lastStableMCICache); ok {
		return cached, nil
	}
	mci, err := css.readUint64(dbContext, lastStableMCIKey)
	if err != nil {
		return 0, err
	}
	css.setCachedUint64(&css.lastStableMCICache, mci)
	return mci, nil
}

func (css *consensusStateStore) StageLastMCI(stagingArea *model.StagingArea, mci uint64) {
	css.stagingShard(stagingArea).lastMCI = &mci
}

func (css *consensusStateStore) LastMCI(dbContext model.DBReader, stagingArea *model.StagingArea) (uint64, error) {
	stagingShard := css.stagingShard(stagingArea)
	if stagingShard.lastMCI != nil {
		return *stagingShard.lastMCI, nil
	}
	if cached, ok := css.cachedUint64(&css.lastMCICache); ok {
		return cached, nil
	}
	mci, err := css.readUint64(dbContext, lastMCIKey)
	if err != nil {
		return 0, err
	}
	css.setCachedUint64(&css.lastMCICache, mci)
	return mci, nil
}

// IsInitialized returns whether the genesis state has been committed
func (css *consensusStateStore) IsInitialized(dbContext model.DBReader, stagingArea *model.StagingArea) (bool, error) {
	if css.stagingShard(stagingArea).lastStableMCI != nil {
		return true, nil
	}
	if _, ok := css.cachedUint64(&css.lastStableMCICache); ok {
		return true, nil
	}
	return dbContext.Has(lastStableMCIKey)
}

func (css *consensusStateStore) readUint64(dbContext model.DBReader, key model.DBKey) (uint64, error) {
	valueBytes, err := dbContext.Get(key)
	if err != nil {
		return 0, err
	}
	return serialization.DeserializeUint64(valueBytes)
}

func (css *consensusStateStore) cachedUint64(cache **uint64) (uint64, bool) {
	css.cacheLock.RLock()
	defer css.cacheLock.RUnlock()

	if *cache == nil {
		return 0, false
	}
	return **cache, true
}

func (css *consensusStateStore) setCachedUint64(cache **uint64, value uint64) {
	css.cacheLock.Lock()
	defer css.cacheLock.Unlock()

	*cache = &value
}
