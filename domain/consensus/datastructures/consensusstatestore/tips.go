package consensusstatestore

import (
	"github.com/witnessdag/witnessd/domain/consensus/database"
	"github.com/witnessdag/witnessd/domain/consensus/database/serialization"
	"github.com/witnessdag/witnessd/domain/consensus/model"
	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
)

var tipsKey = database.MakeBucket(nil).Key([]byte("tips"))

// StageTips stages the free units of the DAG
func (css *consensusStateStore) StageTips(stagingArea *model.StagingArea, tipHashes []*externalapi.DomainHash) {
	css.stagingShard(stagingArea).tips = externalapi.CloneHashes(tipHashes)
}

// Tips returns the free units of the DAG
func (css *consensusStateStore) Tips(dbContext model.DBReader, stagingArea *model.StagingArea) ([]*externalapi.DomainHash, error) {
	stagingShard := css.stagingShard(stagingArea)
	if stagingShard.tips != nil {
		return externalapi.CloneHashes(stagingShard.tips), nil
	}
	css.cacheLock.RLock()
	tipsCache := css.tipsCache
	css.cacheLock.RUnlock()
	if tipsCache != nil {
		return externalapi.CloneHashes(tipsCache), nil
	}

	tipsBytes, err := dbContext.Get(tipsKey)
	if err != nil {
		return nil, err
	}
	tips, err := serialization.DeserializeHashes(tipsBytes)
	if err != nil {
		return nil, err
	}
	css.cacheLock.Lock()
	css.tipsCache = tips
	css.cacheLock.Unlock()
	return externalapi.CloneHashes(tips), nil
}
