package consensusstatestore

import (
	"github.com/witnessdag/witnessd/domain/consensus/database/serialization"
	"github.com/witnessdag/witnessd/domain/consensus/model"
	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
)

type consensusStateStagingShard struct {
	store         *consensusStateStore
	lastStableMCI *uint64
	lastMCI       *uint64
	tips          []*externalapi.DomainHash
}

func (css *consensusStateStore) stagingShard(stagingArea *model.StagingArea) *consensusStateStagingShard {
	return stagingArea.GetOrCreateShard("ConsensusStateStore", func() model.StagingShard {
		return &consensusStateStagingShard{store: css}
	}).(*consensusStateStagingShard)
}

func (csss *consensusStateStagingShard) Commit(dbTx model.DBTransaction) error {
	csss.store.cacheLock.Lock()
	defer csss.store.cacheLock.Unlock()

	if csss.lastStableMCI != nil {
		err := dbTx.Put(lastStableMCIKey, serialization.SerializeUint64(*csss.lastStableMCI))
		if err != nil {
			return err
		}
		csss.store.lastStableMCICache = csss.lastStableMCI
	}
	if csss.lastMCI != nil {
		err := dbTx.Put(lastMCIKey, serialization.SerializeUint64(*csss.lastMCI))
		if err != nil {
			return err
		}
		csss.store.lastMCICache = csss.lastMCI
	}
	if csss.tips != nil {
		err := dbTx.Put(tipsKey, serialization.SerializeHashes(csss.tips))
		if err != nil {
			return err
		}
		csss.store.tipsCache = csss.tips
	}
	return nil
}

func (csss *consensusStateStagingShard) isStaged() bool {
	return csss.lastStableMCI != nil || csss.lastMCI != nil || csss.tips != nil
}
