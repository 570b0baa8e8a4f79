package mainchainstore

import (
	"github.com/witnessdag/witnessd/domain/consensus/model"
	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
	"github.com/witnessdag/witnessd/domain/consensus/utils/hashset"
)

type mainChainStagingShard struct {
	store                 *mainChainStore
	mainChainUnitsAdded   map[uint64]*externalapi.DomainHash
	mainChainUnitsRemoved map[uint64]struct{}
	unitsAdded            map[uint64]hashset.HashSet
	unitsRemoved          map[uint64]hashset.HashSet
}

func (mcs *mainChainStore) stagingShard(stagingArea *model.StagingArea) *mainChainStagingShard {
	return stagingArea.GetOrCreateShard("MainChainStore", func() model.StagingShard {
		return &mainChainStagingShard{
			store:                 mcs,
			mainChainUnitsAdded:   make(map[uint64]*externalapi.DomainHash),
			mainChainUnitsRemoved: make(map[uint64]struct{}),
			unitsAdded:            make(map[uint64]hashset.HashSet),
			unitsRemoved:          make(map[uint64]hashset.HashSet),
		}
	}).(*mainChainStagingShard)
}

func (mcss *mainChainStagingShard) Commit(dbTx model.DBTransaction) error {
	for mci := range mcss.mainChainUnitsRemoved {
		err := dbTx.Delete(mainChainUnitBucket.Key(mciAsKeySuffix(mci)))
		if err != nil {
			return err
		}
		mcss.store.mainChainUnitCache.Remove(mci)
	}
	for mci, unitHash := range mcss.mainChainUnitsAdded {
		err := dbTx.Put(mainChainUnitBucket.Key(mciAsKeySuffix(mci)), unitHash.ByteSlice())
		if err != nil {
			return err
		}
		mcss.store.mainChainUnitCache.Add(mci, unitHash)
	}

	for mci, removed := range mcss.unitsRemoved {
		bucket := mcss.store.unitsAtMCIBucket(mci)
		for unitHash := range removed {
			unitHashCopy := unitHash
			err := dbTx.Delete(bucket.Key(unitHashCopy.ByteSlice()))
			if err != nil {
				return err
			}
		}
	}
	for mci, added := range mcss.unitsAdded {
		bucket := mcss.store.unitsAtMCIBucket(mci)
		for unitHash := range added {
			unitHashCopy := unitHash
			err := dbTx.Put(bucket.Key(unitHashCopy.ByteSlice()), []byte{})
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (mcss *mainChainStagingShard) isStaged() bool {
	return len(mcss.mainChainUnitsAdded) != 0 || len(mcss.mainChainUnitsRemoved) != 0 ||
		len(mcss.unitsAdded) != 0 || len(mcss.unitsRemoved) != 0
}
