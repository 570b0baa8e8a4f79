package unitstore

import (
	"github.com/witnessdag/witnessd/domain/consensus/database/serialization"
	"github.com/witnessdag/witnessd/domain/consensus/model"
	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
)

type unitStagingShard struct {
	store *unitStore
	toAdd map[externalapi.DomainHash]*externalapi.DomainUnit
}

func (us *unitStore) stagingShard(stagingArea *model.StagingArea) *unitStagingShard {
	return stagingArea.GetOrCreateShard("UnitStore", func() model.StagingShard {
		return &unitStagingShard{
			store: us,
			toAdd: make(map[externalapi.DomainHash]*externalapi.DomainUnit),
		}
	}).(*unitStagingShard)
}

func (uss *unitStagingShard) Commit(dbTx model.DBTransaction) error {
	for hash, unit := range uss.toAdd {
		hashCopy := hash
		err := dbTx.Put(uss.store.hashAsKey(&hashCopy), serialization.SerializeUnit(unit))
		if err != nil {
			return err
		}
		uss.store.cache.Add(&hashCopy, unit)
	}

	count := uss.store.count(uss)
	err := dbTx.Put(countKey, serialization.SerializeUint64(count))
	if err != nil {
		return err
	}
	uss.store.countCached = count
	return nil
}

func (uss *unitStagingShard) isStaged() bool {
	return len(uss.toAdd) != 0
}
