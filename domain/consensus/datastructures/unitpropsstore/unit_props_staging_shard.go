package unitpropsstore

import (
	"github.com/witnessdag/witnessd/domain/consensus/database/serialization"
	"github.com/witnessdag/witnessd/domain/consensus/model"
	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
)

type unitPropsStagingShard struct {
	store *unitPropsStore
	toAdd map[externalapi.DomainHash]*model.UnitProps
}

func (ups *unitPropsStore) stagingShard(stagingArea *model.StagingArea) *unitPropsStagingShard {
	return stagingArea.GetOrCreateShard("UnitPropsStore", func() model.StagingShard {
		return &unitPropsStagingShard{
			store: ups,
			toAdd: make(map[externalapi.DomainHash]*model.UnitProps),
		}
	}).(*unitPropsStagingShard)
}

func (upss *unitPropsStagingShard) Commit(dbTx model.DBTransaction) error {
	for hash, unitProps := range upss.toAdd {
		hashCopy := hash
		err := dbTx.Put(upss.store.hashAsKey(&hashCopy), serialization.SerializeUnitProps(unitProps))
		if err != nil {
			return err
		}
		upss.store.cache.Add(&hashCopy, unitProps)
	}

	return nil
}

func (upss *unitPropsStagingShard) isStaged() bool {
	return len(upss.toAdd) != 0
}
