package unitrelationstore

import (
	"github.com/witnessdag/witnessd/domain/consensus/database/serialization"
	"github.com/witnessdag/witnessd/domain/consensus/model"
	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
)

type unitRelationStagingShard struct {
	store *unitRelationStore
	toAdd map[externalapi.DomainHash]*model.UnitRelations
}

func (urs *unitRelationStore) stagingShard(stagingArea *model.StagingArea) *unitRelationStagingShard {
	return stagingArea.GetOrCreateShard("UnitRelationStore", func() model.StagingShard {
		return &unitRelationStagingShard{
			store: urs,
			toAdd: make(map[externalapi.DomainHash]*model.UnitRelations),
		}
	}).(*unitRelationStagingShard)
}

func (urss *unitRelationStagingShard) Commit(dbTx model.DBTransaction) error {
	for hash, unitRelations := range urss.toAdd {
		hashCopy := hash
		err := dbTx.Put(urss.store.hashAsKey(&hashCopy), serialization.SerializeUnitRelations(unitRelations))
		if err != nil {
			return err
		}
		urss.store.cache.Add(&hashCopy, unitRelations)
	}

	return nil
}

func (urss *unitRelationStagingShard) isStaged() bool {
	return len(urss.toAdd) != 0
}
