package unitrelationstore

import (
	"github.com/witnessdag/witnessd/domain/consensus/database"
	"github.com/witnessdag/witnessd/domain/consensus/database/serialization"
	"github.com/witnessdag/witnessd/domain/consensus/model"
	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
	"github.com/witnessdag/witnessd/domain/consensus/utils/lrucache"
)

var bucket = database.MakeBucket([]byte("unit-relations"))

// unitRelationStore represents a store of UnitRelations
type unitRelationStore struct {
	cache *lrucache.LRUCache
}

// New instantiates a new UnitRelationStore
func New(cacheSize int) model.UnitRelationStore {
	return &unitRelationStore{
		cache: lrucache.New(cacheSize),
	}
}

func (urs *unitRelationStore) StageUnitRelation(stagingArea *model.StagingArea, unitHash *externalapi.DomainHash,
	unitRelations *model.UnitRelations) {

	stagingShard := urs.stagingShard(stagingArea)
	stagingShard.toAdd[*unitHash] = unitRelations.Clone()
}

func (urs *unitRelationStore) IsStaged(stagingArea *model.StagingArea) bool {
	return urs.stagingShard(stagingArea).isStaged()
}

func (urs *unitRelationStore) UnitRelation(dbContext model.DBReader, stagingArea *model.StagingArea,
	unitHash *externalapi.DomainHash) (*model.UnitRelations, error) {

	stagingShard := urs.stagingShard(stagingArea)

	if unitRelations, ok := stagingShard.toAdd[*unitHash]; ok {
		return unitRelations.Clone(), nil
	}

	if unitRelations, ok := urs.cache.Get(unitHash); ok {
		return unitRelations.(*model.UnitRelations).Clone(), nil
	}

	unitRelationsBytes, err := dbContext.Get(urs.hashAsKey(unitHash))
	if err != nil {
		return nil, err
	}

	unitRelations, err := serialization.DeserializeUnitRelations(unitRelationsBytes)
	if err != nil {
		return nil, err
	}
	urs.cache.Add(unitHash, unitRelations)
	return unitRelations.Clone(), nil
}

func (urs *unitRelationStore) Has(dbContext model.DBReader, stagingArea *model.StagingArea,
	unitHash *externalapi.DomainHash) (bool, error) {

	stagingShard := urs.stagingShard(stagingArea)

	if _, ok := stagingShard.toAdd[*unitHash]; ok {
		return true, nil
	}

	if urs.cache.Has(unitHash) {
		return true, nil
	}

	return dbContext.Has(urs.hashAsKey(unitHash))
}

func (urs *unitRelationStore) hashAsKey(hash *externalapi.DomainHash) model.DBKey {
	return bucket.Key(hash.ByteSlice())
}
