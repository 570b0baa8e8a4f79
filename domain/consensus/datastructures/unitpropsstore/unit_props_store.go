package unitpropsstore

import (
	"github.com/witnessdag/witnessd/domain/consensus/database"
	"github.com/witnessdag/witnessd/domain/consensus/database/serialization"
	"github.com/witnessdag/witnessd/domain/consensus/model"
	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
	"github.com/witnessdag/witnessd/domain/consensus/utils/lrucache"
)

var bucket = database.MakeBucket([]byte("unit-props"))

// unitPropsStore represents a store of UnitProps
type unitPropsStore struct {
	cache *lrucache.LRUCache
}

// New instantiates a new UnitPropsStore
func New(cacheSize int) model.UnitPropsStore {
	return &unitPropsStore{
		cache: lrucache.New(cacheSize),
	}
}

// Stage stages the given unitProps for the given unitHash, replacing any
// props staged or stored before
func (ups *unitPropsStore) Stage(stagingArea *model.StagingArea, unitHash *externalapi.DomainHash, unitProps *model.UnitProps) {
	stagingShard := ups.stagingShard(stagingArea)
	stagingShard.toAdd[*unitHash] = unitProps.Clone()
}

func (ups *unitPropsStore) IsStaged(stagingArea *model.StagingArea) bool {
	return ups.stagingShard(stagingArea).isStaged()
}

// Get gets the unitProps associated with the given unitHash
func (ups *unitPropsStore) Get(dbContext model.DBReader, stagingArea *model.StagingArea,
	unitHash *externalapi.DomainHash) (*model.UnitProps, error) {

	stagingShard := ups.stagingShard(stagingArea)

	if unitProps, ok := stagingShard.toAdd[*unitHash]; ok {
		return unitProps.Clone(), nil
	}

	if unitProps, ok := ups.cache.Get(unitHash); ok {
		return unitProps.(*model.UnitProps).Clone(), nil
	}

	unitPropsBytes, err := dbContext.Get(ups.hashAsKey(unitHash))
	if err != nil {
		return nil, err
	}

	unitProps, err := serialization.DeserializeUnitProps(unitPropsBytes)
	if err != nil {
		return nil, err
	}
	ups.cache.Add(unitHash, unitProps)
	return unitProps.Clone(), nil
}

// Has returns whether props for the given unitHash exist
func (ups *unitPropsStore) Has(dbContext model.DBReader, stagingArea *model.StagingArea,
	unitHash *externalapi.DomainHash) (bool, error) {

	stagingShard := ups.stagingShard(stagingArea)

	if _, ok := stagingShard.toAdd[*unitHash]; ok {
		return true, nil
	}

	if ups.cache.Has(unitHash) {
		return true, nil
	}

	return dbContext.Has(ups.hashAsKey(unitHash))
}

func (ups *unitPropsStore) hashAsKey(hash *externalapi.DomainHash) model.DBKey {
	return bucket.Key(hash.ByteSlice())
}
