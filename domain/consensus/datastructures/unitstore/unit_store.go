package unitstore

import (
	"github.com/witnessdag/witnessd/domain/consensus/database"
	"github.com/witnessdag/witnessd/domain/consensus/database/serialization"
	"github.com/witnessdag/witnessd/domain/consensus/model"
	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
	"github.com/witnessdag/witnessd/domain/consensus/utils/lrucache"
)

var bucket = database.MakeBucket([]byte("units"))
var countKey = database.MakeBucket(nil).Key([]byte("units-count"))

// unitStore represents a store of units
type unitStore struct {
	cache       *lrucache.LRUCache
	countCached uint64
}

// New instantiates a new UnitStore
func New(dbContext model.DBReader, cacheSize int) (model.UnitStore, error) {
	unitStore := &unitStore{
		cache: lrucache.New(cacheSize),
	}

	err := unitStore.initializeCount(dbContext)
	if err != nil {
		return nil, err
	}

	return unitStore, nil
}

func (us *unitStore) initializeCount(dbContext model.DBReader) error {
	count := uint64(0)
	hasCountBytes, err := dbContext.Has(countKey)
	if err != nil {
		return err
	}
	if hasCountBytes {
		countBytes, err := dbContext.Get(countKey)
		if err != nil {
			return err
		}
		count, err = serialization.DeserializeUint64(countBytes)
		if err != nil {
			return err
		}
	}
	us.countCached = count
	return nil
}

// Stage stages the given unit for the given unitHash
func (us *unitStore) Stage(stagingArea *model.StagingArea, unitHash *externalapi.DomainHash, unit *externalapi.DomainUnit) {
	stagingShard := us.stagingShard(stagingArea)
	stagingShard.toAdd[*unitHash] = unit.Clone()
}

func (us *unitStore) IsStaged(stagingArea *model.StagingArea) bool {
	return us.stagingShard(stagingArea).isStaged()
}

// Unit gets the unit associated with the given unitHash
func (us *unitStore) Unit(dbContext model.DBReader, stagingArea *model.StagingArea,
	unitHash *externalapi.DomainHash) (*externalapi.DomainUnit, error) {

	stagingShard := us.stagingShard(stagingArea)

	if unit, ok := stagingShard.toAdd[*unitHash]; ok {
		return unit.Clone(), nil
	}

	if unit, ok := us.cache.Get(unitHash); ok {
		return unit.(*externalapi.DomainUnit).Clone(), nil
	}

	unitBytes, err := dbContext.Get(us.hashAsKey(unitHash))
	if err != nil {
		return nil, err
	}

	unit, err := serialization.DeserializeUnit(unitBytes)
	if err != nil {
		return nil, err
	}
	us.cache.Add(unitHash, unit)
	return unit.Clone(), nil
}

// HasUnit returns whether a unit with a given hash exists in the store.
func (us *unitStore) HasUnit(dbContext model.DBReader, stagingArea *model.StagingArea,
	unitHash *externalapi.DomainHash) (bool, error) {

	stagingShard := us.stagingShard(stagingArea)

	if _, ok := stagingShard.toAdd[*unitHash]; ok {
		return true, nil
	}

	if us.cache.Has(unitHash) {
		return true, nil
	}

	return dbContext.Has(us.hashAsKey(unitHash))
}

func (us *unitStore) Count(stagingArea *model.StagingArea) uint64 {
	stagingShard := us.stagingShard(stagingArea)
	return us.count(stagingShard)
}

func (us *unitStore) count(stagingShard *unitStagingShard) uint64 {
	return us.countCached + uint64(len(stagingShard.toAdd))
}

func (us *unitStore) hashAsKey(hash *externalapi.DomainHash) model.DBKey {
	return bucket.Key(hash.ByteSlice())
}
