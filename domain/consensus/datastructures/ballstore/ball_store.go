package ballstore

import (
	"github.com/witnessdag/witnessd/domain/consensus/database"
	"github.com/witnessdag/witnessd/domain/consensus/model"
	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
	"github.com/witnessdag/witnessd/domain/consensus/utils/lrucache"
)

var ballByUnitBucket = database.MakeBucket([]byte("ball-by-unit"))
var unitByBallBucket = database.MakeBucket([]byte("unit-by-ball"))

// ballStore keeps the balls of stable units, indexed both ways
type ballStore struct {
	ballByUnitCache *lrucache.LRUCache
	unitByBallCache *lrucache.LRUCache
}

// New instantiates a new BallStore
func New(cacheSize int) model.BallStore {
	return &ballStore{
		ballByUnitCache: lrucache.New(cacheSize),
		unitByBallCache: lrucache.New(cacheSize),
	}
}

// Stage stages the ball of the given unit
func (bs *ballStore) Stage(stagingArea *model.StagingArea, unitHash *externalapi.DomainHash, ball *externalapi.DomainHash) {
	stagingShard := bs.stagingShard(stagingArea)
	stagingShard.ballByUnit[*unitHash] = ball
	stagingShard.unitByBall[*ball] = unitHash
}

func (bs *ballStore) IsStaged(stagingArea *model.StagingArea) bool {
	return bs.stagingShard(stagingArea).isStaged()
}

// Ball returns the ball of the given unit
func (bs *ballStore) Ball(dbContext model.DBReader, stagingArea *model.StagingArea,
	unitHash *externalapi.DomainHash) (*externalapi.DomainHash, error) {

	return bs.lookup(dbContext, bs.stagingShard(stagingArea).ballByUnit, bs.ballByUnitCache, ballByUnitBucket, unitHash)
}

// HasBall returns whether the given unit has a ball
func (bs *ballStore) HasBall(dbContext model.DBReader, stagingArea *model.StagingArea,
	unitHash *externalapi.DomainHash) (bool, error) {

	return bs.has(dbContext, bs.stagingShard(stagingArea).ballByUnit, bs.ballByUnitCache, ballByUnitBucket, unitHash)
}

// UnitByBall returns the unit the given ball belongs to
func (bs *ballStore) UnitByBall(dbContext model.DBReader, stagingArea *model.StagingArea,
	ball *externalapi.DomainHash) (*externalapi.DomainHash, error) {

	return bs.lookup(dbContext, bs.stagingShard(stagingArea).unitByBall, bs.unitByBallCache, unitByBallBucket, ball)
}

// IsKnownBall returns whether the given ball belongs to a stable unit
func (bs *ballStore) IsKnownBall(dbContext model.DBReader, stagingArea *model.StagingArea,
	ball *externalapi.DomainHash) (bool, error) {

	return bs.has(dbContext, bs.stagingShard(stagingArea).unitByBall, bs.unitByBallCache, unitByBallBucket, ball)
}

func (bs *ballStore) lookup(dbContext model.DBReader, staged map[externalapi.DomainHash]*externalapi.DomainHash,
	cache *lrucache.LRUCache, bucket model.DBBucket, hash *externalapi.DomainHash) (*externalapi.DomainHash, error) {

	if value, ok := staged[*hash]; ok {
		return value, nil
	}

	if value, ok := cache.Get(hash); ok {
		return value.(*externalapi.DomainHash), nil
	}

	valueBytes, err := dbContext.Get(bucket.Key(hash.ByteSlice()))
	if err != nil {
		return nil, err
	}
	value, err := externalapi.NewDomainHashFromByteSlice(valueBytes)
	if err != nil {
		return nil, err
	}
	cache.Add(hash, value)
	return value, nil
}

func (bs *ballStore) has(dbContext model.DBReader, staged map[externalapi.DomainHash]*externalapi.DomainHash,
	cache *lrucache.LRUCache, bucket model.DBBucket, hash *externalapi.DomainHash) (bool, error) {

	if _, ok := staged[*hash]; ok {
		return true, nil
	}

	if cache.Has(hash) {
		return true, nil
	}

	return dbContext.Has(bucket.Key(hash.ByteSlice()))
}
