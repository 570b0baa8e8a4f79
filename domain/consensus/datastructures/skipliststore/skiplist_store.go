package skipliststore

import (
	"github.com/witnessdag/witnessd/domain/consensus/database"
	"github.com/witnessdag/witnessd/domain/consensus/database/serialization"
	"github.com/witnessdag/witnessd/domain/consensus/model"
	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
)

var bucket = database.MakeBucket([]byte("skiplist"))

// skiplistStore represents a store of the skiplist units of stable main
// chain units. Units that have no skiplist have no entry.
type skiplistStore struct {
}

// New instantiates a new SkiplistStore
func New() model.SkiplistStore {
	return &skiplistStore{}
}

func (sls *skiplistStore) Stage(stagingArea *model.StagingArea, unitHash *externalapi.DomainHash,
	skiplistUnits []*externalapi.DomainHash) {

	stagingShard := sls.stagingShard(stagingArea)
	stagingShard.toAdd[*unitHash] = externalapi.CloneHashes(skiplistUnits)
}

func (sls *skiplistStore) IsStaged(stagingArea *model.StagingArea) bool {
	return sls.stagingShard(stagingArea).isStaged()
}

// SkiplistUnits returns the skiplist units of the given unit, or an empty
// slice if it has none
func (sls *skiplistStore) SkiplistUnits(dbContext model.DBReader, stagingArea *model.StagingArea,
	unitHash *externalapi.DomainHash) ([]*externalapi.DomainHash, error) {

	stagingShard := sls.stagingShard(stagingArea)

	if skiplistUnits, ok := stagingShard.toAdd[*unitHash]; ok {
		return externalapi.CloneHashes(skiplistUnits), nil
	}

	key := sls.hashAsKey(unitHash)
	exists, err := dbContext.Has(key)
	if err != nil {
		return nil, err
	}
	if !exists {
		return []*externalapi.DomainHash{}, nil
	}

	skiplistBytes, err := dbContext.Get(key)
	if err != nil {
		return nil, err
	}
	return serialization.DeserializeHashes(skiplistBytes)
}

func (sls *skiplistStore) hashAsKey(hash *externalapi.DomainHash) model.DBKey {
	return bucket.Key(hash.ByteSlice())
}
