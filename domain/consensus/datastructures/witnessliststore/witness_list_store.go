package witnessliststore

import (
	"github.com/witnessdag/witnessd/domain/consensus/database"
	"github.com/witnessdag/witnessd/domain/consensus/database/serialization"
	"github.com/witnessdag/witnessd/domain/consensus/model"
	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
	"github.com/witnessdag/witnessd/domain/consensus/utils/lrucache"
)

var bucket = database.MakeBucket([]byte("witness-lists"))

// witnessListStore keeps the resolved witness list of every unit, whether
// the unit declared it or referenced it through a witness list unit
type witnessListStore struct {
	cache *lrucache.LRUCache
}

// New instantiates a new WitnessListStore
func New(cacheSize int) model.WitnessListStore {
	return &witnessListStore{
		cache: lrucache.New(cacheSize),
	}
}

func (wls *witnessListStore) Stage(stagingArea *model.StagingArea, unitHash *externalapi.DomainHash, witnesses []string) {
	stagingShard := wls.stagingShard(stagingArea)
	stagingShard.toAdd[*unitHash] = append([]string(nil), witnesses...)
}

func (wls *witnessListStore) IsStaged(stagingArea *model.StagingArea) bool {
	return wls.stagingShard(stagingArea).isStaged()
}

func (wls *witnessListStore) WitnessList(dbContext model.DBReader, stagingArea *model.StagingArea,
	unitHash *externalapi.DomainHash) ([]string, error) {

	stagingShard := wls.stagingShard(stagingArea)

	if witnesses, ok := stagingShard.toAdd[*unitHash]; ok {
		return append([]string(nil), witnesses...), nil
	}

	if witnesses, ok := wls.cache.Get(unitHash); ok {
		return append([]string(nil), witnesses.([]string)...), nil
	}

	witnessesBytes, err := dbContext.Get(wls.hashAsKey(unitHash))
	if err != nil {
		return nil, err
	}

	witnesses, err := serialization.DeserializeStrings(witnessesBytes)
	if err != nil {
		return nil, err
	}
	wls.cache.Add(unitHash, witnesses)
	return append([]string(nil), witnesses...), nil
}

func (wls *witnessListStore) hashAsKey(hash *externalapi.DomainHash) model.DBKey {
	return bucket.Key(hash.ByteSlice())
}
