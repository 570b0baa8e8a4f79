package mainchainstore

import (
	"encoding/binary"

	"github.com/pkg/errors"
	"github.com/witnessdag/witnessd/domain/consensus/database"
	"github.com/witnessdag/witnessd/domain/consensus/model"
	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
	"github.com/witnessdag/witnessd/domain/consensus/ruleerrors"
	"github.com/witnessdag/witnessd/domain/consensus/utils/hashset"
	"github.com/witnessdag/witnessd/domain/consensus/utils/lrucacheuint64tohash"
)

var mainChainUnitBucket = database.MakeBucket([]byte("main-chain-unit-by-mci"))
var unitsByMCIBucket = database.MakeBucket([]byte("units-by-mci"))

type mainChainStore struct {
	mainChainUnitCache *lrucacheuint64tohash.LRUCache
}

// New instantiates a new MainChainStore
func New(cacheSize int) model.MainChainStore {
	return &mainChainStore{
		mainChainUnitCache: lrucacheuint64tohash.New(cacheSize),
	}
}

func (mcs *mainChainStore) IsStaged(stagingArea *model.StagingArea) bool {
	return mcs.stagingShard(stagingArea).isStaged()
}

// StageMainChainUnit stages unitHash as the main chain unit at mci
func (mcs *mainChainStore) StageMainChainUnit(stagingArea *model.StagingArea, mci uint64, unitHash *externalapi.DomainHash) {
	stagingShard := mcs.stagingShard(stagingArea)
	delete(stagingShard.mainChainUnitsRemoved, mci)
	stagingShard.mainChainUnitsAdded[mci] = unitHash
}

// RemoveMainChainUnit stages the removal of the main chain unit at mci
func (mcs *mainChainStore) RemoveMainChainUnit(stagingArea *model.StagingArea, mci uint64) {
	stagingShard := mcs.stagingShard(stagingArea)
	delete(stagingShard.mainChainUnitsAdded, mci)
	stagingShard.mainChainUnitsRemoved[mci] = struct{}{}
}

// MainChainUnit returns the main chain unit at mci
func (mcs *mainChainStore) MainChainUnit(dbContext model.DBReader, stagingArea *model.StagingArea,
	mci uint64) (*externalapi.DomainHash, error) {

	stagingShard := mcs.stagingShard(stagingArea)

	if unitHash, ok := stagingShard.mainChainUnitsAdded[mci]; ok {
		return unitHash, nil
	}
	if _, ok := stagingShard.mainChainUnitsRemoved[mci]; ok {
		return nil, errors.Wrapf(database.ErrNotFound, "main chain unit at mci %d was removed", mci)
	}
	if unitHash, ok := mcs.mainChainUnitCache.Get(mci); ok {
		return unitHash, nil
	}

	unitHashBytes, err := dbContext.Get(mainChainUnitBucket.Key(mciAsKeySuffix(mci)))
	if err != nil {
		return nil, err
	}
	unitHash, err := externalapi.NewDomainHashFromByteSlice(unitHashBytes)
	if err != nil {
		return nil, err
	}
	mcs.mainChainUnitCache.Add(mci, unitHash)
	return unitHash, nil
}

// HasMainChainUnit returns whether there's a main chain unit at mci
func (mcs *mainChainStore) HasMainChainUnit(dbContext model.DBReader, stagingArea *model.StagingArea,
	mci uint64) (bool, error) {

	stagingShard := mcs.stagingShard(stagingArea)

	if _, ok := stagingShard.mainChainUnitsAdded[mci]; ok {
		return true, nil
	}
	if _, ok := stagingShard.mainChainUnitsRemoved[mci]; ok {
		return false, nil
	}
	if mcs.mainChainUnitCache.Has(mci) {
		return true, nil
	}
	return dbContext.Has(mainChainUnitBucket.Key(mciAsKeySuffix(mci)))
}

// StageUnitAtMCI stages unitHash as one of the units with main chain index mci
func (mcs *mainChainStore) StageUnitAtMCI(stagingArea *model.StagingArea, mci uint64, unitHash *externalapi.DomainHash) {
	stagingShard := mcs.stagingShard(stagingArea)
	if removed, ok := stagingShard.unitsRemoved[mci]; ok {
		removed.Remove(unitHash)
	}
	added, ok := stagingShard.unitsAdded[mci]
	if !ok {
		added = hashset.New()
		stagingShard.unitsAdded[mci] = added
	}
	added.Add(unitHash)
}

// RemoveUnitAtMCI stages the removal of unitHash from the units with main
// chain index mci
func (mcs *mainChainStore) RemoveUnitAtMCI(stagingArea *model.StagingArea, mci uint64, unitHash *externalapi.DomainHash) {
	stagingShard := mcs.stagingShard(stagingArea)
	if added, ok := stagingShard.unitsAdded[mci]; ok {
		added.Remove(unitHash)
	}
	removed, ok := stagingShard.unitsRemoved[mci]
	if !ok {
		removed = hashset.New()
		stagingShard.unitsRemoved[mci] = removed
	}
	removed.Add(unitHash)
}

// UnitsAtMCI returns the units with main chain index mci, sorted
func (mcs *mainChainStore) UnitsAtMCI(dbContext model.DBReader, stagingArea *model.StagingArea,
	mci uint64) ([]*externalapi.DomainHash, error) {

	stagingShard := mcs.stagingShard(stagingArea)

	units, err := mcs.storedUnitsAtMCI(dbContext, mci)
	if err != nil {
		return nil, err
	}
	if removed, ok := stagingShard.unitsRemoved[mci]; ok {
		units = units.Subtract(removed)
	}
	if added, ok := stagingShard.unitsAdded[mci]; ok {
		for hash := range added {
			hashCopy := hash
			units.Add(&hashCopy)
		}
	}
	return units.ToSortedSlice(), nil
}

// UnitsByMCIRange returns the units with fromMCI <= mci <= toMCI, ordered
// by mci. It fails with ErrTooManyUnitsInRange once more than limit units
// are found.
func (mcs *mainChainStore) UnitsByMCIRange(dbContext model.DBReader, stagingArea *model.StagingArea,
	fromMCI, toMCI uint64, limit int) ([]*externalapi.DomainHash, error) {

	result := []*externalapi.DomainHash{}
	if fromMCI > toMCI {
		return result, nil
	}
	for mci := fromMCI; ; mci++ {
		units, err := mcs.UnitsAtMCI(dbContext, stagingArea, mci)
		if err != nil {
			return nil, err
		}
		result = append(result, units...)
		if len(result) > limit {
			return nil, errors.Wrapf(ruleerrors.ErrTooManyUnitsInRange,
				"more than %d units between mci %d and %d", limit, fromMCI, toMCI)
		}
		if mci == toMCI {
			break
		}
	}
	return result, nil
}

func (mcs *mainChainStore) storedUnitsAtMCI(dbContext model.DBReader, mci uint64) (hashset.HashSet, error) {
	cursor, err := dbContext.Cursor(mcs.unitsAtMCIBucket(mci))
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	units := hashset.New()
	for ok := cursor.First(); ok; ok = cursor.Next() {
		key, err := cursor.Key()
		if err != nil {
			return nil, err
		}
		unitHash, err := externalapi.NewDomainHashFromByteSlice(key.Suffix())
		if err != nil {
			return nil, err
		}
		units.Add(unitHash)
	}
	return units, nil
}

func (mcs *mainChainStore) unitsAtMCIBucket(mci uint64) model.DBBucket {
	return unitsByMCIBucket.Bucket(mciAsKeySuffix(mci))
}

func mciAsKeySuffix(mci uint64) []byte {
	var keyBytes [8]byte
	binary.BigEndian.PutUint64(keyBytes[:], mci)
	return keyBytes[:]
}
