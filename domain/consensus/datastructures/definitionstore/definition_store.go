package definitionstore

import (
	"github.com/witnessdag/witnessd/domain/consensus/database"
	"github.com/witnessdag/witnessd/domain/consensus/database/serialization"
	"github.com/witnessdag/witnessd/domain/consensus/model"
	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
)

var bucket = database.MakeBucket([]byte("definition-units"))

// definitionStore indexes the units that carry a definition of an address
// or a definition change for it, in insertion order
type definitionStore struct {
}

// New instantiates a new DefinitionStore
func New() model.DefinitionStore {
	return &definitionStore{}
}

func (ds *definitionStore) StageDefinitionUnit(stagingArea *model.StagingArea, address string, unitHash *externalapi.DomainHash) {
	stagingShard := ds.stagingShard(stagingArea)
	stagingShard.toAppend[address] = append(stagingShard.toAppend[address], unitHash)
}

func (ds *definitionStore) IsStaged(stagingArea *model.StagingArea) bool {
	return ds.stagingShard(stagingArea).isStaged()
}

func (ds *definitionStore) DefinitionUnits(dbContext model.DBReader, stagingArea *model.StagingArea,
	address string) ([]*externalapi.DomainHash, error) {

	stagingShard := ds.stagingShard(stagingArea)
	stored, err := ds.storedDefinitionUnits(dbContext, address)
	if err != nil {
		return nil, err
	}
	return append(stored, stagingShard.toAppend[address]...), nil
}

func (ds *definitionStore) storedDefinitionUnits(dbContext model.DBReader, address string) ([]*externalapi.DomainHash, error) {
	key := ds.addressAsKey(address)
	exists, err := dbContext.Has(key)
	if err != nil {
		return nil, err
	}
	if !exists {
		return []*externalapi.DomainHash{}, nil
	}
	unitHashesBytes, err := dbContext.Get(key)
	if err != nil {
		return nil, err
	}
	return serialization.DeserializeHashes(unitHashesBytes)
}

func (ds *definitionStore) addressAsKey(address string) model.DBKey {
	return bucket.Key([]byte(address))
}
