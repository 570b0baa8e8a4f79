package definitionstore

import (
	"github.com/witnessdag/witnessd/domain/consensus/database/serialization"
	"github.com/witnessdag/witnessd/domain/consensus/model"
	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
)

type definitionStagingShard struct {
	store    *definitionStore
	toAppend map[string][]*externalapi.DomainHash
}

func (ds *definitionStore) stagingShard(stagingArea *model.StagingArea) *definitionStagingShard {
	return stagingArea.GetOrCreateShard("DefinitionStore", func() model.StagingShard {
		return &definitionStagingShard{
			store:    ds,
			toAppend: make(map[string][]*externalapi.DomainHash),
		}
	}).(*definitionStagingShard)
}

func (dss *definitionStagingShard) Commit(dbTx model.DBTransaction) error {
	for address, unitHashes := range dss.toAppend {
		stored, err := dss.store.storedDefinitionUnits(dbTx, address)
		if err != nil {
			return err
		}
		err = dbTx.Put(dss.store.addressAsKey(address), serialization.SerializeHashes(append(stored, unitHashes...)))
		if err != nil {
			return err
		}
	}
	return nil
}

func (dss *definitionStagingShard) isStaged() bool {
	return len(dss.toAppend) != 0
}
