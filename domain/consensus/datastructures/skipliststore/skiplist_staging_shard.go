package skipliststore

import (
	"github.com/witnessdag/witnessd/domain/consensus/database/serialization"
	"github.com/witnessdag/witnessd/domain/consensus/model"
	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
)

type skiplistStagingShard struct {
	store *skiplistStore
	toAdd map[externalapi.DomainHash][]*externalapi.DomainHash
}

func (sls *skiplistStore) stagingShard(stagingArea *model.StagingArea) *skiplistStagingShard {
	return stagingArea.GetOrCreateShard("SkiplistStore", func() model.StagingShard {
		return &skiplistStagingShard{
			store: sls,
			toAdd: make(map[externalapi.DomainHash][]*externalapi.DomainHash),
		}
	}).(*skiplistStagingShard)
}

func (slss *skiplistStagingShard) Commit(dbTx model.DBTransaction) error {
	for hash, skiplistUnits := range slss.toAdd {
		if len(skiplistUnits) == 0 {
			continue
		}
		hashCopy := hash
		err := dbTx.Put(slss.store.hashAsKey(&hashCopy), serialization.SerializeHashes(skiplistUnits))
		if err != nil {
			return err
		}
	}
	return nil
}

func (slss *skiplistStagingShard) isStaged() bool {
	return len(slss.toAdd) != 0
}
