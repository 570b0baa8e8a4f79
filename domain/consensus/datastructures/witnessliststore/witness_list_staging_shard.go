package witnessliststore

import (
	"github.com/witnessdag/witnessd/domain/consensus/database/serialization"
	"github.com/witnessdag/witnessd/domain/consensus/model"
	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
)

type witnessListStagingShard struct {
	store *witnessListStore
	toAdd map[externalapi.DomainHash][]string
}

func (wls *witnessListStore) stagingShard(stagingArea *model.StagingArea) *witnessListStagingShard {
	return stagingArea.GetOrCreateShard("WitnessListStore", func() model.StagingShard {
		return &witnessListStagingShard{
			store: wls,
			toAdd: make(map[externalapi.DomainHash][]string),
		}
	}).(*witnessListStagingShard)
}

func (wlss *witnessListStagingShard) Commit(dbTx model.DBTransaction) error {
	for hash, witnesses := range wlss.toAdd {
		hashCopy := hash
		err := dbTx.Put(wlss.store.hashAsKey(&hashCopy), serialization.SerializeStrings(witnesses))
		if err != nil {
			return err
		}
		wlss.store.cache.Add(&hashCopy, witnesses)
	}
	return nil
}

func (wlss *witnessListStagingShard) isStaged() bool {
	return len(wlss.toAdd) != 0
}
