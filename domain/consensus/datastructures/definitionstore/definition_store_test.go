package definitionstore

import (
	"testing"

	"github.com/witnessdag/witnessd/domain/consensus/database"
	"github.com/witnessdag/witnessd/domain/consensus/model"
	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
	"github.com/witnessdag/witnessd/infrastructure/db/database/ldb"
)

func TestDefinitionUnitsAreAppended(t *testing.T) {
	db, err := ldb.NewInMemoryLevelDB()
	if err != nil {
		t.Fatalf("NewInMemoryLevelDB: %+v", err)
	}
	defer db.Close()
	dbManager := database.New(db)
	store := New()

	unit1 := externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{1})
	unit2 := externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{2})

	for _, unitHash := range []*externalapi.DomainHash{unit1, unit2} {
		stagingArea := model.NewStagingArea()
		store.StageDefinitionUnit(stagingArea, "ADDRESS", unitHash)
		dbTx, err := dbManager.Begin()
		if err != nil {
			t.Fatalf("Begin: %+v", err)
		}
		err = stagingArea.Commit(dbTx)
		if err != nil {
			t.Fatalf("Commit: %+v", err)
		}
		err = dbTx.Commit()
		if err != nil {
			t.Fatalf("dbTx.Commit: %+v", err)
		}
	}

	units, err := store.DefinitionUnits(dbManager, model.NewStagingArea(), "ADDRESS")
	if err != nil {
		t.Fatalf("DefinitionUnits: %+v", err)
	}
	if !externalapi.HashesEqual(units, []*externalapi.DomainHash{unit1, unit2}) {
		t.Fatalf("unexpected definition units %v", units)
	}

	units, err = store.DefinitionUnits(dbManager, model.NewStagingArea(), "OTHER")
	if err != nil {
		t.Fatalf("DefinitionUnits: %+v", err)
	}
	if len(units) != 0 {
		t.Fatalf("unexpected definition units for an unknown address")
	}
}
