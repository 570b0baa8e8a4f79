package mainchainstore

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/witnessdag/witnessd/domain/consensus/database"
	"github.com/witnessdag/witnessd/domain/consensus/model"
	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
	"github.com/witnessdag/witnessd/domain/consensus/ruleerrors"
	"github.com/witnessdag/witnessd/infrastructure/db/database/ldb"
)

func newTestDBManager(t *testing.T) model.DBManager {
	db, err := ldb.NewInMemoryLevelDB()
	if err != nil {
		t.Fatalf("NewInMemoryLevelDB: %+v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})
	return database.New(db)
}

func commit(t *testing.T, dbManager model.DBManager, stagingArea *model.StagingArea) {
	dbTx, err := dbManager.Begin()
	if err != nil {
		t.Fatalf("Begin: %+v", err)
	}
	defer dbTx.RollbackUnlessClosed()
	err = stagingArea.Commit(dbTx)
	if err != nil {
		t.Fatalf("Commit: %+v", err)
	}
	err = dbTx.Commit()
	if err != nil {
		t.Fatalf("dbTx.Commit: %+v", err)
	}
}

func hash(b byte) *externalapi.DomainHash {
	return externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{b})
}

func TestUnitsAtMCIOverlaysStagedChanges(t *testing.T) {
	dbManager := newTestDBManager(t)
	store := New(10)

	stagingArea := model.NewStagingArea()
	store.StageMainChainUnit(stagingArea, 1, hash(1))
	store.StageUnitAtMCI(stagingArea, 1, hash(1))
	store.StageUnitAtMCI(stagingArea, 1, hash(2))
	store.StageUnitAtMCI(stagingArea, 2, hash(3))
	commit(t, dbManager, stagingArea)

	// A fresh store reads everything from the database
	store = New(10)
	stagingArea = model.NewStagingArea()
	store.RemoveUnitAtMCI(stagingArea, 1, hash(2))
	store.StageUnitAtMCI(stagingArea, 2, hash(2))

	units, err := store.UnitsAtMCI(dbManager, stagingArea, 1)
	if err != nil {
		t.Fatalf("UnitsAtMCI: %+v", err)
	}
	if !externalapi.HashesEqual(units, []*externalapi.DomainHash{hash(1)}) {
		t.Fatalf("unexpected units at mci 1: %v", units)
	}

	units, err = store.UnitsByMCIRange(dbManager, stagingArea, 1, 2, 10)
	if err != nil {
		t.Fatalf("UnitsByMCIRange: %+v", err)
	}
	if len(units) != 3 || !units[0].Equal(hash(1)) {
		t.Fatalf("unexpected units in range: %v", units)
	}

	_, err = store.UnitsByMCIRange(dbManager, stagingArea, 1, 2, 2)
	if !errors.Is(err, ruleerrors.ErrTooManyUnitsInRange) {
		t.Fatalf("expected ErrTooManyUnitsInRange, got %v", err)
	}

	commit(t, dbManager, stagingArea)
	store = New(10)
	units, err = store.UnitsAtMCI(dbManager, model.NewStagingArea(), 2)
	if err != nil {
		t.Fatalf("UnitsAtMCI: %+v", err)
	}
	if len(units) != 2 {
		t.Fatalf("expected 2 committed units at mci 2, got %d", len(units))
	}
}

func TestRemoveMainChainUnit(t *testing.T) {
	dbManager := newTestDBManager(t)
	store := New(10)

	stagingArea := model.NewStagingArea()
	store.StageMainChainUnit(stagingArea, 5, hash(5))
	commit(t, dbManager, stagingArea)

	stagingArea = model.NewStagingArea()
	store.RemoveMainChainUnit(stagingArea, 5)
	exists, err := store.HasMainChainUnit(dbManager, stagingArea, 5)
	if err != nil {
		t.Fatalf("HasMainChainUnit: %+v", err)
	}
	if exists {
		t.Fatalf("removed main chain unit is still visible in its staging area")
	}
	_, err = store.MainChainUnit(dbManager, stagingArea, 5)
	if !database.IsNotFoundError(err) {
		t.Fatalf("expected a not found error, got %v", err)
	}
	commit(t, dbManager, stagingArea)

	exists, err = New(10).HasMainChainUnit(dbManager, model.NewStagingArea(), 5)
	if err != nil {
		t.Fatalf("HasMainChainUnit: %+v", err)
	}
	if exists {
		t.Fatalf("removed main chain unit is still stored")
	}
}
