package ballstore

import (
	"testing"

	"github.com/witnessdag/witnessd/domain/consensus/database"
	"github.com/witnessdag/witnessd/domain/consensus/model"
	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
	"github.com/witnessdag/witnessd/infrastructure/db/database/ldb"
)

func TestBallStoreIndexesBothWays(t *testing.T) {
	db, err := ldb.NewInMemoryLevelDB()
	if err != nil {
		t.Fatalf("NewInMemoryLevelDB: %+v", err)
	}
	defer db.Close()
	dbManager := database.New(db)

	unitHash := externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{1})
	ball := externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{2})

	store := New(10)
	stagingArea := model.NewStagingArea()
	store.Stage(stagingArea, unitHash, ball)

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

	// Use a new store so that reads hit the database
	store = New(10)
	stagingArea = model.NewStagingArea()
	storedBall, err := store.Ball(dbManager, stagingArea, unitHash)
	if err != nil {
		t.Fatalf("Ball: %+v", err)
	}
	if !storedBall.Equal(ball) {
		t.Fatalf("expected ball %s, got %s", ball, storedBall)
	}
	storedUnit, err := store.UnitByBall(dbManager, stagingArea, ball)
	if err != nil {
		t.Fatalf("UnitByBall: %+v", err)
	}
	if !storedUnit.Equal(unitHash) {
		t.Fatalf("expected unit %s, got %s", unitHash, storedUnit)
	}
	known, err := store.IsKnownBall(dbManager, stagingArea, unitHash)
	if err != nil {
		t.Fatalf("IsKnownBall: %+v", err)
	}
	if known {
		t.Fatalf("a unit hash was reported as a known ball")
	}
}
