package ldb

import (
	"bytes"
	"io/ioutil"
	"os"
	"testing"

	"github.com/witnessdag/witnessd/infrastructure/db/database"
)

func prepareDatabaseForTest(t *testing.T, testName string) (ldb *LevelDB, teardownFunc func()) {
	// Create a temp db to run tests against
	path, err := ioutil.TempDir("", testName)
	if err != nil {
		t.Fatalf("%s: TempDir unexpectedly "+
			"failed: %s", testName, err)
	}
	ldb, err = NewLevelDB(path, 8)
	if err != nil {
		t.Fatalf("%s: NewLevelDB unexpectedly "+
			"failed: %s", testName, err)
	}
	teardownFunc = func() {
		err = ldb.Close()
		if err != nil {
			t.Fatalf("%s: Close unexpectedly "+
				"failed: %s", testName, err)
		}
		_ = os.RemoveAll(path)
	}
	return ldb, teardownFunc
}

func TestLevelDBSanity(t *testing.T) {
	ldb, teardownFunc := prepareDatabaseForTest(t, "TestLevelDBSanity")
	defer teardownFunc()

	// Put something into the db
	key := database.MakeBucket([]byte("bucket")).Key([]byte("key"))
	putData := []byte("Hello world!")
	err := ldb.Put(key, putData)
	if err != nil {
		t.Fatalf("TestLevelDBSanity: Put returned "+
			"unexpected error: %s", err)
	}

	// Get from the key previously put to
	getData, err := ldb.Get(key)
	if err != nil {
		t.Fatalf("TestLevelDBSanity: Get returned "+
			"unexpected error: %s", err)
	}

	// Make sure that the put data and the get data are equal
	if !bytes.Equal(getData, putData) {
		t.Fatalf("TestLevelDBSanity: get data and "+
			"put data are not equal. Put: %s, got: %s",
			string(putData), string(getData))
	}

	err = ldb.Delete(key)
	if err != nil {
		t.Fatalf("TestLevelDBSanity: Delete returned "+
			"unexpected error: %s", err)
	}
	_, err = ldb.Get(key)
	if !database.IsNotFoundError(err) {
		t.Fatalf("TestLevelDBSanity: Get after Delete returned "+
			"unexpected error: %s", err)
	}
}

func TestLevelDBTransactionSanity(t *testing.T) {
	ldb, err := NewInMemoryLevelDB()
	if err != nil {
		t.Fatalf("TestLevelDBTransactionSanity: NewInMemoryLevelDB "+
			"unexpectedly failed: %s", err)
	}
	defer ldb.Close()

	key := database.MakeBucket([]byte("bucket")).Key([]byte("key"))
	err = ldb.Put(key, []byte("before"))
	if err != nil {
		t.Fatalf("TestLevelDBTransactionSanity: Put unexpectedly failed: %s", err)
	}

	dbTx, err := ldb.Begin()
	if err != nil {
		t.Fatalf("TestLevelDBTransactionSanity: Begin unexpectedly failed: %s", err)
	}
	err = dbTx.Put(key, []byte("after"))
	if err != nil {
		t.Fatalf("TestLevelDBTransactionSanity: Put unexpectedly failed: %s", err)
	}

	// The transaction reads its own snapshot, not its own writes
	data, err := dbTx.Get(key)
	if err != nil {
		t.Fatalf("TestLevelDBTransactionSanity: Get unexpectedly failed: %s", err)
	}
	if string(data) != "before" {
		t.Fatalf("TestLevelDBTransactionSanity: transaction saw uncommitted data: %s", data)
	}

	err = dbTx.Commit()
	if err != nil {
		t.Fatalf("TestLevelDBTransactionSanity: Commit unexpectedly failed: %s", err)
	}
	err = dbTx.RollbackUnlessClosed()
	if err != nil {
		t.Fatalf("TestLevelDBTransactionSanity: RollbackUnlessClosed unexpectedly failed: %s", err)
	}

	data, err = ldb.Get(key)
	if err != nil {
		t.Fatalf("TestLevelDBTransactionSanity: Get unexpectedly failed: %s", err)
	}
	if string(data) != "after" {
		t.Fatalf("TestLevelDBTransactionSanity: committed data is missing, got: %s", data)
	}

	rolledBackTx, err := ldb.Begin()
	if err != nil {
		t.Fatalf("TestLevelDBTransactionSanity: Begin unexpectedly failed: %s", err)
	}
	err = rolledBackTx.Delete(key)
	if err != nil {
		t.Fatalf("TestLevelDBTransactionSanity: Delete unexpectedly failed: %s", err)
	}
	err = rolledBackTx.Rollback()
	if err != nil {
		t.Fatalf("TestLevelDBTransactionSanity: Rollback unexpectedly failed: %s", err)
	}
	exists, err := ldb.Has(key)
	if err != nil {
		t.Fatalf("TestLevelDBTransactionSanity: Has unexpectedly failed: %s", err)
	}
	if !exists {
		t.Fatalf("TestLevelDBTransactionSanity: rolled back delete was applied")
	}
}
