package database_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/witnessdag/witnessd/infrastructure/db/database"
	"github.com/witnessdag/witnessd/infrastructure/db/database/ldb"
)

func newTestDB(t *testing.T) (database.Database, func()) {
	db, err := ldb.NewInMemoryLevelDB()
	if err != nil {
		t.Fatalf("NewInMemoryLevelDB: %s", err)
	}
	return db, func() {
		err := db.Close()
		if err != nil {
			t.Fatalf("Close: %s", err)
		}
	}
}

func mciKey(bucket *database.Bucket, mci uint64) *database.Key {
	var suffix [8]byte
	binary.BigEndian.PutUint64(suffix[:], mci)
	return bucket.Key(suffix[:])
}

// Range queries over main chain indexes rely on cursors returning
// big-endian suffixes in numeric order and staying within their bucket
func TestCursorOrdersBigEndianSuffixes(t *testing.T) {
	db, teardown := newTestDB(t)
	defer teardown()

	bucket := database.MakeBucket([]byte("main-chain")).Bucket([]byte("units"))
	sibling := database.MakeBucket([]byte("main-chain")).Bucket([]byte("unitz"))
	for _, mci := range []uint64{9, 300, 2, 256, 0, 7} {
		err := db.Put(mciKey(bucket, mci), []byte{byte(mci)})
		if err != nil {
			t.Fatalf("Put: %s", err)
		}
	}
	err := db.Put(mciKey(sibling, 1), []byte("sibling"))
	if err != nil {
		t.Fatalf("Put: %s", err)
	}

	cursor, err := db.Cursor(bucket)
	if err != nil {
		t.Fatalf("Cursor: %s", err)
	}
	defer cursor.Close()

	err = cursor.Seek(mciKey(bucket, 7))
	if err != nil {
		t.Fatalf("Seek: %s", err)
	}
	var mcis []uint64
	for ok := true; ok; ok = cursor.Next() {
		key, err := cursor.Key()
		if err != nil {
			t.Fatalf("Key: %s", err)
		}
		mcis = append(mcis, binary.BigEndian.Uint64(key.Suffix()))
	}
	expected := []uint64{7, 9, 256, 300}
	if len(mcis) != len(expected) {
		t.Fatalf("expected mcis %v, got %v", expected, mcis)
	}
	for i := range expected {
		if mcis[i] != expected[i] {
			t.Fatalf("expected mcis %v, got %v", expected, mcis)
		}
	}

	err = cursor.Seek(mciKey(bucket, 8))
	if !database.IsNotFoundError(err) {
		t.Fatalf("expected seeking a missing key to fail with ErrNotFound, got: %v", err)
	}
}

// Transactions read from the state the database had when they began.
// Their own writes are visible to nobody, themselves included, until they
// commit.
func TestTransactionIsolation(t *testing.T) {
	db, teardown := newTestDB(t)
	defer teardown()

	key := database.MakeBucket([]byte("isolation")).Key([]byte("key"))
	laterKey := database.MakeBucket([]byte("isolation")).Key([]byte("later"))

	dbTx, err := db.Begin()
	if err != nil {
		t.Fatalf("Begin: %s", err)
	}
	defer dbTx.RollbackUnlessClosed()

	err = dbTx.Put(key, []byte("value"))
	if err != nil {
		t.Fatalf("Put: %s", err)
	}
	for name, accessor := range map[string]database.DataAccessor{"transaction": dbTx, "database": db} {
		exists, err := accessor.Has(key)
		if err != nil {
			t.Fatalf("Has: %s", err)
		}
		if exists {
			t.Fatalf("uncommitted data is visible through the %s", name)
		}
	}

	err = db.Put(laterKey, []byte("later"))
	if err != nil {
		t.Fatalf("Put: %s", err)
	}
	exists, err := dbTx.Has(laterKey)
	if err != nil {
		t.Fatalf("Has: %s", err)
	}
	if exists {
		t.Fatalf("the transaction sees data written after it began")
	}

	err = dbTx.Commit()
	if err != nil {
		t.Fatalf("Commit: %s", err)
	}
	value, err := db.Get(key)
	if err != nil {
		t.Fatalf("Get: %s", err)
	}
	if !bytes.Equal(value, []byte("value")) {
		t.Fatalf("committed data is not visible")
	}
}

func TestRolledBackTransactionLeavesNoTrace(t *testing.T) {
	db, teardown := newTestDB(t)
	defer teardown()

	key := database.MakeBucket([]byte("rollback")).Key([]byte("key"))
	err := db.Put(key, []byte("before"))
	if err != nil {
		t.Fatalf("Put: %s", err)
	}

	dbTx, err := db.Begin()
	if err != nil {
		t.Fatalf("Begin: %s", err)
	}
	err = dbTx.Delete(key)
	if err != nil {
		t.Fatalf("Delete: %s", err)
	}
	err = dbTx.Rollback()
	if err != nil {
		t.Fatalf("Rollback: %s", err)
	}

	value, err := db.Get(key)
	if err != nil {
		t.Fatalf("Get: %s", err)
	}
	if !bytes.Equal(value, []byte("before")) {
		t.Fatalf("a rolled back delete changed the database")
	}

	_, err = db.Get(database.MakeBucket([]byte("rollback")).Key([]byte("missing")))
	if !database.IsNotFoundError(err) {
		t.Fatalf("expected ErrNotFound, got: %v", err)
	}
}

func TestBucketPaths(t *testing.T) {
	bucket := database.MakeBucket([]byte("units-by-mci")).Bucket([]byte("5"))
	if string(bucket.Path()) != "units-by-mci/5/" {
		t.Fatalf("unexpected bucket path %q", bucket.Path())
	}
	if string(bucket.Key([]byte("unit")).Bytes()) != "units-by-mci/5/unit" {
		t.Fatalf("unexpected key %q", bucket.Key([]byte("unit")).Bytes())
	}
	if string(database.MakeBucket(nil).Key([]byte("tips")).Bytes()) != "/tips" {
		t.Fatalf("unexpected root key %q", database.MakeBucket(nil).Key([]byte("tips")).Bytes())
	}

	for _, path := range []string{"units-by-mci/5/", "units-by-mci/5"} {
		fromPath := database.BucketFromPath([]byte(path))
		if !bytes.Equal(fromPath.Path(), bucket.Path()) {
			t.Fatalf("BucketFromPath(%q): expected path %q, got %q", path, bucket.Path(), fromPath.Path())
		}
	}
}
