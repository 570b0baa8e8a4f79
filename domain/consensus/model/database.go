package model

// DBBucket is a key prefix grouping the entries of a single store, such as
// the units of a given main chain index
type DBBucket interface {
	Bucket(bucketBytes []byte) DBBucket
	Key(suffix []byte) DBKey
	Path() []byte
}

// DBKey is a full database key: a bucket path followed by a suffix
type DBKey interface {
	Bytes() []byte
	Bucket() DBBucket
	Suffix() []byte
}

// DBCursor walks the entries of one bucket in key order.
// Next and First panic once the cursor is closed.
type DBCursor interface {
	Next() bool
	First() bool

	// Seek positions the cursor on key, or returns ErrNotFound if key is
	// not in the bucket
	Seek(key DBKey) error

	Key() (DBKey, error)
	Value() ([]byte, error)
	Close() error
}

// DBReader is read access to consensus data, either committed or
// as seen from within an open transaction
type DBReader interface {
	// Get returns ErrNotFound for a missing key
	Get(key DBKey) ([]byte, error)
	Has(key DBKey) (bool, error)
	Cursor(bucket DBBucket) (DBCursor, error)
}

// DBWriter adds writes to DBReader. Deleting a missing key is not an error.
type DBWriter interface {
	DBReader
	Put(key DBKey, value []byte) error
	Delete(key DBKey) error
}

// DBTransaction is a DBWriter whose writes become visible to other readers
// only once committed. Staging areas are committed through a single
// DBTransaction so that a unit and everything it stabilizes land together.
type DBTransaction interface {
	DBWriter
	Commit() error
	Rollback() error

	// RollbackUnlessClosed is a no-op after Commit or Rollback, so it can
	// be deferred right after Begin
	RollbackUnlessClosed() error
}

// DBManager is the database handle shared by every store and process
type DBManager interface {
	DBWriter
	Begin() (DBTransaction, error)
}
