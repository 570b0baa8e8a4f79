package database

// DataAccessor is the set of operations shared by a Database and its
// Transactions
type DataAccessor interface {
	// Put overwrites any previous value of key
	Put(key *Key, value []byte) error

	// Get returns ErrNotFound if key does not exist
	Get(key *Key) ([]byte, error)

	Has(key *Key) (bool, error)

	// Delete does nothing if key does not exist
	Delete(key *Key) error

	// Cursor opens a cursor over the keys under bucket
	Cursor(bucket *Bucket) (Cursor, error)
}
