package database

// Cursor walks the entries of a bucket in ascending key order. Next and
// First panic if the cursor is closed.
type Cursor interface {
	// Next moves to the following entry and returns false once there is
	// none left
	Next() bool

	// First moves to the first entry of the bucket and returns false if the
	// bucket is empty
	First() bool

	// Seek moves to key, which must exist, or returns ErrNotFound
	Seek(key *Key) error

	// Key returns the current key relative to the cursor's bucket. Its
	// suffix may be overwritten by the next call to Next.
	Key() (*Key, error)

	// Value returns the current value, which may be overwritten by the next
	// call to Next
	Value() ([]byte, error)

	Close() error
}
