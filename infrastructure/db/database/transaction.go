package database

// Transaction batches writes and applies them atomically on Commit. Reads
// through a Transaction see the database as it was when the transaction
// began: writes made through the transaction itself are not visible to it.
// Consensus stores keep staged data in memory for that reason.
type Transaction interface {
	DataAccessor

	Commit() error
	Rollback() error

	// RollbackUnlessClosed does nothing if Commit or Rollback was already
	// called
	RollbackUnlessClosed() error
}
