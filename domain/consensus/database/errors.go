package database

import (
	"github.com/witnessdag/witnessd/infrastructure/db/database"
)

// ErrNotFound is returned by stores for keys that are neither staged nor
// committed. Staged deletions, such as main chain entries dropped by a
// reorganization, report it as well.
var ErrNotFound = database.ErrNotFound

// IsNotFoundError returns whether err is, or wraps, ErrNotFound
func IsNotFoundError(err error) bool {
	return database.IsNotFoundError(err)
}
