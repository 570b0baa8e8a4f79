package app

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const currentDatabaseVersion = 1

// checkDatabaseVersion fails if the database at dbPath was written by an
// incompatible version of witnessd. A missing version file means a new
// database.
func checkDatabaseVersion(dbPath string) (doesVersionFileExist bool, err error) {
	versionBytes, err := ioutil.ReadFile(versionFilePath(dbPath))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.WithStack(err)
	}

	databaseVersion, err := strconv.Atoi(strings.TrimSpace(string(versionBytes)))
	if err != nil {
		return true, errors.Wrapf(err, "malformed database version file")
	}
	if databaseVersion != currentDatabaseVersion {
		return true, errors.Errorf("invalid database version %d. Expected version: %d",
			databaseVersion, currentDatabaseVersion)
	}
	return true, nil
}

func createDatabaseVersionFile(dbPath string) error {
	versionString := strconv.Itoa(currentDatabaseVersion)
	err := ioutil.WriteFile(versionFilePath(dbPath), []byte(versionString), 0600)
	if err != nil {
		return errors.Wrapf(err, "error writing the database version file")
	}
	return nil
}

func versionFilePath(dbPath string) string {
	return filepath.Join(dbPath, "version")
}
