package app

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/pkg/errors"
	"github.com/witnessdag/witnessd/infrastructure/config"
	infrastructuredatabase "github.com/witnessdag/witnessd/infrastructure/db/database"
	"github.com/witnessdag/witnessd/infrastructure/db/database/ldb"
	"github.com/witnessdag/witnessd/infrastructure/logger"
	"github.com/witnessdag/witnessd/infrastructure/os/signal"
	"github.com/witnessdag/witnessd/util/panics"
	"github.com/witnessdag/witnessd/util/profiling"
	"github.com/witnessdag/witnessd/version"
)

const (
	leveldbCacheSizeMiB = 256
	defaultDataDirname  = "datadir"
)

// StartApp starts witnessd and blocks until it is interrupted
func StartApp() error {
	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}

	logger.InitLog(cfg.LogFile, cfg.ErrLogFile, cfg.LogRotation())
	defer logger.BackendLog.Close()
	defer panics.HandlePanic(log, "MAIN", nil)

	// Get a channel that will be closed when a shutdown signal has been
	// triggered either from an OS signal such as SIGINT (Ctrl+C) or from
	// another subsystem such as the catchup server.
	interrupt := signal.InterruptListener()

	// Show version at startup.
	log.Infof("Version %s", version.Version())
	runtime.GOMAXPROCS(runtime.NumCPU())

	if cfg.Profile != "" {
		profiling.Start(cfg.Profile, log)
	}

	databaseContext, err := openDB(cfg)
	if err != nil {
		log.Errorf("Loading database failed: %+v", err)
		return err
	}
	defer func() {
		log.Infof("Gracefully shutting down the database...")
		err := databaseContext.Close()
		if err != nil {
			log.Errorf("Failed to close the database: %s", err)
		}
	}()

	componentManager, err := NewComponentManager(cfg, databaseContext)
	if err != nil {
		log.Errorf("Unable to start witnessd: %+v", err)
		return err
	}
	defer func() {
		log.Infof("Gracefully shutting down witnessd...")
		componentManager.Stop()
		log.Info("Witnessd shutdown complete")
	}()

	err = componentManager.Start()
	if err != nil {
		log.Errorf("Unable to start witnessd: %+v", err)
		return err
	}

	<-interrupt
	return nil
}

func databasePath(cfg *config.Config) string {
	return filepath.Join(cfg.AppDir, defaultDataDirname)
}

func openDB(cfg *config.Config) (infrastructuredatabase.Database, error) {
	dbPath := databasePath(cfg)
	err := os.MkdirAll(dbPath, 0700)
	if err != nil {
		return nil, errors.Wrapf(err, "error creating %s", dbPath)
	}

	versionFileExists, err := checkDatabaseVersion(dbPath)
	if err != nil {
		return nil, err
	}

	log.Infof("Loading database from '%s'", dbPath)
	db, err := ldb.NewLevelDB(dbPath, leveldbCacheSizeMiB)
	if err != nil {
		return nil, err
	}

	if !versionFileExists {
		err := createDatabaseVersionFile(dbPath)
		if err != nil {
			db.Close()
			return nil, err
		}
	}
	return db, nil
}
