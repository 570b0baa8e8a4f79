package logger

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// BackendLog is the logging backend used to create all subsystem loggers.
var BackendLog = NewBackend()

var (
	subsystemLoggers     = make(map[string]*Logger)
	subsystemLoggersLock sync.Mutex
	defaultLevel         = LevelInfo
)

// RegisterSubSystem returns the logger of the given subsystem, creating it
// if it doesn't already exist. Loggers registered before the log level is
// set pick it up once SetLogLevels is called.
func RegisterSubSystem(subsystem string) *Logger {
	subsystemLoggersLock.Lock()
	defer subsystemLoggersLock.Unlock()

	logger, exists := subsystemLoggers[subsystem]
	if !exists {
		logger = BackendLog.Logger(subsystem)
		logger.SetLevel(defaultLevel)
		subsystemLoggers[subsystem] = logger
	}
	return logger
}

// InitLog makes the backend log write to logFile, to errLogFile from the
// warn level, and to stdout from the info level, and starts it. It exits
// the process if any of the files cannot be opened.
func InitLog(logFile, errLogFile string, rotation Rotation) {
	err := BackendLog.AddLogFile(logFile, LevelTrace, rotation)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error adding log file %s: %+v\n", logFile, err)
		os.Exit(1)
	}
	err = BackendLog.AddLogFile(errLogFile, LevelWarn, rotation)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error adding log file %s: %+v\n", errLogFile, err)
		os.Exit(1)
	}
	err = BackendLog.AddLogWriter(os.Stdout, LevelInfo)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error adding stdout to the logger: %+v\n", err)
		os.Exit(1)
	}
	err = BackendLog.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error starting the logger: %+v\n", err)
		os.Exit(1)
	}
}

// SetLogLevel sets the logging level for provided subsystem. Invalid
// subsystems are ignored. Uninitialized subsystems are dynamically created
// as needed.
func SetLogLevel(subsystemID string, logLevel string) error {
	level, ok := LevelFromString(logLevel)
	if !ok {
		return errors.Errorf("invalid log level %s", logLevel)
	}
	RegisterSubSystem(subsystemID).SetLevel(level)
	return nil
}

// SetLogLevels sets the log level for all subsystem loggers to the passed
// level. It also dynamically creates the subsystem loggers as needed, so it
// can be used to initialize the logging system.
func SetLogLevels(logLevel string) error {
	level, ok := LevelFromString(logLevel)
	if !ok {
		return errors.Errorf("invalid log level %s", logLevel)
	}

	subsystemLoggersLock.Lock()
	defer subsystemLoggersLock.Unlock()

	defaultLevel = level
	for _, logger := range subsystemLoggers {
		logger.SetLevel(level)
	}
	return nil
}

// SupportedSubsystems returns a sorted slice of the supported subsystems for
// logging purposes.
func SupportedSubsystems() []string {
	subsystemLoggersLock.Lock()
	defer subsystemLoggersLock.Unlock()

	subsystems := make([]string, 0, len(subsystemLoggers))
	for subsystemID := range subsystemLoggers {
		subsystems = append(subsystems, subsystemID)
	}
	sort.Strings(subsystems)
	return subsystems
}

// ParseAndSetLogLevels attempts to parse the specified debug level and set
// the levels accordingly. An appropriate error is returned if anything is
// invalid. The format is either a single level, applied to every subsystem,
// or a comma separated list of <subsystem>=<level> pairs.
func ParseAndSetLogLevels(debugLevel string) error {
	if !strings.Contains(debugLevel, ",") && !strings.Contains(debugLevel, "=") {
		return SetLogLevels(debugLevel)
	}

	for _, logLevelPair := range strings.Split(debugLevel, ",") {
		if !strings.Contains(logLevelPair, "=") {
			return errors.Errorf("the specified debug level contains an invalid "+
				"subsystem/level pair [%s]", logLevelPair)
		}

		fields := strings.Split(logLevelPair, "=")
		subsystemID, logLevel := fields[0], fields[1]
		if !subsystemExists(subsystemID) {
			return errors.Errorf("the specified subsystem [%s] is invalid -- "+
				"supported subsystems %s", subsystemID, strings.Join(SupportedSubsystems(), ", "))
		}

		err := SetLogLevel(subsystemID, logLevel)
		if err != nil {
			return err
		}
	}
	return nil
}

func subsystemExists(subsystemID string) bool {
	subsystemLoggersLock.Lock()
	defer subsystemLoggersLock.Unlock()

	_, exists := subsystemLoggers[subsystemID]
	return exists
}
