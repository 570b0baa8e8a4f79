package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/jrick/logrotate/rotator"
	"github.com/pkg/errors"
)

const normalLogSize = 512

// defaultFlags are read from the LOGFLAGS environment variable. It is a
// variable rather than set in init because BackendLog is initialized from it.
var defaultFlags = getDefaultFlags()

// Flags to modify Backend's behavior.
const (
	// LogFlagLongFile modifies the logger output to include full path and line number
	// of the logging callsite, e.g. /a/b/c/main.go:123.
	LogFlagLongFile uint32 = 1 << iota

	// LogFlagShortFile modifies the logger output to include filename and line number
	// of the logging callsite, e.g. main.go:123. takes precedence over LogFlagLongFile.
	LogFlagShortFile
)

// getDefaultFlags parses the comma separated LOGFLAGS environment variable
func getDefaultFlags() (flags uint32) {
	for _, f := range strings.Split(os.Getenv("LOGFLAGS"), ",") {
		switch f {
		case "longfile":
			flags |= LogFlagLongFile
		case "shortfile":
			flags |= LogFlagShortFile
		}
	}
	return
}

// logsBuffer lets subsystems keep logging while a slow writer (usually a
// rotating log file) catches up.
const logsBuffer = 64

// Backend is a logging backend. Entries of all the subsystem loggers created
// from it are written, whole, by a single goroutine to every writer whose
// level they reach.
type Backend struct {
	flag      uint32
	isRunning uint32
	isClosed  uint32
	writers   []logWriter
	writeChan chan logEntry
	syncClose sync.Mutex // used to sync that the logger finished writing everything
}

// NewBackendWithFlags creates a backend with the given flags instead of the
// ones in LOGFLAGS
func NewBackendWithFlags(flags uint32) *Backend {
	return &Backend{flag: flags, writeChan: make(chan logEntry, logsBuffer)}
}

// NewBackend creates a new logger backend.
func NewBackend() *Backend {
	return NewBackendWithFlags(defaultFlags)
}

// Rotation configures when a log file is rolled and how many rolled files
// are kept
type Rotation struct {
	ThresholdKB int64
	MaxRolls    int
}

// DefaultRotation rolls log files at 50 MB and keeps the last 4
var DefaultRotation = Rotation{ThresholdKB: 50 * 1000, MaxRolls: 4}

type logWriter struct {
	io.WriteCloser
	level Level
}

// AddLogWriter makes the backend write entries of logLevel and above to
// writer. Writers can only be added before Run.
func (b *Backend) AddLogWriter(writer io.WriteCloser, logLevel Level) error {
	if b.IsRunning() {
		return errors.New("the logger is already running")
	}
	b.writers = append(b.writers, logWriter{WriteCloser: writer, level: logLevel})
	return nil
}

// AddLogFile makes the backend write entries of logLevel and above to a
// rotated logFile, creating its directory if needed
func (b *Backend) AddLogFile(logFile string, logLevel Level, rotation Rotation) error {
	logDir, _ := filepath.Split(logFile)
	if logDir != "" {
		err := os.MkdirAll(logDir, 0700)
		if err != nil {
			return errors.Wrapf(err, "failed to create log directory %s", logDir)
		}
	}
	r, err := rotator.New(logFile, rotation.ThresholdKB, false, rotation.MaxRolls)
	if err != nil {
		return errors.Wrapf(err, "failed to create file rotator for %s", logFile)
	}
	return b.AddLogWriter(r, logLevel)
}

// Run starts writing entries in the background. It can only be called once.
func (b *Backend) Run() error {
	if !atomic.CompareAndSwapUint32(&b.isRunning, 0, 1) {
		return errors.New("the logger is already running")
	}
	// The lock is taken here so that Close always waits for the
	// writing goroutine, even if it hasn't been scheduled yet.
	b.syncClose.Lock()
	go func() {
		defer func() {
			if err := recover(); err != nil {
				_, _ = fmt.Fprintf(os.Stderr, "Fatal error in logger.Backend goroutine: %+v\n", err)
				_, _ = fmt.Fprintf(os.Stderr, "Goroutine stacktrace: %s\n", debug.Stack())
			}
		}()
		b.runBlocking()
	}()
	return nil
}

func (b *Backend) runBlocking() {
	defer atomic.StoreUint32(&b.isRunning, 0)
	defer b.syncClose.Unlock()

	for log := range b.writeChan {
		for _, writer := range b.writers {
			if log.level >= writer.level {
				_, _ = writer.Write(log.log)
			}
		}
	}
}

// IsRunning returns true if backend.Run() has been called and false if it hasn't.
func (b *Backend) IsRunning() bool {
	return atomic.LoadUint32(&b.isRunning) != 0
}

func (b *Backend) acceptsEntries() bool {
	return b.IsRunning() && atomic.LoadUint32(&b.isClosed) == 0
}

// Close flushes the pending entries and closes all writers
func (b *Backend) Close() {
	if !atomic.CompareAndSwapUint32(&b.isClosed, 0, 1) {
		return
	}
	close(b.writeChan)
	// Wait for it to finish writing using the syncClose mutex.
	b.syncClose.Lock()
	defer b.syncClose.Unlock()
	for _, writer := range b.writers {
		_ = writer.Close()
	}
}

// Logger returns a new logger for a particular subsystem that writes to the
// Backend b. A tag describes the subsystem and is included in all log
// messages. The logger is silent until its level is set.
func (b *Backend) Logger(subsystemTag string) *Logger {
	return &Logger{
		level:        uint32(LevelOff),
		subsystemTag: subsystemTag,
		backend:      b,
		writeChan:    b.writeChan,
	}
}
