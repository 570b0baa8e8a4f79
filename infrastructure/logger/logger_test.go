package logger

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

type bufferWriteCloser struct {
	sync.Mutex
	bytes.Buffer
}

func (b *bufferWriteCloser) Write(p []byte) (int, error) {
	b.Lock()
	defer b.Unlock()
	return b.Buffer.Write(p)
}

func (b *bufferWriteCloser) Close() error { return nil }

func (b *bufferWriteCloser) String() string {
	b.Lock()
	defer b.Unlock()
	return b.Buffer.String()
}

func TestLoggerLevels(t *testing.T) {
	backend := NewBackendWithFlags(0)
	writer := &bufferWriteCloser{}
	err := backend.AddLogWriter(writer, LevelDebug)
	if err != nil {
		t.Fatalf("AddLogWriter: %+v", err)
	}
	err = backend.Run()
	if err != nil {
		t.Fatalf("Run: %+v", err)
	}

	log := backend.Logger("TEST")
	log.SetLevel(LevelInfo)
	log.Debugf("hidden %d", 1)
	log.Infof("shown %d", 2)
	log.Tracef("hidden %d", 3)
	log.Warnf("shown %d", 4)
	backend.Close()

	output := writer.String()
	if strings.Contains(output, "hidden") {
		t.Fatalf("Output contains messages below the logger level: %s", output)
	}
	if !strings.Contains(output, "[INF] TEST: shown 2") {
		t.Fatalf("Output is missing the info message: %s", output)
	}
	if !strings.Contains(output, "[WRN] TEST: shown 4") {
		t.Fatalf("Output is missing the warning message: %s", output)
	}

	// Logging after close must not panic
	log.Infof("after close")
}

func TestParseAndSetLogLevels(t *testing.T) {
	log := RegisterSubSystem("PRSE")
	err := ParseAndSetLogLevels("PRSE=trace")
	if err != nil {
		t.Fatalf("ParseAndSetLogLevels: %+v", err)
	}
	if log.Level() != LevelTrace {
		t.Fatalf("Unexpected level. Want: %s, got: %s", LevelTrace, log.Level())
	}

	err = ParseAndSetLogLevels("NOSUCHSUBSYSTEM=trace,PRSE=debug")
	if err == nil {
		t.Fatalf("ParseAndSetLogLevels unexpectedly accepted an unknown subsystem")
	}

	err = ParseAndSetLogLevels("not-a-level")
	if err == nil {
		t.Fatalf("ParseAndSetLogLevels unexpectedly accepted an invalid level")
	}

	err = ParseAndSetLogLevels("warn")
	if err != nil {
		t.Fatalf("ParseAndSetLogLevels: %+v", err)
	}
	if log.Level() != LevelWarn {
		t.Fatalf("Unexpected level. Want: %s, got: %s", LevelWarn, log.Level())
	}
}

func TestLevelFromString(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
		ok       bool
	}{
		{"trace", LevelTrace, true},
		{"DBG", LevelDebug, true},
		{"Warn", LevelWarn, true},
		{"crt", LevelCritical, true},
		{"off", LevelOff, true},
		{"loud", LevelInfo, false},
	}
	for _, test := range tests {
		level, ok := LevelFromString(test.input)
		if level != test.expected || ok != test.ok {
			t.Errorf("LevelFromString(%q): expected (%s, %t), got (%s, %t)", test.input,
				test.expected, test.ok, level, ok)
		}
	}
}

func TestAddLogFileRotates(t *testing.T) {
	logDir, err := ioutil.TempDir("", "TestAddLogFileRotates")
	if err != nil {
		t.Fatalf("TempDir: %s", err)
	}
	defer os.RemoveAll(logDir)

	backend := NewBackendWithFlags(0)
	logFile := filepath.Join(logDir, "nested", "test.log")
	err = backend.AddLogFile(logFile, LevelInfo, Rotation{ThresholdKB: 1, MaxRolls: 2})
	if err != nil {
		t.Fatalf("AddLogFile: %+v", err)
	}
	err = backend.Run()
	if err != nil {
		t.Fatalf("Run: %+v", err)
	}
	err = backend.AddLogWriter(&bufferWriteCloser{}, LevelInfo)
	if err == nil {
		t.Fatalf("expected adding a writer to a running backend to fail")
	}

	log := backend.Logger("ROTA")
	log.SetLevel(LevelInfo)
	for i := 0; i < 100; i++ {
		log.Infof("line %d of a log that is long enough to be rotated", i)
	}
	backend.Close()

	_, err = os.Stat(logFile)
	if err != nil {
		t.Fatalf("expected %s to exist: %s", logFile, err)
	}
}
