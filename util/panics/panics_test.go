package panics

import (
	"os"
	"testing"
	"time"

	"github.com/witnessdag/witnessd/infrastructure/logger"
)

func TestGoroutineWrapperFuncExitsOnPanic(t *testing.T) {
	exitCodes := make(chan int, 1)
	osExit = func(code int) {
		exitCodes <- code
	}
	defer func() { osExit = os.Exit }()

	log := logger.NewBackend().Logger("TEST")
	spawn := GoroutineWrapperFunc(log)
	spawn("panicking", func() {
		panic("boom")
	})

	select {
	case code := <-exitCodes:
		if code != 1 {
			t.Fatalf("Unexpected exit code %d", code)
		}
	case <-time.After(10 * time.Second):
		t.Fatalf("Timed out waiting for the panic handler to exit")
	}
}
