package prioritylock

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestGuardsReleaseOnce(t *testing.T) {
	mtx := New()

	unlock := mtx.LowPriorityGuard()
	unlock()
	unlock()

	readUnlock := mtx.HighPriorityReadGuard()
	secondReadUnlock := mtx.HighPriorityReadGuard()
	readUnlock()
	secondReadUnlock()

	done := make(chan struct{})
	go func() {
		defer mtx.HighPriorityGuard()()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatalf("HighPriorityGuard was blocked by released guards")
	}
}

func TestWriterExcludesReaders(t *testing.T) {
	mtx := New()
	var inCriticalSection int32

	unlock := mtx.LowPriorityGuard()
	atomic.StoreInt32(&inCriticalSection, 1)

	readerObserved := make(chan int32)
	go func() {
		defer mtx.HighPriorityReadGuard()()
		readerObserved <- atomic.LoadInt32(&inCriticalSection)
	}()

	time.Sleep(50 * time.Millisecond)
	atomic.StoreInt32(&inCriticalSection, 0)
	unlock()

	if observed := <-readerObserved; observed != 0 {
		t.Fatalf("Reader entered while the writer held the lock")
	}
}
