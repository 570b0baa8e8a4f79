package prioritylock

import (
	"sync"
)

// Mutex guards consensus state. Unit insertion from peers takes the
// low-priority write lock, while local queries and catchup requests take
// the high-priority locks, so a stream of incoming units cannot starve
// readers. High-priority readers share the lock with each other.
//
// Every Lock method has a matching *Guard variant returning the unlock
// function, so callers can write `defer mtx.LowPriorityGuard()()`.
type Mutex struct {
	dataMutex           sync.RWMutex
	lowPriorityMutex    sync.Mutex
	highPriorityWaiting sync.WaitGroup
}

// New returns a new priority mutex
func New() *Mutex {
	return &Mutex{}
}

// LowPriorityLock waits for every pending high-priority holder and
// then locks for writing
func (mtx *Mutex) LowPriorityLock() {
	mtx.lowPriorityMutex.Lock()
	mtx.highPriorityWaiting.Wait()
	mtx.dataMutex.Lock()
}

// LowPriorityUnlock releases LowPriorityLock
func (mtx *Mutex) LowPriorityUnlock() {
	mtx.dataMutex.Unlock()
	mtx.lowPriorityMutex.Unlock()
}

// LowPriorityGuard acquires the low-priority lock and returns its release function
func (mtx *Mutex) LowPriorityGuard() (unlock func()) {
	mtx.LowPriorityLock()
	return onceFunc(mtx.LowPriorityUnlock)
}

// HighPriorityLock locks for writing ahead of any waiting low-priority
// writer. It still waits for a low-priority writer that holds the lock.
func (mtx *Mutex) HighPriorityLock() {
	mtx.highPriorityWaiting.Add(1)
	mtx.dataMutex.Lock()
}

// HighPriorityUnlock releases HighPriorityLock
func (mtx *Mutex) HighPriorityUnlock() {
	mtx.dataMutex.Unlock()
	mtx.highPriorityWaiting.Done()
}

// HighPriorityGuard acquires the high-priority lock and returns its release function
func (mtx *Mutex) HighPriorityGuard() (unlock func()) {
	mtx.HighPriorityLock()
	return onceFunc(mtx.HighPriorityUnlock)
}

// HighPriorityReadLock locks for reading ahead of any waiting
// low-priority writer
func (mtx *Mutex) HighPriorityReadLock() {
	mtx.highPriorityWaiting.Add(1)
	mtx.dataMutex.RLock()
}

// HighPriorityReadUnlock releases HighPriorityReadLock
func (mtx *Mutex) HighPriorityReadUnlock() {
	mtx.highPriorityWaiting.Done()
	mtx.dataMutex.RUnlock()
}

// HighPriorityReadGuard acquires a high-priority read lock and returns its release function
func (mtx *Mutex) HighPriorityReadGuard() (unlock func()) {
	mtx.HighPriorityReadLock()
	return onceFunc(mtx.HighPriorityReadUnlock)
}

func onceFunc(f func()) func() {
	var once sync.Once
	return func() {
		once.Do(f)
	}
}
