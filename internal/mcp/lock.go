package mcp

import (
	"path/filepath"
	"sync"
	"sync/atomic"
)

// runLock provides non-blocking lock semantics using atomic operations.
type runLock struct {
	state atomic.Int32 // 0 = unlocked, 1 = locked
}

func (l *runLock) tryAcquire() bool {
	return l.state.CompareAndSwap(0, 1)
}

func (l *runLock) release() {
	l.state.Store(0)
}

// dirLocks allows one ranking run per directory at a time
type dirLocks struct {
	locks sync.Map // cleaned path -> *runLock
}

// tryAcquire returns a release func and true when no run holds dir
func (d *dirLocks) tryAcquire(dir string) (func(), bool) {
	v, _ := d.locks.LoadOrStore(filepath.Clean(dir), &runLock{})
	l := v.(*runLock)
	if !l.tryAcquire() {
		return nil, false
	}
	return l.release, true
}
