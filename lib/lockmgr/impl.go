package lockmgr

import (
	"github.com/puzpuzpuz/xsync/v3"
	"sync"
)

// lockEntry is the mutex of one key. refs counts holders and waiters,
// it is only read and written inside xsync Compute calls.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

type lockMgrImpl struct {
	locks *xsync.MapOf[string, *lockEntry]
}

// NewLockManager creates a lock manager for a single process.
func NewLockManager() ILockManager {
	return &lockMgrImpl{
		locks: xsync.NewMapOf[string, *lockEntry](),
	}
}

// acquireEntry returns the entry for key and registers the caller as user of it.
func (lm *lockMgrImpl) acquireEntry(key string) *lockEntry {
	e, _ := lm.locks.Compute(key, func(old *lockEntry, loaded bool) (*lockEntry, bool) {
		if !loaded {
			old = &lockEntry{}
		}
		old.refs++
		return old, false
	})
	return e
}

// releaseEntry unregisters the caller and drops the entry once nobody uses it.
func (lm *lockMgrImpl) releaseEntry(key string) {
	lm.locks.Compute(key, func(old *lockEntry, loaded bool) (*lockEntry, bool) {
		if !loaded {
			return old, true
		}
		old.refs--
		return old, old.refs <= 0
	})
}

// --------------------------------------------------------------------------
// Interface Methods (docu see lockmgr/interface.go)
// --------------------------------------------------------------------------

func (lm *lockMgrImpl) Lock(key string) func() {
	e := lm.acquireEntry(key)
	e.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Unlock()
			lm.releaseEntry(key)
		})
	}
}

func (lm *lockMgrImpl) TryLock(key string) (func(), bool) {
	e := lm.acquireEntry(key)
	if !e.mu.TryLock() {
		lm.releaseEntry(key)
		return func() {}, false
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Unlock()
			lm.releaseEntry(key)
		})
	}, true
}

func (lm *lockMgrImpl) Len() int {
	return lm.locks.Size()
}
