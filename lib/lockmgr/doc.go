// Package lockmgr implements keyed mutual exclusion inside a single process.
//
// Every key has its own mutex, so callers that lock different keys never block
// each other. Mutexes are created on first use and dropped again once no caller
// holds or waits for them, the number of tracked keys therefore stays bounded by
// the number of concurrent users.
//
// Implementation Approach:
//
//	The mutexes live in an xsync.MapOf. Creating, reference counting and removing
//	an entry all happen inside a single Compute call per step, so an entry is never
//	removed while another goroutine is about to lock it.
//
// Thread Safety:
//
//	All methods are safe for concurrent use. A lock is not reentrant: locking a
//	key twice from the same goroutine without unlocking deadlocks.
//
// Usage Example:
//
//	locks := lockmgr.NewLockManager()
//
//	unlock := locks.Lock("English/rare")
//	defer unlock()
//	// read-check-write on the English/rare namespace
package lockmgr
