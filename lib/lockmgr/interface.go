package lockmgr

// ILockManager defines the interface for a keyed lock provider.
type ILockManager interface {
	// Lock blocks until the lock for the given key is held.
	// The returned function releases the lock, calling it more than once is a no-op.
	Lock(key string) (unlock func())

	// TryLock acquires the lock for the given key if it is free.
	// Return a boolean indicating whether the lock was acquired and the function to release it.
	TryLock(key string) (unlock func(), ok bool)

	// Len returns the number of keys that are currently locked or waited for.
	Len() int
}
