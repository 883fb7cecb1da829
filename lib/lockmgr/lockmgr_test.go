package lockmgr

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestLockExcludes(t *testing.T) {
	lm := NewLockManager()

	var (
		wg      sync.WaitGroup
		inside  atomic.Int32
		maxSeen atomic.Int32
		counter int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := lm.Lock("English/rare")
			defer unlock()

			n := inside.Add(1)
			if n > maxSeen.Load() {
				maxSeen.Store(n)
			}
			counter++
			inside.Add(-1)
		}()
	}
	wg.Wait()

	if maxSeen.Load() != 1 {
		t.Errorf("Expected at most one holder at a time, saw %d", maxSeen.Load())
	}
	if counter != 50 {
		t.Errorf("Expected counter 50, got %d", counter)
	}
	if lm.Len() != 0 {
		t.Errorf("Expected no tracked keys after all unlocks, got %d", lm.Len())
	}
}

func TestDifferentKeysDoNotBlock(t *testing.T) {
	lm := NewLockManager()

	unlockA := lm.Lock("English/rare")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlock := lm.Lock("English/common")
		unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Lock on a different key was blocked")
	}
}

func TestTryLock(t *testing.T) {
	lm := NewLockManager()

	unlock, ok := lm.TryLock("meta")
	if !ok {
		t.Fatalf("TryLock on a free key should succeed")
	}

	if _, ok := lm.TryLock("meta"); ok {
		t.Errorf("TryLock on a held key should fail")
	}
	if lm.Len() != 1 {
		t.Errorf("Failed TryLock should not leak an entry, got %d keys", lm.Len())
	}

	unlock()
	// unlocking twice is a no-op
	unlock()

	unlock, ok = lm.TryLock("meta")
	if !ok {
		t.Errorf("TryLock after unlock should succeed")
	}
	unlock()

	if lm.Len() != 0 {
		t.Errorf("Expected no tracked keys, got %d", lm.Len())
	}
}

func TestLockWaits(t *testing.T) {
	lm := NewLockManager()

	unlock := lm.Lock("meta")

	acquired := make(chan struct{})
	go func() {
		u := lm.Lock("meta")
		close(acquired)
		u()
	}()

	select {
	case <-acquired:
		t.Fatalf("Second Lock should wait for the first to be released")
	case <-time.After(50 * time.Millisecond):
	}

	unlock()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatalf("Second Lock was not acquired after unlock")
	}
}
