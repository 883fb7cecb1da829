package moniker

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"
)

// State is a state of the bootstrap state machine
type State int

const (
	StateUninitialized State = iota
	StateCatalogueLoading
	StateCatalogueEmpty
	StateCategoriesReplaying
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "Uninitialized"
	case StateCatalogueLoading:
		return "CatalogueLoading"
	case StateCatalogueEmpty:
		return "CatalogueEmpty"
	case StateCategoriesReplaying:
		return "CategoriesReplaying"
	case StateReady:
		return "Ready"
	case StateFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Terminal reports whether no further transition is possible
func (s State) Terminal() bool {
	return s == StateReady || s == StateFailed
}

// Status is a snapshot of the bootstrap progress
type Status struct {
	State      State
	Categories []string // catalogued categories, set once Ready
	Err        error    // cause of Failed
}

// --------------------------------------------------------------------------
// Readiness
// --------------------------------------------------------------------------

// Status returns the current bootstrap status. It can be polled at any time.
func (d *DB) Status() Status {
	d.mu.RLock()
	defer d.mu.RUnlock()
	st := d.status
	st.Categories = slices.Clone(d.status.Categories)
	return st
}

// Ready returns a channel that is closed once the bootstrap reached Ready or Failed.
// Receivers subscribing late find it closed and read the outcome with Status.
func (d *DB) Ready() <-chan struct{} {
	return d.ready
}

// Wait blocks until the bootstrap finished or ctx is done.
// The error is the bootstrap failure or the context error.
func (d *DB) Wait(ctx context.Context) (Status, error) {
	select {
	case <-d.ready:
		st := d.Status()
		return st, st.Err
	case <-ctx.Done():
		return d.Status(), ctx.Err()
	}
}

// Start runs the bootstrap in the background. Use Ready, Wait or Status to observe it.
func (d *DB) Start() {
	go func() {
		_ = d.Bootstrap()
	}()
}

// requireReady fails with *NotReadyError unless the bootstrap reached Ready
func (d *DB) requireReady() error {
	d.mu.RLock()
	state := d.status.State
	d.mu.RUnlock()
	if state != StateReady {
		return &NotReadyError{State: state}
	}
	return nil
}

func (d *DB) transition(state State) {
	d.mu.Lock()
	defer d.mu.Unlock()
	log.Debugf("bootstrap %s -> %s", d.status.State, state)
	d.status.State = state
}

// finish moves to a terminal state and signals readiness, exactly once
func (d *DB) finish(categories []string, err error) {
	d.mu.Lock()
	if err != nil {
		d.status.State = StateFailed
		d.status.Err = err
	} else {
		d.status.State = StateReady
		d.status.Categories = categories
	}
	d.mu.Unlock()
	close(d.ready)
}

// --------------------------------------------------------------------------
// Bootstrap
// --------------------------------------------------------------------------

// Bootstrap loads the catalogue and rebuilds the namespaces of every catalogued category.
// It runs once, later calls return the outcome of the first run.
func (d *DB) Bootstrap() error {
	d.once.Do(func() {
		start := time.Now()
		categories, err := d.bootstrap()
		if err != nil {
			log.Errorf("bootstrap failed: %v", err)
		} else {
			d.metrics.bootstrapDuration.UpdateDuration(start)
			log.Infof("database ready with %d categories", len(categories))
		}
		d.finish(categories, err)
	})
	return d.Status().Err
}

func (d *DB) bootstrap() ([]string, error) {
	d.transition(StateCatalogueLoading)

	meta, err := d.store.OpenNamespace(MetaNamespace)
	if err != nil {
		return nil, fmt.Errorf("open meta namespace: %w", err)
	}
	if _, err := d.registry.Add(MetaNamespace, &Handle{ns: meta}); err != nil {
		return nil, err
	}
	d.catalogue = NewCategoryStore(meta)

	categories, initialized, err := d.catalogue.Load()
	if err != nil {
		return nil, fmt.Errorf("load catalogue: %w", err)
	}
	if initialized {
		d.transition(StateCatalogueEmpty)
		return categories, nil
	}
	if len(categories) == 0 {
		return categories, nil
	}

	d.transition(StateCategoriesReplaying)
	if err := d.replay(categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// replay rebuilds the handles of all categories concurrently. The catalogue is not written.
// Every category is attempted, all failures are returned together.
func (d *DB) replay(categories []string) error {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
		sem  = make(chan struct{}, d.opts.replayConcurrency)
	)

	for _, name := range categories {
		wg.Add(1)
		sem <- struct{}{}
		go func(name string) {
			defer wg.Done()
			defer func() { <-sem }()

			if err := d.replayCategory(name); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("replay category %s: %w", name, err))
				mu.Unlock()
			}
		}(name)
	}
	wg.Wait()

	return errors.Join(errs...)
}

func (d *DB) replayCategory(name string) error {
	if err := validateCategory(name); err != nil {
		return err
	}
	h, err := d.buildCategory(name)
	if err != nil {
		return err
	}
	_, err = d.registry.Add(name, h)
	return err
}
