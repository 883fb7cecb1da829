package moniker

import (
	"github.com/ValentinKolb/moniker/lib/db"
	"github.com/ValentinKolb/moniker/lib/lockmgr"
	"github.com/ValentinKolb/moniker/lib/store"
	"github.com/google/uuid"
	"github.com/lni/dragonboat/v4/logger"
	"io"
	"sync"
)

var (
	log = logger.GetLogger("moniker")
)

// catalogueLock is the lockmgr key serialising category creation
const catalogueLock = "meta"

// DB is the namespace registry of categories, tiers and names on top of a store.IStore.
// A DB must be bootstrapped (Bootstrap, Start or Open) before it accepts operations,
// until then every operation fails with *NotReadyError.
//
// Thread-safety: All methods are safe for concurrent use.
type DB struct {
	store     store.IStore
	registry  *NamespaceRegistry
	catalogue *CategoryStore
	locks     lockmgr.ILockManager
	metrics   *dbMetrics
	opts      options

	// bootstrap state (see bootstrap.go)
	once   sync.Once
	mu     sync.RWMutex
	status Status
	ready  chan struct{}
}

// --------------------------------------------------------------------------
// Options
// --------------------------------------------------------------------------

type options struct {
	newID             func() string
	replayConcurrency int
}

// Option configures a DB
type Option func(*options)

// WithIDGenerator replaces the generator of name identifiers (default: random UUIDs)
func WithIDGenerator(fn func() string) Option {
	return func(o *options) {
		o.newID = fn
	}
}

// WithReplayConcurrency limits how many categories are rebuilt in parallel during bootstrap
func WithReplayConcurrency(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.replayConcurrency = n
		}
	}
}

// --------------------------------------------------------------------------
// Construction
// --------------------------------------------------------------------------

// New creates a DB on the store without bootstrapping it. The DB takes ownership of the store.
func New(s store.IStore, opts ...Option) *DB {
	o := options{
		newID:             uuid.NewString,
		replayConcurrency: 8,
	}
	for _, opt := range opts {
		opt(&o)
	}

	registry := NewNamespaceRegistry()
	return &DB{
		store:    s,
		registry: registry,
		locks:    lockmgr.NewLockManager(),
		metrics:  newDBMetrics(registry),
		opts:     o,
		status:   Status{State: StateUninitialized},
		ready:    make(chan struct{}),
	}
}

// Open creates a DB and runs the bootstrap. A failed bootstrap returns the error,
// the DB is unusable then and should be closed.
func Open(s store.IStore, opts ...Option) (*DB, error) {
	d := New(s, opts...)
	if err := d.Bootstrap(); err != nil {
		return d, err
	}
	return d, nil
}

// Close closes the underlying store
func (d *DB) Close() error {
	return d.store.Close()
}

// DBInfo returns information about the database underlying the store
func (d *DB) DBInfo() (db.DatabaseInfo, error) {
	return d.store.GetDBInfo()
}

// Backup writes a backup of the whole store to w
func (d *DB) Backup(w io.Writer) error {
	return d.store.Save(w)
}

// --------------------------------------------------------------------------
// Categories
// --------------------------------------------------------------------------

// validateCategory rejects empty and reserved category names
func validateCategory(name string) error {
	if name == "" {
		return &InvalidArgumentError{Field: "category", Reason: "name cannot be empty"}
	}
	if name == MetaNamespace {
		return &InvalidArgumentError{Field: "category", Reason: MetaNamespace + " is reserved"}
	}
	return nil
}

// buildCategory opens the namespace of a category and its three tiers.
// It neither touches the registry nor the catalogue.
func (d *DB) buildCategory(name string) (*Handle, error) {
	ns, err := d.store.OpenNamespace(name)
	if err != nil {
		return nil, err
	}

	h := &Handle{ns: ns, tiers: make(map[Tier]store.Namespace, 3)}
	for _, tier := range Tiers() {
		sub, err := ns.Sublevel(tier.String())
		if err != nil {
			return nil, err
		}
		h.tiers[tier] = sub
	}
	return h, nil
}

// CreateCategory creates a category with its three tiers, registers it and adds
// it to the catalogue. Creating an existing category fails with *AlreadyExistsError.
func (d *DB) CreateCategory(name string) (store.Namespace, error) {
	if err := d.requireReady(); err != nil {
		return nil, err
	}
	if err := validateCategory(name); err != nil {
		d.metrics.opError("create_category")
		return nil, err
	}

	unlock := d.locks.Lock(catalogueLock)
	defer unlock()

	log.Infof("creating category %s", name)

	if _, err := d.registry.Find(name); err == nil {
		d.metrics.opError("create_category")
		return nil, &AlreadyExistsError{Key: name}
	}

	h, err := d.buildCategory(name)
	if err != nil {
		d.metrics.opError("create_category")
		return nil, err
	}

	if _, err := d.registry.Add(name, h); err != nil {
		d.metrics.opError("create_category")
		return nil, err
	}

	added, err := d.catalogue.Register(name)
	if err != nil {
		// keep registry and catalogue consistent
		d.registry.Remove(name)
		d.metrics.opError("create_category")
		return nil, err
	}

	if added {
		d.mu.Lock()
		d.status.Categories = append(d.status.Categories, name)
		d.mu.Unlock()
	}
	d.metrics.categoriesCreated.Inc()
	return h.ns, nil
}

// Categories returns the catalogue in insertion order
func (d *DB) Categories() ([]string, error) {
	if err := d.requireReady(); err != nil {
		return nil, err
	}
	return d.catalogue.List()
}

// HasCategory reports whether the category is registered
func (d *DB) HasCategory(name string) bool {
	if name == MetaNamespace {
		return false
	}
	_, err := d.registry.Find(name)
	return err == nil
}

// resolve returns the handle of a category or *CategoryNotFoundError
func (d *DB) resolve(category string) (*Handle, error) {
	if category == MetaNamespace {
		return nil, &CategoryNotFoundError{Category: category}
	}
	h, err := d.registry.Find(category)
	if err != nil {
		return nil, &CategoryNotFoundError{Category: category}
	}
	return h, nil
}
