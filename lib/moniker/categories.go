package moniker

import (
	"github.com/ValentinKolb/moniker/lib/store"
	"slices"
	"sync"
)

const (
	// MetaNamespace is the reserved registry key and namespace holding the catalogue
	MetaNamespace = "meta"
	// CatalogueKey is the key of the catalogue inside the meta namespace
	CatalogueKey = "categories"
)

// CategoryStore owns the persisted catalogue: the ordered list of category names
// stored at CatalogueKey in the meta namespace.
//
// Thread-safety: Register is serialised by an internal mutex, so concurrent
// registrations never lose an update.
type CategoryStore struct {
	meta store.Namespace
	mu   sync.Mutex
}

// NewCategoryStore creates a category store on the meta namespace
func NewCategoryStore(meta store.Namespace) *CategoryStore {
	return &CategoryStore{meta: meta}
}

// List reads the catalogue. If the catalogue was never written the store's
// not found error is returned unchanged (store.IsNotFound), the caller decides
// whether to initialise it.
func (c *CategoryStore) List() ([]string, error) {
	var categories []string
	if err := c.meta.Get(CatalogueKey, &categories); err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []string{}
	}
	return categories, nil
}

// Init persists an empty catalogue
func (c *CategoryStore) Init() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.meta.Put(CatalogueKey, []string{})
}

// Load reads the catalogue and initialises it on first access.
// initialized reports whether the empty catalogue had to be written.
func (c *CategoryStore) Load() (categories []string, initialized bool, err error) {
	categories, err = c.List()
	if store.IsNotFound(err) {
		if err := c.Init(); err != nil {
			return nil, false, err
		}
		return []string{}, true, nil
	}
	if err != nil {
		return nil, false, err
	}
	return categories, false, nil
}

// Register appends name to the catalogue and persists it.
// A name that is already catalogued is logged and left alone, added is false then.
func (c *CategoryStore) Register(name string) (added bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	categories, err := c.List()
	if store.IsNotFound(err) {
		categories, err = []string{}, nil
	}
	if err != nil {
		return false, err
	}

	if slices.Contains(categories, name) {
		log.Warningf("category %s is already registered in the catalogue", name)
		return false, nil
	}

	categories = append(categories, name)
	if err := c.meta.Put(CatalogueKey, categories); err != nil {
		return false, err
	}
	return true, nil
}
