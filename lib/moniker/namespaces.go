package moniker

import (
	"github.com/ValentinKolb/moniker/lib/store"
	"github.com/puzpuzpuz/xsync/v3"
	"slices"
)

// Handle is a live namespace together with the handles of its tiers.
// The meta namespace has no tiers.
type Handle struct {
	ns    store.Namespace
	tiers map[Tier]store.Namespace
}

// Namespace returns the namespace of the handle
func (h *Handle) Namespace() store.Namespace {
	return h.ns
}

// Tier returns the handle of a tier, nil if the handle has no such tier
func (h *Handle) Tier(t Tier) store.Namespace {
	return h.tiers[t]
}

// NamespaceRegistry maps registry keys (category names and "meta") to live handles.
// Keys are unique, adding a key twice fails instead of overwriting.
//
// Thread-safety: All methods are safe for concurrent use.
type NamespaceRegistry struct {
	entries *xsync.MapOf[string, *Handle]
}

// NewNamespaceRegistry creates an empty registry
func NewNamespaceRegistry() *NamespaceRegistry {
	return &NamespaceRegistry{
		entries: xsync.NewMapOf[string, *Handle](),
	}
}

// Add inserts the handle under key if the key is free.
// It fails with *AlreadyExistsError if the key is already present.
func (r *NamespaceRegistry) Add(key string, h *Handle) (*Handle, error) {
	if _, loaded := r.entries.LoadOrStore(key, h); loaded {
		return nil, &AlreadyExistsError{Key: key}
	}
	return h, nil
}

// Find returns the handle for key or *NotFoundError
func (r *NamespaceRegistry) Find(key string) (*Handle, error) {
	h, ok := r.entries.Load(key)
	if !ok {
		return nil, &NotFoundError{Key: key}
	}
	return h, nil
}

// Remove deletes key from the registry. Only used to roll back a failed Add.
func (r *NamespaceRegistry) Remove(key string) {
	r.entries.Delete(key)
}

// Keys returns all registry keys, sorted
func (r *NamespaceRegistry) Keys() []string {
	keys := make([]string, 0, r.entries.Size())
	r.entries.Range(func(key string, _ *Handle) bool {
		keys = append(keys, key)
		return true
	})
	slices.Sort(keys)
	return keys
}

// Len returns the number of registered keys
func (r *NamespaceRegistry) Len() int {
	return r.entries.Size()
}
