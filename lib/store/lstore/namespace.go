package lstore

import (
	"fmt"
	"github.com/ValentinKolb/moniker/lib/db"
	"github.com/ValentinKolb/moniker/lib/store"
	"github.com/ValentinKolb/moniker/lib/store/codec"
	"slices"
)

// namespaceImpl is a handle to a single namespace of a storeImpl
type namespaceImpl struct {
	store *storeImpl
	path  db.Path
	codec codec.ICodec
}

// --------------------------------------------------------------------------
// Interface Methods (docu see store/interface.go)
// --------------------------------------------------------------------------

func (n *namespaceImpl) Name() string {
	return n.path[len(n.path)-1]
}

func (n *namespaceImpl) Path() db.Path {
	return slices.Clone(n.path)
}

func (n *namespaceImpl) Get(key string, out any) error {
	database := n.store.db
	if !database.SupportsFeature(db.FeatureGet) {
		return store.NewError(store.RetCUnsupportedOperation, "Get operation is not supported")
	}

	val, ok, err := database.Get(n.path, key)
	if err != nil {
		return store.WrapError(store.RetCInternalError, fmt.Sprintf("failed to get %s from %s", key, n.path), err)
	}
	if !ok {
		return store.NewError(store.RetCNotFound, fmt.Sprintf("key %s not found in %s", key, n.path))
	}

	if err := n.codec.Decode(val, out); err != nil {
		return store.WrapError(store.RetCInternalError, fmt.Sprintf("failed to decode %s from %s", key, n.path), err)
	}
	return nil
}

func (n *namespaceImpl) Put(key string, value any) error {
	database := n.store.db
	if !database.SupportsFeature(db.FeatureSet) {
		return store.NewError(store.RetCUnsupportedOperation, "Set operation is not supported")
	}

	val, err := n.codec.Encode(value)
	if err != nil {
		return store.WrapError(store.RetCInvalidOperation, fmt.Sprintf("failed to encode %s for %s", key, n.path), err)
	}

	if err := database.Set(n.path, key, val); err != nil {
		return store.WrapError(store.RetCInternalError, fmt.Sprintf("failed to put %s into %s", key, n.path), err)
	}
	return nil
}

func (n *namespaceImpl) Delete(key string) error {
	database := n.store.db
	if !database.SupportsFeature(db.FeatureDelete) {
		return store.NewError(store.RetCUnsupportedOperation, "Delete operation is not supported")
	}

	if err := database.Delete(n.path, key); err != nil {
		return store.WrapError(store.RetCInternalError, fmt.Sprintf("failed to delete %s from %s", key, n.path), err)
	}
	return nil
}

func (n *namespaceImpl) Keys() ([]string, error) {
	database := n.store.db
	if !database.SupportsFeature(db.FeatureKeys) {
		return nil, store.NewError(store.RetCUnsupportedOperation, "Keys operation is not supported")
	}

	keys, err := database.Keys(n.path)
	if err != nil {
		return nil, store.WrapError(store.RetCInternalError, fmt.Sprintf("failed to list keys of %s", n.path), err)
	}
	return keys, nil
}

func (n *namespaceImpl) Sublevel(name string, opts ...store.NamespaceOption) (store.Namespace, error) {
	defaults := store.NamespaceOptions{Encoding: n.codec.Encoding()}
	return n.store.openNamespace(n.path.Child(name), defaults, opts)
}
