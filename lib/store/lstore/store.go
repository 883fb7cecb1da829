package lstore

import (
	"fmt"
	"github.com/ValentinKolb/moniker/lib/db"
	"github.com/ValentinKolb/moniker/lib/store"
	"github.com/ValentinKolb/moniker/lib/store/codec"
	"github.com/lni/dragonboat/v4/logger"
	"io"
)

var (
	log = logger.GetLogger("store")
)

type storeImpl struct {
	db db.KVDB
}

// NewLocalStore creates a new local store instance on top of the db created by the factory.
// This store implementation is not distributed and only works on a single node.
func NewLocalStore(factory store.DBFactory) (store.IStore, error) {
	database, err := factory()
	if err != nil {
		return nil, store.WrapError(store.RetCInternalError, "failed to create database", err)
	}
	return &storeImpl{
		db: database,
	}, nil
}

// openNamespace creates the namespace at path (if supported) and returns a handle to it.
func (s *storeImpl) openNamespace(path db.Path, defaults store.NamespaceOptions, opts []store.NamespaceOption) (store.Namespace, error) {
	if !path.Valid() {
		return nil, store.NewError(store.RetCInvalidOperation, fmt.Sprintf("invalid namespace path %q", path.String()))
	}

	options := defaults
	for _, opt := range opts {
		opt(&options)
	}
	c, err := codec.New(options.Encoding)
	if err != nil {
		return nil, store.WrapError(store.RetCInvalidOperation, "cannot open namespace "+path.String(), err)
	}

	// engines without explicit namespaces create them on first write
	if s.db.SupportsFeature(db.FeatureNamespaces) {
		if err := s.db.CreateNamespace(path); err != nil {
			return nil, store.WrapError(store.RetCInternalError, "failed to create namespace "+path.String(), err)
		}
	}

	log.Debugf("opened namespace %s (encoding %s)", path, c.Encoding())
	return &namespaceImpl{
		store: s,
		path:  path,
		codec: c,
	}, nil
}

// --------------------------------------------------------------------------
// Interface Methods (docu see store/interface.go)
// --------------------------------------------------------------------------

func (s *storeImpl) OpenNamespace(name string, opts ...store.NamespaceOption) (store.Namespace, error) {
	return s.openNamespace(db.Path{name}, store.DefaultNamespaceOptions(), opts)
}

func (s *storeImpl) GetDBInfo() (db.DatabaseInfo, error) {
	return s.db.GetInfo(), nil
}

func (s *storeImpl) Save(w io.Writer) error {
	if !s.db.SupportsFeature(db.FeatureSave) {
		return store.NewError(store.RetCUnsupportedOperation, "Save operation is not supported")
	}
	if err := s.db.Save(w); err != nil {
		return store.WrapError(store.RetCInternalError, "failed to save database", err)
	}
	return nil
}

func (s *storeImpl) Close() error {
	if err := s.db.Close(); err != nil {
		return store.WrapError(store.RetCInternalError, "failed to close database", err)
	}
	return nil
}
