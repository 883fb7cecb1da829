// Package lstore implements a local, single-node key-value store based on the
// store.IStore interface. It is a thin wrapper around any db.KVDB implementation
// that adds namespace handles, value encoding and the store error codes.
// Whether data survives a restart depends on the engine: bolt, redis and dynamodb
// are durable, maple keeps everything in memory.
//
// Implementation Details:
//
//   - Namespace Handles: OpenNamespace and Sublevel create the namespace in the
//     engine (for engines that support explicit namespaces) and return a handle
//     that carries the namespace path and its codec. Handles are cheap and hold no
//     engine resources, opening the same namespace twice yields equivalent handles.
//
//   - Feature Detection: Before executing operations, the store checks if the underlying
//     db.KVDB implementation supports the requested feature through the SupportsFeature
//     method. Unsupported operations return RetCUnsupportedOperation rather than failing
//     silently or producing undefined behavior.
//
//   - Not Found: A missing key is returned as a *store.Error with RetCNotFound.
//     Any error reported by the engine is returned as RetCInternalError wrapping it.
//
// Thread Safety:
//
//	All operations are thread-safe as long as the underlying db.KVDB implementation
//	is. No operation spans more than one engine call, so sequences like
//	read-then-write need external locking (see lib/lockmgr).
//
// Usage Example:
//
//	factory := func() (db.KVDB, error) { return maple.NewMapleDB(nil), nil }
//	s, err := lstore.NewLocalStore(factory)
//
//	meta, err := s.OpenNamespace("meta")
//	err = meta.Put("categories", []string{"English"})
//
//	rare, err := english.Sublevel("rare")
//	var id string
//	err = rare.Get("Legolas", &id)
//	if store.IsNotFound(err) { ... }
package lstore
