// Package store provides a high-level interface for namespaced key-value storage
// with value encoding and unified error handling. It serves as an abstraction layer
// over the lower-level db.KVDB implementations.
//
// The package focuses on:
//   - A unified interface (IStore) for opening namespaces across different backends
//   - Namespace handles that encode values (structured json by default) and nest
//   - Pluggable storage backend architecture through the DBFactory pattern
//
// Key Components:
//
//   - IStore Interface: Opens top level namespaces and exposes database metadata
//     and backups. All implementations share this common interface, allowing
//     applications to switch between storage backends without code changes.
//
//   - Namespace Interface: A handle to one namespace. Get decodes, Put encodes,
//     Keys returns a complete, ordered snapshot and Sublevel opens a nested namespace.
//     Nested namespaces are fully isolated from their parent.
//
//   - Error System: A structured error reporting mechanism using typed error codes
//     and descriptive messages. A missing key is reported with RetCNotFound, so
//     callers can branch on IsNotFound instead of matching strings. Engine failures
//     are reported as RetCInternalError and wrap the original error.
//
//   - DBFactory: A function type that abstracts the creation of underlying db.KVDB
//     instances, providing dependency injection and flexible configuration of
//     storage backends.
//
// Implementations:
//
//	- Local Store (lstore): A single process implementation that directly
//	  utilizes a db.KVDB instance.
//	  Available in the "github.com/ValentinKolb/moniker/lib/store/lstore" package.
package store
