// Package db provides a standardized interface for namespaced key-value database implementations.
// It defines the KVDB interface that allows for consistent interaction with various
// database backends while abstracting implementation details.
//
// The package focuses on:
//   - A unified interface for namespaced key-value operations
//   - Feature discovery through capability flags
//   - Standardized persistence operations
//   - Metadata reporting
//
// Key Components:
//
//   - KVDB Interface: The core interface that all database implementations must satisfy.
//     It provides namespace creation (CreateNamespace), basic operations (Set, Get, Delete),
//     key enumeration (Keys), metadata retrieval (GetInfo) and persistence operations (Save, Load).
//
//   - Path: Every key lives in a namespace addressed by a Path. A Path is an ordered list of
//     names, e.g. {"English", "rare"} is the namespace "rare" nested inside "English".
//     Nested namespaces are never reported as keys of their parent.
//
//   - Feature Flags: The Feature type defines capability flags that implementations
//     can advertise through the SupportsFeature method. This allows clients to
//     discover supported operations at runtime.
//
//   - Database Information: The DatabaseInfo structure provides standardized
//     reporting on database state, including size statistics, implementation type,
//     and implementation-specific metadata.
//
// Ordering:
//
//	Keys must be returned in ascending byte order by every implementation. Engines with
//	an ordered key space (bolt, DynamoDB sort keys) return their native order, the others sort
//	before returning.
//
// Related Packages:
//
// The engines subpackages provide the implementations:
//   - maple: in-memory namespace tree with binary snapshots (Save/Load)
//   - bolt: durable single file storage based on bbolt nested buckets
//   - redis: one redis hash per namespace
//   - dynamo: single DynamoDB table, namespace path as partition key and key as sort key
//
// The testing package (github.com/ValentinKolb/moniker/lib/db/testing) provides
// standardized tests and benchmarks for database implementations that satisfy the db.KVDB interface.
package db
