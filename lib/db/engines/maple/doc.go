// Package maple implements the db.KVDB interface as an in-memory namespace tree.
//
// Every namespace path owns its own concurrent map (xsync.MapOf), so writes to
// different namespaces never contend and enumerating a namespace only touches
// its own entries. Nested namespaces are stored as separate maps and therefore
// never show up as keys of their parent.
//
// Each write advances a logical write index that is stored with the entry and
// reported through GetInfo.
//
// Persistence:
//
//	The engine itself keeps no data on disk. Save writes a binary snapshot
//	(magic number, version, write index, then every namespace with its entries)
//	and Load replaces the whole state with a snapshot. Save can run concurrently
//	with reads and writes, Load must not.
//
// Usage Example:
//
//	database := maple.NewMapleDB(nil)
//	_ = database.Set(db.Path{"English", "rare"}, "Legolas", []byte(`"8c1e..."`))
//	keys, _ := database.Keys(db.Path{"English", "rare"})
package maple
