// Package moniker implements a registry of names grouped by category and commonality tier
// on top of a namespaced store (store.IStore).
//
// Every category owns three tiers: common, uncommon and rare. Each tier maps a name
// to a generated identifier (a random UUID by default). The list of categories, the
// catalogue, is persisted in the reserved "meta" namespace and is the single source
// of truth for which categories exist.
//
// Key Components:
//
//   - DB: The facade with all operations (CreateCategory, Categories, CreateName,
//     DeleteName, ListNames, NameExists). Check-then-write sequences are serialised
//     with a lockmgr.ILockManager, one key per (category, tier) and one for the catalogue.
//
//   - Bootstrap: Loads the catalogue and rebuilds the namespace handles of every
//     catalogued category before the DB accepts operations. Progress can be polled
//     with Status or awaited with Ready and Wait, also by observers that subscribe
//     after the bootstrap finished.
//
//   - NamespaceRegistry: The in-memory map of live namespace handles with an atomic
//     insert-if-absent.
//
//   - CategoryStore: Reads and appends to the catalogue.
//
//   - Errors: Typed errors matching the sentinels ErrNotFound, ErrAlreadyExists,
//     ErrInvalidArgument and ErrNotReady. ToResult turns any error into a Result
//     with a status code and a message that can be rendered to users.
//
// Example usage:
//
//	s, _ := lstore.NewLocalStore(factory)
//	database, err := moniker.Open(s)
//	if err != nil {
//		return err
//	}
//	defer database.Close()
//
//	_, _ = database.CreateCategory("Elvish")
//	err = database.CreateName("Elvish", moniker.TierRare, "Legolas")
//	fmt.Println(moniker.ToResult(err).Status) // 200
package moniker
