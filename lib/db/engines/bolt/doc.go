// Package bolt implements db.KVDB on top of go.etcd.io/bbolt.
//
// A namespace path is a chain of nested buckets, so the persisted layout mirrors
// the namespace hierarchy directly: the meta namespace is the top level bucket
// "meta", a category is a top level bucket and its tiers are buckets nested in it.
// Keys are returned in bbolt's native (ascending byte) order.
//
// All data is durable once a call returns. Save writes a hot backup of the
// whole file, Load is not supported.
package bolt
