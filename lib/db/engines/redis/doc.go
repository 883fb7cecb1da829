// Package redis implements db.KVDB on a redis server using go-redis.
//
// Each namespace is stored as one redis hash named "<prefix>:<escaped path>".
// Nested namespaces are separate hashes, so they never appear as fields of
// their parent. Keys are returned sorted because hash fields are unordered.
//
// Save and Load are not supported, durability is left to the redis server.
package redis
