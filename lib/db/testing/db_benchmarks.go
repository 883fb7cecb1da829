package testing

import (
	"fmt"
	"github.com/ValentinKolb/moniker/lib/db"
	"math/rand"
	"testing"
)

// RunKVDBBenchmarks runs all benchmarks for a key-value database implementations
func RunKVDBBenchmarks(b *testing.B, name string, factory DBFactory) {

	b.Run("Set", func(b *testing.B) {
		benchmarkSet(b, factory())
	})

	b.Run("SetExisting", func(b *testing.B) {
		benchmarkSetExisting(b, factory())
	})

	b.Run("Get", func(b *testing.B) {
		benchmarkGet(b, factory())
	})

	b.Run("Get(not)", func(b *testing.B) {
		benchmarkGetNot(b, factory())
	})

	b.Run("Keys", func(b *testing.B) {
		benchmarkKeys(b, factory())
	})

	b.Run("MixedUsage", func(b *testing.B) {
		benchmarkMixedUsage(b, factory())
	})
}

// --------------------------------------------------------------------------
// Benchmark functions
// --------------------------------------------------------------------------

var benchNamespaces = []db.Path{
	{"Bench", "common"},
	{"Bench", "uncommon"},
	{"Bench", "rare"},
}

// prepare writes numKeys keys spread over the bench namespaces
func prepare(b *testing.B, database db.KVDB, numKeys int) {
	for i := 0; i < numKeys; i++ {
		key := fmt.Sprintf("test-key-%d", i)
		value := []byte(fmt.Sprintf("test-value-%d", i))
		if err := database.Set(benchNamespaces[i%len(benchNamespaces)], key, value); err != nil {
			b.Fatalf("prepare failed: %v", err)
		}
	}
}

// Benchmark for Set operation
func benchmarkSet(b *testing.B, database db.KVDB) {

	b.Cleanup(func() {
		database.Close()
	})

	requireFeature(b, database, db.FeatureSet)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			key := fmt.Sprintf("test-key-%d", counter)
			value := []byte(fmt.Sprintf("test-value-%d", counter))
			_ = database.Set(benchNamespaces[counter%len(benchNamespaces)], key, value)
			counter++
		}
	})
}

// Benchmark for Set operation with existing keys
func benchmarkSetExisting(b *testing.B, database db.KVDB) {

	b.Cleanup(func() {
		database.Close()
	})

	requireFeature(b, database, db.FeatureSet)

	numKeys := 1000
	prepare(b, database, numKeys)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			i := counter % numKeys
			key := fmt.Sprintf("test-key-%d", i)
			value := []byte(fmt.Sprintf("test-value-%d", counter))
			_ = database.Set(benchNamespaces[i%len(benchNamespaces)], key, value)
			counter++
		}
	})
}

// Parallel benchmarking for Get operation
func benchmarkGet(b *testing.B, database db.KVDB) {

	b.Cleanup(func() {
		database.Close()
	})

	requireFeature(b, database, db.FeatureSet)
	requireFeature(b, database, db.FeatureGet)

	numKeys := 1000
	prepare(b, database, numKeys)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			i := counter % numKeys
			_, _, _ = database.Get(benchNamespaces[i%len(benchNamespaces)], fmt.Sprintf("test-key-%d", i))
			counter++
		}
	})
}

// Parallel benchmarking for Get operation on missing keys
func benchmarkGetNot(b *testing.B, database db.KVDB) {

	b.Cleanup(func() {
		database.Close()
	})

	requireFeature(b, database, db.FeatureGet)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			_, _, _ = database.Get(benchNamespaces[0], fmt.Sprintf("missing-key-%d", counter))
			counter++
		}
	})
}

// Benchmark for listing a namespace
func benchmarkKeys(b *testing.B, database db.KVDB) {

	b.Cleanup(func() {
		database.Close()
	})

	requireFeature(b, database, db.FeatureSet)
	requireFeature(b, database, db.FeatureKeys)

	prepare(b, database, 3000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = database.Keys(benchNamespaces[i%len(benchNamespaces)])
	}
}

// Benchmark for a mix of reads, writes and deletes (80% reads)
func benchmarkMixedUsage(b *testing.B, database db.KVDB) {

	b.Cleanup(func() {
		database.Close()
	})

	requireFeature(b, database, db.FeatureSet)
	requireFeature(b, database, db.FeatureGet)
	requireFeature(b, database, db.FeatureDelete)

	numKeys := 1000
	prepare(b, database, numKeys)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		r := rand.New(rand.NewSource(rand.Int63()))
		for pb.Next() {
			i := r.Intn(numKeys)
			ns := benchNamespaces[i%len(benchNamespaces)]
			key := fmt.Sprintf("test-key-%d", i)

			switch op := r.Intn(10); {
			case op < 8:
				_, _, _ = database.Get(ns, key)
			case op < 9:
				_ = database.Set(ns, key, []byte(key))
			default:
				_ = database.Delete(ns, key)
			}
		}
	})
}
