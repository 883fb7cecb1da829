package testing

import (
	"bytes"
	"fmt"
	"slices"
	"sync"
	"testing"

	"github.com/ValentinKolb/moniker/lib/db"
)

// DBFactory is a function that creates a new, empty instance of a KVDB implementation
type DBFactory func() db.KVDB

// RunKVDBTests runs a comprehensive test suite for a KVDB implementation.
func RunKVDBTests(t *testing.T, name string, factory DBFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("Set&Get", func(t *testing.T) {
			testSetGet(t, factory())
		})

		t.Run("Delete", func(t *testing.T) {
			testDelete(t, factory())
		})

		t.Run("CreateNamespace", func(t *testing.T) {
			testCreateNamespace(t, factory())
		})

		t.Run("NamespaceIsolation", func(t *testing.T) {
			testNamespaceIsolation(t, factory())
		})

		t.Run("KeysOrdered", func(t *testing.T) {
			testKeysOrdered(t, factory())
		})

		t.Run("MissingNamespace", func(t *testing.T) {
			testMissingNamespace(t, factory())
		})

		t.Run("ConcurrentWrites", func(t *testing.T) {
			testConcurrentWrites(t, factory())
		})

		t.Run("SaveLoad", func(t *testing.T) {
			testSaveLoad(t, factory)
		})

		t.Run("Info", func(t *testing.T) {
			testInfo(t, factory())
		})

		t.Run("EdgeCases", func(t *testing.T) {
			testEdgeCases(t, factory())
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

// Checks if the database supports the specified feature
// Skip the test if it is not supported
func requireFeature(t testing.TB, database db.KVDB, feature db.Feature) {
	if !database.SupportsFeature(feature) {
		t.Skipf("feature %s not supported", feature)
	}
}

// mustSet fails the test if the write is rejected
func mustSet(t testing.TB, database db.KVDB, path db.Path, key string, value []byte) {
	t.Helper()
	if err := database.Set(path, key, value); err != nil {
		t.Fatalf("Set(%s, %s) failed: %v", path, key, err)
	}
}

// mustKeys fails the test if the keys cannot be listed
func mustKeys(t testing.TB, database db.KVDB, path db.Path) []string {
	t.Helper()
	keys, err := database.Keys(path)
	if err != nil {
		t.Fatalf("Keys(%s) failed: %v", path, err)
	}
	return keys
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testSetGet(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet)
	requireFeature(t, database, db.FeatureGet)

	ns := db.Path{"English", "rare"}
	testKey := "test-key"
	testValue1 := []byte("test-value1")
	testValue2 := []byte("test-value2")

	mustSet(t, database, ns, testKey, testValue1)

	result, exists, err := database.Get(ns, testKey)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !exists {
		t.Errorf("Expected key %s to exist after Set", testKey)
	}
	if !bytes.Equal(result, testValue1) {
		t.Errorf("Expected value %s, got %s", testValue1, result)
	}

	mustSet(t, database, ns, testKey, testValue2)

	result, exists, _ = database.Get(ns, testKey)
	if !exists {
		t.Errorf("Expected key %s to exist after overwrite", testKey)
	}
	if !bytes.Equal(result, testValue2) {
		t.Errorf("Expected value %s, got %s", testValue2, result)
	}

	_, exists, err = database.Get(ns, "nonexistent-key")
	if err != nil {
		t.Errorf("Get of a missing key should not fail: %v", err)
	}
	if exists {
		t.Errorf("Expected nonexistent key to return exists=false")
	}

	retrievedValue, _, _ := database.Get(ns, testKey)
	retrievedValue[0] = 'X'

	originalValue, _, _ := database.Get(ns, testKey)
	if bytes.Equal(retrievedValue, originalValue) {
		t.Errorf("Get should return a copy, not a reference to the stored value")
	}
}

func testDelete(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet)
	requireFeature(t, database, db.FeatureGet)
	requireFeature(t, database, db.FeatureDelete)

	ns := db.Path{"English", "common"}
	mustSet(t, database, ns, "Frodo", []byte("v1"))
	mustSet(t, database, ns, "Sam", []byte("v2"))

	if err := database.Delete(ns, "Frodo"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, exists, _ := database.Get(ns, "Frodo"); exists {
		t.Errorf("Key Frodo should not exist after Delete")
	}
	if _, exists, _ := database.Get(ns, "Sam"); !exists {
		t.Errorf("Delete removed an unrelated key")
	}

	// deleting a missing key or a key in a missing namespace is not an error
	if err := database.Delete(ns, "Frodo"); err != nil {
		t.Errorf("Second Delete should be a no-op, got %v", err)
	}
	if err := database.Delete(db.Path{"Unknown"}, "Frodo"); err != nil {
		t.Errorf("Delete in a missing namespace should be a no-op, got %v", err)
	}
}

func testCreateNamespace(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureNamespaces)
	requireFeature(t, database, db.FeatureKeys)

	ns := db.Path{"Elvish", "uncommon"}
	if err := database.CreateNamespace(ns); err != nil {
		t.Fatalf("CreateNamespace failed: %v", err)
	}
	// idempotent
	if err := database.CreateNamespace(ns); err != nil {
		t.Fatalf("Second CreateNamespace failed: %v", err)
	}

	if keys := mustKeys(t, database, ns); len(keys) != 0 {
		t.Errorf("New namespace should be empty, got %v", keys)
	}
	if keys := mustKeys(t, database, ns[:1]); len(keys) != 0 {
		t.Errorf("Parent of a new namespace should be empty, got %v", keys)
	}

	for _, invalid := range []db.Path{nil, {}, {""}, {"Elvish", ""}} {
		if err := database.CreateNamespace(invalid); err == nil {
			t.Errorf("CreateNamespace(%q) should fail", []string(invalid))
		}
	}
}

func testNamespaceIsolation(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet)
	requireFeature(t, database, db.FeatureGet)
	requireFeature(t, database, db.FeatureKeys)

	parent := db.Path{"English"}
	rare := parent.Child("rare")
	common := parent.Child("common")

	mustSet(t, database, rare, "Legolas", []byte("a"))
	mustSet(t, database, common, "Legolas", []byte("b"))
	mustSet(t, database, parent, "marker", []byte("c"))

	rareVal, _, _ := database.Get(rare, "Legolas")
	commonVal, _, _ := database.Get(common, "Legolas")
	if !bytes.Equal(rareVal, []byte("a")) || !bytes.Equal(commonVal, []byte("b")) {
		t.Errorf("Same key in different namespaces must hold separate values, got %s and %s", rareVal, commonVal)
	}

	// nested namespaces never show up as keys of the parent
	if keys := mustKeys(t, database, parent); !slices.Equal(keys, []string{"marker"}) {
		t.Errorf("Expected parent keys [marker], got %v", keys)
	}
	if _, exists, _ := database.Get(parent, "rare"); exists {
		t.Errorf("Nested namespace should not be readable as a key")
	}
	if keys := mustKeys(t, database, rare); !slices.Equal(keys, []string{"Legolas"}) {
		t.Errorf("Expected rare keys [Legolas], got %v", keys)
	}

	// deleting a nested namespace's name from the parent must not touch the namespace
	if err := database.Delete(parent, "rare"); err != nil {
		t.Errorf("Delete failed: %v", err)
	}
	if keys := mustKeys(t, database, rare); !slices.Equal(keys, []string{"Legolas"}) {
		t.Errorf("Nested namespace was modified by a Delete on its parent, got %v", keys)
	}
}

func testKeysOrdered(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet)
	requireFeature(t, database, db.FeatureKeys)

	ns := db.Path{"Names", "common"}
	inserted := []string{"delta", "Alpha", "charlie", "bravo", "Zulu", "echo", "alpha"}
	for _, k := range inserted {
		mustSet(t, database, ns, k, []byte(k))
	}

	expected := slices.Clone(inserted)
	slices.Sort(expected)

	keys := mustKeys(t, database, ns)
	if !slices.Equal(keys, expected) {
		t.Errorf("Expected keys %v in ascending order, got %v", expected, keys)
	}
}

func testMissingNamespace(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureGet)
	requireFeature(t, database, db.FeatureKeys)

	ns := db.Path{"DoesNotExist", "rare"}

	keys, err := database.Keys(ns)
	if err != nil {
		t.Errorf("Keys of a missing namespace should not fail: %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("Keys of a missing namespace should be empty, got %v", keys)
	}

	_, exists, err := database.Get(ns, "anything")
	if err != nil || exists {
		t.Errorf("Get in a missing namespace should return exists=false, nil error; got %v, %v", exists, err)
	}
}

func testConcurrentWrites(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet)
	requireFeature(t, database, db.FeatureKeys)

	numWorkers := 8
	perWorker := 25
	namespaces := []db.Path{{"C", "common"}, {"C", "uncommon"}, {"C", "rare"}}

	var wg sync.WaitGroup
	errs := make(chan error, numWorkers*perWorker)
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				ns := namespaces[(w+i)%len(namespaces)]
				key := fmt.Sprintf("key-%d-%d", w, i)
				if err := database.Set(ns, key, []byte(key)); err != nil {
					errs <- err
				}
			}
		}(w)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Concurrent Set failed: %v", err)
	}

	total := 0
	for _, ns := range namespaces {
		total += len(mustKeys(t, database, ns))
	}
	if total != numWorkers*perWorker {
		t.Errorf("Expected %d keys after concurrent writes, got %d", numWorkers*perWorker, total)
	}
}

func testSaveLoad(t *testing.T, factory DBFactory) {
	database := factory()
	defer database.Close()

	requireFeature(t, database, db.FeatureSave)

	mustSet(t, database, db.Path{"meta"}, "categories", []byte(`["English"]`))
	mustSet(t, database, db.Path{"English", "rare"}, "Legolas", []byte(`"id-1"`))
	mustSet(t, database, db.Path{"English", "common"}, "Sam", []byte(`"id-2"`))

	var buf bytes.Buffer
	if err := database.Save(&buf); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatalf("Save wrote no data")
	}

	restored := factory()
	defer restored.Close()

	requireFeature(t, restored, db.FeatureLoad)

	// data that is not part of the snapshot must be dropped by Load
	mustSet(t, restored, db.Path{"Stale"}, "key", []byte("value"))

	if err := restored.Load(bytes.NewReader(buf.Bytes())); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	checks := []struct {
		path  db.Path
		key   string
		value string
	}{
		{db.Path{"meta"}, "categories", `["English"]`},
		{db.Path{"English", "rare"}, "Legolas", `"id-1"`},
		{db.Path{"English", "common"}, "Sam", `"id-2"`},
	}
	for _, c := range checks {
		val, exists, err := restored.Get(c.path, c.key)
		if err != nil || !exists {
			t.Errorf("Expected %s/%s to exist after Load (err: %v)", c.path, c.key, err)
			continue
		}
		if string(val) != c.value {
			t.Errorf("Expected %s/%s = %s, got %s", c.path, c.key, c.value, val)
		}
	}

	if _, exists, _ := restored.Get(db.Path{"Stale"}, "key"); exists {
		t.Errorf("Load should replace the existing state")
	}

	if err := restored.Load(bytes.NewReader([]byte("not a snapshot"))); err == nil {
		t.Errorf("Load of garbage should fail")
	}
}

func testInfo(t *testing.T, database db.KVDB) {
	defer database.Close()

	info := database.GetInfo()
	if info.DbType == "" {
		t.Errorf("GetInfo should report the database type")
	}
	for _, f := range info.SupportedFeatures {
		if !database.SupportsFeature(f) {
			t.Errorf("GetInfo lists feature %s but SupportsFeature returns false", f)
		}
	}
}

func testEdgeCases(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet)
	requireFeature(t, database, db.FeatureGet)
	requireFeature(t, database, db.FeatureKeys)

	// separators and unicode must survive in namespace names and keys
	ns := db.Path{"Sindarin/Quenya", "r:are"}
	keys := []string{"Galadriel", "Éowyn", "名前", "a/b", "x:y", "with space"}
	for _, k := range keys {
		mustSet(t, database, ns, k, []byte(k))
	}

	for _, k := range keys {
		val, exists, err := database.Get(ns, k)
		if err != nil || !exists {
			t.Errorf("Expected key %q to exist (err: %v)", k, err)
			continue
		}
		if string(val) != k {
			t.Errorf("Expected value %q, got %q", k, val)
		}
	}

	expected := slices.Clone(keys)
	slices.Sort(expected)
	if got := mustKeys(t, database, ns); !slices.Equal(got, expected) {
		t.Errorf("Expected keys %v, got %v", expected, got)
	}

	// a path containing a separator must not alias a nested path
	if got := mustKeys(t, database, db.Path{"Sindarin", "Quenya", "r:are"}); len(got) != 0 {
		t.Errorf("Escaped path aliased a nested path: %v", got)
	}

	// large value
	large := bytes.Repeat([]byte("x"), 256*1024)
	mustSet(t, database, ns, "large", large)
	if val, _, _ := database.Get(ns, "large"); !bytes.Equal(val, large) {
		t.Errorf("Large value was not stored correctly")
	}

	if err := database.Set(db.Path{}, "key", []byte("v")); err == nil {
		t.Errorf("Set with an empty path should fail")
	}
}
