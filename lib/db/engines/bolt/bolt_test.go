package bolt

import (
	"fmt"
	"github.com/ValentinKolb/moniker/lib/db"
	dbtesting "github.com/ValentinKolb/moniker/lib/db/testing"
	"os"
	"path/filepath"
	"testing"
)

// testFactory opens a fresh database file for every call
func testFactory(t testing.TB) dbtesting.DBFactory {
	dir := t.TempDir()
	n := 0
	return func() db.KVDB {
		n++
		opts := DefaultOptions()
		opts.NoSync = true
		database, err := NewBoltDB(filepath.Join(dir, fmt.Sprintf("test-%d.db", n)), opts)
		if err != nil {
			t.Fatalf("failed to open bolt db: %v", err)
		}
		return database
	}
}

func Test(t *testing.T) {
	dbtesting.RunKVDBTests(t, "BoltDB", testFactory(t))
}

func Benchmark(b *testing.B) {
	dbtesting.RunKVDBBenchmarks(b, "BoltDB", testFactory(b))
}

func TestPersistence(t *testing.T) {
	file := filepath.Join(t.TempDir(), "names.db")

	database, err := NewBoltDB(file, nil)
	if err != nil {
		t.Fatalf("failed to open bolt db: %v", err)
	}
	if err := database.Set(db.Path{"English", "rare"}, "Legolas", []byte(`"id"`)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := database.CreateNamespace(db.Path{"Elvish", "common"}); err != nil {
		t.Fatalf("CreateNamespace failed: %v", err)
	}
	if err := database.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := NewBoltDB(file, nil)
	if err != nil {
		t.Fatalf("failed to reopen bolt db: %v", err)
	}
	defer reopened.Close()

	val, exists, err := reopened.Get(db.Path{"English", "rare"}, "Legolas")
	if err != nil || !exists || string(val) != `"id"` {
		t.Errorf("Expected value to survive a reopen, got %q, %v, %v", val, exists, err)
	}
}

func TestSaveIsValidDatabase(t *testing.T) {
	dir := t.TempDir()

	database, err := NewBoltDB(filepath.Join(dir, "names.db"), nil)
	if err != nil {
		t.Fatalf("failed to open bolt db: %v", err)
	}
	defer database.Close()
	_ = database.Set(db.Path{"English", "common"}, "Sam", []byte(`"id"`))

	backup := filepath.Join(dir, "backup.db")
	f, err := os.Create(backup)
	if err != nil {
		t.Fatal(err)
	}
	if err := database.Save(f); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	_ = f.Close()

	restored, err := NewBoltDB(backup, nil)
	if err != nil {
		t.Fatalf("backup is not a valid bolt file: %v", err)
	}
	defer restored.Close()

	if _, exists, _ := restored.Get(db.Path{"English", "common"}, "Sam"); !exists {
		t.Errorf("Expected key in backup")
	}
}
