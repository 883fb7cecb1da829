package maple

import (
	"github.com/ValentinKolb/moniker/lib/db"
	dbtesting "github.com/ValentinKolb/moniker/lib/db/testing"
	"testing"
)

func Test(t *testing.T) {
	dbtesting.RunKVDBTests(t, "MapleDB", func() db.KVDB {
		return NewMapleDB(nil)
	})
}

func Benchmark(t *testing.B) {
	dbtesting.RunKVDBBenchmarks(t, "MapleDB", func() db.KVDB {
		return NewMapleDB(nil)
	})
}

func TestWriteIndex(t *testing.T) {
	database := NewMapleDB(nil).(*mapleImpl)
	ns := db.Path{"English", "rare"}

	_ = database.Set(ns, "Legolas", []byte("a"))
	_ = database.Set(ns, "Gimli", []byte("b"))
	if idx := database.currIndex.Load(); idx != 2 {
		t.Errorf("Expected write index 2, got %d", idx)
	}

	// deleting a missing key is not a write
	_ = database.Delete(ns, "Boromir")
	if idx := database.currIndex.Load(); idx != 2 {
		t.Errorf("Expected write index 2 after no-op delete, got %d", idx)
	}

	_ = database.Delete(ns, "Gimli")
	if idx := database.currIndex.Load(); idx != 3 {
		t.Errorf("Expected write index 3, got %d", idx)
	}
}

func TestCreateNamespaceCreatesParents(t *testing.T) {
	database := NewMapleDB(nil).(*mapleImpl)

	if err := database.CreateNamespace(db.Path{"English", "rare"}); err != nil {
		t.Fatalf("CreateNamespace failed: %v", err)
	}
	if _, ok := database.namespace(db.Path{"English"}, false); !ok {
		t.Errorf("Parent namespace should exist")
	}
	if size := database.namespaces.Size(); size != 2 {
		t.Errorf("Expected 2 namespaces, got %d", size)
	}
}
