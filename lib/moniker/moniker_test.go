package moniker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ValentinKolb/moniker/lib/db"
	"github.com/ValentinKolb/moniker/lib/db/engines/bolt"
	"github.com/ValentinKolb/moniker/lib/db/engines/maple"
	redisengine "github.com/ValentinKolb/moniker/lib/db/engines/redis"
	"github.com/ValentinKolb/moniker/lib/store"
	"github.com/ValentinKolb/moniker/lib/store/lstore"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --------------------------------------------------------------------------
// Helper types
// --------------------------------------------------------------------------

// countingDB counts writes per namespace path and key, can fail writes to the meta namespace
// and survives Close so one engine can back several stores.
type countingDB struct {
	db.KVDB
	mu       sync.Mutex
	writes   map[string]int
	failMeta atomic.Bool
}

func newCountingDB() *countingDB {
	return &countingDB{KVDB: maple.NewMapleDB(nil), writes: make(map[string]int)}
}

func (c *countingDB) Set(path db.Path, key string, value []byte) error {
	if c.failMeta.Load() && path.String() == MetaNamespace {
		return errors.New("disk full")
	}
	c.mu.Lock()
	c.writes[path.Child(key).String()]++
	c.mu.Unlock()
	return c.KVDB.Set(path, key, value)
}

func (c *countingDB) Close() error { return nil }

func (c *countingDB) count(path db.Path, key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writes[path.Child(key).String()]
}

// brokenDB fails every read
type brokenDB struct {
	db.KVDB
}

func (b *brokenDB) Get(db.Path, string) ([]byte, bool, error) {
	return nil, false, errors.New("i/o error")
}

func newStore(t *testing.T, database db.KVDB) store.IStore {
	t.Helper()
	s, err := lstore.NewLocalStore(func() (db.KVDB, error) { return database, nil })
	require.NoError(t, err)
	return s
}

// openDB opens a bootstrapped DB on a fresh in-memory engine
func openDB(t *testing.T, opts ...Option) *DB {
	t.Helper()
	d, err := Open(newStore(t, maple.NewMapleDB(nil)), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return d
}

// --------------------------------------------------------------------------
// Bootstrap
// --------------------------------------------------------------------------

func TestBootstrapFirstRun(t *testing.T) {
	d := openDB(t)

	st := d.Status()
	assert.Equal(t, StateReady, st.State)
	assert.NoError(t, st.Err)
	assert.Empty(t, st.Categories)

	categories, err := d.Categories()
	require.NoError(t, err)
	assert.Equal(t, []string{}, categories)

	_, err = d.registry.Find(MetaNamespace)
	assert.NoError(t, err, "meta namespace should be registered")
}

func TestBootstrapIdempotentInit(t *testing.T) {
	engine := newCountingDB()

	for i := 0; i < 2; i++ {
		d, err := Open(newStore(t, engine))
		require.NoError(t, err)

		categories, err := d.Categories()
		require.NoError(t, err)
		assert.Equal(t, []string{}, categories, "run %d", i)
		require.NoError(t, d.Close())
	}

	assert.Equal(t, 1, engine.count(db.Path{MetaNamespace}, CatalogueKey),
		"catalogue should be initialised exactly once")
}

func TestBootstrapRunsOnce(t *testing.T) {
	engine := newCountingDB()
	d := New(newStore(t, engine))

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, d.Bootstrap())
		}()
	}
	wg.Wait()

	assert.Equal(t, StateReady, d.Status().State)
	assert.Equal(t, 1, engine.count(db.Path{MetaNamespace}, CatalogueKey))
}

func TestBootstrapReplay(t *testing.T) {
	engine := newCountingDB()

	d, err := Open(newStore(t, engine))
	require.NoError(t, err)
	for _, c := range []string{"English", "French", "Elvish"} {
		_, err := d.CreateCategory(c)
		require.NoError(t, err)
	}
	require.NoError(t, d.CreateName("Elvish", TierRare, "Legolas"))
	require.NoError(t, d.Close())
	catalogueWrites := engine.count(db.Path{MetaNamespace}, CatalogueKey)

	d, err = Open(newStore(t, engine), WithReplayConcurrency(2))
	require.NoError(t, err)
	defer d.Close()

	st := d.Status()
	assert.Equal(t, StateReady, st.State)
	assert.Equal(t, []string{"English", "French", "Elvish"}, st.Categories)

	for _, c := range []string{"English", "French", "Elvish"} {
		_, err := d.registry.Find(c)
		assert.NoError(t, err, "category %s should be registered", c)
		assert.True(t, d.HasCategory(c))
	}

	for _, tier := range Tiers() {
		names, err := d.ListNames("English", tier)
		require.NoError(t, err)
		assert.Empty(t, names)
	}

	names, err := d.ListNames("Elvish", TierRare)
	require.NoError(t, err)
	assert.Equal(t, []string{"Legolas"}, names)

	assert.Equal(t, catalogueWrites, engine.count(db.Path{MetaNamespace}, CatalogueKey),
		"replay must not write the catalogue")
}

func TestBootstrapPersistentBackend(t *testing.T) {
	file := filepath.Join(t.TempDir(), "names.db")
	open := func() *DB {
		engine, err := bolt.NewBoltDB(file, &bolt.DBOptions{NoSync: true, FileMode: 0o600})
		require.NoError(t, err)
		d, err := Open(newStore(t, engine))
		require.NoError(t, err)
		return d
	}

	d := open()
	_, err := d.CreateCategory("Norse")
	require.NoError(t, err)
	require.NoError(t, d.CreateName("Norse", TierCommon, "Erik"))
	require.NoError(t, d.CreateName("Norse", TierCommon, "Astrid"))
	require.NoError(t, d.Close())

	d = open()
	defer d.Close()

	categories, err := d.Categories()
	require.NoError(t, err)
	assert.Equal(t, []string{"Norse"}, categories)

	names, err := d.ListNames("Norse", TierCommon)
	require.NoError(t, err)
	assert.Equal(t, []string{"Astrid", "Erik"}, names)

	err = d.CreateName("Norse", TierCommon, "Erik")
	assert.True(t, errors.Is(err, ErrAlreadyExists))
}

func TestBootstrapRedisBackend(t *testing.T) {
	mr := miniredis.RunT(t)
	open := func() *DB {
		engine, err := redisengine.NewRedisDB(&redisengine.DBOptions{Addr: mr.Addr(), Prefix: "moniker"})
		require.NoError(t, err)
		d, err := Open(newStore(t, engine))
		require.NoError(t, err)
		return d
	}

	d := open()
	_, err := d.CreateCategory("Elvish")
	require.NoError(t, err)
	require.NoError(t, d.CreateName("Elvish", TierRare, "Legolas"))
	require.NoError(t, d.Close())

	d = open()
	defer d.Close()

	names, err := d.ListNames("Elvish", TierRare)
	require.NoError(t, err)
	assert.Equal(t, []string{"Legolas"}, names)
}

func TestBootstrapCatalogueReadFailure(t *testing.T) {
	d, err := Open(newStore(t, &brokenDB{KVDB: maple.NewMapleDB(nil)}))
	require.Error(t, err)
	defer d.Close()

	st := d.Status()
	assert.Equal(t, StateFailed, st.State)
	assert.Error(t, st.Err)

	select {
	case <-d.Ready():
	default:
		t.Fatal("ready channel should be closed after a failed bootstrap")
	}

	_, err = d.CreateCategory("English")
	assert.True(t, IsNotReady(err))

	// later calls report the same outcome
	assert.Error(t, d.Bootstrap())
}

func TestBootstrapReplayFailure(t *testing.T) {
	tests := []struct {
		name      string
		catalogue []string
	}{
		{"duplicate entry", []string{"English", "French", "English"}},
		{"reserved name", []string{"English", MetaNamespace}},
		{"empty name", []string{"English", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(t, maple.NewMapleDB(nil))
			meta, err := s.OpenNamespace(MetaNamespace)
			require.NoError(t, err)
			require.NoError(t, meta.Put(CatalogueKey, tt.catalogue))

			d, err := Open(s)
			require.Error(t, err)
			defer d.Close()

			assert.Equal(t, StateFailed, d.Status().State)
			_, err = d.Categories()
			assert.True(t, IsNotReady(err))
		})
	}
}

func TestNotReady(t *testing.T) {
	d := New(newStore(t, maple.NewMapleDB(nil)))
	defer d.Close()

	assert.Equal(t, StateUninitialized, d.Status().State)

	err := d.CreateName("English", TierCommon, "John")
	require.Error(t, err)
	assert.True(t, IsNotReady(err))

	res := ToResult(err)
	assert.Equal(t, 503, res.Status)
	assert.Contains(t, res.Message, "Uninitialized")

	_, err = d.ListNames("English", TierCommon)
	assert.True(t, IsNotReady(err))
}

func TestStartAndWait(t *testing.T) {
	d := New(newStore(t, maple.NewMapleDB(nil)))
	defer d.Close()

	d.Start()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	st, err := d.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateReady, st.State)

	// late subscribers observe the same outcome
	<-d.Ready()
	st, err = d.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateReady, st.State)
}

func TestWaitContextDone(t *testing.T) {
	d := New(newStore(t, maple.NewMapleDB(nil)))
	defer d.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	st, err := d.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateUninitialized, st.State)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "CatalogueEmpty", StateCatalogueEmpty.String())
	assert.Equal(t, "CategoriesReplaying", StateCategoriesReplaying.String())
	assert.Equal(t, "Unknown", State(42).String())
	assert.True(t, StateFailed.Terminal())
	assert.False(t, StateCatalogueLoading.Terminal())
}

// --------------------------------------------------------------------------
// Categories
// --------------------------------------------------------------------------

func TestCreateCategory(t *testing.T) {
	d := openDB(t)

	ns, err := d.CreateCategory("English")
	require.NoError(t, err)
	assert.Equal(t, "English", ns.Name())

	h, err := d.registry.Find("English")
	require.NoError(t, err)
	for _, tier := range Tiers() {
		sub := h.Tier(tier)
		require.NotNil(t, sub)
		assert.Equal(t, db.Path{"English", tier.String()}, sub.Path())
	}

	_, err = d.CreateCategory("English")
	assert.True(t, IsAlreadyExists(err))

	categories, err := d.Categories()
	require.NoError(t, err)
	assert.Equal(t, []string{"English"}, categories)
	assert.Equal(t, []string{"English"}, d.Status().Categories)
}

func TestCreateCategoryInvalid(t *testing.T) {
	d := openDB(t)

	for _, name := range []string{"", MetaNamespace} {
		_, err := d.CreateCategory(name)
		require.Error(t, err, "name %q", name)
		assert.True(t, IsInvalidArgument(err))
		assert.Equal(t, 400, ToResult(err).Status)
	}

	assert.False(t, d.HasCategory(MetaNamespace))
}

func TestCategoryRegistrationMonotonic(t *testing.T) {
	d := openDB(t)

	_, err := d.CreateCategory("French")
	require.NoError(t, err)

	added, err := d.catalogue.Register("French")
	require.NoError(t, err)
	assert.False(t, added)

	categories, err := d.Categories()
	require.NoError(t, err)
	assert.Equal(t, []string{"French"}, categories)
}

func TestCategoriesKeepInsertionOrder(t *testing.T) {
	d := openDB(t)

	order := []string{"Spanish", "Arabic", "Zulu", "English"}
	for _, c := range order {
		_, err := d.CreateCategory(c)
		require.NoError(t, err)
	}

	categories, err := d.Categories()
	require.NoError(t, err)
	assert.Equal(t, order, categories)
}

func TestCreateCategoryConcurrent(t *testing.T) {
	d := openDB(t)

	var (
		wg        sync.WaitGroup
		successes atomic.Int32
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// every category is created twice
			if _, err := d.CreateCategory(fmt.Sprintf("cat-%d", i%10)); err == nil {
				successes.Add(1)
			} else {
				assert.True(t, IsAlreadyExists(err))
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(10), successes.Load())

	categories, err := d.Categories()
	require.NoError(t, err)
	assert.Len(t, categories, 10)
}

func TestCreateCategoryCatalogueFailure(t *testing.T) {
	engine := newCountingDB()
	d, err := Open(newStore(t, engine))
	require.NoError(t, err)
	defer d.Close()

	engine.failMeta.Store(true)
	_, err = d.CreateCategory("Klingon")
	require.Error(t, err)
	assert.Equal(t, 500, ToResult(err).Status)
	assert.False(t, d.HasCategory("Klingon"), "registry entry should be rolled back")

	engine.failMeta.Store(false)
	_, err = d.CreateCategory("Klingon")
	require.NoError(t, err)
	assert.True(t, d.HasCategory("Klingon"))
}

// --------------------------------------------------------------------------
// Names
// --------------------------------------------------------------------------

func TestRoundTrip(t *testing.T) {
	d := openDB(t)

	_, err := d.CreateCategory("Elvish")
	require.NoError(t, err)

	require.NoError(t, d.CreateName("Elvish", TierRare, "Legolas"))

	names, err := d.ListNames("Elvish", TierRare)
	require.NoError(t, err)
	assert.Contains(t, names, "Legolas")

	exists, err := d.NameExists("Elvish", TierRare, "Legolas")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, d.DeleteName("Elvish", TierRare, "Legolas"))

	names, err = d.ListNames("Elvish", TierRare)
	require.NoError(t, err)
	assert.NotContains(t, names, "Legolas")

	exists, err = d.NameExists("Elvish", TierRare, "Legolas")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCreateNameDuplicate(t *testing.T) {
	var n atomic.Int32
	d := openDB(t, WithIDGenerator(func() string {
		return fmt.Sprintf("id-%d", n.Add(1))
	}))

	_, err := d.CreateCategory("English")
	require.NoError(t, err)

	require.NoError(t, d.CreateName("English", TierCommon, "John"))

	err = d.CreateName("English", TierCommon, "John")
	require.Error(t, err)
	var dup *NameAlreadyExistsError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "John", dup.Name)
	assert.Equal(t, TierCommon, dup.Tier)
	assert.Equal(t, 409, ToResult(err).Status)

	h, err := d.registry.Find("English")
	require.NoError(t, err)
	var id string
	require.NoError(t, h.Tier(TierCommon).Get("John", &id))
	assert.Equal(t, "id-1", id, "identifier of the first call should be kept")

	// the same name in another tier is a different entry
	require.NoError(t, d.CreateName("English", TierRare, "John"))
}

func TestCreateNameGeneratesUUIDs(t *testing.T) {
	d := openDB(t)

	_, err := d.CreateCategory("English")
	require.NoError(t, err)
	require.NoError(t, d.CreateName("English", TierCommon, "John"))
	require.NoError(t, d.CreateName("English", TierCommon, "Jane"))

	h, err := d.registry.Find("English")
	require.NoError(t, err)

	var john, jane string
	require.NoError(t, h.Tier(TierCommon).Get("John", &john))
	require.NoError(t, h.Tier(TierCommon).Get("Jane", &jane))
	assert.Len(t, john, 36)
	assert.NotEqual(t, john, jane)
}

func TestCreateNameConcurrent(t *testing.T) {
	d := openDB(t)

	_, err := d.CreateCategory("English")
	require.NoError(t, err)

	var (
		wg        sync.WaitGroup
		successes atomic.Int32
		conflicts atomic.Int32
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := d.CreateName("English", TierUncommon, "Bartholomew")
			switch {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, ErrAlreadyExists):
				conflicts.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), successes.Load())
	assert.Equal(t, int32(49), conflicts.Load())
}

func TestDeleteNameMissing(t *testing.T) {
	d := openDB(t)

	_, err := d.CreateCategory("English")
	require.NoError(t, err)

	err = d.DeleteName("English", TierCommon, "Nobody")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, store.IsNotFound(err), "cause should be the store not found error")

	var nf *NameNotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "Nobody", nf.Name)
	assert.Equal(t, 404, ToResult(err).Status)
}

func TestUnknownCategory(t *testing.T) {
	d := openDB(t)

	tests := []struct {
		name string
		call func() error
	}{
		{"CreateName", func() error { return d.CreateName("Atlantean", TierCommon, "X") }},
		{"DeleteName", func() error { return d.DeleteName("Atlantean", TierCommon, "X") }},
		{"ListNames", func() error { _, err := d.ListNames("Atlantean", TierCommon); return err }},
		{"NameExists", func() error { _, err := d.NameExists("Atlantean", TierCommon, "X"); return err }},
		{"Meta", func() error { return d.CreateName(MetaNamespace, TierCommon, "X") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.Error(t, err)
			var cnf *CategoryNotFoundError
			assert.True(t, errors.As(err, &cnf))
			assert.True(t, IsNotFound(err))
			assert.Equal(t, 404, ToResult(err).Status)
		})
	}
}

func TestInvalidNameArguments(t *testing.T) {
	d := openDB(t)

	_, err := d.CreateCategory("English")
	require.NoError(t, err)

	err = d.CreateName("English", TierCommon, "")
	assert.True(t, IsInvalidArgument(err))

	err = d.CreateName("English", Tier("legendary"), "Arthur")
	assert.True(t, IsInvalidArgument(err))

	_, err = d.ListNames("English", Tier(""))
	assert.True(t, IsInvalidArgument(err))
}

func TestListNamesSorted(t *testing.T) {
	d := openDB(t)

	_, err := d.CreateCategory("English")
	require.NoError(t, err)

	for _, name := range []string{"Zoe", "Adam", "Mia"} {
		require.NoError(t, d.CreateName("English", TierCommon, name))
	}

	names, err := d.ListNames("English", TierCommon)
	require.NoError(t, err)
	assert.Equal(t, []string{"Adam", "Mia", "Zoe"}, names)

	names, err = d.ListNames("English", TierRare)
	require.NoError(t, err)
	assert.NotNil(t, names)
	assert.Empty(t, names)
}

func TestBackup(t *testing.T) {
	d := openDB(t)

	_, err := d.CreateCategory("English")
	require.NoError(t, err)
	require.NoError(t, d.CreateName("English", TierCommon, "John"))

	var buf bytes.Buffer
	require.NoError(t, d.Backup(&buf))

	restored := maple.NewMapleDB(nil)
	require.NoError(t, restored.Load(&buf))

	r, err := Open(newStore(t, restored))
	require.NoError(t, err)
	defer r.Close()

	exists, err := r.NameExists("English", TierCommon, "John")
	require.NoError(t, err)
	assert.True(t, exists)
}

// --------------------------------------------------------------------------
// Metrics
// --------------------------------------------------------------------------

func TestWriteMetrics(t *testing.T) {
	d := openDB(t)

	_, err := d.CreateCategory("English")
	require.NoError(t, err)
	require.NoError(t, d.CreateName("English", TierCommon, "John"))
	require.NoError(t, d.DeleteName("English", TierCommon, "John"))
	_ = d.DeleteName("English", TierCommon, "John")

	var sb strings.Builder
	d.WriteMetrics(&sb)
	out := sb.String()

	assert.Contains(t, out, "moniker_categories 1")
	assert.Contains(t, out, "moniker_categories_created_total 1")
	assert.Contains(t, out, "moniker_names_created_total 1")
	assert.Contains(t, out, "moniker_names_deleted_total 1")
	assert.Contains(t, out, `moniker_errors_total{op="delete_name"} 1`)
}
