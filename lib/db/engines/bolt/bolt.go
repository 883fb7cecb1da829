package bolt

import (
	"errors"
	"fmt"
	"github.com/ValentinKolb/moniker/lib/db"
	"go.etcd.io/bbolt"
	"io"
	"os"
	"time"
)

var errNotFound = errors.New("key not found")

// boltImpl implements db.KVDB on a single bbolt file.
// A namespace path maps to nested buckets: {"English", "rare"} is the bucket
// "rare" inside the top level bucket "English".
type boltImpl struct {
	path string
	db   *bbolt.DB
}

// DBOptions configures the bolt database
type DBOptions struct {
	Timeout  time.Duration // How long to wait for the file lock (0 = wait forever)
	NoSync   bool          // Skip fsync after every commit. Only for tests!
	FileMode os.FileMode
}

// DefaultOptions returns the default bolt options
func DefaultOptions() *DBOptions {
	return &DBOptions{
		Timeout:  1 * time.Second,
		NoSync:   false,
		FileMode: 0o600,
	}
}

// NewBoltDB opens (or creates) the database file at path.
// The directory of the file must exist.
func NewBoltDB(path string, opts *DBOptions) (db.KVDB, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	bdb, err := bbolt.Open(path, opts.FileMode, &bbolt.Options{
		Timeout: opts.Timeout,
		NoSync:  opts.NoSync,
	})
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", path, err)
	}

	return &boltImpl{
		path: path,
		db:   bdb,
	}, nil
}

// --------------------------------------------------------------------------
// Bucket helpers
// --------------------------------------------------------------------------

// bucket walks the nested buckets of the path. It returns nil if any of them is missing.
func bucket(tx *bbolt.Tx, path db.Path) *bbolt.Bucket {
	if len(path) == 0 {
		return nil
	}
	b := tx.Bucket([]byte(path[0]))
	for _, name := range path[1:] {
		if b == nil {
			return nil
		}
		b = b.Bucket([]byte(name))
	}
	return b
}

// createBucket walks the nested buckets of the path and creates every missing one.
// Must be called inside a writable transaction.
func createBucket(tx *bbolt.Tx, path db.Path) (*bbolt.Bucket, error) {
	if !path.Valid() {
		return nil, fmt.Errorf("invalid namespace path %q", path.String())
	}
	b, err := tx.CreateBucketIfNotExists([]byte(path[0]))
	if err != nil {
		return nil, fmt.Errorf("creating bucket %s: %w", path[0], err)
	}
	for _, name := range path[1:] {
		if b, err = b.CreateBucketIfNotExists([]byte(name)); err != nil {
			return nil, fmt.Errorf("creating bucket %s: %w", path.String(), err)
		}
	}
	return b, nil
}

// --------------------------------------------------------------------------
// Interface Methods (docu see db/db.go)
// --------------------------------------------------------------------------

func (b *boltImpl) CreateNamespace(path db.Path) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		_, err := createBucket(tx, path)
		return err
	})
}

func (b *boltImpl) Set(path db.Path, key string, value []byte) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bkt, err := createBucket(tx, path)
		if err != nil {
			return err
		}
		if err := bkt.Put([]byte(key), value); err != nil {
			return fmt.Errorf("putting %s in %s: %w", key, path.String(), err)
		}
		return nil
	})
}

func (b *boltImpl) Delete(path db.Path, key string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bkt := bucket(tx, path)
		if bkt == nil {
			return nil
		}
		// a nested bucket with the same name is not a key, leave it alone
		if bkt.Bucket([]byte(key)) != nil {
			return nil
		}
		return bkt.Delete([]byte(key))
	})
}

func (b *boltImpl) Get(path db.Path, key string) ([]byte, bool, error) {
	var data []byte
	err := b.db.View(func(tx *bbolt.Tx) error {
		bkt := bucket(tx, path)
		if bkt == nil {
			return errNotFound
		}

		// values are only valid during the transaction, so copy them
		val := bkt.Get([]byte(key))
		if val == nil {
			return errNotFound
		}
		data = make([]byte, len(val))
		copy(data, val)
		return nil
	})
	if errors.Is(err, errNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (b *boltImpl) Keys(path db.Path) ([]string, error) {
	keys := []string{}
	err := b.db.View(func(tx *bbolt.Tx) error {
		bkt := bucket(tx, path)
		if bkt == nil {
			return nil
		}

		cursor := bkt.Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			// v == nil marks a nested bucket
			if v == nil {
				continue
			}
			keys = append(keys, string(k))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

// Save writes a consistent copy of the whole database file to w.
// Readers and writers are not blocked while the backup is written.
func (b *boltImpl) Save(w io.Writer) error {
	return b.db.View(func(tx *bbolt.Tx) error {
		_, err := tx.WriteTo(w)
		return err
	})
}

// Load is not supported, restore a backup by replacing the database file.
func (b *boltImpl) Load(_ io.Reader) error {
	return fmt.Errorf("bolt does not support Load, replace the file %s instead", b.path)
}

func (b *boltImpl) GetInfo() db.DatabaseInfo {
	var (
		sizeBytes   int
		bucketCount int
	)
	_ = b.db.View(func(tx *bbolt.Tx) error {
		sizeBytes = int(tx.Size())
		return tx.ForEach(func(_ []byte, bkt *bbolt.Bucket) error {
			bucketCount += bkt.Stats().BucketN
			return nil
		})
	})

	meta := &struct {
		Path        string `json:"path"`
		BucketCount int    `json:"bucket_count"`
		Info        string `json:"info"`
	}{
		Path:        b.path,
		BucketCount: bucketCount,
		Info:        "SizeBytes is the size of the database file.",
	}

	return db.DatabaseInfo{
		SizeBytes: sizeBytes,
		DbType:    db.ImplBolt,
		SupportedFeatures: []db.Feature{
			db.FeatureSet, db.FeatureGet, db.FeatureDelete,
			db.FeatureKeys, db.FeatureNamespaces,
			db.FeatureSave,
		},
		Metadata: meta,
	}
}

func (b *boltImpl) SupportsFeature(feature db.Feature) bool {
	supportedFeatures := db.FeatureSet |
		db.FeatureGet |
		db.FeatureDelete |
		db.FeatureKeys |
		db.FeatureNamespaces |
		db.FeatureSave
	return supportedFeatures&feature == feature
}

func (b *boltImpl) Close() error {
	return b.db.Close()
}
