package maple

import (
	"errors"
	"fmt"
	"github.com/ValentinKolb/moniker/lib/db"
	"os"
	"path/filepath"
)

// snapshotDB is a maple database backed by a snapshot file.
// The file is loaded on open and rewritten on Close.
type snapshotDB struct {
	db.KVDB
	file string
}

// OpenSnapshotFile creates a maple database and loads the snapshot at file if it exists.
// Close writes the current state back to file.
//
// Thread-safety: Only one process may use the same file at a time, there is no file lock.
func OpenSnapshotFile(file string, opts *DBOptions) (db.KVDB, error) {
	database := NewMapleDB(opts)

	f, err := os.Open(file)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// first run, start empty
	case err != nil:
		return nil, fmt.Errorf("opening snapshot %s: %w", file, err)
	default:
		defer f.Close()
		if err := database.Load(f); err != nil {
			return nil, fmt.Errorf("loading snapshot %s: %w", file, err)
		}
	}

	return &snapshotDB{KVDB: database, file: file}, nil
}

// Close writes the snapshot to a temporary file and renames it over the old one,
// so a crash while saving never leaves a truncated snapshot behind.
func (s *snapshotDB) Close() error {
	tmp, err := os.CreateTemp(filepath.Dir(s.file), filepath.Base(s.file)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := s.KVDB.Save(tmp); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("syncing snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.file); err != nil {
		return fmt.Errorf("replacing snapshot %s: %w", s.file, err)
	}
	return s.KVDB.Close()
}
