package paths

import (
	"fmt"
	"github.com/spf13/afero"
	"os"
	"path/filepath"
)

const (
	DefaultDir  = "moniker"  // directory below the home directory
	DefaultName = "names.db" // database file inside the directory

	EnvDir  = "DBPATH" // overrides DefaultDir, relative values are joined onto the home directory
	EnvName = "DBNAME" // overrides DefaultName
)

// Location is a resolved storage location
type Location struct {
	Dir  string // directory holding the database
	Name string // file name of the database inside Dir
}

// FullPath returns the path of the database file
func (l Location) FullPath() string {
	return filepath.Join(l.Dir, l.Name)
}

// Resolver resolves and creates storage locations.
// The zero value is not usable, use NewResolver.
type Resolver struct {
	Fs      afero.Fs
	HomeDir func() (string, error)
	Getenv  func(key string) string
}

// NewResolver returns a resolver working on the real file system and environment
func NewResolver() *Resolver {
	return &Resolver{
		Fs:      afero.NewOsFs(),
		HomeDir: os.UserHomeDir,
		Getenv:  os.Getenv,
	}
}

// Resolve returns the storage location.
// An empty override falls back to the environment and then to the defaults.
func (r *Resolver) Resolve(pathOverride, nameOverride string) (Location, error) {
	loc := Location{Dir: pathOverride, Name: nameOverride}

	if loc.Dir == "" {
		dir := r.Getenv(EnvDir)
		if dir == "" {
			dir = DefaultDir
		}
		if !filepath.IsAbs(dir) {
			home, err := r.HomeDir()
			if err != nil {
				return Location{}, fmt.Errorf("resolving home directory: %w", err)
			}
			dir = filepath.Join(home, dir)
		}
		loc.Dir = dir
	}

	if loc.Name == "" {
		loc.Name = r.Getenv(EnvName)
		if loc.Name == "" {
			loc.Name = DefaultName
		}
	}

	abs, err := filepath.Abs(loc.Dir)
	if err != nil {
		return Location{}, fmt.Errorf("resolving %s: %w", loc.Dir, err)
	}
	loc.Dir = abs
	return loc, nil
}

// EnsureExists creates the directory (and its parents) if it is missing.
// Any error other than a missing directory is returned, as is an existing file at dir.
func (r *Resolver) EnsureExists(dir string) error {
	info, err := r.Fs.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return fmt.Errorf("%s exists but is not a directory", dir)
		}
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("checking %s: %w", dir, err)
	}
	if err := r.Fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	return nil
}

// --------------------------------------------------------------------------
// Package level shortcuts
// --------------------------------------------------------------------------

// Resolve resolves the storage location with a default resolver
func Resolve(pathOverride, nameOverride string) (Location, error) {
	return NewResolver().Resolve(pathOverride, nameOverride)
}

// EnsureExists creates dir on the real file system if it is missing
func EnsureExists(dir string) error {
	return NewResolver().EnsureExists(dir)
}
