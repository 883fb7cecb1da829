package maple

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"github.com/ValentinKolb/moniker/lib/db"
	"github.com/ValentinKolb/moniker/lib/db/engines/maple/internal"
	"github.com/puzpuzpuz/xsync/v3"
	"io"
	"slices"
	"sync/atomic"
)

// --------------------------------------------------------------------------
// Constants
// --------------------------------------------------------------------------

// Constants for database behavior and structure
const (
	magicNum     = "MAPLEDB\x00" // File format identifier
	mapleVersion = 4             // Database version (4 = namespaced keys)
)

// --------------------------------------------------------------------------
// Core Maple database structure
// --------------------------------------------------------------------------

// mapleImpl implements an in-memory database organised as a set of namespaces
type mapleImpl struct {
	namespaces *xsync.MapOf[string, *internal.Namespace] // escaped path -> namespace
	sizeHint   int
	currIndex  atomic.Uint64 // Current logical write index
}

// DBOptions configures the mapleImpl behavior during initialization
type DBOptions struct {
	NamespaceSizeHint int // Expected number of keys per namespace (0 = default)
}

// DefaultOptions returns the default mapleImpl options
func DefaultOptions() *DBOptions {
	return &DBOptions{
		NamespaceSizeHint: 0,
	}
}

// --------------------------------------------------------------------------
// Initialization and Setup
// --------------------------------------------------------------------------

// NewMapleDB creates a new MapleDB instance with the specified options (optional)
//
// Thread-safety: This function is not thread-safe and should only be called once
// during initialization.
func NewMapleDB(opts *DBOptions) db.KVDB {

	// Generate default options if not provided
	if opts == nil {
		opts = DefaultOptions()
	}

	newDB := &mapleImpl{
		namespaces: xsync.NewMapOf[string, *internal.Namespace](),
		sizeHint:   opts.NamespaceSizeHint,
	}
	newDB.currIndex.Store(0)

	return newDB
}

// namespace returns the namespace for the path. If create is true, the namespace
// (and every parent namespace) is created when missing.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (maple *mapleImpl) namespace(path db.Path, create bool) (*internal.Namespace, bool) {
	if !create {
		return maple.namespaces.Load(path.String())
	}

	var ns *internal.Namespace
	for i := 1; i <= len(path); i++ {
		ns, _ = maple.namespaces.LoadOrCompute(path[:i].String(), func() *internal.Namespace {
			return internal.NewNamespace(maple.sizeHint)
		})
	}
	return ns, true
}

// --------------------------------------------------------------------------
// Core KVDB Interface Methods - Namespace Operations
// --------------------------------------------------------------------------

// CreateNamespace creates the namespace and all its parents.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (maple *mapleImpl) CreateNamespace(path db.Path) error {
	if !path.Valid() {
		return fmt.Errorf("invalid namespace path %q", path.String())
	}
	maple.namespace(path, true)
	return nil
}

// --------------------------------------------------------------------------
// Core KVDB Interface Methods - Write Operations
// --------------------------------------------------------------------------

// Set inserts or updates an entry with the given key and value.
// If the key already exists, the old value is overwritten.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (maple *mapleImpl) Set(path db.Path, key string, value []byte) error {
	if !path.Valid() {
		return fmt.Errorf("invalid namespace path %q", path.String())
	}

	ns, _ := maple.namespace(path, true)

	// Copy value to prevent memory corruption
	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)

	ns.Data.Store(key, internal.Entry{
		Value: valueCopy,
		Index: maple.currIndex.Add(1),
	})
	return nil
}

// Delete removes an entry with the specified key. This change is immediate.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (maple *mapleImpl) Delete(path db.Path, key string) error {
	ns, ok := maple.namespace(path, false)
	if !ok {
		return nil
	}
	if _, loaded := ns.Data.LoadAndDelete(key); loaded {
		maple.currIndex.Add(1)
	}
	return nil
}

// --------------------------------------------------------------------------
// Core KVDB Interface Methods - Read Operations
// --------------------------------------------------------------------------

// Get retrieves a value for a key.
// The returned value is a copy of the stored data and therefore safe to use and modify.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (maple *mapleImpl) Get(path db.Path, key string) ([]byte, bool, error) {
	ns, ok := maple.namespace(path, false)
	if !ok {
		return nil, false, nil
	}

	e, ok := ns.Data.Load(key)
	if !ok {
		return nil, false, nil
	}

	data := make([]byte, len(e.Value))
	copy(data, e.Value)
	return data, true, nil
}

// Keys returns all keys of a namespace, sorted ascending.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
// Writes that happen during the call may or may not be visible.
func (maple *mapleImpl) Keys(path db.Path) ([]string, error) {
	ns, ok := maple.namespace(path, false)
	if !ok {
		return []string{}, nil
	}

	keys := make([]string, 0, ns.Size())
	ns.Data.Range(func(key string, _ internal.Entry) bool {
		keys = append(keys, key)
		return true
	})
	slices.Sort(keys)
	return keys, nil
}

// --------------------------------------------------------------------------
// Persistence Operations
// --------------------------------------------------------------------------

// Save persists the database to the writer
// Concurrent reading and writing is allowed during Save operation
//
// Thread-safety: This function allows concurrent operations with all other functions
// except Load. It takes snapshots of the data without blocking modifications.
func (maple *mapleImpl) Save(w io.Writer) error {
	// Use a buffered writer for better performance
	bw := bufio.NewWriterSize(w, 1024*1024) // 1 MB buffer

	type EntryToSave struct {
		key   string
		entry internal.Entry
	}
	type NamespaceToSave struct {
		path    string
		entries []EntryToSave
	}

	// Collect snapshots of all namespaces
	var snapshot []NamespaceToSave
	maple.namespaces.Range(func(path string, ns *internal.Namespace) bool {
		nsSave := NamespaceToSave{path: path}
		ns.Data.Range(func(key string, entry internal.Entry) bool {
			// Create deep copy
			entryCopy := internal.Entry{
				Index: entry.Index,
				Value: make([]byte, len(entry.Value)),
			}
			copy(entryCopy.Value, entry.Value)

			nsSave.entries = append(nsSave.entries, EntryToSave{key, entryCopy})
			return true
		})
		snapshot = append(snapshot, nsSave)
		return true
	})

	// Write file header
	if _, err := bw.WriteString(magicNum); err != nil {
		return err
	}

	// Write maple version
	if err := binary.Write(bw, binary.LittleEndian, uint8(mapleVersion)); err != nil {
		return err
	}

	// Write current write index
	if err := binary.Write(bw, binary.LittleEndian, maple.currIndex.Load()); err != nil {
		return err
	}

	// Write total namespace count
	if err := binary.Write(bw, binary.LittleEndian, uint64(len(snapshot))); err != nil {
		return err
	}

	for _, ns := range snapshot {
		// Write namespace path
		if err := writeString(bw, ns.path); err != nil {
			return err
		}

		// Write entry count
		if err := binary.Write(bw, binary.LittleEndian, uint64(len(ns.entries))); err != nil {
			return err
		}

		for _, item := range ns.entries {
			// Write key
			if err := writeString(bw, item.key); err != nil {
				return err
			}

			// Write created index
			if err := binary.Write(bw, binary.LittleEndian, item.entry.Index); err != nil {
				return err
			}

			// Write value length
			valueLen := uint32(len(item.entry.Value))
			if err := binary.Write(bw, binary.LittleEndian, valueLen); err != nil {
				return err
			}

			// Write value bytes
			if _, err := bw.Write(item.entry.Value); err != nil {
				return err
			}
		}
	}

	// Flush buffer to ensure all data is written
	return bw.Flush()
}

// Load restores a database from the reader. All existing data is replaced.
//
// Thread-safety: This function is not thread-safe and should not be called concurrently
func (maple *mapleImpl) Load(r io.Reader) error {

	// Use a buffered reader for better performance
	br := bufio.NewReaderSize(r, 1024*1024) // 1 MB buffer

	// Read and verify magic number
	magicBytes := make([]byte, len(magicNum))
	if _, err := io.ReadFull(br, magicBytes); err != nil {
		return err
	}

	if string(magicBytes) != magicNum {
		return fmt.Errorf("invalid file format: magic number mismatch")
	}

	// Read and verify version
	var version uint8
	if err := binary.Read(br, binary.LittleEndian, &version); err != nil {
		return err
	}

	if int(version) != mapleVersion {
		return fmt.Errorf("unsupported version: %d (expected %d)", version, mapleVersion)
	}

	// Read write index
	var writeIndex uint64
	if err := binary.Read(br, binary.LittleEndian, &writeIndex); err != nil {
		return err
	}

	// Read namespace count
	var nsCount uint64
	if err := binary.Read(br, binary.LittleEndian, &nsCount); err != nil {
		return err
	}

	namespaces := xsync.NewMapOf[string, *internal.Namespace]()

	for i := uint64(0); i < nsCount; i++ {
		path, err := readString(br)
		if err != nil {
			return err
		}

		var entryCount uint64
		if err := binary.Read(br, binary.LittleEndian, &entryCount); err != nil {
			return err
		}

		ns := internal.NewNamespace(int(entryCount))
		for j := uint64(0); j < entryCount; j++ {
			key, err := readString(br)
			if err != nil {
				return err
			}

			var index uint64
			if err := binary.Read(br, binary.LittleEndian, &index); err != nil {
				return err
			}

			var valueLen uint32
			if err := binary.Read(br, binary.LittleEndian, &valueLen); err != nil {
				return err
			}

			value := make([]byte, valueLen)
			if _, err := io.ReadFull(br, value); err != nil {
				return err
			}

			ns.Data.Store(key, internal.Entry{Value: value, Index: index})
		}
		namespaces.Store(path, ns)
	}

	maple.namespaces = namespaces
	maple.currIndex.Store(writeIndex)

	return nil
}

// writeString writes a length prefixed string
func writeString(w io.Writer, s string) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

// readString reads a length prefixed string
func readString(r io.Reader) (string, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", err
	}
	return string(b), nil
}

// --------------------------------------------------------------------------
// KVDB Interface Implementation - Features and Metadata
// --------------------------------------------------------------------------

// GetInfo returns statistics about the database
func (maple *mapleImpl) GetInfo() db.DatabaseInfo {

	var (
		sizeBytes      int
		entryCount     int
		namespaceCount int
	)

	entryOverhead := 16 // 8 bytes index, 8 bytes slice header estimate
	maple.namespaces.Range(func(_ string, ns *internal.Namespace) bool {
		namespaceCount++
		ns.Data.Range(func(key string, e internal.Entry) bool {
			entryCount++
			sizeBytes += len(key) + len(e.Value) + entryOverhead
			return true
		})
		return true
	})

	// Metadata for this specific database implementation
	meta := &struct {
		CurrentWriteIndex uint64 `json:"current_write_index"`
		NamespaceCount    int    `json:"namespace_count"`
		EntryCount        int    `json:"entry_count"`
		Info              string `json:"info"`
	}{
		CurrentWriteIndex: maple.currIndex.Load(),
		NamespaceCount:    namespaceCount,
		EntryCount:        entryCount,
		Info:              "SizeBytes is an estimate and does not include map overhead.",
	}

	return db.DatabaseInfo{
		SizeBytes: sizeBytes,
		DbType:    db.ImplMaple,
		SupportedFeatures: []db.Feature{
			db.FeatureSet, db.FeatureGet, db.FeatureDelete,
			db.FeatureKeys, db.FeatureNamespaces,
			db.FeatureSave, db.FeatureLoad,
		},
		Metadata: meta,
	}
}

// SupportsFeature checks if this implementation supports a specific KVDB feature
func (maple *mapleImpl) SupportsFeature(feature db.Feature) bool {
	supportedFeatures := db.FeatureSet |
		db.FeatureGet |
		db.FeatureDelete |
		db.FeatureKeys |
		db.FeatureNamespaces |
		db.FeatureSave |
		db.FeatureLoad
	return supportedFeatures&feature == feature
}

// Close is a no-op, the data is dropped with the instance
func (maple *mapleImpl) Close() error {
	return nil
}
