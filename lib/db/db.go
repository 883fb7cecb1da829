package db

import (
	"io"
	"net/url"
	"strings"
)

// --------------------------------------------------------------------------
// Helper Types
// --------------------------------------------------------------------------

type Implementation string

const (
	ImplMaple  Implementation = "maple"
	ImplBolt   Implementation = "bolt"
	ImplRedis  Implementation = "redis"
	ImplDynamo Implementation = "dynamodb"
)

// Feature represents database features as bit flags
type Feature uint64

const (
	FeatureSet        Feature = 1 << iota // Support for Set operations
	FeatureGet                            // Support for Get operations
	FeatureDelete                         // Support for Delete operations
	FeatureKeys                           // Support for Keys operations
	FeatureNamespaces                     // Support for CreateNamespace operations
	FeatureSave                           // Support for Save operations
	FeatureLoad                           // Support for Load operations
)

func (f Feature) String() string {
	switch f {
	case FeatureSet:
		return "Set"
	case FeatureGet:
		return "Get"
	case FeatureDelete:
		return "Delete"
	case FeatureKeys:
		return "Keys"
	case FeatureNamespaces:
		return "Namespaces"
	case FeatureSave:
		return "Save"
	case FeatureLoad:
		return "Load"
	default:
		return "Unknown"
	}
}

type DatabaseInfo struct {
	SizeBytes         int            `json:"size_bytes"`
	DbType            Implementation `json:"db_type"`
	SupportedFeatures []Feature      `json:"supported_features"`
	Metadata          interface{}    `json:"metadata"`
}

// --------------------------------------------------------------------------
// Namespace Paths
// --------------------------------------------------------------------------

// Path addresses a namespace. The first element is a top level namespace,
// every following element a namespace nested inside the previous one.
type Path []string

// Child returns a new path with name appended. The receiver is not modified.
func (p Path) Child(name string) Path {
	child := make(Path, len(p), len(p)+1)
	copy(child, p)
	return append(child, name)
}

// String returns the escaped form of the path, e.g. "English/rare".
// Every element is escaped on its own, so a "/" inside a name never
// collides with the separator.
func (p Path) String() string {
	parts := make([]string, len(p))
	for i, name := range p {
		parts[i] = url.PathEscape(name)
	}
	return strings.Join(parts, "/")
}

// ParsePath is the inverse of Path.String.
func ParsePath(s string) (Path, error) {
	if s == "" {
		return Path{}, nil
	}
	parts := strings.Split(s, "/")
	p := make(Path, len(parts))
	for i, part := range parts {
		name, err := url.PathUnescape(part)
		if err != nil {
			return nil, err
		}
		p[i] = name
	}
	return p, nil
}

// Valid reports whether the path is non-empty and has no empty elements.
func (p Path) Valid() bool {
	if len(p) == 0 {
		return false
	}
	for _, name := range p {
		if name == "" {
			return false
		}
	}
	return true
}

// --------------------------------------------------------------------------
// Database Interface
// --------------------------------------------------------------------------

// KVDB defines an interface for namespaced key-value database implementations.
// Every key lives inside a namespace addressed by a Path. Namespaces can be nested
// and a namespace never lists the namespaces nested inside it as keys.
// Implementations can vary in their feature support, which can be queried with SupportsFeature.
type KVDB interface {

	// --------------------------------------------------------------------------
	// Namespace Operations
	// --------------------------------------------------------------------------

	// CreateNamespace makes sure the namespace (and all its parents) exist.
	// Calling it for an existing namespace is not an error.
	CreateNamespace(path Path) (err error)

	// --------------------------------------------------------------------------
	// Write Operations
	// --------------------------------------------------------------------------

	// Set inserts or updates an entry in the namespace. The namespace is created if it does not exist.
	Set(path Path, key string, value []byte) (err error)

	// Delete removes an entry from the namespace.
	// Deleting a key (or namespace) that does not exist is not an error.
	Delete(path Path, key string) (err error)

	// --------------------------------------------------------------------------
	// Query Operations
	// --------------------------------------------------------------------------

	// Get retrieves the value for an exact key.
	// The boolean return value indicates whether a value for the key was found.
	// A missing namespace is reported as not found.
	Get(path Path, key string) (value []byte, loaded bool, err error)

	// Keys returns all keys of the namespace in ascending byte order.
	// The result is fully materialized, a missing namespace has no keys.
	Keys(path Path) (keys []string, err error)

	// --------------------------------------------------------------------------
	// Persistence Operations
	// --------------------------------------------------------------------------

	// Save persists the current state of the database to the provided io.Writer.
	Save(w io.Writer) (err error)

	// Load restores the database state data provided by an io.Reader.
	Load(r io.Reader) (err error)

	// --------------------------------------------------------------------------
	// Feature Support
	// --------------------------------------------------------------------------

	// SupportsFeature checks if the database implementation supports the specified feature.
	// Returns true if the feature is supported, false otherwise.
	// Multiple features can be checked at once using bitwise OR (|) operator.
	SupportsFeature(feature Feature) (ok bool)

	// GetInfo returns information about the database.
	GetInfo() (info DatabaseInfo)

	// Close closes the database.
	Close() (err error)
}
