package internal

import (
	"fmt"
	"github.com/puzpuzpuz/xsync/v3"
)

// --------------------------------------------------------------------------
// Entry Type (value with metadata)
// --------------------------------------------------------------------------

// Entry stores a value together with the write index it was written at
type Entry struct {
	Value []byte // Stored data
	Index uint64 // Write index when this entry was created/updated
}

func (e Entry) String() string {
	return fmt.Sprintf("Entry{Index: %d, Len: %d}", e.Index, len(e.Value))
}

// --------------------------------------------------------------------------
// Namespace Type (partition of the database)
// --------------------------------------------------------------------------

// Namespace holds the entries of a single namespace path.
// Nested namespaces are separate Namespace instances, so they never show up as keys.
type Namespace struct {
	Data *xsync.MapOf[string, Entry] // Map of key -> entry
}

// NewNamespace creates a new empty namespace. sizeHint is used to presize the map (0 = default)
func NewNamespace(sizeHint int) *Namespace {
	if sizeHint > 0 {
		return &Namespace{Data: xsync.NewMapOf[string, Entry](xsync.WithPresize(sizeHint))}
	}
	return &Namespace{Data: xsync.NewMapOf[string, Entry]()}
}

// Size returns the number of entries in the namespace
func (n *Namespace) Size() int {
	return n.Data.Size()
}
