package store

import (
	"errors"
	"fmt"
	"github.com/ValentinKolb/moniker/lib/db"
	"github.com/ValentinKolb/moniker/lib/store/codec"
	"io"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// DBFactory is a function type that creates a new db used by the store.
// This is used to abstract the creation of the db from the store implementation.
type DBFactory func() (db.KVDB, error)

// IStore is the entry point to a namespaced key–value store.
// All methods return a *Error (nil on success).
type IStore interface {
	// OpenNamespace opens the top level namespace with the given name.
	// Opening a namespace is idempotent, it is created if it does not exist yet.
	OpenNamespace(name string, opts ...NamespaceOption) (ns Namespace, err error)
	// GetDBInfo returns metadata about the database underlying the store.
	// It is not guaranteed that all fields are filled in or that the information is up-to-date!
	GetDBInfo() (info db.DatabaseInfo, err error)
	// Save writes a backup of the whole store to w.
	Save(w io.Writer) (err error)
	// Close closes the underlying database.
	Close() (err error)
}

// Namespace is a handle to one namespace of the store.
// Values are encoded with the codec the namespace was opened with.
type Namespace interface {
	// Name returns the last element of the namespace path.
	Name() string
	// Path returns the full path of the namespace.
	Path() db.Path
	// Get decodes the value for a key into out.
	// A missing key fails with an error for which IsNotFound is true.
	Get(key string, out any) (err error)
	// Put encodes and stores the value for a key.
	Put(key string, value any) (err error)
	// Delete deletes a key. Deleting a missing key is not an error.
	Delete(key string) (err error)
	// Keys returns all keys of the namespace as a complete snapshot, in ascending order.
	// Nested namespaces are not included.
	Keys() (keys []string, err error)
	// Sublevel opens a namespace nested in this one.
	// Without options the sublevel uses the encoding of its parent.
	Sublevel(name string, opts ...NamespaceOption) (ns Namespace, err error)
}

// --------------------------------------------------------------------------
// Namespace Options
// --------------------------------------------------------------------------

// NamespaceOptions configures how a namespace is opened
type NamespaceOptions struct {
	Encoding codec.Encoding
}

// NamespaceOption modifies NamespaceOptions
type NamespaceOption func(*NamespaceOptions)

// WithEncoding selects the value encoding of a namespace
func WithEncoding(enc codec.Encoding) NamespaceOption {
	return func(o *NamespaceOptions) {
		o.Encoding = enc
	}
}

// DefaultNamespaceOptions stores values as structured json
func DefaultNamespaceOptions() NamespaceOptions {
	return NamespaceOptions{Encoding: codec.EncodingJSON}
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is a custom error type that wraps a return code (of type RetCode),
// an error message and optionally the error that caused it.
type Error struct {
	Code RetCode // The return code
	Msg  string  // The error message.
	Err  error   // The cause, may be nil
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("KVStoreError (code %s): %s: %v", e.Code, e.Msg, e.Err)
	}
	return fmt.Sprintf("KVStoreError (code %s): %s", e.Code, e.Msg)
}

// Unwrap returns the cause of the error
func (e *Error) Unwrap() error {
	return e.Err
}

// NotFound reports whether the error marks a missing key
func (e *Error) NotFound() bool {
	return e.Code == RetCNotFound
}

// NewError creates a new KVStoreError with the given code and message.
func NewError(code RetCode, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

// WrapError creates a new KVStoreError with the given code and message wrapping err.
func WrapError(code RetCode, msg string, err error) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
		Err:  err,
	}
}

// IsNotFound reports whether any error in err's chain is a store error marking a missing key
func IsNotFound(err error) bool {
	var storeErr *Error
	return errors.As(err, &storeErr) && storeErr.NotFound()
}

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess              RetCode = iota // 0: Command executed successfully.
	RetCInternalError                       // 1: Command failed due to an internal error.
	RetCUnsupportedOperation                // 2: Operation is not supported by underlying database.
	RetCInvalidOperation                    // 3: Invalid operation.
	RetCNotFound                            // 4: The key does not exist.
)

func (c RetCode) String() string {
	switch c {
	case RetCSuccess:
		return "Success"
	case RetCInternalError:
		return "InternalError"
	case RetCUnsupportedOperation:
		return "UnsupportedOperation"
	case RetCInvalidOperation:
		return "InvalidOperation"
	case RetCNotFound:
		return "NotFound"
	default:
		return "Unknown"
	}
}
