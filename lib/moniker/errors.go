package moniker

import (
	"errors"
	"fmt"
	"net/http"
)

// Common sentinel errors
var (
	// ErrNotFound is matched by every error about a missing namespace, category or name
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is matched by every error about a duplicate namespace, category or name
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidArgument is returned for empty or reserved names and unknown tiers
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotReady is returned for operations issued before the bootstrap finished
	ErrNotReady = errors.New("not ready")
)

// StatusError is an error that can be reported to a caller as a status code and a message
type StatusError interface {
	error
	Status() int
	Message() string
}

// --------------------------------------------------------------------------
// Namespace registry errors
// --------------------------------------------------------------------------

// NotFoundError is returned when a key is missing in the namespace registry
type NotFoundError struct {
	Key string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found in namespace registry", e.Key)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }
func (e *NotFoundError) Status() int          { return http.StatusNotFound }
func (e *NotFoundError) Message() string      { return e.Error() }

// AlreadyExistsError is returned when a key is added twice to the namespace registry
type AlreadyExistsError struct {
	Key string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s already exists", e.Key)
}

func (e *AlreadyExistsError) Is(target error) bool { return target == ErrAlreadyExists }
func (e *AlreadyExistsError) Status() int          { return http.StatusConflict }
func (e *AlreadyExistsError) Message() string      { return e.Error() }

// --------------------------------------------------------------------------
// Domain errors
// --------------------------------------------------------------------------

// CategoryNotFoundError is returned when an operation names a category that was never created
type CategoryNotFoundError struct {
	Category string
}

func (e *CategoryNotFoundError) Error() string {
	return fmt.Sprintf("category %q does not exist", e.Category)
}

func (e *CategoryNotFoundError) Is(target error) bool { return target == ErrNotFound }
func (e *CategoryNotFoundError) Status() int          { return http.StatusNotFound }
func (e *CategoryNotFoundError) Message() string      { return e.Error() }

// NameAlreadyExistsError is returned when a name is created twice in the same tier
type NameAlreadyExistsError struct {
	Category string
	Tier     Tier
	Name     string
}

func (e *NameAlreadyExistsError) Error() string {
	return fmt.Sprintf("name %q already exists in %s/%s", e.Name, e.Category, e.Tier)
}

func (e *NameAlreadyExistsError) Is(target error) bool { return target == ErrAlreadyExists }
func (e *NameAlreadyExistsError) Status() int          { return http.StatusConflict }
func (e *NameAlreadyExistsError) Message() string      { return e.Error() }

// NameNotFoundError is returned when a name that does not exist is deleted.
// It wraps the not found error reported by the store.
type NameNotFoundError struct {
	Category string
	Tier     Tier
	Name     string
	Err      error
}

func (e *NameNotFoundError) Error() string {
	return fmt.Sprintf("name %q does not exist in %s/%s", e.Name, e.Category, e.Tier)
}

func (e *NameNotFoundError) Is(target error) bool { return target == ErrNotFound }
func (e *NameNotFoundError) Unwrap() error        { return e.Err }
func (e *NameNotFoundError) Status() int          { return http.StatusNotFound }
func (e *NameNotFoundError) Message() string      { return e.Error() }

// InvalidArgumentError is returned for empty or reserved names and unknown tiers
type InvalidArgumentError struct {
	Field  string
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *InvalidArgumentError) Is(target error) bool { return target == ErrInvalidArgument }
func (e *InvalidArgumentError) Status() int          { return http.StatusBadRequest }
func (e *InvalidArgumentError) Message() string      { return e.Error() }

// NotReadyError is returned for operations issued before the bootstrap reached Ready
type NotReadyError struct {
	State State
}

func (e *NotReadyError) Error() string {
	return fmt.Sprintf("database is not ready (state: %s)", e.State)
}

func (e *NotReadyError) Is(target error) bool { return target == ErrNotReady }
func (e *NotReadyError) Status() int          { return http.StatusServiceUnavailable }
func (e *NotReadyError) Message() string      { return e.Error() }

// --------------------------------------------------------------------------
// Results
// --------------------------------------------------------------------------

// Result is the structured outcome of an operation, ready to be rendered by a host application
type Result struct {
	Status  int    `json:"status" yaml:"status"`
	Message string `json:"message" yaml:"message"`
}

// OK reports whether the result is a success
func (r Result) OK() bool {
	return r.Status < 300
}

// ToResult converts an error into a Result. Errors that do not implement StatusError
// are store failures and map to 500.
func ToResult(err error) Result {
	if err == nil {
		return Result{Status: http.StatusOK, Message: "ok"}
	}
	var se StatusError
	if errors.As(err, &se) {
		return Result{Status: se.Status(), Message: se.Message()}
	}
	return Result{Status: http.StatusInternalServerError, Message: err.Error()}
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if an error is an already exists error
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsInvalidArgument checks if an error is an invalid argument error
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

// IsNotReady checks if an error is a not ready error
func IsNotReady(err error) bool {
	return errors.Is(err, ErrNotReady)
}
