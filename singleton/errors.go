package singleton

import (
	"errors"
	"strconv"
)

var (
	// ErrNilInit is returned by Cell.Get when the init function is nil.
	ErrNilInit = errors.New("singleton: nil init function")

	// ErrNilInstance is returned by Cell.Get when init returns a nil instance
	// together with a nil error. The cell stays empty so a later Get can retry.
	ErrNilInstance = errors.New("singleton: init returned nil instance")

	// ErrNilLoader is reported by Prime when one of the loaders is nil.
	ErrNilLoader = errors.New("singleton: nil loader")
)

// ConfigurationError is returned when a requested type does not satisfy the
// provider contract (named unexported struct whose pointer type has an
// InitSingleton() error method).
//
// Configuration failures are never cached: every request for the type runs the
// checks again and reports the same error until the type is fixed.
type ConfigurationError struct {
	// Type is the reflect string of the requested type, e.g. "mypkg.widget".
	Type string

	// Reason is a short human-readable description of the failed check.
	Reason string
}

// Error implements the error interface.
func (e ConfigurationError) Error() string {
	// Example: singleton: ineligible type "mypkg.Widget": exported type is constructible anywhere via composite literal
	return "singleton: ineligible type " + strconv.Quote(e.Type) + ": " + e.Reason
}

// ConstructionError is returned when an eligible type's InitSingleton method
// reports an error. The underlying error is available via Unwrap, so both
// errors.As on the outer type and errors.Is on the cause work.
//
// Construction failures are never cached: the slot stays empty and the next
// request for the type runs InitSingleton again on a fresh zero value.
type ConstructionError struct {
	// Type is the reflect string of the requested type.
	Type string

	// Err is the error returned by InitSingleton.
	Err error
}

// Error implements the error interface.
func (e ConstructionError) Error() string {
	// Example: singleton: construction of "mypkg.widget" failed: dial tcp: connection refused
	msg := "singleton: construction of " + strconv.Quote(e.Type) + " failed"
	if e.Err == nil {
		return msg
	}
	return msg + ": " + e.Err.Error()
}

// Unwrap returns the error reported by InitSingleton.
func (e ConstructionError) Unwrap() error { return e.Err }
