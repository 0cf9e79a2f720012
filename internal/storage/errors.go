package storage

import (
	"errors"
	"fmt"
)

// ErrKind classifies a backend failure into the categories the CLI reports
// with distinct guidance. Classification happens at the adapter boundary so
// the pipeline never inspects driver-specific error types.
type ErrKind uint8

const (
	// ErrUnknown is any failure the adapter could not classify.
	ErrUnknown ErrKind = iota
	// ErrAuth means the credentials were rejected.
	ErrAuth
	// ErrBadDatabase means the configured database does not exist.
	ErrBadDatabase
	// ErrConstraint means a key or check constraint was violated.
	ErrConstraint
	// ErrConnection means the server could not be reached.
	ErrConnection
)

func (k ErrKind) String() string {
	switch k {
	case ErrAuth:
		return "access denied"
	case ErrBadDatabase:
		return "database does not exist"
	case ErrConstraint:
		return "constraint violation"
	case ErrConnection:
		return "connection failed"
	default:
		return "storage error"
	}
}

// Error wraps a backend failure with its classification and originating
// operation.
type Error struct {
	Kind    ErrKind
	Backend string
	Op      string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %s: %v", e.Backend, e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the classification from err, or ErrUnknown when err is not
// a storage error.
func KindOf(err error) ErrKind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return ErrUnknown
}
