// Package errs provides the error types shared by every colgen layer.
//
// Loaders, database clients and the CLI wrap their failures into *errs.Error.
// The column builder has exactly one failure of its own, *InvalidDecorationError,
// raised when a decoration is attached to a property that cannot carry it.
//
// Usage:
//
//	if errs.IsInvalidDecoration(err) {
//	    // fix the entity description, nothing to retry
//	}
package errs

import (
	"errors"
	"fmt"
)

// ErrKind categorises an error independently of the layer that produced it.
type ErrKind int

const (
	ErrKindUnknown           ErrKind = iota
	ErrKindInvalidInput              // malformed description or bad arguments
	ErrKindInvalidDecoration         // decoration not allowed on the property
	ErrKindNotFound                  // entity, table or file missing
	ErrKindConnectionFailed          // cannot reach the source database
	ErrKindQueryFailed               // introspection or verification statement failed
)

func (k ErrKind) String() string {
	switch k {
	case ErrKindInvalidInput:
		return "invalid_input"
	case ErrKindInvalidDecoration:
		return "invalid_decoration"
	case ErrKindNotFound:
		return "not_found"
	case ErrKindConnectionFailed:
		return "connection_failed"
	case ErrKindQueryFailed:
		return "query_failed"
	default:
		return "unknown"
	}
}

// Error is the general error type returned by colgen subsystems.
type Error struct {
	Kind    ErrKind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap allows errors.Is / errors.As to traverse the cause chain.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates an *Error with the given kind and message and no cause.
func New(kind ErrKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Newf creates an *Error with a formatted message.
func Newf(kind ErrKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an *Error with the given kind, message, and an underlying cause.
func Wrap(kind ErrKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

// InvalidDecorationError reports a decoration found on a property whose
// primitive kind does not allow it. It is a configuration error: the entity
// description must be fixed.
type InvalidDecorationError struct {
	Decoration string // e.g. "collation"
	Property   string // qualified as Entity.Property
	Underlying string // actual primitive kind of the property
}

func (e *InvalidDecorationError) Error() string {
	return fmt.Sprintf("%s cannot be used on non-string property: %s (underlying type is %s)",
		e.Decoration, e.Property, e.Underlying)
}

// IsInvalidDecoration reports whether err is, or wraps, an *InvalidDecorationError.
func IsInvalidDecoration(err error) bool {
	return kindOf(err) == ErrKindInvalidDecoration
}

// IsInvalidInput reports whether err was caused by a malformed description or argument.
func IsInvalidInput(err error) bool {
	return kindOf(err) == ErrKindInvalidInput
}

// IsNotFound reports whether err represents a missing file, table or entity.
func IsNotFound(err error) bool {
	return kindOf(err) == ErrKindNotFound
}

// IsConnectionFailed reports whether err is a connectivity failure.
func IsConnectionFailed(err error) bool {
	return kindOf(err) == ErrKindConnectionFailed
}

// IsQueryFailed reports whether err is a failed statement against a database.
func IsQueryFailed(err error) bool {
	return kindOf(err) == ErrKindQueryFailed
}

// KindOf returns the ErrKind of the first recognised error in the chain.
func KindOf(err error) ErrKind {
	return kindOf(err)
}

func kindOf(err error) ErrKind {
	var d *InvalidDecorationError
	if errors.As(err, &d) {
		return ErrKindInvalidDecoration
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ErrKindUnknown
}
