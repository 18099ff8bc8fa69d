// Package errors defines the error kinds reported by shelf.
//
// Errors that cross a package boundary are wrapped in an *Error carrying
// an enumerated Type, so callers can dispatch on the kind of failure
// without string matching. Ad-hoc wrapping within a package uses
// github.com/pkg/errors.
package errors

import "errors"

// New returns an error that formats as the given text.
func New(msg string) error {
	return errors.New(msg)
}

// The Type of an Error indicates which contract was violated.
type Type int

// Supported error types.
const (
	Unknown              Type = iota // Placeholder
	DeclarationNotFound              // The Shelffile is absent at the given path
	DuplicateSource                  // The same cookbook name was declared twice
	InvalidFilterOptions             // Both only and except group filters were supplied
	NotFound                         // A location has no cookbook by the requested name
	NoSatisfyingVersion              // A location has the name but no version meets the constraint
	UnresolvableConflict             // Two constraints on one name cannot both be satisfied
	DownloadFailure                  // Transport or I/O failure during fetch or install
	MissingConfiguration             // A required remote-upload attribute is absent
	LockPersistFailure               // Writing the new lockfile failed (warning-class)
)

// An Error is a failure with an enumerated kind.
type Error struct {
	Type            Type
	Cause           error
	Message         string
	Troubleshooting string
}

func (e *Error) Error() string {
	if e.Message != "" {
		if e.Cause != nil {
			return e.Message + ": " + e.Cause.Error()
		}
		return e.Message
	}
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return "unknown error"
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// A Typed error reports its own kind. Errors defined outside this
// package (e.g. resolver conflicts) implement this to participate in
// TypeOf without being wrapped.
type Typed interface {
	error
	ErrorType() Type
}

// ErrorType implements Typed.
func (e *Error) ErrorType() Type {
	return e.Type
}

// TypeOf returns the kind of err, unwrapping as needed. Errors that are
// neither *Error nor Typed report Unknown.
func TypeOf(err error) Type {
	for err != nil {
		if typed, ok := err.(Typed); ok {
			return typed.ErrorType()
		}
		// Chains built with github.com/pkg/errors expose Cause instead
		// of Unwrap.
		if causer, ok := err.(interface{ Cause() error }); ok {
			err = causer.Cause()
			continue
		}
		err = errors.Unwrap(err)
	}
	return Unknown
}

// Is reports whether err has the given type.
func Is(err error, t Type) bool {
	return TypeOf(err) == t
}

// Warning reports whether err is warning-class: the operation it
// belongs to still succeeded and the caller should report rather than
// abort.
func Warning(err error) bool {
	return TypeOf(err) == LockPersistFailure
}
