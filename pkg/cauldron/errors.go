// SPDX-License-Identifier: MPL-2.0

package cauldron

import (
	"errors"
	"fmt"

	"github.com/ernfleet/cauldron/pkg/identity"
)

var (
	// ErrNotFound is the sentinel error wrapped by NotFoundError.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is the sentinel error wrapped by DuplicateError.
	ErrDuplicate = errors.New("already exists")

	// ErrReleased is the sentinel error wrapped by ReleasedVersionError.
	ErrReleased = errors.New("version is released")

	// ErrInvariant is the sentinel error wrapped by InvariantError.
	ErrInvariant = errors.New("document invariant violated")

	// ErrSchema is the sentinel error wrapped by SchemaError.
	ErrSchema = errors.New("unsupported document schema")
)

type (
	// NotFoundError is returned when a navigation or mutation targets an
	// entry that does not exist.
	NotFoundError struct {
		Kind string
		Key  string
	}

	// DuplicateError is returned when an entry with the same identity already
	// exists where a new one was requested.
	DuplicateError struct {
		Kind string
		Key  string
	}

	// ReleasedVersionError is returned when an operation would change the
	// container of a released version.
	ReleasedVersionError struct {
		Descriptor identity.Descriptor
		Op         string
	}

	// InvariantError reports a structural violation found by Validate or by a
	// mutator argument check.
	InvariantError struct {
		Path   string
		Reason string
	}

	// SchemaError is returned when a document cannot be brought to the
	// current schema: its tag is newer than supported, no migration step
	// exists for it, or the migrated tree does not match the schema.
	SchemaError struct {
		Found  string
		Reason string
		Err    error
	}
)

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Key)
}

// Unwrap returns ErrNotFound so callers can use errors.Is for programmatic detection.
func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// Error implements the error interface.
func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s %q already exists", e.Kind, e.Key)
}

// Unwrap returns ErrDuplicate so callers can use errors.Is for programmatic detection.
func (e *DuplicateError) Unwrap() error { return ErrDuplicate }

// Error implements the error interface.
func (e *ReleasedVersionError) Error() string {
	return fmt.Sprintf("cannot %s: %s is released and its container is frozen", e.Op, e.Descriptor)
}

// Unwrap returns ErrReleased so callers can use errors.Is for programmatic detection.
func (e *ReleasedVersionError) Unwrap() error { return ErrReleased }

// Error implements the error interface.
func (e *InvariantError) Error() string {
	if e.Path == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}

// Unwrap returns ErrInvariant so callers can use errors.Is for programmatic detection.
func (e *InvariantError) Unwrap() error { return ErrInvariant }

// Error implements the error interface.
func (e *SchemaError) Error() string {
	msg := e.Reason
	if e.Found != "" {
		msg = fmt.Sprintf("schema version %s: %s", e.Found, e.Reason)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns ErrSchema and the underlying cause, if any.
func (e *SchemaError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrSchema}
	}
	return []error{ErrSchema, e.Err}
}
