// SPDX-License-Identifier: MPL-2.0

package identity

import (
	"errors"
	"fmt"
)

// ErrParse is the sentinel error wrapped by ParseError.
var ErrParse = errors.New("parse error")

const (
	// KindDependency identifies dependency strings in a ParseError.
	KindDependency Kind = "dependency"
	// KindDescriptor identifies native application descriptors in a ParseError.
	KindDescriptor Kind = "descriptor"
	// KindPackage identifies MiniApp package paths in a ParseError.
	KindPackage Kind = "package path"
)

type (
	// Kind names the grammar an input failed to match.
	Kind string

	// ParseError is returned when an identity string is empty or malformed.
	// It is never retried internally; callers decide how to recover.
	ParseError struct {
		Kind   Kind
		Input  string
		Reason string
	}
)

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Kind, e.Input, e.Reason)
}

// Unwrap returns ErrParse so callers can use errors.Is for programmatic detection.
func (e *ParseError) Unwrap() error { return ErrParse }

func parseError(kind Kind, input, reason string) *ParseError {
	return &ParseError{Kind: kind, Input: input, Reason: reason}
}
