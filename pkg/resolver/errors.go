// SPDX-License-Identifier: MPL-2.0

package resolver

import (
	"errors"
	"fmt"
	"strings"
)

// ErrConflict is the sentinel error wrapped by ConflictError.
var ErrConflict = errors.New("native dependency version conflict")

// ConflictError is returned by Resolution.Enforce when conflicts exist and
// the caller did not force the resolution.
type ConflictError struct {
	Conflicts []Conflict
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	parts := make([]string, len(e.Conflicts))
	for i, c := range e.Conflicts {
		parts[i] = c.String()
	}
	return fmt.Sprintf("%d native dependency version conflict(s): %s", len(e.Conflicts), strings.Join(parts, "; "))
}

// Unwrap returns ErrConflict so callers can use errors.Is for programmatic detection.
func (e *ConflictError) Unwrap() error { return ErrConflict }
