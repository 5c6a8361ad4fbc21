// SPDX-License-Identifier: MPL-2.0

package identity

import (
	"strings"
)

// Dependency identifies a native dependency, optionally pinned to a version.
//
// Two dependencies are the same dependency when name and scope match; version
// equality is a separate criterion (see Same). The zero value is not a valid
// dependency; use NewDependency or ParseDependency.
type Dependency struct {
	name    string
	scope   string
	version string
}

// NewDependency builds a Dependency from its parts, validating each one.
// Scope and version may be empty.
func NewDependency(name, scope, version string) (Dependency, error) {
	d := Dependency{name: name, scope: scope, version: version}
	if !validSegment(name) {
		return Dependency{}, parseError(KindDependency, d.String(), "invalid name")
	}
	if scope != "" && !validSegment(scope) {
		return Dependency{}, parseError(KindDependency, d.String(), "invalid scope")
	}
	if version != "" && !validVersion(version) {
		return Dependency{}, parseError(KindDependency, d.String(), "invalid version")
	}
	return d, nil
}

// MustParseDependency is like ParseDependency but panics on error.
// Intended for tests and package-level fixtures.
func MustParseDependency(s string) Dependency {
	d, err := ParseDependency(s)
	if err != nil {
		panic(err)
	}
	return d
}

// ParseDependency parses a dependency string.
//
// The accepted encodings are tried in this order, because the scoped form is
// a syntactic superset of the unscoped one:
//
//  1. @scope/name@version
//  2. name@version
//  3. @scope/name
//  4. name
//
// A leading '@' commits the parser to the scoped alternatives; the first '@'
// after the name (and scope) introduces the version. Parsing never fails on a
// well-formed bare name.
func ParseDependency(s string) (Dependency, error) {
	if s == "" {
		return Dependency{}, parseError(KindDependency, s, "empty string")
	}
	if strings.TrimSpace(s) != s || strings.ContainsAny(s, " \t\r\n") {
		return Dependency{}, parseError(KindDependency, s, "contains whitespace")
	}

	rest := s
	var scope string
	if after, ok := strings.CutPrefix(rest, "@"); ok {
		scopePart, namePart, found := strings.Cut(after, "/")
		if !found {
			return Dependency{}, parseError(KindDependency, s, "scope must be followed by '/name'")
		}
		if !validSegment(scopePart) {
			return Dependency{}, parseError(KindDependency, s, "invalid scope")
		}
		scope = scopePart
		rest = namePart
	}

	name, version, versioned := strings.Cut(rest, "@")
	if !validSegment(name) {
		return Dependency{}, parseError(KindDependency, s, "invalid name")
	}
	if versioned && !validVersion(version) {
		return Dependency{}, parseError(KindDependency, s, "invalid version")
	}

	return Dependency{name: name, scope: scope, version: version}, nil
}

// Name returns the unscoped dependency name.
func (d Dependency) Name() string { return d.name }

// Scope returns the scope without its leading '@', or "" when unscoped.
func (d Dependency) Scope() string { return d.scope }

// Version returns the version, or "" when unset.
func (d Dependency) Version() string { return d.version }

// HasVersion reports whether a version is set.
func (d Dependency) HasVersion() bool { return d.version != "" }

// IsZero reports whether d is the zero Dependency.
func (d Dependency) IsZero() bool { return d == Dependency{} }

// Key returns the version-free identity of the dependency: [@scope/]name.
func (d Dependency) Key() string {
	if d.scope == "" {
		return d.name
	}
	return "@" + d.scope + "/" + d.name
}

// String returns the canonical form [@scope/]name[@version].
func (d Dependency) String() string {
	if d.version == "" {
		return d.Key()
	}
	return d.Key() + "@" + d.version
}

// WithoutVersion returns a copy of d with the version cleared.
func (d Dependency) WithoutVersion() Dependency {
	d.version = ""
	return d
}

// WithVersion returns a copy of d pinned to version.
func (d Dependency) WithVersion(version string) Dependency {
	d.version = version
	return d
}

// Same reports whether d and other name the same dependency.
// When ignoreVersion is false the versions must match as well.
func (d Dependency) Same(other Dependency, ignoreVersion bool) bool {
	if d.name != other.name || d.scope != other.scope {
		return false
	}
	return ignoreVersion || d.version == other.version
}

// SameDependency reports whether a and b name the same dependency.
func SameDependency(a, b Dependency, ignoreVersion bool) bool {
	return a.Same(b, ignoreVersion)
}

// MarshalText encodes the dependency in its canonical form.
func (d Dependency) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText decodes a canonical dependency string.
func (d *Dependency) UnmarshalText(text []byte) error {
	parsed, err := ParseDependency(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// validSegment reports whether s is a usable name or scope: non-empty and
// limited to the characters npm accepts in package names.
func validSegment(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_', r == '.', r == '~':
		default:
			return false
		}
	}
	return true
}

// validVersion accepts any non-empty token that cannot be confused with the
// grammar's separators.
func validVersion(s string) bool {
	return s != "" && !strings.ContainsAny(s, "@/: \t\r\n")
}
