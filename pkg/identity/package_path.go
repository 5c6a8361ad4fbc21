// SPDX-License-Identifier: MPL-2.0

package identity

import (
	"errors"
	"strings"
)

const gitPrefix = "git+"

type (
	// PackagePath identifies a MiniApp or JS API implementation package by
	// origin. It is a closed set of variants: NpmPackage and GitPackage.
	// Use a type switch to dispatch on the origin.
	PackagePath interface {
		// String returns the canonical package path.
		String() string
		// Identity returns the version-free identity used for duplicate detection.
		Identity() string
		// Version returns the npm version or git ref, "" when unset.
		Version() string
		// WithoutVersion returns a copy with the version or ref cleared.
		WithoutVersion() PackagePath

		isPackagePath()
	}

	// NpmPackage is a package published to an npm registry.
	NpmPackage struct {
		Dependency Dependency
	}

	// GitPackage is a package fetched from a git repository, optionally at a ref.
	GitPackage struct {
		URL string
		Ref string
	}
)

func (NpmPackage) isPackagePath() {}
func (GitPackage) isPackagePath() {}

// String returns the canonical dependency string.
func (p NpmPackage) String() string { return p.Dependency.String() }

// Identity returns [@scope/]name.
func (p NpmPackage) Identity() string { return p.Dependency.Key() }

// Version returns the npm version.
func (p NpmPackage) Version() string { return p.Dependency.Version() }

// WithoutVersion returns the package with its version cleared.
func (p NpmPackage) WithoutVersion() PackagePath {
	return NpmPackage{Dependency: p.Dependency.WithoutVersion()}
}

// String returns url[#ref].
func (p GitPackage) String() string {
	if p.Ref == "" {
		return p.URL
	}
	return p.URL + "#" + p.Ref
}

// Identity returns the repository URL.
func (p GitPackage) Identity() string { return p.URL }

// Version returns the git ref.
func (p GitPackage) Version() string { return p.Ref }

// WithoutVersion returns the package with its ref cleared.
func (p GitPackage) WithoutVersion() PackagePath {
	return GitPackage{URL: p.URL}
}

// MustParsePackagePath is like ParsePackagePath but panics on error.
func MustParsePackagePath(s string) PackagePath {
	p, err := ParsePackagePath(s)
	if err != nil {
		panic(err)
	}
	return p
}

// ParsePackagePath parses a MiniApp package path. Strings using a git URL
// scheme (optionally prefixed with "git+") are git packages with an optional
// "#ref" suffix; anything else is parsed as an npm dependency string.
func ParsePackagePath(s string) (PackagePath, error) {
	if s == "" {
		return nil, parseError(KindPackage, s, "empty string")
	}
	if strings.ContainsAny(s, " \t\r\n") {
		return nil, parseError(KindPackage, s, "contains whitespace")
	}

	raw := strings.TrimPrefix(s, gitPrefix)
	if isGitURL(raw) {
		url, ref, hasRef := strings.Cut(raw, "#")
		if hasRef && ref == "" {
			return nil, parseError(KindPackage, s, "empty git ref")
		}
		if url == "" || strings.HasSuffix(url, "://") {
			return nil, parseError(KindPackage, s, "missing repository location")
		}
		return GitPackage{URL: url, Ref: ref}, nil
	}
	if raw != s {
		return nil, parseError(KindPackage, s, "git+ prefix requires a git URL")
	}

	dep, err := ParseDependency(s)
	if err != nil {
		reason := err.Error()
		var pe *ParseError
		if errors.As(err, &pe) {
			reason = pe.Reason
		}
		return nil, parseError(KindPackage, s, reason)
	}
	return NpmPackage{Dependency: dep}, nil
}

// SamePackage reports whether a and b identify the same package. When
// ignoreVersion is false the versions (or refs) must match as well.
func SamePackage(a, b PackagePath, ignoreVersion bool) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch av := a.(type) {
	case NpmPackage:
		bv, ok := b.(NpmPackage)
		return ok && av.Dependency.Same(bv.Dependency, ignoreVersion)
	case GitPackage:
		bv, ok := b.(GitPackage)
		return ok && av.URL == bv.URL && (ignoreVersion || av.Ref == bv.Ref)
	default:
		return false
	}
}

// isGitURL returns true when s uses a git URL scheme.
func isGitURL(s string) bool {
	return strings.HasPrefix(s, "https://") ||
		strings.HasPrefix(s, "http://") ||
		strings.HasPrefix(s, "ssh://") ||
		strings.HasPrefix(s, "file://") ||
		strings.HasPrefix(s, "git@") ||
		strings.HasPrefix(s, "git://")
}
