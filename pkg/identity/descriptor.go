// SPDX-License-Identifier: MPL-2.0

package identity

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// PlatformAndroid is the Android platform.
	PlatformAndroid Platform = "android"
	// PlatformIOS is the iOS platform.
	PlatformIOS Platform = "ios"
)

// ErrInvalidPlatform is the sentinel error wrapped by InvalidPlatformError.
var ErrInvalidPlatform = errors.New("invalid platform")

type (
	// Platform is a native application platform.
	Platform string

	// InvalidPlatformError is returned when a Platform value is not recognized.
	InvalidPlatformError struct {
		Value Platform
	}

	// Descriptor is the hierarchical identifier of a native application
	// release: name[:platform[:version]].
	//
	// Platform and Version are optional refinements. In query contexts an
	// unset platform or version denotes "all platforms" or "all versions".
	Descriptor struct {
		Name     string
		Platform Platform
		Version  string
	}
)

// Platforms returns every supported platform.
func Platforms() []Platform {
	return []Platform{PlatformAndroid, PlatformIOS}
}

// Error implements the error interface.
func (e *InvalidPlatformError) Error() string {
	return fmt.Sprintf("invalid platform %q (must be one of: android, ios)", e.Value)
}

// Unwrap returns ErrInvalidPlatform so callers can use errors.Is for programmatic detection.
func (e *InvalidPlatformError) Unwrap() error { return ErrInvalidPlatform }

// Validate returns nil if the Platform is supported.
func (p Platform) Validate() error {
	switch p {
	case PlatformAndroid, PlatformIOS:
		return nil
	default:
		return &InvalidPlatformError{Value: p}
	}
}

// String returns the string representation of the Platform.
func (p Platform) String() string { return string(p) }

// MustParseDescriptor is like ParseDescriptor but panics on error.
func MustParseDescriptor(s string) Descriptor {
	d, err := ParseDescriptor(s)
	if err != nil {
		panic(err)
	}
	return d
}

// ParseDescriptor parses name[:platform[:version]].
func ParseDescriptor(s string) (Descriptor, error) {
	if s == "" {
		return Descriptor{}, parseError(KindDescriptor, s, "empty string")
	}
	if strings.ContainsAny(s, " \t\r\n") {
		return Descriptor{}, parseError(KindDescriptor, s, "contains whitespace")
	}

	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return Descriptor{}, parseError(KindDescriptor, s, "too many segments (expected name[:platform[:version]])")
	}
	for _, p := range parts {
		if p == "" {
			return Descriptor{}, parseError(KindDescriptor, s, "empty segment")
		}
	}

	d := Descriptor{Name: parts[0]}
	if len(parts) > 1 {
		d.Platform = Platform(parts[1])
		if err := d.Platform.Validate(); err != nil {
			return Descriptor{}, parseError(KindDescriptor, s, err.Error())
		}
	}
	if len(parts) > 2 {
		d.Version = parts[2]
	}
	return d, nil
}

// String returns the canonical form name[:platform[:version]]. A version
// without a platform has no canonical form and is not rendered; Validate
// rejects such descriptors.
func (d Descriptor) String() string {
	var sb strings.Builder
	sb.WriteString(d.Name)
	if d.Platform != "" {
		sb.WriteString(":")
		sb.WriteString(string(d.Platform))
		if d.Version != "" {
			sb.WriteString(":")
			sb.WriteString(d.Version)
		}
	}
	return sb.String()
}

// HasPlatform reports whether the descriptor names a platform.
func (d Descriptor) HasPlatform() bool { return d.Platform != "" }

// HasVersion reports whether the descriptor names a version.
func (d Descriptor) HasVersion() bool { return d.Version != "" }

// IsComplete reports whether the descriptor addresses a single release.
func (d Descriptor) IsComplete() bool {
	return d.Name != "" && d.HasPlatform() && d.HasVersion()
}

// Equal reports structural equality.
func (d Descriptor) Equal(other Descriptor) bool { return d == other }

// WithPlatform returns a copy of d refined to platform p.
func (d Descriptor) WithPlatform(p Platform) Descriptor {
	d.Platform = p
	return d
}

// WithVersion returns a copy of d refined to version v.
func (d Descriptor) WithVersion(v string) Descriptor {
	d.Version = v
	return d
}

// WithoutVersion returns a copy of d addressing all versions of its platform.
func (d Descriptor) WithoutVersion() Descriptor {
	d.Version = ""
	return d
}

// Matches reports whether other falls under d. Unset fields of d match any
// value, so "app" matches every platform and version of app and the zero
// Descriptor matches everything.
func (d Descriptor) Matches(other Descriptor) bool {
	if d.Name != "" && d.Name != other.Name {
		return false
	}
	if d.Platform != "" && d.Platform != other.Platform {
		return false
	}
	return d.Version == "" || d.Version == other.Version
}

// Validate returns a ParseError unless d can be written in canonical form:
// a name, a supported platform when one is set, and no version without a
// platform. The zero Descriptor, which matches everything, is valid.
func (d Descriptor) Validate() error {
	switch {
	case d == Descriptor{}:
		return nil
	case d.Name == "":
		return parseError(KindDescriptor, ":"+string(d.Platform)+":"+d.Version, "platform or version without a name")
	case d.Version != "" && d.Platform == "":
		return parseError(KindDescriptor, d.Name+"::"+d.Version, "version without a platform")
	case d.Platform != "":
		if err := d.Platform.Validate(); err != nil {
			return parseError(KindDescriptor, d.String(), err.Error())
		}
	}
	return nil
}

// RequireComplete returns a ParseError unless d addresses a single release.
func (d Descriptor) RequireComplete() error {
	if d.IsComplete() {
		return nil
	}
	return parseError(KindDescriptor, d.String(), "a complete name:platform:version descriptor is required")
}

// MarshalText encodes the descriptor in its canonical form. Descriptors
// failing Validate are rejected rather than encoded lossily.
func (d Descriptor) MarshalText() ([]byte, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return []byte(d.String()), nil
}

// UnmarshalText decodes a canonical descriptor string.
func (d *Descriptor) UnmarshalText(text []byte) error {
	parsed, err := ParseDescriptor(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
