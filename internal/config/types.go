// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/ernfleet/cauldron/pkg/identity"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"
)

var (
	// ErrStoreNotConfigured is returned when a command needs the store and
	// store.url is unset.
	ErrStoreNotConfigured = errors.New("store URL not configured")
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidStoreConfig is the sentinel error wrapped by InvalidStoreConfigError.
	ErrInvalidStoreConfig = errors.New("invalid store config")
	// ErrInvalidResolverConfig is the sentinel error wrapped by InvalidResolverConfigError.
	ErrInvalidResolverConfig = errors.New("invalid resolver config")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// InvalidStoreConfigError collects the field errors of a StoreConfig.
	InvalidStoreConfigError struct {
		FieldErrors []error
	}

	// InvalidResolverConfigError collects the field errors of a ResolverConfig.
	InvalidResolverConfigError struct {
		FieldErrors []error
	}

	// InvalidConfigError collects the errors of every invalid section.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		Store    StoreConfig    `json:"store" mapstructure:"store"`
		Author   AuthorConfig   `json:"author" mapstructure:"author"`
		Resolver ResolverConfig `json:"resolver" mapstructure:"resolver"`
		UI       UIConfig       `json:"ui" mapstructure:"ui"`
	}

	// StoreConfig locates the cauldron repository and its working copy.
	StoreConfig struct {
		// URL is the remote repository URL or local path.
		URL string `json:"url" mapstructure:"url"`
		// Branch is the tracked branch.
		Branch string `json:"branch" mapstructure:"branch"`
		// Remote is the git remote name.
		Remote string `json:"remote" mapstructure:"remote"`
		// WorkingDir overrides the per-URL working copy directory.
		WorkingDir string `json:"working_dir" mapstructure:"working_dir"`
	}

	// AuthorConfig signs the commits made by transactions.
	AuthorConfig struct {
		Name  string `json:"name" mapstructure:"name"`
		Email string `json:"email" mapstructure:"email"`
	}

	// ResolverConfig sets the native dependency resolution policy.
	ResolverConfig struct {
		// Force keeps the highest version when modules disagree.
		Force bool `json:"force" mapstructure:"force"`
		// Exclude lists dependency names never recorded as native.
		Exclude []string `json:"exclude" mapstructure:"exclude"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		Verbose     bool        `json:"verbose" mapstructure:"verbose"`
	}
)

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Branch: "main",
			Remote: "origin",
		},
		Author: AuthorConfig{
			Name:  AppName,
			Email: AppName + "@localhost",
		},
		Resolver: ResolverConfig{Exclude: []string{}},
		UI:       UIConfig{ColorScheme: ColorSchemeAuto},
	}
}

// RequireURL returns ErrStoreNotConfigured when no store URL is set.
func (c StoreConfig) RequireURL() error {
	if strings.TrimSpace(c.URL) == "" {
		return ErrStoreNotConfigured
	}
	return nil
}

// ResolvedWorkingDir returns WorkingDir, or a directory under the user
// cache derived from URL so that each remote gets its own working copy.
func (c StoreConfig) ResolvedWorkingDir() (string, error) {
	if c.WorkingDir != "" {
		return c.WorkingDir, nil
	}
	if err := c.RequireURL(); err != nil {
		return "", err
	}
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to get cache directory: %w", err)
	}
	id := uuid.NewSHA1(uuid.NameSpaceURL, []byte(c.URL))
	return filepath.Join(cacheDir, AppName, id.String()), nil
}

// IsValid reports whether the store section is usable. URL may be empty:
// only commands touching the store require it.
func (c StoreConfig) IsValid() (bool, []error) {
	var errs []error
	if strings.TrimSpace(c.Branch) == "" {
		errs = append(errs, errors.New("store.branch must not be empty"))
	}
	if strings.TrimSpace(c.Remote) == "" {
		errs = append(errs, errors.New("store.remote must not be empty"))
	}
	if c.WorkingDir != "" && strings.TrimSpace(c.WorkingDir) == "" {
		errs = append(errs, errors.New("store.working_dir must not be whitespace"))
	}
	if len(errs) > 0 {
		return false, []error{&InvalidStoreConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface.
func (e *InvalidStoreConfigError) Error() string {
	return fmt.Sprintf("invalid store config: %v", errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidStoreConfig for errors.Is() compatibility.
func (e *InvalidStoreConfigError) Unwrap() error { return ErrInvalidStoreConfig }

// IsValid reports whether every excluded entry is a dependency name without
// a version.
func (c ResolverConfig) IsValid() (bool, []error) {
	var errs []error
	for i, name := range c.Exclude {
		dep, err := identity.ParseDependency(name)
		if err != nil {
			errs = append(errs, fmt.Errorf("resolver.exclude[%d]: %w", i, err))
			continue
		}
		if dep.HasVersion() {
			errs = append(errs, fmt.Errorf("resolver.exclude[%d]: %q must not carry a version", i, name))
		}
	}
	if len(errs) > 0 {
		return false, []error{&InvalidResolverConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface.
func (e *InvalidResolverConfigError) Error() string {
	return fmt.Sprintf("invalid resolver config: %v", errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidResolverConfig for errors.Is() compatibility.
func (e *InvalidResolverConfigError) Unwrap() error { return ErrInvalidResolverConfig }

// IsValid returns whether the ColorScheme is one of the defined schemes.
func (c ColorScheme) IsValid() (bool, []error) {
	switch c {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: c}}
	}
}

// String returns the string representation of the ColorScheme.
func (c ColorScheme) String() string { return string(c) }

// Error implements the error interface.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns ErrInvalidColorScheme for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

// IsValid validates every section and collects the failures.
func (c *Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.Store.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Resolver.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.UI.ColorScheme.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %v", errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidConfig and the section errors.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}
