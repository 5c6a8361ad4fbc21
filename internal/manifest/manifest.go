// SPDX-License-Identifier: MPL-2.0

// Package manifest reads the native dependencies MiniApps declare, either
// from a release manifest listing several MiniApps or from a single
// MiniApp's package.json.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ernfleet/cauldron/pkg/identity"
	"github.com/ernfleet/cauldron/pkg/resolver"
)

// PackageJSONName is the file name recognized as a MiniApp package manifest.
const PackageJSONName = "package.json"

// ErrInvalidManifest is the sentinel error wrapped by InvalidManifestError.
var ErrInvalidManifest = errors.New("invalid manifest")

type (
	// InvalidManifestError reports a manifest that cannot be read.
	InvalidManifestError struct {
		Path string
		Err  error
	}

	// Manifest is a release manifest: the MiniApps to add to a container,
	// each with its native dependencies.
	//
	//	miniapps:
	//	  - package: miniapp-a@1.0.0
	//	    dependencies:
	//	      - react-native@0.59.8
	Manifest struct {
		MiniApps []Entry `yaml:"miniapps" json:"miniapps"`
	}

	// Entry is one MiniApp of a Manifest.
	Entry struct {
		Package      string   `yaml:"package" json:"package"`
		Dependencies []string `yaml:"dependencies,omitempty" json:"dependencies,omitempty"`
	}

	// packageJSON holds the package.json fields read by ParsePackageJSON.
	packageJSON struct {
		Name             string            `json:"name"`
		Version          string            `json:"version"`
		Dependencies     map[string]string `json:"dependencies"`
		PeerDependencies map[string]string `json:"peerDependencies"`
	}
)

// Error implements the error interface.
func (e *InvalidManifestError) Error() string {
	return fmt.Sprintf("invalid manifest %s: %v", e.Path, e.Err)
}

// Unwrap returns ErrInvalidManifest and the underlying cause.
func (e *InvalidManifestError) Unwrap() []error { return []error{ErrInvalidManifest, e.Err} }

// Load reads the manifest at path. A file named package.json is read as a
// single MiniApp; anything else as a YAML (or JSON) release manifest.
func Load(path string) ([]resolver.ModuleDependencySet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return Parse(path, data)
}

// Parse parses data as the manifest named path.
func Parse(path string, data []byte) ([]resolver.ModuleDependencySet, error) {
	if filepath.Base(path) == PackageJSONName {
		set, err := ParsePackageJSON(data)
		if err != nil {
			return nil, &InvalidManifestError{Path: path, Err: err}
		}
		return []resolver.ModuleDependencySet{set}, nil
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, &InvalidManifestError{Path: path, Err: err}
	}
	sets, err := m.DependencySets()
	if err != nil {
		return nil, &InvalidManifestError{Path: path, Err: err}
	}
	return sets, nil
}

// DependencySets parses every entry of m.
func (m Manifest) DependencySets() ([]resolver.ModuleDependencySet, error) {
	if len(m.MiniApps) == 0 {
		return nil, errors.New("no miniapps listed")
	}

	sets := make([]resolver.ModuleDependencySet, 0, len(m.MiniApps))
	var errs []error
	for i, e := range m.MiniApps {
		pkg, err := identity.ParsePackagePath(e.Package)
		if err != nil {
			errs = append(errs, fmt.Errorf("miniapps[%d].package: %w", i, err))
			continue
		}
		set := resolver.ModuleDependencySet{Module: pkg}
		for j, s := range e.Dependencies {
			dep, err := identity.ParseDependency(s)
			if err != nil {
				errs = append(errs, fmt.Errorf("miniapps[%d].dependencies[%d]: %w", i, j, err))
				continue
			}
			set.Dependencies = append(set.Dependencies, dep)
		}
		sets = append(sets, set)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return sets, nil
}

// ParsePackageJSON reads a MiniApp package.json. Dependencies and peer
// dependencies are both declared, sorted by name, with range operators
// stripped from their versions. Specifiers that are not a plain version,
// such as git URLs or tags with separators, leave the dependency unversioned.
func ParsePackageJSON(data []byte) (resolver.ModuleDependencySet, error) {
	var pkg packageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return resolver.ModuleDependencySet{}, err
	}
	if pkg.Name == "" {
		return resolver.ModuleDependencySet{}, errors.New("package.json has no name")
	}

	ref := pkg.Name
	if pkg.Version != "" {
		ref += "@" + pkg.Version
	}
	module, err := identity.ParsePackagePath(ref)
	if err != nil {
		return resolver.ModuleDependencySet{}, err
	}

	declared := maps.Clone(pkg.PeerDependencies)
	if declared == nil {
		declared = make(map[string]string, len(pkg.Dependencies))
	}
	// A regular dependency pins what the MiniApp ships with, so it wins
	// over the peer range.
	maps.Copy(declared, pkg.Dependencies)

	set := resolver.ModuleDependencySet{Module: module}
	for _, name := range slices.Sorted(maps.Keys(declared)) {
		dep, err := identity.ParseDependency(name)
		if err != nil {
			return resolver.ModuleDependencySet{}, fmt.Errorf("dependency %q: %w", name, err)
		}
		if v := CleanVersion(declared[name]); v != "" {
			dep = dep.WithVersion(v)
		}
		set.Dependencies = append(set.Dependencies, dep)
	}
	return set, nil
}

// CleanVersion reduces an npm version specifier to a plain version: range
// operators are removed and only the lower bound of a range is kept.
// Wildcards and non-version specifiers yield "".
func CleanVersion(spec string) string {
	fields := strings.Fields(spec)
	if len(fields) == 0 {
		return ""
	}
	v := strings.TrimLeft(fields[0], "^~>=<v")
	switch {
	case v == "", v == "*", v == "x", v == "latest":
		return ""
	case strings.ContainsAny(v, "@/:#|"):
		return ""
	}
	return v
}
