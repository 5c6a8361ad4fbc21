// SPDX-License-Identifier: MPL-2.0

package resolver

import (
	"io"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/ernfleet/cauldron/pkg/identity"
)

type (
	// Resolver applies per-application settings around the resolution
	// functions of this package.
	Resolver struct {
		logger   *log.Logger
		excluded map[string]bool
	}

	// Option configures a Resolver.
	Option func(*Resolver)
)

// WithLogger sets the logger conflicts are reported to.
func WithLogger(logger *log.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithExclusions drops the named dependencies from every resolution. Names
// use the `[@scope/]name` form; versions are ignored.
func WithExclusions(names ...string) Option {
	return func(r *Resolver) {
		for _, name := range names {
			dep, err := identity.ParseDependency(name)
			if err != nil {
				r.logger.Warn("Ignoring invalid exclusion", "exclusion", name, "error", err)
				continue
			}
			r.excluded[dep.Key()] = true
		}
	}
}

// New returns a Resolver.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		logger:   log.New(io.Discard),
		excluded: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Excluded reports whether dep is dropped by this resolver.
func (r *Resolver) Excluded(dep identity.Dependency) bool {
	return r.excluded[dep.Key()]
}

// Resolve filters exclusions out of modules and resolves the rest.
// Conflicts are logged as warnings and returned.
func (r *Resolver) Resolve(modules []ModuleDependencySet) Resolution {
	filtered := make([]ModuleDependencySet, len(modules))
	for i, m := range modules {
		filtered[i] = ModuleDependencySet{Module: m.Module, Dependencies: r.filter(m.Dependencies)}
	}

	res := ResolveAcrossModules(filtered)
	for _, c := range res.Conflicts {
		r.logger.Warn("Native dependency version conflict", "dependency", c.Dependency.String(), "versions", c.Versions)
	}
	r.logger.Debug("Resolved native dependencies", "modules", len(modules), "resolved", len(res.Resolved), "conflicts", len(res.Conflicts))
	return res
}

// Merge retains the highest version of each identity across resolved and
// existing. Exclusions apply to resolved only; entries already recorded
// are never dropped.
func (r *Resolver) Merge(resolved, existing []identity.Dependency) []identity.Dependency {
	return RetainHighestVersions(r.filter(resolved), existing)
}

// Check reports the compatibility of module with existing, ignoring
// excluded dependencies.
func (r *Resolver) Check(module ModuleDependencySet, existing []identity.Dependency) CompatibilityReport {
	return CheckCompatibility(ModuleDependencySet{Module: module.Module, Dependencies: r.filter(module.Dependencies)}, existing)
}

func (r *Resolver) filter(deps []identity.Dependency) []identity.Dependency {
	if len(r.excluded) == 0 {
		return deps
	}
	return slices.DeleteFunc(slices.Clone(deps), r.Excluded)
}
