// SPDX-License-Identifier: MPL-2.0

package resolver

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/ernfleet/cauldron/pkg/identity"
)

type (
	// ModuleDependencySet is the list of native dependencies one module
	// declares.
	ModuleDependencySet struct {
		Module       identity.PackagePath
		Dependencies []identity.Dependency
	}

	// Conflict reports a dependency declared with several versions.
	Conflict struct {
		// Dependency is the identity in conflict, without a version.
		Dependency identity.Dependency
		// Versions holds the distinct declared versions, lowest first.
		Versions []string
		// DeclaredBy maps each version to the modules declaring it.
		DeclaredBy map[string][]string
	}

	// Resolution is the outcome of ResolveAcrossModules.
	Resolution struct {
		// Resolved holds one entry per identity, sorted by identity. A
		// conflicting identity resolves to its highest declared version.
		Resolved []identity.Dependency
		// Conflicts is sorted by identity.
		Conflicts []Conflict
	}

	// group collects the declarations of one identity.
	group struct {
		dep        identity.Dependency
		declaredBy map[string][]string
	}
)

// String renders the conflict as `name: 1.0 (a, b) vs 2.0 (c)`.
func (c Conflict) String() string {
	parts := make([]string, len(c.Versions))
	for i, v := range c.Versions {
		parts[i] = fmt.Sprintf("%s (%s)", v, strings.Join(c.DeclaredBy[v], ", "))
	}
	return c.Dependency.String() + ": " + strings.Join(parts, " vs ")
}

// HasConflicts reports whether any identity was declared with more than
// one version.
func (r Resolution) HasConflicts() bool { return len(r.Conflicts) > 0 }

// Enforce applies the conflict policy: conflicts are fatal unless force is
// set.
func (r Resolution) Enforce(force bool) error {
	if !r.HasConflicts() || force {
		return nil
	}
	return &ConflictError{Conflicts: slices.Clone(r.Conflicts)}
}

// ResolveAcrossModules resolves the dependencies declared by modules into
// one version per identity. Declarations without a version never conflict.
func ResolveAcrossModules(modules []ModuleDependencySet) Resolution {
	groups := make(map[string]*group)
	for _, m := range modules {
		module := "<unknown>"
		if m.Module != nil {
			module = m.Module.String()
		}
		for _, dep := range m.Dependencies {
			key := dep.Key()
			g, ok := groups[key]
			if !ok {
				g = &group{dep: dep.WithoutVersion(), declaredBy: make(map[string][]string)}
				groups[key] = g
			}
			if !dep.HasVersion() {
				continue
			}
			if !slices.Contains(g.declaredBy[dep.Version()], module) {
				g.declaredBy[dep.Version()] = append(g.declaredBy[dep.Version()], module)
			}
		}
	}

	var res Resolution
	for _, key := range slices.Sorted(maps.Keys(groups)) {
		g := groups[key]
		versions := slices.SortedFunc(maps.Keys(g.declaredBy), CompareVersions)
		switch len(versions) {
		case 0:
			res.Resolved = append(res.Resolved, g.dep)
			continue
		case 1:
			res.Resolved = append(res.Resolved, g.dep.WithVersion(versions[0]))
			continue
		}
		res.Resolved = append(res.Resolved, g.dep.WithVersion(versions[len(versions)-1]))
		res.Conflicts = append(res.Conflicts, Conflict{
			Dependency: g.dep,
			Versions:   versions,
			DeclaredBy: g.declaredBy,
		})
	}
	return res
}

// RetainHighestVersions merges resolved into existing. Each identity present
// in either list appears once, at the higher of its versions. Identities
// keep the order of their first appearance in resolved, then existing.
func RetainHighestVersions(resolved, existing []identity.Dependency) []identity.Dependency {
	out := make([]identity.Dependency, 0, len(resolved)+len(existing))
	index := make(map[string]int, len(resolved)+len(existing))
	for _, list := range [][]identity.Dependency{resolved, existing} {
		for _, dep := range list {
			key := dep.Key()
			i, ok := index[key]
			if !ok {
				index[key] = len(out)
				out = append(out, dep)
				continue
			}
			if v := highest(out[i].Version(), dep.Version()); v != out[i].Version() {
				out[i] = out[i].WithVersion(v)
			}
		}
	}
	return out
}
