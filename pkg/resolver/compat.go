// SPDX-License-Identifier: MPL-2.0

package resolver

import (
	"github.com/Masterminds/semver/v3"

	"github.com/ernfleet/cauldron/pkg/identity"
)

const (
	// Compatible means the application already carries the declared version.
	Compatible Compatibility = "compatible"
	// NonStrict means the module can be added but the application's
	// dependency set changes: the dependency is new, or only its minor or
	// patch version differs.
	NonStrict Compatibility = "non-strict"
	// Incompatible means the versions differ in major version, or differ
	// and cannot be ordered as semantic versions.
	Incompatible Compatibility = "incompatible"
)

type (
	// Compatibility classifies one declared dependency against an application.
	Compatibility string

	// CompatibilityEntry is the verdict for one dependency of a module.
	CompatibilityEntry struct {
		Dependency identity.Dependency
		// Existing is the version recorded in the application, empty when
		// the application lacks the dependency.
		Existing string
		Status   Compatibility
	}

	// CompatibilityReport groups the entries of one module by status.
	CompatibilityReport struct {
		Module       identity.PackagePath
		Compatible   []CompatibilityEntry
		NonStrict    []CompatibilityEntry
		Incompatible []CompatibilityEntry
	}
)

// IsCompatible reports whether the module can join the application without
// an incompatible dependency change.
func (r CompatibilityReport) IsCompatible() bool { return len(r.Incompatible) == 0 }

// CheckCompatibility compares the dependencies declared by module with the
// set recorded for an application version.
func CheckCompatibility(module ModuleDependencySet, existing []identity.Dependency) CompatibilityReport {
	recorded := make(map[string]identity.Dependency, len(existing))
	for _, dep := range existing {
		recorded[dep.Key()] = dep
	}

	report := CompatibilityReport{Module: module.Module}
	for _, dep := range module.Dependencies {
		entry := CompatibilityEntry{Dependency: dep}
		have, ok := recorded[dep.Key()]
		if ok {
			entry.Existing = have.Version()
		}
		entry.Status = classify(dep.Version(), entry.Existing, ok)

		switch entry.Status {
		case Compatible:
			report.Compatible = append(report.Compatible, entry)
		case NonStrict:
			report.NonStrict = append(report.NonStrict, entry)
		case Incompatible:
			report.Incompatible = append(report.Incompatible, entry)
		}
	}
	return report
}

func classify(want, have string, present bool) Compatibility {
	switch {
	case !present:
		return NonStrict
	case want == have, want == "":
		return Compatible
	case have == "":
		return NonStrict
	}

	wv, errW := semver.NewVersion(want)
	hv, errH := semver.NewVersion(have)
	if errW != nil || errH != nil {
		return Incompatible
	}
	if wv.Equal(hv) {
		return Compatible
	}
	if wv.Major() != hv.Major() {
		return Incompatible
	}
	return NonStrict
}
