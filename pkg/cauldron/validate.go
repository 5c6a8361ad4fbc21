// SPDX-License-Identifier: MPL-2.0

package cauldron

import (
	"errors"
	"fmt"
	"slices"

	"github.com/ernfleet/cauldron/pkg/identity"
)

// Validate checks the structural invariants of the whole document and
// returns every violation found, joined.
func (d *Document) Validate() error {
	var errs []error
	if d.SchemaVersion != CurrentSchemaVersion {
		errs = append(errs, &InvariantError{
			Path:   "schemaVersion",
			Reason: fmt.Sprintf("expected %s, got %q", CurrentSchemaVersion, d.SchemaVersion),
		})
	}

	apps := make(map[string]bool, len(d.NativeApps))
	for i, app := range d.NativeApps {
		appPath := fmt.Sprintf("nativeApps[%d]", i)
		if err := checkName(app.Name); err != nil {
			errs = append(errs, &InvariantError{Path: appPath + ".name", Reason: err.Error()})
		}
		if apps[app.Name] {
			errs = append(errs, &InvariantError{Path: appPath, Reason: fmt.Sprintf("duplicate native application %q", app.Name)})
		}
		apps[app.Name] = true

		platforms := make(map[identity.Platform]bool, len(app.Platforms))
		for j, p := range app.Platforms {
			platformPath := fmt.Sprintf("%s.platforms[%d]", appPath, j)
			if err := p.Name.Validate(); err != nil {
				errs = append(errs, &InvariantError{Path: platformPath + ".name", Reason: err.Error()})
			}
			if platforms[p.Name] {
				errs = append(errs, &InvariantError{Path: platformPath, Reason: fmt.Sprintf("duplicate platform %q", p.Name)})
			}
			platforms[p.Name] = true

			versions := make(map[string]bool, len(p.Versions))
			for k, v := range p.Versions {
				versionPath := fmt.Sprintf("%s.versions[%d]", platformPath, k)
				if versions[v.Name] {
					errs = append(errs, &InvariantError{Path: versionPath, Reason: fmt.Sprintf("duplicate version %q", v.Name)})
				}
				versions[v.Name] = true
				errs = append(errs, v.validate(versionPath)...)
			}
		}
	}
	return errors.Join(errs...)
}

func (v *Version) validate(at string) []error {
	var errs []error
	if err := checkName(v.Name); err != nil {
		errs = append(errs, &InvariantError{Path: at + ".name", Reason: err.Error()})
	}

	deps := make(map[string]bool, len(v.Container.NativeDeps))
	for i, dep := range v.Container.NativeDeps {
		depPath := fmt.Sprintf("%s.container.nativeDeps[%d]", at, i)
		if err := checkPinned(dep); err != nil {
			errs = append(errs, &InvariantError{Path: depPath, Reason: err.Error()})
		}
		if deps[dep.Key()] {
			errs = append(errs, &InvariantError{Path: depPath, Reason: fmt.Sprintf("duplicate native dependency %q", dep.Key())})
		}
		deps[dep.Key()] = true
	}

	errs = append(errs, uniquePackages(at+".container.miniApps", v.Container.MiniApps)...)
	errs = append(errs, uniquePackages(at+".container.jsApiImpls", v.Container.JSAPIImpls)...)

	for key, id := range v.YarnLocks {
		if id == "" {
			errs = append(errs, &InvariantError{Path: at + ".yarnLocks." + key, Reason: "empty blob id"})
		}
	}
	for i, e := range v.CodePush {
		if e.DeploymentName == "" {
			errs = append(errs, &InvariantError{Path: fmt.Sprintf("%s.codePush[%d]", at, i), Reason: "missing deployment name"})
		}
	}
	return errs
}

func uniquePackages(at string, list PackageList) []error {
	var errs []error
	seen := make(map[string]bool, len(list))
	for i, p := range list {
		if seen[p.Identity()] {
			errs = append(errs, &InvariantError{
				Path:   fmt.Sprintf("%s[%d]", at, i),
				Reason: fmt.Sprintf("duplicate package %q", p.Identity()),
			})
		}
		seen[p.Identity()] = true
	}
	return errs
}

// CheckReleasedUnchanged verifies that every version released in before is
// still present and released in after, with the same container version and
// container content. Metadata such as binary store, config, yarn locks and
// code push entries may differ.
func CheckReleasedUnchanged(before, after *Document) error {
	var errs []error
	for _, r := range before.releases() {
		if !r.Version.IsReleased {
			continue
		}
		now, err := after.Version(r.Descriptor)
		if err != nil {
			errs = append(errs, &ReleasedVersionError{Descriptor: r.Descriptor, Op: "delete version"})
			continue
		}
		if !now.IsReleased {
			errs = append(errs, &ReleasedVersionError{Descriptor: r.Descriptor, Op: "clear the released flag"})
		}
		if now.ContainerVersion != r.Version.ContainerVersion {
			errs = append(errs, &ReleasedVersionError{Descriptor: r.Descriptor, Op: "change container version"})
		}
		if !sameContainer(now.Container, r.Version.Container) {
			errs = append(errs, &ReleasedVersionError{Descriptor: r.Descriptor, Op: "change container"})
		}
	}
	return errors.Join(errs...)
}

func sameContainer(a, b Container) bool {
	return slices.Equal(a.MiniApps.Strings(), b.MiniApps.Strings()) &&
		slices.Equal(a.JSAPIImpls.Strings(), b.JSAPIImpls.Strings()) &&
		slices.Equal(a.NativeDeps, b.NativeDeps)
}
