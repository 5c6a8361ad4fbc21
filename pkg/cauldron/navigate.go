// SPDX-License-Identifier: MPL-2.0

package cauldron

import (
	"github.com/ernfleet/cauldron/pkg/identity"
)

// Release pairs a version with the descriptor that addresses it.
type Release struct {
	Descriptor identity.Descriptor
	Version    *Version
}

// NativeApp returns the native application named name.
func (d *Document) NativeApp(name string) (*NativeApplication, error) {
	for _, app := range d.NativeApps {
		if app.Name == name {
			return app, nil
		}
	}
	return nil, &NotFoundError{Kind: "native application", Key: name}
}

// Platform returns the platform addressed by desc, which must name one.
func (d *Document) Platform(desc identity.Descriptor) (*Platform, error) {
	if !desc.HasPlatform() {
		return nil, &InvariantError{Path: desc.String(), Reason: "descriptor does not name a platform"}
	}
	app, err := d.NativeApp(desc.Name)
	if err != nil {
		return nil, err
	}
	return app.platform(desc)
}

// Version returns the version addressed by the complete descriptor desc.
func (d *Document) Version(desc identity.Descriptor) (*Version, error) {
	if err := desc.RequireComplete(); err != nil {
		return nil, err
	}
	p, err := d.Platform(desc)
	if err != nil {
		return nil, err
	}
	return p.version(desc)
}

// HasVersion reports whether the complete descriptor desc exists.
func (d *Document) HasVersion(desc identity.Descriptor) bool {
	_, err := d.Version(desc)
	return err == nil
}

// Versions returns every release matched by the possibly partial
// descriptor desc, in document order.
func (d *Document) Versions(desc identity.Descriptor) []Release {
	var out []Release
	for _, r := range d.releases() {
		if desc.Matches(r.Descriptor) {
			out = append(out, r)
		}
	}
	return out
}

// Descriptors returns the complete descriptor of every version in the
// document, in document order.
func (d *Document) Descriptors() []identity.Descriptor {
	releases := d.releases()
	out := make([]identity.Descriptor, len(releases))
	for i, r := range releases {
		out[i] = r.Descriptor
	}
	return out
}

func (d *Document) releases() []Release {
	var out []Release
	for _, app := range d.NativeApps {
		for _, p := range app.Platforms {
			for _, v := range p.Versions {
				out = append(out, Release{
					Descriptor: identity.Descriptor{Name: app.Name, Platform: p.Name, Version: v.Name},
					Version:    v,
				})
			}
		}
	}
	return out
}

func (a *NativeApplication) platform(desc identity.Descriptor) (*Platform, error) {
	for _, p := range a.Platforms {
		if p.Name == desc.Platform {
			return p, nil
		}
	}
	return nil, &NotFoundError{Kind: "platform", Key: desc.WithoutVersion().String()}
}

func (p *Platform) version(desc identity.Descriptor) (*Version, error) {
	for _, v := range p.Versions {
		if v.Name == desc.Version {
			return v, nil
		}
	}
	return nil, &NotFoundError{Kind: "version", Key: desc.String()}
}

// MiniApp returns the MiniApp sharing p's identity.
func (v *Version) MiniApp(p identity.PackagePath) (identity.PackagePath, bool) {
	if i := v.Container.MiniApps.index(p); i >= 0 {
		return v.Container.MiniApps[i], true
	}
	return nil, false
}

// NativeDependency returns the native dependency sharing dep's name and scope.
func (v *Version) NativeDependency(dep identity.Dependency) (identity.Dependency, bool) {
	if i := v.nativeDepIndex(dep); i >= 0 {
		return v.Container.NativeDeps[i], true
	}
	return identity.Dependency{}, false
}

func (v *Version) nativeDepIndex(dep identity.Dependency) int {
	for i, d := range v.Container.NativeDeps {
		if d.Same(dep, true) {
			return i
		}
	}
	return -1
}
