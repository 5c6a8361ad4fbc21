// SPDX-License-Identifier: MPL-2.0

package cauldron

import (
	"fmt"
	"maps"
	"path"
	"slices"

	"github.com/google/uuid"

	"github.com/ernfleet/cauldron/pkg/identity"
)

// AddNativeApp adds an empty native application.
func (d *Document) AddNativeApp(name string) (*NativeApplication, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	if _, err := d.NativeApp(name); err == nil {
		return nil, &DuplicateError{Kind: "native application", Key: name}
	}
	app := &NativeApplication{Name: name, Platforms: []*Platform{}}
	d.NativeApps = append(d.NativeApps, app)
	return app, nil
}

// AddPlatform adds an empty platform, creating the native application if
// needed.
func (d *Document) AddPlatform(desc identity.Descriptor) (*Platform, error) {
	if err := desc.Platform.Validate(); err != nil {
		return nil, err
	}
	app, err := d.NativeApp(desc.Name)
	if err != nil {
		if app, err = d.AddNativeApp(desc.Name); err != nil {
			return nil, err
		}
	}
	if _, err := app.platform(desc); err == nil {
		return nil, &DuplicateError{Kind: "platform", Key: desc.WithoutVersion().String()}
	}
	p := &Platform{Name: desc.Platform, Versions: []*Version{}}
	app.Platforms = append(app.Platforms, p)
	return p, nil
}

// AddVersion adds an empty, unreleased version, creating the native
// application and platform if needed.
func (d *Document) AddVersion(desc identity.Descriptor) (*Version, error) {
	if err := desc.RequireComplete(); err != nil {
		return nil, err
	}
	if err := checkName(desc.Version); err != nil {
		return nil, err
	}
	p, err := d.Platform(desc)
	if err != nil {
		if p, err = d.AddPlatform(desc); err != nil {
			return nil, err
		}
	}
	if _, err := p.version(desc); err == nil {
		return nil, &DuplicateError{Kind: "version", Key: desc.String()}
	}
	v := newVersion(desc.Version)
	p.Versions = append(p.Versions, v)
	return v, nil
}

// CopyVersion creates the version to from the container, container version,
// yarn locks and config of from. The new version is unreleased.
func (d *Document) CopyVersion(from, to identity.Descriptor) (*Version, error) {
	src, err := d.Version(from)
	if err != nil {
		return nil, err
	}
	dst, err := d.AddVersion(to)
	if err != nil {
		return nil, err
	}
	dst.ContainerVersion = src.ContainerVersion
	dst.Container = Container{
		MiniApps:   slices.Clone(src.Container.MiniApps),
		NativeDeps: slices.Clone(src.Container.NativeDeps),
		JSAPIImpls: slices.Clone(src.Container.JSAPIImpls),
	}
	dst.normalize()
	dst.YarnLocks = maps.Clone(src.YarnLocks)
	if src.Config != nil {
		dst.Config = maps.Clone(src.Config)
	}
	return dst, nil
}

// AddMiniApp appends p to the MiniApps of desc. A MiniApp with the same
// identity must not already be present.
func (d *Document) AddMiniApp(desc identity.Descriptor, p identity.PackagePath) error {
	v, err := d.unreleased(desc, "add MiniApp")
	if err != nil {
		return err
	}
	if v.Container.MiniApps.index(p) >= 0 {
		return &DuplicateError{Kind: "MiniApp", Key: p.Identity()}
	}
	v.Container.MiniApps = append(v.Container.MiniApps, p)
	return nil
}

// UpdateMiniApp replaces the MiniApp sharing p's identity with p.
func (d *Document) UpdateMiniApp(desc identity.Descriptor, p identity.PackagePath) error {
	v, err := d.unreleased(desc, "update MiniApp")
	if err != nil {
		return err
	}
	i := v.Container.MiniApps.index(p)
	if i < 0 {
		return &NotFoundError{Kind: "MiniApp", Key: p.Identity()}
	}
	v.Container.MiniApps[i] = p
	return nil
}

// RemoveMiniApp removes the MiniApp sharing p's identity.
func (d *Document) RemoveMiniApp(desc identity.Descriptor, p identity.PackagePath) error {
	v, err := d.unreleased(desc, "remove MiniApp")
	if err != nil {
		return err
	}
	i := v.Container.MiniApps.index(p)
	if i < 0 {
		return &NotFoundError{Kind: "MiniApp", Key: p.Identity()}
	}
	v.Container.MiniApps = slices.Delete(v.Container.MiniApps, i, i+1)
	return nil
}

// AddNativeDependency records dep for desc. An existing dependency with the
// same name and scope has its version replaced in place.
func (d *Document) AddNativeDependency(desc identity.Descriptor, dep identity.Dependency) error {
	if err := checkPinned(dep); err != nil {
		return err
	}
	v, err := d.unreleased(desc, "add native dependency")
	if err != nil {
		return err
	}
	if i := v.nativeDepIndex(dep); i >= 0 {
		v.Container.NativeDeps[i] = dep
		return nil
	}
	v.Container.NativeDeps = append(v.Container.NativeDeps, dep)
	return nil
}

// UpdateNativeDependency changes the version of an existing dependency.
func (d *Document) UpdateNativeDependency(desc identity.Descriptor, dep identity.Dependency) error {
	if err := checkPinned(dep); err != nil {
		return err
	}
	v, err := d.unreleased(desc, "update native dependency")
	if err != nil {
		return err
	}
	i := v.nativeDepIndex(dep)
	if i < 0 {
		return &NotFoundError{Kind: "native dependency", Key: dep.Key()}
	}
	v.Container.NativeDeps[i] = dep
	return nil
}

// RemoveNativeDependency removes the dependency sharing dep's name and scope.
func (d *Document) RemoveNativeDependency(desc identity.Descriptor, dep identity.Dependency) error {
	v, err := d.unreleased(desc, "remove native dependency")
	if err != nil {
		return err
	}
	i := v.nativeDepIndex(dep)
	if i < 0 {
		return &NotFoundError{Kind: "native dependency", Key: dep.Key()}
	}
	v.Container.NativeDeps = slices.Delete(v.Container.NativeDeps, i, i+1)
	return nil
}

// SetNativeDependencies replaces the native dependencies of desc with deps.
func (d *Document) SetNativeDependencies(desc identity.Descriptor, deps []identity.Dependency) error {
	seen := make(map[string]bool, len(deps))
	for _, dep := range deps {
		if err := checkPinned(dep); err != nil {
			return err
		}
		if seen[dep.Key()] {
			return &DuplicateError{Kind: "native dependency", Key: dep.Key()}
		}
		seen[dep.Key()] = true
	}
	v, err := d.unreleased(desc, "set native dependencies")
	if err != nil {
		return err
	}
	v.Container.NativeDeps = slices.Clone(deps)
	if v.Container.NativeDeps == nil {
		v.Container.NativeDeps = []identity.Dependency{}
	}
	return nil
}

// AddJSAPIImpl appends a JS API implementation to desc.
func (d *Document) AddJSAPIImpl(desc identity.Descriptor, p identity.PackagePath) error {
	v, err := d.unreleased(desc, "add JS API implementation")
	if err != nil {
		return err
	}
	if v.Container.JSAPIImpls.index(p) >= 0 {
		return &DuplicateError{Kind: "JS API implementation", Key: p.Identity()}
	}
	v.Container.JSAPIImpls = append(v.Container.JSAPIImpls, p)
	return nil
}

// RemoveJSAPIImpl removes the JS API implementation sharing p's identity.
func (d *Document) RemoveJSAPIImpl(desc identity.Descriptor, p identity.PackagePath) error {
	v, err := d.unreleased(desc, "remove JS API implementation")
	if err != nil {
		return err
	}
	i := v.Container.JSAPIImpls.index(p)
	if i < 0 {
		return &NotFoundError{Kind: "JS API implementation", Key: p.Identity()}
	}
	v.Container.JSAPIImpls = slices.Delete(v.Container.JSAPIImpls, i, i+1)
	return nil
}

// SetContainerVersion sets the container version of desc.
func (d *Document) SetContainerVersion(desc identity.Descriptor, containerVersion string) error {
	if err := checkName(containerVersion); err != nil {
		return err
	}
	v, err := d.unreleased(desc, "set container version")
	if err != nil {
		return err
	}
	v.ContainerVersion = containerVersion
	return nil
}

// MarkReleased flags desc as released. Marking a released version again is
// a no-op.
func (d *Document) MarkReleased(desc identity.Descriptor) error {
	v, err := d.Version(desc)
	if err != nil {
		return err
	}
	v.IsReleased = true
	return nil
}

// SetBinaryStore points desc at its binaries. Allowed on released versions.
func (d *Document) SetBinaryStore(desc identity.Descriptor, store BinaryStore) error {
	v, err := d.Version(desc)
	if err != nil {
		return err
	}
	if store.URL == "" && store.Path == "" {
		v.BinaryStore = nil
		return nil
	}
	v.BinaryStore = &store
	return nil
}

// SetConfig replaces the config at the level desc addresses: the document
// root for an empty descriptor, otherwise the application, platform or
// version it names.
func (d *Document) SetConfig(desc identity.Descriptor, cfg map[string]any) error {
	cfg = maps.Clone(cfg)
	switch {
	case desc.Name == "":
		d.Config = cfg
	case !desc.HasPlatform():
		app, err := d.NativeApp(desc.Name)
		if err != nil {
			return err
		}
		app.Config = cfg
	case !desc.HasVersion():
		p, err := d.Platform(desc)
		if err != nil {
			return err
		}
		p.Config = cfg
	default:
		v, err := d.Version(desc)
		if err != nil {
			return err
		}
		v.Config = cfg
	}
	return nil
}

// SetYarnLock stages data as the yarn lock key of desc and returns the new
// blob id. The blob is written by Save. Allowed on released versions.
func (d *Document) SetYarnLock(desc identity.Descriptor, key string, data []byte) (string, error) {
	if err := checkName(key); err != nil {
		return "", err
	}
	v, err := d.Version(desc)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	if d.staged == nil {
		d.staged = make(map[string][]byte)
	}
	d.staged[id] = slices.Clone(data)
	if v.YarnLocks == nil {
		v.YarnLocks = map[string]string{}
	}
	v.YarnLocks[key] = id
	return id, nil
}

// YarnLockPath returns the working-copy path of the yarn lock key of desc.
func (d *Document) YarnLockPath(desc identity.Descriptor, key string) (string, error) {
	v, err := d.Version(desc)
	if err != nil {
		return "", err
	}
	id, ok := v.YarnLocks[key]
	if !ok {
		return "", &NotFoundError{Kind: "yarn lock", Key: desc.String() + "/" + key}
	}
	return path.Join(YarnLockDir, id), nil
}

// AddCodePushEntry appends a code push release to desc. Allowed on released
// versions.
func (d *Document) AddCodePushEntry(desc identity.Descriptor, entry CodePushEntry) error {
	if entry.DeploymentName == "" {
		return &InvariantError{Path: desc.String(), Reason: "code push entry requires a deployment name"}
	}
	if entry.RolloutPercent < 0 || entry.RolloutPercent > 100 {
		return &InvariantError{Path: desc.String(), Reason: fmt.Sprintf("rollout percent %d out of range 0-100", entry.RolloutPercent)}
	}
	v, err := d.Version(desc)
	if err != nil {
		return err
	}
	entry.MiniApps = slices.Clone(entry.MiniApps)
	if entry.MiniApps == nil {
		entry.MiniApps = PackageList{}
	}
	v.CodePush = append(v.CodePush, entry)
	return nil
}

// unreleased returns the version at desc, failing when it is released.
func (d *Document) unreleased(desc identity.Descriptor, op string) (*Version, error) {
	v, err := d.Version(desc)
	if err != nil {
		return nil, err
	}
	if v.IsReleased {
		return nil, &ReleasedVersionError{Descriptor: desc, Op: op}
	}
	return v, nil
}

func checkName(name string) error {
	if name == "" {
		return &InvariantError{Reason: "name must not be empty"}
	}
	for _, r := range name {
		if r == ':' || r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			return &InvariantError{Path: name, Reason: "name must not contain ':' or whitespace"}
		}
	}
	return nil
}

func checkPinned(dep identity.Dependency) error {
	if dep.IsZero() {
		return &InvariantError{Reason: "native dependency is empty"}
	}
	if !dep.HasVersion() {
		return &InvariantError{Path: dep.Key(), Reason: "native dependency requires a version"}
	}
	return nil
}
