// SPDX-License-Identifier: MPL-2.0

package cauldron

import (
	"encoding/json"
	"maps"

	"github.com/ernfleet/cauldron/pkg/identity"
)

const (
	// CurrentSchemaVersion is the schema version written by Encode.
	CurrentSchemaVersion = "3.0.0"

	// FileName is the document file at the root of the working copy.
	FileName = "cauldron.json"

	// YarnLockDir holds yarn lock blobs, one file per id.
	YarnLockDir = "yarnlocks"
)

type (
	// Document is the root of the Cauldron tree.
	Document struct {
		SchemaVersion string               `json:"schemaVersion"`
		Config        map[string]any       `json:"config,omitempty"`
		NativeApps    []*NativeApplication `json:"nativeApps"`

		// staged holds yarn lock blobs written by SetYarnLock until Save.
		staged map[string][]byte
	}

	// NativeApplication is a native application and its platforms.
	NativeApplication struct {
		Name      string         `json:"name"`
		Config    map[string]any `json:"config,omitempty"`
		Platforms []*Platform    `json:"platforms"`
	}

	// Platform groups the versions of a native application on one platform.
	Platform struct {
		Name     identity.Platform `json:"name"`
		Config   map[string]any    `json:"config,omitempty"`
		Versions []*Version        `json:"versions"`
	}

	// Version is a single release of a native application.
	Version struct {
		Name             string            `json:"name"`
		IsReleased       bool              `json:"isReleased"`
		ContainerVersion string            `json:"containerVersion,omitempty"`
		Container        Container         `json:"container"`
		YarnLocks        map[string]string `json:"yarnLocks"`
		BinaryStore      *BinaryStore      `json:"binaryStore,omitempty"`
		Config           map[string]any    `json:"config,omitempty"`
		CodePush         []CodePushEntry   `json:"codePush"`
	}

	// Container lists what the native container of a version bundles.
	Container struct {
		MiniApps   PackageList           `json:"miniApps"`
		NativeDeps []identity.Dependency `json:"nativeDeps"`
		JSAPIImpls PackageList           `json:"jsApiImpls"`
	}

	// BinaryStore points at the binaries built for a version.
	BinaryStore struct {
		URL  string `json:"url,omitempty"`
		Path string `json:"path,omitempty"`
	}

	// CodePushEntry records an over-the-air release of MiniApps to a
	// deployment of a version.
	CodePushEntry struct {
		DeploymentName string      `json:"deploymentName"`
		Label          string      `json:"label,omitempty"`
		MiniApps       PackageList `json:"miniApps"`
		Mandatory      bool        `json:"mandatory"`
		RolloutPercent int         `json:"rolloutPercent"`
	}

	// PackageList is an ordered list of package paths, persisted as their
	// canonical strings.
	PackageList []identity.PackagePath
)

// New returns an empty document at the current schema version.
func New() *Document {
	return &Document{
		SchemaVersion: CurrentSchemaVersion,
		NativeApps:    []*NativeApplication{},
	}
}

// MarshalJSON encodes the list as canonical package path strings.
func (l PackageList) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.Strings())
}

// UnmarshalJSON decodes and parses a list of package path strings.
func (l *PackageList) UnmarshalJSON(data []byte) error {
	var raw []string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	list := make(PackageList, 0, len(raw))
	for _, s := range raw {
		p, err := identity.ParsePackagePath(s)
		if err != nil {
			return err
		}
		list = append(list, p)
	}
	*l = list
	return nil
}

// Strings returns the canonical string of every entry.
func (l PackageList) Strings() []string {
	out := make([]string, len(l))
	for i, p := range l {
		out[i] = p.String()
	}
	return out
}

// index returns the position of the entry sharing p's identity, or -1.
func (l PackageList) index(p identity.PackagePath) int {
	for i, e := range l {
		if identity.SamePackage(e, p, true) {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the document, staged blobs included.
func (d *Document) Clone() *Document {
	data, err := json.Marshal(d)
	if err != nil {
		panic("cauldron: clone: " + err.Error())
	}
	out := &Document{}
	if err := json.Unmarshal(data, out); err != nil {
		panic("cauldron: clone: " + err.Error())
	}
	if d.staged != nil {
		out.staged = maps.Clone(d.staged)
	}
	return out
}

// normalize replaces absent collections with empty ones so the encoded tree
// matches the schema.
func (d *Document) normalize() {
	if d.NativeApps == nil {
		d.NativeApps = []*NativeApplication{}
	}
	for _, app := range d.NativeApps {
		if app.Platforms == nil {
			app.Platforms = []*Platform{}
		}
		for _, p := range app.Platforms {
			if p.Versions == nil {
				p.Versions = []*Version{}
			}
			for _, v := range p.Versions {
				v.normalize()
			}
		}
	}
}

func (v *Version) normalize() {
	if v.Container.MiniApps == nil {
		v.Container.MiniApps = PackageList{}
	}
	if v.Container.NativeDeps == nil {
		v.Container.NativeDeps = []identity.Dependency{}
	}
	if v.Container.JSAPIImpls == nil {
		v.Container.JSAPIImpls = PackageList{}
	}
	if v.YarnLocks == nil {
		v.YarnLocks = map[string]string{}
	}
	if v.CodePush == nil {
		v.CodePush = []CodePushEntry{}
	}
	for i := range v.CodePush {
		if v.CodePush[i].MiniApps == nil {
			v.CodePush[i].MiniApps = PackageList{}
		}
	}
}

// newVersion returns an empty, unreleased version.
func newVersion(name string) *Version {
	v := &Version{Name: name}
	v.normalize()
	return v
}
