// SPDX-License-Identifier: MPL-2.0

package cauldron

import (
	"fmt"
	"slices"

	"github.com/Masterminds/semver/v3"
)

// untaggedSchemaVersion is assumed for documents without a schemaVersion.
const untaggedSchemaVersion = "1.0.0"

// Migration upgrades a raw document tree from one schema version to the
// next. Apply must be pure with respect to anything but raw.
type Migration struct {
	From  string
	To    string
	Apply func(raw map[string]any) error
}

var migrations = []Migration{
	{From: "1.0.0", To: "2.0.0", Apply: migrateV1ToV2},
	{From: "2.0.0", To: "3.0.0", Apply: migrateV2ToV3},
}

// Migrations returns the ordered migration chain.
func Migrations() []Migration {
	return slices.Clone(migrations)
}

// SchemaVersionOf returns the schema version tag of a raw document.
func SchemaVersionOf(raw map[string]any) (string, error) {
	tag, ok := raw["schemaVersion"]
	if !ok {
		return untaggedSchemaVersion, nil
	}
	s, ok := tag.(string)
	if !ok || s == "" {
		return "", &SchemaError{Reason: fmt.Sprintf("schemaVersion must be a non-empty string, got %v", tag)}
	}
	return s, nil
}

// Migrate upgrades raw in place to CurrentSchemaVersion and reports whether
// anything changed. A current document is left untouched. A tag newer than
// CurrentSchemaVersion, or one with no migration step, is a SchemaError.
func Migrate(raw map[string]any) (changed bool, err error) {
	tag, err := SchemaVersionOf(raw)
	if err != nil {
		return false, err
	}
	found, perr := semver.StrictNewVersion(tag)
	if perr != nil {
		return false, &SchemaError{Found: tag, Reason: "not a semantic version", Err: perr}
	}
	if found.GreaterThan(semver.MustParse(CurrentSchemaVersion)) {
		return false, &SchemaError{Found: tag, Reason: fmt.Sprintf("newer than the supported %s", CurrentSchemaVersion)}
	}

	for tag != CurrentSchemaVersion {
		i := slices.IndexFunc(migrations, func(m Migration) bool { return m.From == tag })
		if i < 0 {
			return changed, &SchemaError{Found: tag, Reason: "no migration step from this version"}
		}
		m := migrations[i]
		if err := m.Apply(raw); err != nil {
			return changed, &SchemaError{Found: tag, Reason: fmt.Sprintf("migration to %s failed", m.To), Err: err}
		}
		raw["schemaVersion"] = m.To
		tag = m.To
		changed = true
	}
	return changed, nil
}

// migrateV1ToV2 renames the version key "version" to "name" and moves
// nativeDeps and miniApps.container under a single container object.
func migrateV1ToV2(raw map[string]any) error {
	return eachVersion(raw, func(v map[string]any) error {
		if name, ok := v["version"]; ok {
			if _, has := v["name"]; !has {
				v["name"] = name
			}
			delete(v, "version")
		}

		container, err := object(v, "container")
		if err != nil {
			return err
		}
		if deps, ok := v["nativeDeps"]; ok {
			container["nativeDeps"] = deps
			delete(v, "nativeDeps")
		}
		if miniApps, ok := v["miniApps"]; ok {
			switch m := miniApps.(type) {
			case map[string]any:
				if list, ok := m["container"]; ok {
					container["miniApps"] = list
				}
			case []any:
				container["miniApps"] = m
			default:
				return fmt.Errorf("version %v: miniApps has unexpected type %T", v["name"], miniApps)
			}
			delete(v, "miniApps")
		}
		v["container"] = container
		return nil
	})
}

// migrateV2ToV3 replaces the binary path with a binaryStore object and
// fills in the collections introduced by 3.0.0.
func migrateV2ToV3(raw map[string]any) error {
	if _, ok := raw["nativeApps"]; !ok {
		raw["nativeApps"] = []any{}
	}
	return eachVersion(raw, func(v map[string]any) error {
		if bin, ok := v["binary"]; ok {
			if p, isString := bin.(string); isString && p != "" {
				v["binaryStore"] = map[string]any{"path": p}
			}
			delete(v, "binary")
		}
		if _, ok := v["isReleased"]; !ok {
			v["isReleased"] = false
		}
		if _, ok := v["yarnLocks"]; !ok {
			v["yarnLocks"] = map[string]any{}
		}
		if _, ok := v["codePush"]; !ok {
			v["codePush"] = []any{}
		}

		container, err := object(v, "container")
		if err != nil {
			return err
		}
		for _, key := range []string{"miniApps", "nativeDeps", "jsApiImpls"} {
			if _, ok := container[key]; !ok {
				container[key] = []any{}
			}
		}
		v["container"] = container
		return nil
	})
}

// eachVersion calls fn for every version object of raw, filling in absent
// platform and version lists along the way.
func eachVersion(raw map[string]any, fn func(v map[string]any) error) error {
	apps, err := list(raw, "nativeApps")
	if err != nil {
		return err
	}
	for _, a := range apps {
		app, ok := a.(map[string]any)
		if !ok {
			return fmt.Errorf("native application has unexpected type %T", a)
		}
		platforms, err := list(app, "platforms")
		if err != nil {
			return err
		}
		app["platforms"] = platforms
		for _, p := range platforms {
			platform, ok := p.(map[string]any)
			if !ok {
				return fmt.Errorf("platform has unexpected type %T", p)
			}
			versions, err := list(platform, "versions")
			if err != nil {
				return err
			}
			platform["versions"] = versions
			for _, v := range versions {
				version, ok := v.(map[string]any)
				if !ok {
					return fmt.Errorf("version has unexpected type %T", v)
				}
				if err := fn(version); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// list returns m[key] as a list, or an empty list when absent.
func list(m map[string]any, key string) ([]any, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return []any{}, nil
	}
	l, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%s has unexpected type %T", key, v)
	}
	return l, nil
}

// object returns m[key] as an object, or an empty object when absent.
func object(m map[string]any, key string) (map[string]any, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return map[string]any{}, nil
	}
	o, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s has unexpected type %T", key, v)
	}
	return o, nil
}
