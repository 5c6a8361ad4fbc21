// SPDX-License-Identifier: MPL-2.0

package cauldron

import (
	"errors"
	"strings"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"

	"github.com/ernfleet/cauldron/pkg/identity"
)

func TestLoad_EmptyFilesystem(t *testing.T) {
	t.Parallel()

	doc, err := Load(memfs.New())
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if doc.SchemaVersion != CurrentSchemaVersion || len(doc.NativeApps) != 0 {
		t.Errorf("Load(empty) = %+v", doc)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	t.Parallel()

	fs := memfs.New()
	doc := newTestDocument(t)
	if err := doc.AddMiniApp(testRelease, identity.MustParsePackagePath("miniapp-a@1.0")); err != nil {
		t.Fatal(err)
	}
	if err := doc.AddMiniApp(testRelease, identity.MustParsePackagePath("git+ssh://git@github.com/corp/cart.git#main")); err != nil {
		t.Fatal(err)
	}
	if err := doc.AddNativeDependency(testRelease, identity.MustParseDependency("native-lib@3.2.0")); err != nil {
		t.Fatal(err)
	}
	if err := doc.SetContainerVersion(testRelease, "1.0.0"); err != nil {
		t.Fatal(err)
	}
	id, err := doc.SetYarnLock(testRelease, "container", []byte("# yarn lockfile v1\n"))
	if err != nil {
		t.Fatal(err)
	}
	if err := doc.AddCodePushEntry(testRelease, CodePushEntry{
		DeploymentName: "Production",
		Label:          "v3",
		MiniApps:       PackageList{identity.MustParsePackagePath("miniapp-a@1.0.1")},
		RolloutPercent: 25,
	}); err != nil {
		t.Fatal(err)
	}

	if err := Save(fs, doc); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	if _, err := fs.Stat(FileName + ".tmp"); err == nil {
		t.Error("temporary file left behind")
	}

	loaded, err := Load(fs)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	v := mustVersion(t, loaded, testRelease)
	if got := v.Container.MiniApps.Strings(); len(got) != 2 || got[0] != "miniapp-a@1.0" || got[1] != "ssh://git@github.com/corp/cart.git#main" {
		t.Errorf("miniApps = %v", got)
	}
	if _, isGit := v.Container.MiniApps[1].(identity.GitPackage); !isGit {
		t.Errorf("second MiniApp decoded as %T, want GitPackage", v.Container.MiniApps[1])
	}
	if len(v.Container.NativeDeps) != 1 || v.Container.NativeDeps[0].String() != "native-lib@3.2.0" {
		t.Errorf("nativeDeps = %v", v.Container.NativeDeps)
	}
	if v.ContainerVersion != "1.0.0" || len(v.CodePush) != 1 || v.CodePush[0].RolloutPercent != 25 {
		t.Errorf("metadata = %+v", v)
	}

	lockPath, err := loaded.YarnLockPath(testRelease, "container")
	if err != nil {
		t.Fatal(err)
	}
	blob, err := util.ReadFile(fs, lockPath)
	if err != nil {
		t.Fatalf("yarn lock blob not written: %v", err)
	}
	if string(blob) != "# yarn lockfile v1\n" {
		t.Errorf("blob = %q", blob)
	}
	if data, err := ReadYarnLock(fs, loaded, id); err != nil || string(data) != string(blob) {
		t.Errorf("ReadYarnLock() = %q, %v", data, err)
	}
}

func TestEncode_Deterministic(t *testing.T) {
	t.Parallel()

	doc := newTestDocument(t)
	if err := doc.SetConfig(identity.Descriptor{}, map[string]any{"b": 1, "a": 2}); err != nil {
		t.Fatal(err)
	}
	first, err := Encode(doc)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Encode(doc.Clone())
	if err != nil {
		t.Fatal(err)
	}
	if string(first) != string(second) {
		t.Errorf("Encode() not deterministic:\n%s\n%s", first, second)
	}
	if !strings.Contains(string(first), `"schemaVersion": "3.0.0"`) {
		t.Errorf("encoded document lacks the schema tag:\n%s", first)
	}
}

func TestEncode_NeverDowngrades(t *testing.T) {
	t.Parallel()

	doc := newTestDocument(t)
	doc.SchemaVersion = "1.0.0"
	data, err := Encode(doc)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() failed: %v", err)
	}
	if decoded.SchemaVersion != CurrentSchemaVersion {
		t.Errorf("SchemaVersion = %s, want %s", decoded.SchemaVersion, CurrentSchemaVersion)
	}
}

func TestDecode_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    string
		wantErr error
	}{
		{"malformed_json", `{"nativeApps": [`, ErrSchema},
		{"null_root", `null`, ErrSchema},
		{"newer_schema", `{"schemaVersion": "9.0.0", "nativeApps": []}`, ErrSchema},
		{"bad_platform", `{"schemaVersion": "3.0.0", "nativeApps": [{"name": "a", "platforms": [{"name": "tv", "versions": []}]}]}`, ErrSchema},
		{"bad_dependency", `{"schemaVersion": "3.0.0", "nativeApps": [{"name": "a", "platforms": [{"name": "ios", "versions": [
			{"name": "1.0.0", "isReleased": false, "container": {"miniApps": [], "nativeDeps": ["@"], "jsApiImpls": []}, "yarnLocks": {}, "codePush": []}]}]}]}`, identity.ErrParse},
		{"duplicate_dependency", `{"schemaVersion": "3.0.0", "nativeApps": [{"name": "a", "platforms": [{"name": "ios", "versions": [
			{"name": "1.0.0", "isReleased": false, "container": {"miniApps": [], "nativeDeps": ["x@1.0.0", "x@2.0.0"], "jsApiImpls": []}, "yarnLocks": {}, "codePush": []}]}]}]}`, ErrInvariant},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Decode([]byte(tt.data))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Decode() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestReadYarnLock_Missing(t *testing.T) {
	t.Parallel()

	_, err := ReadYarnLock(memfs.New(), New(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("ReadYarnLock(missing) = %v, want ErrNotFound", err)
	}
}
