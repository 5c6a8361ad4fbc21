// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"testing"

	"github.com/ernfleet/cauldron/internal/issue"
	"github.com/ernfleet/cauldron/internal/testutil"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	return testutil.MustWriteFile(t, filepath.Join(dir, ConfigFileName+"."+ConfigFileExt), []byte(content))
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	loaded, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: t.TempDir()})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Path != "" {
		t.Errorf("Path = %q, want empty without a config file", loaded.Path)
	}
	cfg := loaded.Config
	want := DefaultConfig()
	if cfg.Store.Branch != want.Store.Branch || cfg.Store.Remote != want.Store.Remote {
		t.Errorf("Store = %+v, want defaults %+v", cfg.Store, want.Store)
	}
	if cfg.Author != want.Author {
		t.Errorf("Author = %+v, want %+v", cfg.Author, want.Author)
	}
	if cfg.UI.ColorScheme != ColorSchemeAuto {
		t.Errorf("UI.ColorScheme = %q, want auto", cfg.UI.ColorScheme)
	}
	if err := cfg.Store.RequireURL(); !errors.Is(err, ErrStoreNotConfigured) {
		t.Errorf("RequireURL() = %v, want ErrStoreNotConfigured", err)
	}
}

func TestLoad_FromConfigDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeConfig(t, dir, `
store: {
	url: "git@github.com:corp/cauldron.git"
	branch: "develop"
}
resolver: {
	force: true
	exclude: ["react-native-code-push", "@corp/analytics"]
}
ui: color_scheme: "dark"
`)

	loaded, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Path != path {
		t.Errorf("Path = %q, want %q", loaded.Path, path)
	}
	cfg := loaded.Config
	if cfg.Store.URL != "git@github.com:corp/cauldron.git" || cfg.Store.Branch != "develop" {
		t.Errorf("Store = %+v", cfg.Store)
	}
	if cfg.Store.Remote != "origin" {
		t.Errorf("Store.Remote = %q, want default origin", cfg.Store.Remote)
	}
	if !cfg.Resolver.Force || !slices.Equal(cfg.Resolver.Exclude, []string{"react-native-code-push", "@corp/analytics"}) {
		t.Errorf("Resolver = %+v", cfg.Resolver)
	}
	if cfg.UI.ColorScheme != ColorSchemeDark {
		t.Errorf("UI.ColorScheme = %q, want dark", cfg.UI.ColorScheme)
	}
}

func TestLoad_FromWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `store: url: "https://git.corp.example/cauldron.git"`)
	t.Chdir(dir)

	loaded, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: t.TempDir()})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Path != ConfigFileName+"."+ConfigFileExt {
		t.Errorf("Path = %q, want the working directory fallback", loaded.Path)
	}
	if loaded.Config.Store.URL != "https://git.corp.example/cauldron.git" {
		t.Errorf("Store.URL = %q", loaded.Config.Store.URL)
	}
}

func TestLoad_ExplicitFile(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, t.TempDir(), `author: {name: "Release Bot", email: "bot@corp.example"}`)
	loaded, err := NewProvider().Load(context.Background(), LoadOptions{ConfigFilePath: path, ConfigDirPath: t.TempDir()})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Config.Author.Name != "Release Bot" || loaded.Config.Author.Email != "bot@corp.example" {
		t.Errorf("Author = %+v", loaded.Config.Author)
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		missing bool
		wantMsg string
	}{
		{name: "missing_file", missing: true, wantMsg: "config file not found"},
		{name: "syntax_error", content: "store: {", wantMsg: "load configuration"},
		{name: "unknown_field", content: `store: {uri: "x"}`, wantMsg: "load configuration"},
		{name: "bad_color_scheme", content: `ui: color_scheme: "neon"`, wantMsg: "load configuration"},
		{name: "bad_email", content: `author: email: "nobody"`, wantMsg: "load configuration"},
		{name: "versioned_exclude", content: `resolver: exclude: ["react@1.0.0"]`, wantMsg: "must not carry a version"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			path := filepath.Join(dir, "absent.cue")
			if !tt.missing {
				path = writeConfig(t, dir, tt.content)
			}
			_, err := NewProvider().Load(context.Background(), LoadOptions{ConfigFilePath: path})
			if err == nil {
				t.Fatal("Load() expected error")
			}
			var ae *issue.ActionableError
			if !errors.As(err, &ae) {
				t.Fatalf("error should be *issue.ActionableError, got %T", err)
			}
			if ae.Issue != issue.ConfigLoadFailedId {
				t.Errorf("Issue = %v, want ConfigLoadFailedId", ae.Issue)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantMsg)
			}
		})
	}
}

func TestLoad_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewProvider().Load(ctx, LoadOptions{ConfigDirPath: t.TempDir()}); !errors.Is(err, context.Canceled) {
		t.Errorf("Load() error = %v, want context.Canceled", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `store: {url: "https://example.com/file.git", branch: "develop"}`)

	t.Setenv("CAULDRON_STORE_BRANCH", "release")
	t.Setenv("CAULDRON_STORE_WORKING_DIR", "/var/cache/cauldron")
	t.Setenv("CAULDRON_RESOLVER_FORCE", "true")
	t.Setenv("CAULDRON_UI_VERBOSE", "true")

	loaded, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	cfg := loaded.Config
	if cfg.Store.URL != "https://example.com/file.git" {
		t.Errorf("Store.URL = %q, want file value", cfg.Store.URL)
	}
	if cfg.Store.Branch != "release" {
		t.Errorf("Store.Branch = %q, want env override", cfg.Store.Branch)
	}
	if cfg.Store.WorkingDir != "/var/cache/cauldron" {
		t.Errorf("Store.WorkingDir = %q", cfg.Store.WorkingDir)
	}
	if !cfg.Resolver.Force || !cfg.UI.Verbose {
		t.Errorf("bool overrides not applied: %+v %+v", cfg.Resolver, cfg.UI)
	}
}

func TestLoad_InvalidEnvOverride(t *testing.T) {
	t.Setenv("CAULDRON_UI_COLOR_SCHEME", "neon")

	_, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: t.TempDir()})
	if !errors.Is(err, ErrInvalidColorScheme) {
		t.Errorf("Load() error = %v, want ErrInvalidColorScheme", err)
	}
}

func TestConfigDir_Override(t *testing.T) {
	dir := t.TempDir()
	SetConfigDirOverride(dir)
	t.Cleanup(Reset)

	got, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() error = %v", err)
	}
	if got != dir {
		t.Errorf("ConfigDir() = %q, want %q", got, dir)
	}
}

func TestConfigDir_XDG(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("XDG lookup is Linux-only")
	}
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	got, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() error = %v", err)
	}
	if got != filepath.Join(xdg, AppName) && !strings.HasSuffix(got, filepath.Join("Application Support", AppName)) {
		t.Errorf("ConfigDir() = %q", got)
	}
}

func TestCreateDefaultConfig(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested")
	path, err := CreateDefaultConfig(dir)
	if err != nil {
		t.Fatalf("CreateDefaultConfig() error = %v", err)
	}

	loaded, err := NewProvider().Load(context.Background(), LoadOptions{ConfigFilePath: path})
	if err != nil {
		t.Fatalf("generated config does not load: %v", err)
	}
	if loaded.Config.Author != DefaultConfig().Author {
		t.Errorf("Author = %+v", loaded.Config.Author)
	}

	if err := os.WriteFile(path, []byte(`ui: verbose: true`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := CreateDefaultConfig(dir); err != nil {
		t.Fatalf("second CreateDefaultConfig() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `ui: verbose: true` {
		t.Error("CreateDefaultConfig() overwrote an existing file")
	}
}

func TestGenerateCUE_RoundTrip(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Store.URL = "https://github.com/corp/cauldron.git"
	cfg.Store.WorkingDir = "/tmp/cauldron-wc"
	cfg.Resolver.Exclude = []string{"react-native", "@corp/ui"}
	cfg.UI.ColorScheme = ColorSchemeLight

	path := writeConfig(t, t.TempDir(), GenerateCUE(cfg))
	loaded, err := NewProvider().Load(context.Background(), LoadOptions{ConfigFilePath: path})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	got := loaded.Config
	if got.Store != cfg.Store || got.UI != cfg.UI {
		t.Errorf("round trip = %+v, want %+v", got, cfg)
	}
	if !slices.Equal(got.Resolver.Exclude, cfg.Resolver.Exclude) {
		t.Errorf("Resolver.Exclude = %v", got.Resolver.Exclude)
	}
}

func TestSchema(t *testing.T) {
	t.Parallel()

	if !strings.Contains(Schema(), "#Config") {
		t.Error("Schema() should contain the #Config definition")
	}
}
