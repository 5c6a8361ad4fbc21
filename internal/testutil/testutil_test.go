// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/go-git/go-git/v5"
)

func TestSetHomeDir(t *testing.T) {
	dir := t.TempDir()
	SetHomeDir(t, dir)

	home, err := os.UserHomeDir()
	if err != nil {
		t.Fatalf("UserHomeDir() error = %v", err)
	}
	if home != dir {
		t.Errorf("UserHomeDir() = %q, want %q", home, dir)
	}
	for name, lookup := range map[string]func() (string, error){
		"UserCacheDir":  os.UserCacheDir,
		"UserConfigDir": os.UserConfigDir,
	} {
		got, err := lookup()
		if err != nil {
			t.Fatalf("%s() error = %v", name, err)
		}
		if !strings.HasPrefix(got, dir) {
			t.Errorf("%s() = %q, want it under %q", name, got, dir)
		}
	}
	if runtime.GOOS == "linux" && os.Getenv("XDG_CACHE_HOME") != filepath.Join(dir, ".cache") {
		t.Errorf("XDG_CACHE_HOME = %q", os.Getenv("XDG_CACHE_HOME"))
	}
}

func TestMustWriteFile_CreatesParents(t *testing.T) {
	t.Parallel()

	name := filepath.Join(t.TempDir(), "a", "b", "cauldron.json")
	if got := MustWriteFile(t, name, []byte("{}")); got != name {
		t.Errorf("MustWriteFile() = %q, want %q", got, name)
	}
	data, err := os.ReadFile(name)
	if err != nil || string(data) != "{}" {
		t.Errorf("ReadFile() = %q, %v", data, err)
	}
}

func TestNewBareRemote(t *testing.T) {
	t.Parallel()

	repo, err := git.PlainOpen(NewBareRemote(t))
	if err != nil {
		t.Fatalf("PlainOpen() error = %v", err)
	}
	cfg, err := repo.Config()
	if err != nil {
		t.Fatalf("Config() error = %v", err)
	}
	if !cfg.Core.IsBare {
		t.Error("remote is not bare")
	}
}
