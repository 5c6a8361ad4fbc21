// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"path/filepath"
	"runtime"
	"testing"
)

// SetHomeDir makes dir the user home for the rest of the test, with the
// cache and config directories below it, so os.UserCacheDir and
// os.UserConfigDir never reach the real profile. The previous values are
// restored when the test ends. Like t.Setenv it cannot be used in parallel
// tests.
func SetHomeDir(t *testing.T, dir string) {
	t.Helper()

	switch runtime.GOOS {
	case "windows":
		t.Setenv("USERPROFILE", dir)
		t.Setenv("LOCALAPPDATA", filepath.Join(dir, "AppData", "Local"))
		t.Setenv("APPDATA", filepath.Join(dir, "AppData", "Roaming"))
	case "darwin":
		t.Setenv("HOME", dir)
	default:
		t.Setenv("HOME", dir)
		t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, ".cache"))
		t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, ".config"))
	}
}
