// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
)

// NewBareRemote initializes an empty bare git repository under a fresh
// temporary directory and returns its path, usable as a remote URL.
func NewBareRemote(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "remote.git")
	if _, err := git.PlainInit(dir, true); err != nil {
		t.Fatalf("failed to create bare remote: %v", err)
	}
	return dir
}
