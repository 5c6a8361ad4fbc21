// SPDX-License-Identifier: MPL-2.0

package vcs_test

import (
	"context"
	"errors"
	"testing"

	"github.com/go-git/go-billy/v5/util"

	"github.com/ernfleet/cauldron/pkg/vcs"
)

// newRepoFunc returns a fresh working copy of the shared remote under test.
type newRepoFunc func(t *testing.T, name string) vcs.Repository

func writeFile(t *testing.T, repo vcs.Repository, name, content string) {
	t.Helper()
	if err := util.WriteFile(repo.Filesystem(), name, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func readFile(t *testing.T, repo vcs.Repository, name string) (string, bool) {
	t.Helper()
	data, err := util.ReadFile(repo.Filesystem(), name)
	if err != nil {
		return "", false
	}
	return string(data), true
}

func commitAll(t *testing.T, ctx context.Context, repo vcs.Repository, message string) {
	t.Helper()
	if err := repo.AddAll(ctx); err != nil {
		t.Fatalf("AddAll() failed: %v", err)
	}
	if err := repo.Commit(ctx, message); err != nil {
		t.Fatalf("Commit(%q) failed: %v", message, err)
	}
}

func sync(t *testing.T, ctx context.Context, repo vcs.Repository) {
	t.Helper()
	if err := repo.Fetch(ctx); err != nil {
		t.Fatalf("Fetch() failed: %v", err)
	}
	if err := repo.ResetHard(ctx); err != nil {
		t.Fatalf("ResetHard() failed: %v", err)
	}
}

// runContract drives two working copies of one remote through the
// operations a transaction uses and checks the observable behavior.
func runContract(t *testing.T, newRepo newRepoFunc) {
	t.Helper()
	ctx := context.Background()

	first := newRepo(t, "first")
	if err := first.Fetch(ctx); !errors.Is(err, vcs.ErrNotPrepared) {
		t.Errorf("Fetch() before Prepare = %v, want ErrNotPrepared", err)
	}
	if err := first.Prepare(ctx); err != nil {
		t.Fatalf("Prepare() failed: %v", err)
	}
	if err := first.Prepare(ctx); err != nil {
		t.Fatalf("second Prepare() failed: %v", err)
	}
	if err := first.Fetch(ctx); !errors.Is(err, vcs.ErrEmptyRemote) {
		t.Fatalf("Fetch() on empty remote = %v, want ErrEmptyRemote", err)
	}
	if head, err := first.Head(ctx); err != nil || head != "" {
		t.Errorf("Head() before first commit = %q, %v", head, err)
	}

	// Bootstrap the remote.
	writeFile(t, first, "README.md", "cauldron\n")
	commitAll(t, ctx, first, "bootstrap")
	if err := first.Push(ctx, false); err != nil {
		t.Fatalf("bootstrap Push() failed: %v", err)
	}
	bootstrapHead, err := first.Head(ctx)
	if err != nil || bootstrapHead == "" {
		t.Fatalf("Head() after bootstrap = %q, %v", bootstrapHead, err)
	}

	if err := first.AddAll(ctx); err != nil {
		t.Fatal(err)
	}
	if err := first.Commit(ctx, "empty"); !errors.Is(err, vcs.ErrNothingToCommit) {
		t.Errorf("Commit() without changes = %v, want ErrNothingToCommit", err)
	}

	// A second working copy sees the bootstrap and publishes a tagged change.
	second := newRepo(t, "second")
	if err := second.Prepare(ctx); err != nil {
		t.Fatal(err)
	}
	sync(t, ctx, second)
	if got, ok := readFile(t, second, "README.md"); !ok || got != "cauldron\n" {
		t.Fatalf("second copy README.md = %q, %v", got, ok)
	}
	if head, _ := second.Head(ctx); head != bootstrapHead {
		t.Errorf("second Head() = %q, want %q", head, bootstrapHead)
	}
	writeFile(t, second, "data/doc.json", "{}\n")
	commitAll(t, ctx, second, "add doc")
	if err := second.Tag(ctx, "v1"); err != nil {
		t.Fatalf("Tag() failed: %v", err)
	}
	if err := second.Push(ctx, true); err != nil {
		t.Fatalf("Push(withTags) failed: %v", err)
	}

	// The first copy is now behind: its push is rejected.
	writeFile(t, first, "README.md", "changed locally\n")
	commitAll(t, ctx, first, "local change")
	if err := first.Tag(ctx, "v2"); err != nil {
		t.Fatalf("Tag() on local commit failed: %v", err)
	}
	if err := first.Push(ctx, true); !errors.Is(err, vcs.ErrNonFastForward) {
		t.Fatalf("Push() behind remote = %v, want ErrNonFastForward", err)
	}

	// Reset discards the unpushed commit and untracked drift.
	writeFile(t, first, "drift.txt", "untracked")
	sync(t, ctx, first)
	if got, _ := readFile(t, first, "README.md"); got != "cauldron\n" {
		t.Errorf("README.md after reset = %q, want remote content", got)
	}
	if _, ok := readFile(t, first, "data/doc.json"); !ok {
		t.Error("data/doc.json missing after reset")
	}
	if _, ok := readFile(t, first, "drift.txt"); ok {
		t.Error("untracked drift.txt survived the reset")
	}
	secondHead, _ := second.Head(ctx)
	if head, _ := first.Head(ctx); head != secondHead {
		t.Errorf("first Head() after reset = %q, want %q", head, secondHead)
	}

	if err := first.Tag(ctx, "v1"); !errors.Is(err, vcs.ErrTagExists) {
		t.Errorf("Tag() with taken name = %v, want ErrTagExists", err)
	}

	// The tag of the rejected push survives the reset until deleted.
	if err := first.Tag(ctx, "v2"); !errors.Is(err, vcs.ErrTagExists) {
		t.Errorf("Tag() after reset = %v, want the unpushed local tag to remain", err)
	}
	for range 2 {
		if err := first.DeleteTag(ctx, "v2"); err != nil {
			t.Fatalf("DeleteTag() failed: %v", err)
		}
	}
	if err := first.Tag(ctx, "v2"); err != nil {
		t.Fatalf("Tag() after DeleteTag failed: %v", err)
	}
	if err := first.DeleteTag(ctx, "v2"); err != nil {
		t.Fatal(err)
	}

	// Deletions are staged by AddAll.
	if err := first.Filesystem().Remove("data/doc.json"); err != nil {
		t.Fatal(err)
	}
	commitAll(t, ctx, first, "remove doc")
	if err := first.Push(ctx, false); err != nil {
		t.Fatalf("Push() after reset failed: %v", err)
	}
	sync(t, ctx, second)
	if _, ok := readFile(t, second, "data/doc.json"); ok {
		t.Error("deletion did not reach the second copy")
	}
}
