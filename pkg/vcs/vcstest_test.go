// SPDX-License-Identifier: MPL-2.0

package vcs_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ernfleet/cauldron/pkg/vcs"
	"github.com/ernfleet/cauldron/pkg/vcs/vcstest"
)

func TestFakeRepository_Contract(t *testing.T) {
	t.Parallel()

	remote := vcstest.NewRemote()
	runContract(t, func(_ *testing.T, name string) vcs.Repository {
		return vcstest.NewRepository(remote, name)
	})

	if got := len(remote.Commits()); got != 3 {
		t.Errorf("remote history has %d commits, want 3", got)
	}
	if _, ok := remote.Tags()["v1"]; !ok {
		t.Error("tag v1 not pushed")
	}
}

func TestFakeRemote_FaultInjection(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	remote := vcstest.NewRemote()
	remote.Advance("seed", map[string][]byte{"a.txt": []byte("a")})
	repo := vcstest.NewRepository(remote, "wc")
	if err := repo.Prepare(ctx); err != nil {
		t.Fatal(err)
	}

	boom := errors.New("network down")
	remote.FailFetch(boom)
	if err := repo.Fetch(ctx); !errors.Is(err, boom) {
		t.Errorf("Fetch() = %v, want injected error", err)
	}
	remote.FailFetch(nil)
	sync(t, ctx, repo)

	writeFile(t, repo, "b.txt", "b")
	commitAll(t, ctx, repo, "add b")
	remote.FailPush(boom)
	if err := repo.Push(ctx, false); !errors.Is(err, boom) {
		t.Errorf("Push() = %v, want injected error", err)
	}
	if remote.Pushes() != 0 {
		t.Errorf("Pushes() = %d after a failed push", remote.Pushes())
	}
	remote.FailPush(nil)
	if err := repo.Push(ctx, false); err != nil {
		t.Fatalf("Push() after clearing the fault failed: %v", err)
	}
	if data, ok := remote.File("b.txt"); !ok || string(data) != "b" {
		t.Errorf("remote b.txt = %q, %v", data, ok)
	}

	remote.Advance("delete a", map[string][]byte{"a.txt": nil})
	if _, ok := remote.File("a.txt"); ok {
		t.Error("Advance with nil content should delete the file")
	}
}
