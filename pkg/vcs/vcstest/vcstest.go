// SPDX-License-Identifier: MPL-2.0

// Package vcstest provides an in-memory vcs.Repository and remote for
// exercising code that drives a working copy, without git or a filesystem.
package vcstest

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"path"
	"slices"
	"sync"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/google/uuid"

	"github.com/ernfleet/cauldron/pkg/vcs"
)

type (
	// Commit is a full snapshot of the tracked files.
	Commit struct {
		ID      string
		Message string
		Files   map[string][]byte
	}

	// Remote is an in-memory remote holding the history of one branch and
	// its tags. It is safe for concurrent use.
	Remote struct {
		mu        sync.Mutex
		commits   []Commit
		tags      map[string]string
		failFetch error
		failPush  error
		pushes    int
	}

	// Repository is a working copy of a Remote backed by an in-memory
	// filesystem.
	Repository struct {
		remote *Remote
		name   string
		fs     billy.Filesystem

		mu       sync.Mutex
		prepared bool
		fetched  int // remote history length at the last fetch, -1 before
		base     int // remote history length the local branch builds on
		local    []Commit
		staged   map[string][]byte
		tags     map[string]string
	}
)

var _ vcs.Repository = (*Repository)(nil)

// NewRemote returns an empty remote.
func NewRemote() *Remote {
	return &Remote{tags: make(map[string]string)}
}

// Head returns the id of the remote head commit, or "" when empty.
func (r *Remote) Head() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.commits) == 0 {
		return ""
	}
	return r.commits[len(r.commits)-1].ID
}

// Commits returns the remote history, oldest first.
func (r *Remote) Commits() []Commit {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.commits)
}

// Tags returns the remote tags mapped to commit ids.
func (r *Remote) Tags() map[string]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return maps.Clone(r.tags)
}

// Pushes returns how many pushes the remote accepted.
func (r *Remote) Pushes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pushes
}

// File returns the content of name at the remote head.
func (r *Remote) File(name string) ([]byte, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.commits) == 0 {
		return nil, false
	}
	data, ok := r.commits[len(r.commits)-1].Files[name]
	return data, ok
}

// FailFetch makes every Fetch fail with err until called with nil.
func (r *Remote) FailFetch(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failFetch = err
}

// FailPush makes every Push fail with err until called with nil.
func (r *Remote) FailPush(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failPush = err
}

// Advance appends a commit to the remote as if another client pushed it.
// files are applied on top of the current head; a nil value deletes a file.
func (r *Remote) Advance(message string, files map[string][]byte) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot := map[string][]byte{}
	if len(r.commits) > 0 {
		snapshot = maps.Clone(r.commits[len(r.commits)-1].Files)
	}
	for name, data := range files {
		if data == nil {
			delete(snapshot, name)
			continue
		}
		snapshot[name] = slices.Clone(data)
	}
	c := Commit{ID: uuid.NewString(), Message: message, Files: snapshot}
	r.commits = append(r.commits, c)
	return c.ID
}

// NewRepository returns a working copy of remote. name identifies the working
// copy, like a directory would.
func NewRepository(remote *Remote, name string) *Repository {
	return &Repository{
		remote:  remote,
		name:    name,
		fs:      memfs.New(),
		fetched: -1,
		tags:    make(map[string]string),
	}
}

// Filesystem returns the in-memory working tree.
func (r *Repository) Filesystem() billy.Filesystem { return r.fs }

// WorkingDir returns the name given to NewRepository.
func (r *Repository) WorkingDir() string { return r.name }

// Prepare marks the working copy as initialized.
func (r *Repository) Prepare(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prepared = true
	return nil
}

// Fetch records the current remote history length.
func (r *Repository) Fetch(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.prepared {
		return vcs.ErrNotPrepared
	}

	r.remote.mu.Lock()
	defer r.remote.mu.Unlock()
	if r.remote.failFetch != nil {
		return r.remote.failFetch
	}
	if len(r.remote.commits) == 0 {
		return vcs.ErrEmptyRemote
	}
	r.fetched = len(r.remote.commits)
	return nil
}

// ResetHard replaces the working tree with the fetched remote head and
// drops unpushed commits. Local tags are kept, as git keeps them.
func (r *Repository) ResetHard(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.prepared {
		return vcs.ErrNotPrepared
	}
	if r.fetched < 0 {
		return errors.New("reset: nothing fetched")
	}

	r.remote.mu.Lock()
	files := r.remote.commits[r.fetched-1].Files
	r.remote.mu.Unlock()

	if err := clearFilesystem(r.fs); err != nil {
		return err
	}
	for name, data := range files {
		if err := util.WriteFile(r.fs, name, data, 0o644); err != nil {
			return err
		}
	}
	r.base = r.fetched
	r.local = nil
	r.staged = nil
	return nil
}

// AddAll snapshots the working tree as the next commit content.
func (r *Repository) AddAll(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.prepared {
		return vcs.ErrNotPrepared
	}
	files, err := snapshot(r.fs)
	if err != nil {
		return err
	}
	r.staged = files
	return nil
}

// Commit records the staged snapshot.
func (r *Repository) Commit(_ context.Context, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.prepared {
		return vcs.ErrNotPrepared
	}
	if r.staged == nil || equalFiles(r.staged, r.headFilesLocked()) {
		return vcs.ErrNothingToCommit
	}
	r.local = append(r.local, Commit{ID: uuid.NewString(), Message: message, Files: r.staged})
	r.staged = nil
	return nil
}

// Tag tags the local head.
func (r *Repository) Tag(_ context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	head := r.headLocked()
	if head == "" {
		return errors.New("tag: no commit to tag")
	}
	r.remote.mu.Lock()
	_, onRemote := r.remote.tags[name]
	r.remote.mu.Unlock()
	if _, ok := r.tags[name]; ok || onRemote {
		return fmt.Errorf("%w: %s", vcs.ErrTagExists, name)
	}
	r.tags[name] = head
	return nil
}

// DeleteTag removes a local tag.
func (r *Repository) DeleteTag(_ context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.prepared {
		return vcs.ErrNotPrepared
	}
	delete(r.tags, name)
	return nil
}

// Push appends the local commits to the remote when it has not advanced
// since the local branch was reset.
func (r *Repository) Push(ctx context.Context, withTags bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.prepared {
		return vcs.ErrNotPrepared
	}

	r.remote.mu.Lock()
	defer r.remote.mu.Unlock()
	if r.remote.failPush != nil {
		return r.remote.failPush
	}
	if len(r.remote.commits) != r.base {
		return vcs.ErrNonFastForward
	}
	if len(r.local) == 0 && (!withTags || len(r.tags) == 0) {
		return nil
	}

	r.remote.commits = append(r.remote.commits, r.local...)
	r.base = len(r.remote.commits)
	r.fetched = r.base
	r.local = nil
	if withTags {
		for name, id := range r.tags {
			r.remote.tags[name] = id
		}
		r.tags = make(map[string]string)
	}
	r.remote.pushes++
	return nil
}

// Head returns the local head commit id.
func (r *Repository) Head(_ context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.headLocked(), nil
}

func (r *Repository) headLocked() string {
	if len(r.local) > 0 {
		return r.local[len(r.local)-1].ID
	}
	if r.base == 0 {
		return ""
	}
	r.remote.mu.Lock()
	defer r.remote.mu.Unlock()
	return r.remote.commits[r.base-1].ID
}

func (r *Repository) headFilesLocked() map[string][]byte {
	if len(r.local) > 0 {
		return r.local[len(r.local)-1].Files
	}
	if r.base == 0 {
		return map[string][]byte{}
	}
	r.remote.mu.Lock()
	defer r.remote.mu.Unlock()
	return r.remote.commits[r.base-1].Files
}

// snapshot reads every regular file of fs.
func snapshot(fs billy.Filesystem) (map[string][]byte, error) {
	files := map[string][]byte{}
	var walk func(dir string) error
	walk = func(dir string) error {
		entries, err := fs.ReadDir(dir)
		if errors.Is(err, os.ErrNotExist) && dir == "" {
			return nil
		}
		if err != nil {
			return err
		}
		for _, e := range entries {
			name := path.Join(dir, e.Name())
			if e.IsDir() {
				if err := walk(name); err != nil {
					return err
				}
				continue
			}
			data, err := util.ReadFile(fs, name)
			if err != nil {
				return err
			}
			files[name] = data
		}
		return nil
	}
	return files, walk("")
}

func clearFilesystem(fs billy.Filesystem) error {
	entries, err := fs.ReadDir("")
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := util.RemoveAll(fs, e.Name()); err != nil {
			return err
		}
	}
	return nil
}

func equalFiles(a, b map[string][]byte) bool {
	return maps.EqualFunc(a, b, func(x, y []byte) bool { return string(x) == string(y) })
}
