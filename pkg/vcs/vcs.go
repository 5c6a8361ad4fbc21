// SPDX-License-Identifier: MPL-2.0

// Package vcs abstracts the version control operations the Cauldron store
// needs from its working copy: prepare, fetch, hard reset, stage, commit,
// tag and push. GitRepository implements them with go-git; the vcstest
// subpackage provides an in-memory fake with the same contract.
package vcs

import (
	"context"
	"errors"

	"github.com/go-git/go-billy/v5"
)

var (
	// ErrEmptyRemote is returned by Fetch when the remote has no history for
	// the tracked branch yet.
	ErrEmptyRemote = errors.New("remote has no history for the branch")

	// ErrNothingToCommit is returned by Commit when the staged tree equals
	// the current head.
	ErrNothingToCommit = errors.New("nothing to commit")

	// ErrNonFastForward is returned by Push when the remote branch advanced
	// since the last fetch.
	ErrNonFastForward = errors.New("remote rejected non-fast-forward update")

	// ErrTagExists is returned by Tag when the tag name is already taken.
	ErrTagExists = errors.New("tag already exists")

	// ErrNotPrepared is returned when an operation needs a working copy and
	// Prepare has not run.
	ErrNotPrepared = errors.New("working copy not prepared")
)

// Repository is a local working copy tracking one branch of one remote.
type Repository interface {
	// Prepare makes sure the working copy exists and the remote is
	// registered. It is idempotent.
	Prepare(ctx context.Context) error

	// Fetch updates the remote-tracking branch. It returns ErrEmptyRemote
	// when the remote has no commits on the branch.
	Fetch(ctx context.Context) error

	// ResetHard moves the local branch to the fetched remote head and
	// discards every local change, tracked or not. Local tags are kept.
	ResetHard(ctx context.Context) error

	// AddAll stages every addition, modification and deletion.
	AddAll(ctx context.Context) error

	// Commit records the staged tree. It returns ErrNothingToCommit when the
	// tree is unchanged.
	Commit(ctx context.Context, message string) error

	// Tag creates a lightweight tag at the local head.
	Tag(ctx context.Context, name string) error

	// DeleteTag removes a local tag. Local tags survive ResetHard, so a tag
	// whose push failed must be deleted before the name can be reused.
	// Deleting a missing tag is not an error.
	DeleteTag(ctx context.Context, name string) error

	// Push sends the local branch, and all local tags when withTags is set.
	Push(ctx context.Context, withTags bool) error

	// Head returns the local head commit id, or "" before the first commit.
	Head(ctx context.Context) (string, error)

	// Filesystem returns the working tree.
	Filesystem() billy.Filesystem

	// WorkingDir identifies the working copy; transactions on the same
	// working copy are serialized on it.
	WorkingDir() string
}
