// SPDX-License-Identifier: MPL-2.0

package vcs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
)

const (
	// DefaultRemote is the remote name used when Options.Remote is empty.
	DefaultRemote = "origin"

	// DefaultBranch is the branch used when Options.Branch is empty.
	DefaultBranch = "main"
)

type (
	// Signature identifies the author of commits.
	Signature struct {
		Name  string
		Email string
	}

	// Options configures a GitRepository.
	Options struct {
		// Dir is the working copy directory.
		Dir string
		// URL is the remote repository URL or local path.
		URL string
		// Remote is the remote name. Defaults to DefaultRemote.
		Remote string
		// Branch is the tracked branch. Defaults to DefaultBranch.
		Branch string
		// Author signs every commit.
		Author Signature
		// Auth overrides credential discovery when set.
		Auth transport.AuthMethod
	}

	// GitRepository is a Repository backed by go-git.
	GitRepository struct {
		opts Options
		auth transport.AuthMethod
		fs   billy.Filesystem

		mu   sync.Mutex
		repo *git.Repository
	}
)

// NewGitRepository returns a GitRepository for opts. No I/O happens until
// Prepare.
func NewGitRepository(opts Options) (*GitRepository, error) {
	if opts.Dir == "" {
		return nil, errors.New("working copy directory is required")
	}
	if opts.URL == "" {
		return nil, errors.New("remote URL is required")
	}
	dir, err := filepath.Abs(opts.Dir)
	if err != nil {
		return nil, fmt.Errorf("resolve working copy directory: %w", err)
	}
	opts.Dir = dir
	if opts.Remote == "" {
		opts.Remote = DefaultRemote
	}
	if opts.Branch == "" {
		opts.Branch = DefaultBranch
	}

	r := &GitRepository{opts: opts, fs: osfs.New(dir)}
	r.auth = opts.Auth
	if r.auth == nil {
		r.auth = discoverAuth(opts.URL)
	}
	return r, nil
}

// Filesystem returns the working tree on disk.
func (r *GitRepository) Filesystem() billy.Filesystem { return r.fs }

// WorkingDir returns the absolute working copy directory.
func (r *GitRepository) WorkingDir() string { return r.opts.Dir }

// Prepare opens the working copy, initializing it and registering the
// remote when absent.
func (r *GitRepository) Prepare(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	repo, err := git.PlainOpen(r.opts.Dir)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		if err := os.MkdirAll(r.opts.Dir, 0o755); err != nil {
			return fmt.Errorf("failed to create working copy directory: %w", err)
		}
		repo, err = git.PlainInit(r.opts.Dir, false)
		if err != nil {
			return fmt.Errorf("failed to initialize working copy: %w", err)
		}
		head := plumbing.NewSymbolicReference(plumbing.HEAD, r.branchRef())
		if err := repo.Storer.SetReference(head); err != nil {
			return fmt.Errorf("failed to point HEAD at %s: %w", r.opts.Branch, err)
		}
	} else if err != nil {
		return fmt.Errorf("failed to open working copy: %w", err)
	}

	remote, err := repo.Remote(r.opts.Remote)
	switch {
	case errors.Is(err, git.ErrRemoteNotFound):
		if _, err := repo.CreateRemote(&config.RemoteConfig{Name: r.opts.Remote, URLs: []string{r.opts.URL}}); err != nil {
			return fmt.Errorf("failed to register remote %s: %w", r.opts.Remote, err)
		}
	case err != nil:
		return fmt.Errorf("failed to read remote %s: %w", r.opts.Remote, err)
	default:
		if urls := remote.Config().URLs; len(urls) == 0 || urls[0] != r.opts.URL {
			return fmt.Errorf("working copy %s tracks %v, not %s", r.opts.Dir, urls, r.opts.URL)
		}
	}

	r.repo = repo
	return nil
}

// Fetch updates the remote-tracking branch and remote tags.
func (r *GitRepository) Fetch(ctx context.Context) error {
	repo, err := r.repository()
	if err != nil {
		return err
	}

	spec := config.RefSpec(fmt.Sprintf("+%s:%s", r.branchRef(), r.remoteRef()))
	err = repo.FetchContext(ctx, &git.FetchOptions{
		RemoteName: r.opts.Remote,
		RefSpecs:   []config.RefSpec{spec},
		Auth:       r.auth,
		Tags:       git.AllTags,
		Force:      true,
	})
	switch {
	case err == nil, errors.Is(err, git.NoErrAlreadyUpToDate):
		return nil
	case errors.Is(err, transport.ErrEmptyRemoteRepository), errors.Is(err, git.NoMatchingRefSpecError{}):
		return ErrEmptyRemote
	default:
		return fmt.Errorf("failed to fetch %s from %s: %w", r.opts.Branch, r.opts.Remote, err)
	}
}

// ResetHard points the local branch at the fetched remote head, resets the
// index and worktree to it and removes untracked files.
func (r *GitRepository) ResetHard(_ context.Context) error {
	repo, err := r.repository()
	if err != nil {
		return err
	}

	remoteHead, err := repo.Reference(r.remoteRef(), true)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", r.remoteRef().Short(), err)
	}
	if err := repo.Storer.SetReference(plumbing.NewHashReference(r.branchRef(), remoteHead.Hash())); err != nil {
		return fmt.Errorf("failed to move %s: %w", r.opts.Branch, err)
	}
	if err := repo.Storer.SetReference(plumbing.NewSymbolicReference(plumbing.HEAD, r.branchRef())); err != nil {
		return fmt.Errorf("failed to point HEAD at %s: %w", r.opts.Branch, err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}
	if err := wt.Reset(&git.ResetOptions{Commit: remoteHead.Hash(), Mode: git.HardReset}); err != nil {
		return fmt.Errorf("failed to reset worktree: %w", err)
	}
	if err := wt.Clean(&git.CleanOptions{Dir: true}); err != nil {
		return fmt.Errorf("failed to remove untracked files: %w", err)
	}
	return nil
}

// AddAll stages every change in the worktree, deletions included.
func (r *GitRepository) AddAll(_ context.Context) error {
	wt, err := r.worktree()
	if err != nil {
		return err
	}
	if err := wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return fmt.Errorf("failed to stage changes: %w", err)
	}
	return nil
}

// Commit records the index with the configured author.
func (r *GitRepository) Commit(_ context.Context, message string) error {
	wt, err := r.worktree()
	if err != nil {
		return err
	}
	status, err := wt.Status()
	if err != nil {
		return fmt.Errorf("failed to read worktree status: %w", err)
	}
	if status.IsClean() {
		return ErrNothingToCommit
	}

	sig := &object.Signature{Name: r.opts.Author.Name, Email: r.opts.Author.Email, When: time.Now()}
	if _, err := wt.Commit(message, &git.CommitOptions{Author: sig, Committer: sig}); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// Tag creates a lightweight tag at HEAD.
func (r *GitRepository) Tag(_ context.Context, name string) error {
	repo, err := r.repository()
	if err != nil {
		return err
	}
	head, err := repo.Head()
	if err != nil {
		return fmt.Errorf("failed to resolve HEAD: %w", err)
	}
	if _, err := repo.CreateTag(name, head.Hash(), nil); err != nil {
		if errors.Is(err, git.ErrTagExists) {
			return fmt.Errorf("%w: %s", ErrTagExists, name)
		}
		return fmt.Errorf("failed to create tag %s: %w", name, err)
	}
	return nil
}

// DeleteTag removes a local tag.
func (r *GitRepository) DeleteTag(_ context.Context, name string) error {
	repo, err := r.repository()
	if err != nil {
		return err
	}
	if err := repo.DeleteTag(name); err != nil && !errors.Is(err, git.ErrTagNotFound) {
		return fmt.Errorf("failed to delete tag %s: %w", name, err)
	}
	return nil
}

// Push sends the tracked branch, and local tags when withTags is set.
func (r *GitRepository) Push(ctx context.Context, withTags bool) error {
	repo, err := r.repository()
	if err != nil {
		return err
	}

	specs := []config.RefSpec{config.RefSpec(fmt.Sprintf("%s:%s", r.branchRef(), r.branchRef()))}
	if withTags {
		specs = append(specs, config.RefSpec("refs/tags/*:refs/tags/*"))
	}
	err = repo.PushContext(ctx, &git.PushOptions{
		RemoteName: r.opts.Remote,
		RefSpecs:   specs,
		Auth:       r.auth,
	})
	switch {
	case err == nil, errors.Is(err, git.NoErrAlreadyUpToDate):
		return nil
	case errors.Is(err, git.ErrNonFastForwardUpdate), strings.Contains(err.Error(), "non-fast-forward"):
		return fmt.Errorf("%w: %s", ErrNonFastForward, err.Error())
	default:
		return fmt.Errorf("failed to push to %s: %w", r.opts.Remote, err)
	}
}

// Head returns the local head commit hash, or "" when the branch is unborn.
func (r *GitRepository) Head(_ context.Context) (string, error) {
	repo, err := r.repository()
	if err != nil {
		return "", err
	}
	head, err := repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve HEAD: %w", err)
	}
	return head.Hash().String(), nil
}

func (r *GitRepository) repository() (*git.Repository, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.repo == nil {
		return nil, ErrNotPrepared
	}
	return r.repo, nil
}

func (r *GitRepository) worktree() (*git.Worktree, error) {
	repo, err := r.repository()
	if err != nil {
		return nil, err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree: %w", err)
	}
	return wt, nil
}

func (r *GitRepository) branchRef() plumbing.ReferenceName {
	return plumbing.NewBranchReferenceName(r.opts.Branch)
}

func (r *GitRepository) remoteRef() plumbing.ReferenceName {
	return plumbing.NewRemoteReferenceName(r.opts.Remote, r.opts.Branch)
}
