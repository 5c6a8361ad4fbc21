// SPDX-License-Identifier: MPL-2.0

package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"

	"github.com/charmbracelet/log"
	"github.com/go-git/go-billy/v5/util"
	"github.com/google/uuid"

	"github.com/ernfleet/cauldron/pkg/cauldron"
	"github.com/ernfleet/cauldron/pkg/identity"
	"github.com/ernfleet/cauldron/pkg/vcs"
)

const (
	// MarkerFile is written by the bootstrap commit of an empty remote.
	MarkerFile = "README.md"

	// DefaultCommitMessage is used when a Request carries no message.
	DefaultCommitMessage = "Update cauldron"

	markerContent = "# Cauldron\n\nThis repository is managed by cauldron. Do not edit by hand.\n"
)

type (
	// Mutation changes a loaded document. Returning an error aborts the
	// transaction before anything is written.
	Mutation func(doc *cauldron.Document) error

	// Request describes one transaction.
	Request struct {
		// Descriptor names the version the transaction targets. It may be
		// partial, or zero for store-wide changes.
		Descriptor identity.Descriptor
		// Mutate is applied to the document loaded from the synced working copy.
		Mutate Mutation
		// CommitMessage defaults to DefaultCommitMessage.
		CommitMessage string
		// Tag, when set, tags the commit and pushes tags with the branch.
		Tag string
		// ContainerVersion, when set and Descriptor is complete, is recorded
		// on the target version after Mutate succeeds.
		ContainerVersion string
	}

	// Store runs transactions against one working copy.
	Store struct {
		repo    vcs.Repository
		logger  *log.Logger
		lockKey string
	}

	// Option configures a Store.
	Option func(*Store)

	// txn carries the intermediate results of one pipeline run.
	txn struct {
		req    Request
		logger *log.Logger
		before *cauldron.Document
		doc    *cauldron.Document
		// dirty is set once the working copy may differ from the fetched
		// state and must be reset on failure.
		dirty bool
		// tagged is set once req.Tag exists locally and must be deleted on
		// failure; ResetHard keeps local tags.
		tagged bool
		// empty is set by reads of a remote without history.
		empty bool
	}
)

// WithLogger sets the logger used for step tracing.
func WithLogger(logger *log.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithLockKey overrides the identity of the process-wide transaction lock.
// Stores sharing a key never run transactions concurrently.
func WithLockKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.lockKey = key
		}
	}
}

// New returns a Store driving repo.
func New(repo vcs.Repository, opts ...Option) *Store {
	s := &Store{
		repo:    repo,
		logger:  log.New(io.Discard),
		lockKey: repo.WorkingDir(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Update runs a transaction with no target descriptor and no tag.
func (s *Store) Update(ctx context.Context, message string, mutate Mutation) error {
	return s.RunTransaction(ctx, Request{Mutate: mutate, CommitMessage: message})
}

// RunTransaction syncs the working copy with the remote, applies
// req.Mutate and publishes the result. Every failure is returned as a
// *TransactionError naming the failed step.
func (s *Store) RunTransaction(ctx context.Context, req Request) (err error) {
	if req.Mutate == nil {
		return &TransactionError{Step: StepMutate, Err: &TransactionAbortedError{Err: errors.New("no mutation given")}}
	}
	if req.CommitMessage == "" {
		req.CommitMessage = DefaultCommitMessage
	}

	unlock, ok := tryLock(s.lockKey)
	if !ok {
		return &TransactionError{Step: StepLock, Err: &LockContentionError{Key: s.lockKey}}
	}
	defer unlock()

	t := &txn{req: req, logger: s.logger.With("tx", uuid.NewString())}
	t.logger.Debug("Starting transaction", "descriptor", req.Descriptor.String(), "tag", req.Tag)

	defer func() {
		if err != nil && t.tagged {
			if terr := s.repo.DeleteTag(context.WithoutCancel(ctx), req.Tag); terr != nil {
				t.logger.Warn("Removing unpublished tag failed", "tag", req.Tag, "error", terr)
				err = errors.Join(err, fmt.Errorf("delete tag %s: %w", req.Tag, terr))
			} else {
				t.logger.Debug("Removed unpublished tag", "tag", req.Tag)
			}
		}
		if err != nil && t.dirty {
			if rerr := s.repo.ResetHard(context.WithoutCancel(ctx)); rerr != nil {
				t.logger.Warn("Rollback failed", "error", rerr)
				err = errors.Join(err, fmt.Errorf("rollback: %w", rerr))
				return
			}
			t.logger.Debug("Rolled back working copy")
		}
	}()

	steps := []struct {
		step Step
		run  func(context.Context, *txn) error
	}{
		{StepPrepare, s.prepare},
		{StepSync, s.sync},
		{StepLoad, s.load},
		{StepMutate, s.mutate},
		{StepPersist, s.persist},
		{StepCommit, s.commit},
		{StepTag, s.tag},
		{StepPush, s.push},
	}
	for _, st := range steps {
		if err := ctx.Err(); err != nil {
			return &TransactionError{Step: st.step, Err: err}
		}
		t.logger.Debug("Running step", "step", st.step)
		if err := st.run(ctx, t); err != nil {
			if errors.Is(err, errNothingChanged) {
				t.logger.Debug("No change to publish")
				return nil
			}
			t.logger.Debug("Step failed", "step", st.step, "error", err)
			return &TransactionError{Step: st.step, Err: err}
		}
	}
	t.logger.Info("Transaction committed", "message", req.CommitMessage, "tag", req.Tag)
	return nil
}

// Read syncs the working copy with the remote and returns the current
// document. The store is not modified: an empty remote reads as an empty
// document and is not bootstrapped.
func (s *Store) Read(ctx context.Context) (*cauldron.Document, error) {
	var doc *cauldron.Document
	err := s.readOnly(ctx, func(t *txn) error {
		doc = t.doc
		return nil
	})
	return doc, err
}

// ReadFile syncs the working copy and returns the content of name, a path
// relative to the store root.
func (s *Store) ReadFile(ctx context.Context, name string) ([]byte, error) {
	var data []byte
	err := s.readOnly(ctx, func(t *txn) error {
		if t.empty {
			return fmt.Errorf("%s: %w", name, fs.ErrNotExist)
		}
		var rerr error
		data, rerr = util.ReadFile(s.repo.Filesystem(), path.Clean(name))
		return rerr
	})
	return data, err
}

func (s *Store) readOnly(ctx context.Context, fn func(t *txn) error) error {
	unlock, ok := tryLock(s.lockKey)
	if !ok {
		return &TransactionError{Step: StepLock, Err: &LockContentionError{Key: s.lockKey}}
	}
	defer unlock()

	t := &txn{logger: s.logger}
	if err := s.prepare(ctx, t); err != nil {
		return &TransactionError{Step: StepPrepare, Err: err}
	}
	err := s.repo.Fetch(ctx)
	switch {
	case errors.Is(err, vcs.ErrEmptyRemote):
		t.logger.Debug("Remote is empty, reading an empty document")
		t.doc = cauldron.New()
		t.empty = true
	case err != nil:
		return &TransactionError{Step: StepSync, Err: &SyncError{Op: "fetch", Err: err}}
	default:
		if err := s.repo.ResetHard(ctx); err != nil {
			return &TransactionError{Step: StepSync, Err: fmt.Errorf("reset working copy: %w", err)}
		}
		if err := s.load(ctx, t); err != nil {
			return &TransactionError{Step: StepLoad, Err: err}
		}
	}
	if err := fn(t); err != nil {
		return &TransactionError{Step: StepLoad, Err: err}
	}
	return nil
}

// errNothingChanged ends a pipeline early without error.
var errNothingChanged = errors.New("nothing changed")

func (s *Store) prepare(ctx context.Context, _ *txn) error {
	return s.repo.Prepare(ctx)
}

// sync fetches and hard-resets to the remote head, bootstrapping an empty
// remote with a marker commit first.
func (s *Store) sync(ctx context.Context, t *txn) error {
	err := s.repo.Fetch(ctx)
	if errors.Is(err, vcs.ErrEmptyRemote) {
		t.logger.Info("Remote is empty, bootstrapping", "dir", s.repo.WorkingDir())
		if err := s.bootstrap(ctx); err != nil {
			return &SyncError{Op: string(StepBootstrap), Err: err}
		}
		err = s.repo.Fetch(ctx)
	}
	if err != nil {
		return &SyncError{Op: "fetch", Err: err}
	}
	if err := s.repo.ResetHard(ctx); err != nil {
		return fmt.Errorf("reset working copy: %w", err)
	}
	return nil
}

func (s *Store) bootstrap(ctx context.Context) error {
	if err := util.WriteFile(s.repo.Filesystem(), MarkerFile, []byte(markerContent), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", MarkerFile, err)
	}
	if err := s.repo.AddAll(ctx); err != nil {
		return err
	}
	// A marker committed by an earlier bootstrap whose push failed is
	// still waiting to be pushed.
	if err := s.repo.Commit(ctx, "Initial commit"); err != nil && !errors.Is(err, vcs.ErrNothingToCommit) {
		return err
	}
	return s.repo.Push(ctx, false)
}

func (s *Store) load(_ context.Context, t *txn) error {
	doc, err := cauldron.Load(s.repo.Filesystem())
	if err != nil {
		return err
	}
	t.doc = doc
	return nil
}

// mutate applies the caller's mutation to a copy of the loaded document and
// checks the result. Nothing is written to the working copy here.
func (s *Store) mutate(_ context.Context, t *txn) error {
	t.before = t.doc.Clone()
	if err := t.req.Mutate(t.doc); err != nil {
		return &TransactionAbortedError{Err: err}
	}

	desc := t.req.Descriptor
	if t.req.ContainerVersion != "" && desc.IsComplete() {
		v, err := t.doc.Version(desc)
		if err != nil {
			return &TransactionAbortedError{Err: err}
		}
		if v.ContainerVersion != t.req.ContainerVersion {
			if err := t.doc.SetContainerVersion(desc, t.req.ContainerVersion); err != nil {
				return &TransactionAbortedError{Err: err}
			}
		}
	}

	if err := cauldron.CheckReleasedUnchanged(t.before, t.doc); err != nil {
		return &TransactionAbortedError{Err: err}
	}
	if err := t.doc.Validate(); err != nil {
		return &TransactionAbortedError{Err: err}
	}
	return nil
}

func (s *Store) persist(_ context.Context, t *txn) error {
	t.dirty = true
	return cauldron.Save(s.repo.Filesystem(), t.doc)
}

func (s *Store) commit(ctx context.Context, t *txn) error {
	if err := s.repo.AddAll(ctx); err != nil {
		return err
	}
	err := s.repo.Commit(ctx, t.req.CommitMessage)
	if errors.Is(err, vcs.ErrNothingToCommit) {
		if t.req.Tag == "" {
			t.dirty = false
			return errNothingChanged
		}
		t.logger.Debug("Nothing to commit, tagging the current head", "tag", t.req.Tag)
		return nil
	}
	return err
}

func (s *Store) tag(ctx context.Context, t *txn) error {
	if t.req.Tag == "" {
		return nil
	}
	if err := s.repo.Tag(ctx, t.req.Tag); err != nil {
		return err
	}
	t.tagged = true
	return nil
}

// push publishes the branch. A failed push leaves the commit in the working
// copy; the next transaction's sync discards it.
func (s *Store) push(ctx context.Context, t *txn) error {
	t.dirty = false
	if err := s.repo.Push(ctx, t.req.Tag != ""); err != nil {
		return &SyncError{Op: "push", Err: err}
	}
	t.tagged = false
	return nil
}
