// SPDX-License-Identifier: MPL-2.0

package store

import (
	"errors"
	"fmt"
)

var (
	// ErrLockContention is the sentinel error wrapped by LockContentionError.
	ErrLockContention = errors.New("a transaction is already in progress")

	// ErrSync is the sentinel error wrapped by SyncError.
	ErrSync = errors.New("remote synchronization failed")

	// ErrAborted is the sentinel error wrapped by TransactionAbortedError.
	ErrAborted = errors.New("transaction aborted")
)

// Step names a stage of the transaction pipeline.
type Step string

const (
	StepLock      Step = "lock"
	StepPrepare   Step = "prepare"
	StepSync      Step = "sync"
	StepBootstrap Step = "bootstrap"
	StepLoad      Step = "load"
	StepMutate    Step = "mutate"
	StepPersist   Step = "persist"
	StepCommit    Step = "commit"
	StepTag       Step = "tag"
	StepPush      Step = "push"
)

type (
	// TransactionError reports the pipeline step a transaction failed at.
	// Err holds the categorized cause.
	TransactionError struct {
		Step Step
		Err  error
	}

	// LockContentionError is returned when another transaction on the same
	// working copy is in flight in this process.
	LockContentionError struct {
		Key string
	}

	// SyncError is returned when fetching from or pushing to the remote fails.
	SyncError struct {
		Op  string
		Err error
	}

	// TransactionAbortedError is returned when the mutation, or the invariant
	// checks that follow it, rejected the change. The remote is untouched.
	TransactionAbortedError struct {
		Err error
	}
)

// Error implements the error interface.
func (e *TransactionError) Error() string {
	return fmt.Sprintf("transaction failed at %s: %v", e.Step, e.Err)
}

// Unwrap returns the categorized cause.
func (e *TransactionError) Unwrap() error { return e.Err }

// Error implements the error interface.
func (e *LockContentionError) Error() string {
	return fmt.Sprintf("a transaction on %s is already in progress", e.Key)
}

// Unwrap returns ErrLockContention so callers can use errors.Is for programmatic detection.
func (e *LockContentionError) Unwrap() error { return ErrLockContention }

// Error implements the error interface.
func (e *SyncError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

// Unwrap returns ErrSync and the underlying cause.
func (e *SyncError) Unwrap() []error { return []error{ErrSync, e.Err} }

// Error implements the error interface.
func (e *TransactionAbortedError) Error() string {
	return fmt.Sprintf("transaction aborted: %v", e.Err)
}

// Unwrap returns ErrAborted and the underlying cause.
func (e *TransactionAbortedError) Unwrap() []error { return []error{ErrAborted, e.Err} }

// StepOf returns the step err failed at, or "" when err did not come from
// a transaction.
func StepOf(err error) Step {
	var te *TransactionError
	if errors.As(err, &te) {
		return te.Step
	}
	return ""
}
