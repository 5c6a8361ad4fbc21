// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/ernfleet/cauldron/internal/config"
	"github.com/ernfleet/cauldron/internal/issue"
	"github.com/ernfleet/cauldron/internal/manifest"
	"github.com/ernfleet/cauldron/pkg/cauldron"
	"github.com/ernfleet/cauldron/pkg/identity"
	"github.com/ernfleet/cauldron/pkg/resolver"
	"github.com/ernfleet/cauldron/pkg/store"
)

func TestClassifyError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		wantID   issue.Id
		wantCode int
	}{
		{"conflict", &resolver.ConflictError{}, issue.DependencyConflictId, ExitConflict},
		{
			"lock",
			&store.TransactionError{Step: store.StepLock, Err: &store.LockContentionError{Key: "wc"}},
			issue.TransactionInProgressId, ExitLockContention,
		},
		{
			"sync",
			&store.TransactionError{Step: store.StepPush, Err: &store.SyncError{Op: "push", Err: errors.New("rejected")}},
			issue.RemoteSyncFailedId, ExitSync,
		},
		{
			"schema",
			&store.TransactionError{Step: store.StepLoad, Err: &cauldron.SchemaError{Found: "9.0.0", Reason: "newer than supported"}},
			issue.SchemaUnsupportedId, ExitSchema,
		},
		{"store_not_configured", config.ErrStoreNotConfigured, issue.StoreNotConfiguredId, ExitGeneric},
		{"parse", &identity.ParseError{Kind: identity.KindDescriptor, Input: "a::b"}, issue.InvalidDescriptorId, ExitGeneric},
		{
			"released",
			&store.TransactionError{Step: store.StepMutate, Err: &store.TransactionAbortedError{Err: &cauldron.ReleasedVersionError{Op: "add MiniApp"}}},
			issue.VersionReleasedId, ExitGeneric,
		},
		{"not_found", &cauldron.NotFoundError{Kind: "version", Key: "a:android:1.0.0"}, issue.VersionNotFoundId, ExitGeneric},
		{"manifest", &manifest.InvalidManifestError{Path: "x.yaml", Err: errors.New("bad")}, issue.ManifestInvalidId, ExitGeneric},
		{"duplicate", fmt.Errorf("add: %w", cauldron.ErrDuplicate), issue.InvariantViolatedId, ExitGeneric},
		{"unknown", errors.New("boom"), 0, ExitGeneric},
		{
			"actionable_issue_wins",
			issue.NewErrorContext().WithOperation("load configuration").WithIssue(issue.ConfigLoadFailedId).Wrap(config.ErrStoreNotConfigured).BuildError(),
			issue.ConfigLoadFailedId, ExitGeneric,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			id, code := classifyError(tt.err)
			if id != tt.wantID {
				t.Errorf("issue = %v, want %v", id, tt.wantID)
			}
			if code != tt.wantCode {
				t.Errorf("code = %d, want %d", code, tt.wantCode)
			}
		})
	}
}

func TestReportError(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := reportError(&buf, &resolver.ConflictError{}, false, config.ColorSchemeDark)
	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != ExitConflict {
		t.Fatalf("reportError() = %v, want ExitError code %d", err, ExitConflict)
	}
	if !strings.Contains(buf.String(), "Error:") {
		t.Errorf("output = %q", buf.String())
	}

	buf.Reset()
	again := reportError(&buf, err, true, config.ColorSchemeDark)
	if again != err || buf.Len() != 0 {
		t.Error("an ExitError must be passed through without printing again")
	}
}

func TestReportError_VerboseRendersGuidance(t *testing.T) {
	t.Parallel()

	var quiet, verbose bytes.Buffer
	_ = reportError(&quiet, config.ErrStoreNotConfigured, false, config.ColorSchemeLight)
	_ = reportError(&verbose, config.ErrStoreNotConfigured, true, config.ColorSchemeLight)
	if verbose.Len() <= quiet.Len() {
		t.Errorf("verbose output should add the catalog guidance:\n%s", verbose.String())
	}
}

func TestGlamourStyle(t *testing.T) {
	t.Parallel()

	if got := glamourStyle(config.ColorSchemeDark); got != "dark" {
		t.Errorf("dark = %q", got)
	}
	if got := glamourStyle(config.ColorSchemeLight); got != "light" {
		t.Errorf("light = %q", got)
	}
	if got := glamourStyle(config.ColorSchemeAuto); got != "dark" && got != "light" {
		t.Errorf("auto = %q", got)
	}
}

func TestExitError(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	err := &ExitError{Code: ExitSync, Err: cause}
	if err.Error() != "boom" || !errors.Is(err, cause) {
		t.Errorf("ExitError = %v", err)
	}
	if (&ExitError{Code: 3}).Error() != "exit status 3" {
		t.Error("ExitError without cause should print the status")
	}
}
