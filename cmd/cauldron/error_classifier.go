// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/ernfleet/cauldron/internal/config"
	"github.com/ernfleet/cauldron/internal/issue"
	"github.com/ernfleet/cauldron/internal/manifest"
	"github.com/ernfleet/cauldron/pkg/cauldron"
	"github.com/ernfleet/cauldron/pkg/identity"
	"github.com/ernfleet/cauldron/pkg/resolver"
	"github.com/ernfleet/cauldron/pkg/store"
)

// classifyError maps a command failure to an issue catalog entry and a
// process exit code. An issue id carried by an ActionableError wins over
// the sentinel checks for the catalog entry, never for the exit code.
func classifyError(err error) (issue.Id, int) {
	issueID, code := classifySentinel(err)

	var ae *issue.ActionableError
	if errors.As(err, &ae) && ae.Issue != 0 {
		issueID = ae.Issue
	}
	return issueID, code
}

func classifySentinel(err error) (issue.Id, int) {
	switch {
	case errors.Is(err, resolver.ErrConflict):
		return issue.DependencyConflictId, ExitConflict
	case errors.Is(err, store.ErrLockContention):
		return issue.TransactionInProgressId, ExitLockContention
	case errors.Is(err, store.ErrSync):
		return issue.RemoteSyncFailedId, ExitSync
	case errors.Is(err, cauldron.ErrSchema):
		return issue.SchemaUnsupportedId, ExitSchema
	case errors.Is(err, config.ErrStoreNotConfigured):
		return issue.StoreNotConfiguredId, ExitGeneric
	case errors.Is(err, config.ErrInvalidConfig):
		return issue.ConfigLoadFailedId, ExitGeneric
	case errors.Is(err, identity.ErrParse), errors.Is(err, identity.ErrInvalidPlatform):
		return issue.InvalidDescriptorId, ExitGeneric
	case errors.Is(err, cauldron.ErrReleased):
		return issue.VersionReleasedId, ExitGeneric
	case errors.Is(err, cauldron.ErrNotFound):
		return issue.VersionNotFoundId, ExitGeneric
	case errors.Is(err, manifest.ErrInvalidManifest):
		return issue.ManifestInvalidId, ExitGeneric
	case errors.Is(err, cauldron.ErrInvariant), errors.Is(err, cauldron.ErrDuplicate):
		return issue.InvariantViolatedId, ExitGeneric
	default:
		return 0, ExitGeneric
	}
}

// formatErrorForDisplay formats an error for user display, using the
// ActionableError layout when one is in the chain.
func formatErrorForDisplay(err error, verbose bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verbose)
	}
	return err.Error()
}

// reportError writes err to w and returns the ExitError the command should
// fail with. In verbose mode the matching catalog guidance is rendered too.
func reportError(w io.Writer, err error, verbose bool, scheme config.ColorScheme) error {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}

	issueID, code := classifyError(err)
	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("Error:"), formatErrorForDisplay(err, verbose))

	if iss := issue.Get(issueID); verbose && iss != nil {
		if rendered, rerr := iss.Render(glamourStyle(scheme)); rerr == nil {
			fmt.Fprint(w, rendered)
		}
	}
	return &ExitError{Code: code, Err: err}
}

// glamourStyle picks the markdown style for the configured color scheme.
func glamourStyle(scheme config.ColorScheme) string {
	switch scheme {
	case config.ColorSchemeDark:
		return "dark"
	case config.ColorSchemeLight:
		return "light"
	default:
		if lipgloss.HasDarkBackground() {
			return "dark"
		}
		return "light"
	}
}
