// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the cauldron CLI commands.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/ernfleet/cauldron/internal/config"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// commandFunc is the body of a command once configuration is loaded.
type commandFunc func(cmd *cobra.Command, args []string, s *session) error

// NewRootCommand builds the command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "cauldron",
		Short: "Versioned store of native application releases",
		Long: TitleStyle.Render("cauldron") + SubtitleStyle.Render(" - versioned store of native application releases") + `

cauldron records, in a git repository, which MiniApps and which native
dependencies every version of a native application ships with. Every
change is a transaction: the working copy is synced with the remote, the
change is validated, committed and pushed, or nothing happens at all.

` + SubtitleStyle.Render("Examples:") + `
  cauldron get walmart:android                 List the versions of an app
  cauldron add version walmart:android:17.0.0  Create a version
  cauldron add miniapps walmart:android:17.0.0 --manifest release.yaml
  cauldron release walmart:android:17.0.0      Freeze a version
  cauldron config show                         Show current configuration`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(app.stdout)
	root.SetErr(app.stderr)

	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable verbose output")
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/cauldron/config.cue)")

	root.AddCommand(
		newGetCommand(app, flags),
		newAddCommand(app, flags),
		newRemoveCommand(app, flags),
		newResolveCommand(app, flags),
		newReleaseCommand(app, flags),
		newContainerVersionCommand(app, flags),
		newUpgradeCommand(app, flags),
		newConfigCommand(app, flags),
	)
	return root
}

// run adapts fn to a RunE handler: configuration is loaded first and every
// failure is reported once, then returned as an *ExitError.
func (a *App) run(flags *globalFlags, fn commandFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s, err := a.load(cmd.Context(), flags)
		if err != nil {
			return reportError(a.stderr, err, flags.verbose, config.ColorSchemeAuto)
		}
		if err := fn(cmd, args, s); err != nil {
			return reportError(a.stderr, err, flags.verbose || s.cfg.UI.Verbose, s.cfg.UI.ColorScheme)
		}
		return nil
	}
}

func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI and exits the process with the classified exit code
// on failure. It is called by main.main.
func Execute() {
	root := NewRootCommand(NewApp(Dependencies{}))
	err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(func(w io.Writer, styles fang.Styles, err error) {
			var exitErr *ExitError
			if errors.As(err, &exitErr) {
				return
			}
			fang.DefaultErrorHandler(w, styles, err)
		}),
	)
	if err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(ExitGeneric)
	}
}
