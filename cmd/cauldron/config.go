// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ernfleet/cauldron/internal/config"
)

func newConfigCommand(app *App, flags *globalFlags) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage cauldron configuration",
		Long: `Manage cauldron configuration.

Configuration is stored in:
  - Linux: ~/.config/cauldron/config.cue
  - macOS: ~/Library/Application Support/cauldron/config.cue
  - Windows: %APPDATA%\cauldron\config.cue

Every key can be overridden with a CAULDRON_<SECTION>_<KEY> environment
variable, e.g. CAULDRON_STORE_URL.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	var schema bool
	show := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: app.run(flags, func(cmd *cobra.Command, _ []string, s *session) error {
			if schema {
				fmt.Fprint(cmd.OutOrStdout(), config.Schema())
				return nil
			}
			showConfig(cmd.OutOrStdout(), s)
			return nil
		}),
	}
	show.Flags().BoolVar(&schema, "schema", false, "print the CUE schema of the config file")

	cfgCmd.AddCommand(
		show,
		&cobra.Command{
			Use:   "init",
			Short: "Create a default configuration file",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				path, err := config.CreateDefaultConfig("")
				if err != nil {
					return reportError(app.stderr, err, flags.verbose, config.ColorSchemeAuto)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s Configuration at %s\n", SuccessStyle.Render("✓"), path)
				return nil
			},
		},
		&cobra.Command{
			Use:   "dump",
			Short: "Output the effective configuration as CUE",
			Args:  cobra.NoArgs,
			RunE: app.run(flags, func(cmd *cobra.Command, _ []string, s *session) error {
				fmt.Fprint(cmd.OutOrStdout(), config.GenerateCUE(s.cfg))
				return nil
			}),
		},
	)
	return cfgCmd
}

func showConfig(w io.Writer, s *session) {
	cfg := s.cfg

	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)
	if s.path != "" {
		fmt.Fprintf(w, "%s: %s\n", KeyStyle.Render("Config file"), s.path)
	} else {
		fmt.Fprintf(w, "%s: %s\n", KeyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}

	workingDir, err := cfg.Store.ResolvedWorkingDir()
	if err != nil {
		workingDir = ""
	}
	section(w, "store",
		"url", orUnset(cfg.Store.URL),
		"branch", cfg.Store.Branch,
		"remote", cfg.Store.Remote,
		"working_dir", orUnset(workingDir),
	)
	section(w, "author",
		"name", cfg.Author.Name,
		"email", cfg.Author.Email,
	)
	section(w, "resolver",
		"force", fmt.Sprint(cfg.Resolver.Force),
		"exclude", orUnset(strings.Join(cfg.Resolver.Exclude, ", ")),
	)
	section(w, "ui",
		"verbose", fmt.Sprint(cfg.UI.Verbose),
		"color_scheme", cfg.UI.ColorScheme.String(),
	)
}

// section prints a titled block of key/value pairs.
func section(w io.Writer, title string, kv ...string) {
	fmt.Fprintf(w, "\n%s:\n", KeyStyle.Render(title))
	for i := 0; i+1 < len(kv); i += 2 {
		fmt.Fprintf(w, "  %s: %s\n", kv[i], SuccessStyle.Render(kv[i+1]))
	}
}

func orUnset(v string) string {
	if v == "" {
		return "(not set)"
	}
	return v
}
