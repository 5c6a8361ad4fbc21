// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ernfleet/cauldron/pkg/identity"
)

func newReleaseCommand(app *App, flags *globalFlags) *cobra.Command {
	var tag string

	cmd := &cobra.Command{
		Use:   "release <descriptor>",
		Short: "Mark a version as released",
		Long: `Mark a version as released. The MiniApps and native dependencies of a
released version can no longer change.`,
		Example: `  cauldron release walmart:android:17.0.0 --tag android-17.0.0`,
		Args:    cobra.ExactArgs(1),
		RunE: app.run(flags, func(cmd *cobra.Command, args []string, s *session) error {
			desc, err := identity.ParseDescriptor(args[0])
			if err != nil {
				return err
			}
			svc, err := app.service(s)
			if err != nil {
				return err
			}
			if err := svc.MarkReleased(cmd.Context(), desc, tag); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Released %s\n", SuccessStyle.Render("✓"), desc)
			return nil
		}),
	}

	cmd.Flags().StringVar(&tag, "tag", "", "tag the release commit")
	return cmd
}

func newContainerVersionCommand(app *App, flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "container-version <descriptor> <version>",
		Short:   "Record the container version of a version",
		Example: `  cauldron container-version walmart:android:17.0.0 1.4.2`,
		Args:    cobra.ExactArgs(2),
		RunE: app.run(flags, func(cmd *cobra.Command, args []string, s *session) error {
			desc, err := identity.ParseDescriptor(args[0])
			if err != nil {
				return err
			}
			svc, err := app.service(s)
			if err != nil {
				return err
			}
			if err := svc.SetContainerVersion(cmd.Context(), desc, args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Container version of %s set to %s\n", SuccessStyle.Render("✓"), desc, args[1])
			return nil
		}),
	}
}

func newUpgradeCommand(app *App, flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "upgrade",
		Short: "Rewrite the stored document at the current schema version",
		Args:  cobra.NoArgs,
		RunE: app.run(flags, func(cmd *cobra.Command, _ []string, s *session) error {
			svc, err := app.service(s)
			if err != nil {
				return err
			}
			result, err := svc.UpgradeSchema(cmd.Context())
			if err != nil {
				return err
			}
			if result.From == result.To {
				fmt.Fprintf(cmd.OutOrStdout(), "Schema is up to date (%s)\n", result.To)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Upgraded schema from %s to %s\n", SuccessStyle.Render("✓"), result.From, result.To)
			return nil
		}),
	}
}
