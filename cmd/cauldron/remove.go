// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ernfleet/cauldron/pkg/identity"
)

func newRemoveCommand(app *App, flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Remove MiniApps",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:     "miniapp <descriptor> <package>",
		Short:   "Remove a MiniApp from a version",
		Long:    "Remove a MiniApp from a version. The package version is ignored when matching.",
		Example: `  cauldron remove miniapp walmart:android:17.0.0 @corp/cart`,
		Args:    cobra.ExactArgs(2),
		RunE: app.run(flags, func(cmd *cobra.Command, args []string, s *session) error {
			desc, err := identity.ParseDescriptor(args[0])
			if err != nil {
				return err
			}
			pkg, err := identity.ParsePackagePath(args[1])
			if err != nil {
				return err
			}
			svc, err := app.service(s)
			if err != nil {
				return err
			}
			if err := svc.RemoveMiniApp(cmd.Context(), desc, pkg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Removed %s from %s\n", SuccessStyle.Render("✓"), pkg.Identity(), desc)
			return nil
		}),
	})
	return cmd
}
