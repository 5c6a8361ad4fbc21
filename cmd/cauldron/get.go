// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ernfleet/cauldron/pkg/identity"
)

func newGetCommand(app *App, flags *globalFlags) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "get [descriptor]",
		Short: "Show the versions matching a descriptor",
		Long: `Show the versions matching a descriptor.

A descriptor is name[:platform[:version]]. A partial descriptor lists every
version below it; without a descriptor every version is listed.`,
		Example: `  cauldron get
  cauldron get walmart:android
  cauldron get walmart:android:17.0.0 --output json`,
		Args: cobra.MaximumNArgs(1),
		RunE: app.run(flags, func(cmd *cobra.Command, args []string, s *session) error {
			var desc identity.Descriptor
			if len(args) == 1 {
				var err error
				if desc, err = identity.ParseDescriptor(args[0]); err != nil {
					return err
				}
			}
			svc, err := app.service(s)
			if err != nil {
				return err
			}
			releases, err := svc.Get(cmd.Context(), desc)
			if err != nil {
				return err
			}
			return writeReleases(cmd.OutOrStdout(), output, releases)
		}),
	}

	cmd.Flags().StringVarP(&output, "output", "o", outputText, "output format (text, json, yaml, toml)")
	return cmd
}
