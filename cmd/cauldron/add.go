// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ernfleet/cauldron/internal/issue"
	"github.com/ernfleet/cauldron/internal/manifest"
	"github.com/ernfleet/cauldron/internal/release"
	"github.com/ernfleet/cauldron/pkg/identity"
	"github.com/ernfleet/cauldron/pkg/resolver"
)

func newAddCommand(app *App, flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add versions or MiniApps",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newAddVersionCommand(app, flags), newAddMiniAppsCommand(app, flags))
	return cmd
}

func newAddVersionCommand(app *App, flags *globalFlags) *cobra.Command {
	var copyFrom, containerVersion string

	cmd := &cobra.Command{
		Use:   "version <descriptor>",
		Short: "Create a native application version",
		Example: `  cauldron add version walmart:android:17.0.0
  cauldron add version walmart:android:17.1.0 --copy-from walmart:android:17.0.0`,
		Args: cobra.ExactArgs(1),
		RunE: app.run(flags, func(cmd *cobra.Command, args []string, s *session) error {
			desc, err := identity.ParseDescriptor(args[0])
			if err != nil {
				return err
			}
			opts := release.CreateOptions{ContainerVersion: containerVersion}
			if copyFrom != "" {
				if opts.CopyFrom, err = identity.ParseDescriptor(copyFrom); err != nil {
					return err
				}
			}
			svc, err := app.service(s)
			if err != nil {
				return err
			}
			if err := svc.CreateVersion(cmd.Context(), desc, opts); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Created %s\n", SuccessStyle.Render("✓"), desc)
			return nil
		}),
	}

	cmd.Flags().StringVar(&copyFrom, "copy-from", "", "seed the version with the container of an existing version")
	cmd.Flags().StringVar(&containerVersion, "container-version", "", "container version to record")
	return cmd
}

func newAddMiniAppsCommand(app *App, flags *globalFlags) *cobra.Command {
	var (
		manifests []string
		opts      release.Options
	)

	cmd := &cobra.Command{
		Use:   "miniapps <descriptor>",
		Short: "Add MiniApps to a version and record their native dependencies",
		Long: `Add MiniApps to a version and record their native dependencies.

MiniApps come from release manifests (YAML, "miniapps: [{package,
dependencies}]") or MiniApp package.json files. Their native dependencies
are resolved together with the ones the version already records. When two
MiniApps need different versions of a dependency the command fails unless
--force is given, in which case the highest version is kept.`,
		Example: `  cauldron add miniapps walmart:android:17.0.0 --manifest release.yaml
  cauldron add miniapps walmart:android:17.0.0 -m cart/package.json -m checkout/package.json --force`,
		Args: cobra.ExactArgs(1),
		RunE: app.run(flags, func(cmd *cobra.Command, args []string, s *session) error {
			desc, err := identity.ParseDescriptor(args[0])
			if err != nil {
				return err
			}
			modules, err := loadManifests(manifests)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("force") {
				opts.Force = s.cfg.Resolver.Force
			}
			svc, err := app.service(s)
			if err != nil {
				return err
			}
			plan, err := svc.AddMiniApps(cmd.Context(), desc, modules, opts)
			if errors.Is(err, resolver.ErrConflict) {
				return issue.NewErrorContext().
					WithOperation("add MiniApps").
					WithResource(desc.String()).
					WithIssue(issue.DependencyConflictId).
					WithSuggestion("Align the MiniApps on one version of each dependency").
					WithSuggestion("Retry with --force to keep the highest version").
					Wrap(err).
					BuildError()
			}
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s Added %d MiniApp(s) to %s\n", SuccessStyle.Render("✓"), len(modules), desc)
			writeList(out, "Native dependencies", dependencyStrings(plan.Merged))
			return nil
		}),
	}

	cmd.Flags().StringArrayVarP(&manifests, "manifest", "m", nil, "release manifest or MiniApp package.json (repeatable)")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "keep the highest version of conflicting dependencies")
	cmd.Flags().StringVar(&opts.ContainerVersion, "container-version", "", "container version to record")
	cmd.Flags().StringVar(&opts.Tag, "tag", "", "tag the resulting commit")
	_ = cmd.MarkFlagRequired("manifest")
	return cmd
}

// loadManifests reads every manifest in order and concatenates their sets.
func loadManifests(paths []string) ([]resolver.ModuleDependencySet, error) {
	var modules []resolver.ModuleDependencySet
	for _, path := range paths {
		sets, err := manifest.Load(path)
		if err != nil {
			return nil, err
		}
		modules = append(modules, sets...)
	}
	return modules, nil
}
