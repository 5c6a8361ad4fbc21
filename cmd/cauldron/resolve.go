// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/ernfleet/cauldron/internal/release"
	"github.com/ernfleet/cauldron/pkg/identity"
	"github.com/ernfleet/cauldron/pkg/resolver"
)

func newResolveCommand(app *App, flags *globalFlags) *cobra.Command {
	var (
		manifests []string
		force     bool
	)

	cmd := &cobra.Command{
		Use:   "resolve <descriptor>",
		Short: "Preview the native dependencies MiniApps would record",
		Long: `Preview the native dependencies MiniApps would record on a version,
without changing the store.

The command prints the resolved dependencies, the conflicts between
MiniApps, the set the version would record and how each MiniApp compares
with the version. It exits with status 2 when conflicts exist, unless
--force is given.`,
		Example: `  cauldron resolve walmart:android:17.0.0 --manifest release.yaml`,
		Args:    cobra.ExactArgs(1),
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
				force = s.cfg.Resolver.Force
			}
			svc, err := app.service(s)
			if err != nil {
				return err
			}
			plan, err := svc.Plan(cmd.Context(), desc, modules)
			if err != nil {
				return err
			}
			writePlan(cmd.OutOrStdout(), plan)
			return plan.Resolution.Enforce(force)
		}),
	}

	cmd.Flags().StringArrayVarP(&manifests, "manifest", "m", nil, "release manifest or MiniApp package.json (repeatable)")
	cmd.Flags().BoolVar(&force, "force", false, "do not fail on conflicts")
	_ = cmd.MarkFlagRequired("manifest")
	return cmd
}

func writePlan(w io.Writer, plan *release.Plan) {
	fmt.Fprintln(w, TitleStyle.Render(plan.Descriptor.String()))
	writeList(w, "Resolved", dependencyStrings(plan.Resolution.Resolved))

	if plan.Resolution.HasConflicts() {
		fmt.Fprintf(w, "  %s:\n", ErrorStyle.Render("Conflicts"))
		for _, c := range plan.Resolution.Conflicts {
			fmt.Fprintf(w, "    - %s\n", c.String())
		}
	}

	writeList(w, "Recorded", dependencyStrings(plan.Existing))
	writeList(w, "After merge", dependencyStrings(plan.Merged))

	for _, report := range plan.Compatibility {
		verdict := SuccessStyle.Render("compatible")
		if !report.IsCompatible() {
			verdict = ErrorStyle.Render("incompatible")
		} else if len(report.NonStrict) > 0 {
			verdict = WarningStyle.Render("non-strict")
		}
		name := "(unnamed)"
		if report.Module != nil {
			name = report.Module.String()
		}
		fmt.Fprintf(w, "  %s %s: %s\n", KeyStyle.Render("MiniApp"), name, verdict)
		for _, e := range slices.Concat(report.Incompatible, report.NonStrict) {
			fmt.Fprintf(w, "    - %s %s\n", describeEntry(e), SubtitleStyle.Render(string(e.Status)))
		}
	}
}

func describeEntry(e resolver.CompatibilityEntry) string {
	if e.Existing == "" {
		return fmt.Sprintf("%s (new)", e.Dependency)
	}
	return fmt.Sprintf("%s (recorded %s)", e.Dependency, e.Existing)
}
