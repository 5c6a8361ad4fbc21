// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/ernfleet/cauldron/pkg/cauldron"
	"github.com/ernfleet/cauldron/pkg/identity"
)

// Output formats accepted by --output.
const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
	outputTOML = "toml"
)

// releaseView is the rendered form of one release.
type releaseView struct {
	Descriptor       string   `json:"descriptor" yaml:"descriptor" toml:"descriptor"`
	Released         bool     `json:"released" yaml:"released" toml:"released"`
	ContainerVersion string   `json:"containerVersion,omitempty" yaml:"containerVersion,omitempty" toml:"containerVersion,omitempty"`
	MiniApps         []string `json:"miniApps" yaml:"miniApps" toml:"miniApps"`
	NativeDeps       []string `json:"nativeDeps" yaml:"nativeDeps" toml:"nativeDeps"`
	JSAPIImpls       []string `json:"jsApiImpls,omitempty" yaml:"jsApiImpls,omitempty" toml:"jsApiImpls,omitempty"`
	BinaryStore      string   `json:"binaryStore,omitempty" yaml:"binaryStore,omitempty" toml:"binaryStore,omitempty"`
}

// tomlDocument wraps the views since a TOML document must be a table.
type tomlDocument struct {
	Releases []releaseView `toml:"release"`
}

func newReleaseView(r cauldron.Release) releaseView {
	v := releaseView{
		Descriptor:       r.Descriptor.String(),
		Released:         r.Version.IsReleased,
		ContainerVersion: r.Version.ContainerVersion,
		MiniApps:         r.Version.Container.MiniApps.Strings(),
		NativeDeps:       dependencyStrings(r.Version.Container.NativeDeps),
		JSAPIImpls:       r.Version.Container.JSAPIImpls.Strings(),
	}
	if bs := r.Version.BinaryStore; bs != nil {
		v.BinaryStore = strings.TrimSpace(bs.URL + " " + bs.Path)
	}
	if v.MiniApps == nil {
		v.MiniApps = []string{}
	}
	return v
}

func dependencyStrings(deps []identity.Dependency) []string {
	out := make([]string, 0, len(deps))
	for _, d := range deps {
		out = append(out, d.String())
	}
	return out
}

// writeReleases renders releases in the requested format.
func writeReleases(w io.Writer, format string, releases []cauldron.Release) error {
	views := make([]releaseView, 0, len(releases))
	for _, r := range releases {
		views = append(views, newReleaseView(r))
	}

	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(views)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(views); err != nil {
			return err
		}
		return enc.Close()
	case outputTOML:
		return toml.NewEncoder(w).Encode(tomlDocument{Releases: views})
	case outputText:
		writeReleasesText(w, views)
		return nil
	default:
		return fmt.Errorf("unknown output format %q (valid: text, json, yaml, toml)", format)
	}
}

func writeReleasesText(w io.Writer, views []releaseView) {
	if len(views) == 0 {
		fmt.Fprintln(w, SubtitleStyle.Render("(no versions)"))
		return
	}
	for i, v := range views {
		if i > 0 {
			fmt.Fprintln(w)
		}
		status := SubtitleStyle.Render("in development")
		if v.Released {
			status = SuccessStyle.Render("released")
		}
		fmt.Fprintf(w, "%s  %s", TitleStyle.Render(v.Descriptor), status)
		if v.ContainerVersion != "" {
			fmt.Fprintf(w, "  container %s", v.ContainerVersion)
		}
		fmt.Fprintln(w)
		writeList(w, "MiniApps", v.MiniApps)
		writeList(w, "Native dependencies", v.NativeDeps)
		if len(v.JSAPIImpls) > 0 {
			writeList(w, "JS API implementations", v.JSAPIImpls)
		}
		if v.BinaryStore != "" {
			fmt.Fprintf(w, "  %s: %s\n", KeyStyle.Render("Binary store"), v.BinaryStore)
		}
	}
}

func writeList(w io.Writer, label string, items []string) {
	fmt.Fprintf(w, "  %s:\n", KeyStyle.Render(label))
	if len(items) == 0 {
		fmt.Fprintf(w, "    %s\n", SubtitleStyle.Render("(none)"))
		return
	}
	for _, item := range items {
		fmt.Fprintf(w, "    - %s\n", item)
	}
}
