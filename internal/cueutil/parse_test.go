// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"strings"
	"testing"
)

const testSchema = `
#Release: {
	name:      string
	platform:  "android" | "ios"
	released?: bool
	deps?: [...string]
}
`

type testRelease struct {
	Name     string   `json:"name"`
	Platform string   `json:"platform"`
	Released bool     `json:"released,omitempty"`
	Deps     []string `json:"deps,omitempty"`
}

func TestParseAndDecode(t *testing.T) {
	t.Parallel()

	t.Run("cue input decodes", func(t *testing.T) {
		t.Parallel()
		data := []byte(`
name: "walmart"
platform: "ios"
deps: ["react-native@0.72.4"]
`)
		result, err := ParseAndDecode[testRelease]([]byte(testSchema), data, "#Release")
		if err != nil {
			t.Fatalf("ParseAndDecode failed: %v", err)
		}
		if result.Value.Name != "walmart" || result.Value.Platform != "ios" {
			t.Errorf("decoded = %+v", result.Value)
		}
		if len(result.Value.Deps) != 1 {
			t.Errorf("expected 1 dep, got %d", len(result.Value.Deps))
		}
		if result.Unified.Err() != nil {
			t.Errorf("unified value has error: %v", result.Unified.Err())
		}
	})

	t.Run("json input decodes", func(t *testing.T) {
		t.Parallel()
		data := []byte(`{"name": "walmart", "platform": "android", "released": true}`)
		result, err := ParseAndDecode[testRelease]([]byte(testSchema), data, "#Release")
		if err != nil {
			t.Fatalf("ParseAndDecode failed: %v", err)
		}
		if !result.Value.Released {
			t.Error("expected released=true")
		}
	})

	t.Run("missing required field", func(t *testing.T) {
		t.Parallel()
		if _, err := ParseAndDecode[testRelease]([]byte(testSchema), []byte(`platform: "ios"`), "#Release"); err == nil {
			t.Error("expected error for missing name")
		}
	})

	t.Run("optional fields may stay open when not concrete", func(t *testing.T) {
		t.Parallel()
		_, err := ParseAndDecode[testRelease]([]byte(testSchema), []byte(`{}`), "#Release", WithConcrete(false))
		if err != nil {
			t.Errorf("ParseAndDecode with WithConcrete(false) failed: %v", err)
		}
	})
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		data      string
		wantError string
	}{
		{"valid", `{"name": "a", "platform": "ios"}`, ""},
		{"bad_enum", `{"name": "a", "platform": "windows"}`, "platform"},
		{"bad_type", `{"name": 3, "platform": "ios"}`, "name"},
		{"closed_definition", `{"name": "a", "platform": "ios", "extra": 1}`, "extra"},
		{"syntax", `{"name": `, "doc.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Validate([]byte(testSchema), []byte(tt.data), "#Release", WithFilename("doc.json"))
			if tt.wantError == "" {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() returned no error")
			}
			if !strings.Contains(err.Error(), tt.wantError) {
				t.Errorf("error %q should mention %q", err, tt.wantError)
			}
			if !strings.HasPrefix(err.Error(), "doc.json") {
				t.Errorf("error %q should start with the file name", err)
			}
		})
	}
}

func TestValidate_MissingDefinition(t *testing.T) {
	t.Parallel()

	_, err := Validate([]byte(testSchema), []byte(`{}`), "#Nope")
	if err == nil || !strings.Contains(err.Error(), "#Nope") {
		t.Errorf("Validate() with unknown definition = %v", err)
	}
}

func TestFileSizeLimit(t *testing.T) {
	t.Parallel()

	data := []byte(strings.Repeat("a", 200))
	_, err := Validate([]byte(testSchema), data, "#Release", WithMaxFileSize(100))
	if err == nil || !strings.Contains(err.Error(), "exceeds maximum") {
		t.Errorf("Validate() over the size limit = %v", err)
	}
}

func TestFormatError(t *testing.T) {
	t.Parallel()

	if FormatError(nil, "x.cue") != nil {
		t.Error("FormatError(nil) should be nil")
	}
	err := FormatError(errors.New("boom"), "x.cue")
	if err == nil || err.Error() != "x.cue: boom" {
		t.Errorf("FormatError(plain) = %v", err)
	}
}

func TestFormatPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path []string
		want string
	}{
		{nil, ""},
		{[]string{"name"}, "name"},
		{[]string{"nativeApps", "0", "name"}, "nativeApps[0].name"},
		{[]string{"nativeApps", "0", "platforms", "1", "versions", "2"}, "nativeApps[0].platforms[1].versions[2]"},
		{[]string{"0"}, "0"},
	}

	for _, tt := range tests {
		if got := formatPath(tt.path); got != tt.want {
			t.Errorf("formatPath(%v) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
