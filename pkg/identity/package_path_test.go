// SPDX-License-Identifier: MPL-2.0

package identity

import (
	"errors"
	"testing"
)

func TestParsePackagePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     string
		wantGit   bool
		wantID    string
		wantVer   string
		wantError bool
	}{
		{"npm", "miniapp-a@1.0", false, "miniapp-a", "1.0", false},
		{"npm_scoped", "@corp/cart@2.1.0", false, "@corp/cart", "2.1.0", false},
		{"npm_unversioned", "miniapp-a", false, "miniapp-a", "", false},
		{"git_https", "https://github.com/corp/cart.git", true, "https://github.com/corp/cart.git", "", false},
		{"git_https_ref", "https://github.com/corp/cart.git#v1.2.0", true, "https://github.com/corp/cart.git", "v1.2.0", false},
		{"git_plus_ssh", "git+ssh://git@github.com/corp/cart.git#main", true, "ssh://git@github.com/corp/cart.git", "main", false},
		{"git_scp", "git@github.com:corp/cart.git", true, "git@github.com:corp/cart.git", "", false},
		{"empty", "", false, "", "", true},
		{"empty_ref", "https://github.com/corp/cart.git#", false, "", "", true},
		{"bare_scheme", "https://", false, "", "", true},
		{"git_plus_npm", "git+cart@1.0", false, "", "", true},
		{"bad_npm", "@corp", false, "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p, err := ParsePackagePath(tt.input)
			if tt.wantError {
				if err == nil {
					t.Fatalf("ParsePackagePath(%q) returned no error", tt.input)
				}
				var pe *ParseError
				if !errors.As(err, &pe) || pe.Kind != KindPackage {
					t.Errorf("error should be a package ParseError, got: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePackagePath(%q) unexpected error: %v", tt.input, err)
			}
			_, isGit := p.(GitPackage)
			if isGit != tt.wantGit {
				t.Errorf("git = %v, want %v (%T)", isGit, tt.wantGit, p)
			}
			if p.Identity() != tt.wantID {
				t.Errorf("Identity() = %q, want %q", p.Identity(), tt.wantID)
			}
			if p.Version() != tt.wantVer {
				t.Errorf("Version() = %q, want %q", p.Version(), tt.wantVer)
			}
		})
	}
}

func TestSamePackage(t *testing.T) {
	t.Parallel()

	npmA1 := MustParsePackagePath("a@1.0")
	npmA2 := MustParsePackagePath("a@2.0")
	gitA := MustParsePackagePath("https://example.com/a.git#v1")
	gitA2 := MustParsePackagePath("https://example.com/a.git#v2")

	if !SamePackage(npmA1, npmA2, true) {
		t.Error("npm packages differing only in version should match when ignoring version")
	}
	if SamePackage(npmA1, npmA2, false) {
		t.Error("npm packages differing in version should not match strictly")
	}
	if !SamePackage(gitA, gitA2, true) {
		t.Error("git packages differing only in ref should match when ignoring version")
	}
	if SamePackage(gitA, gitA2, false) {
		t.Error("git packages differing in ref should not match strictly")
	}
	if SamePackage(npmA1, gitA, true) {
		t.Error("npm and git packages should never match")
	}
	if !SamePackage(nil, nil, false) || SamePackage(npmA1, nil, true) {
		t.Error("nil handling mismatch")
	}
}

func TestPackagePath_WithoutVersion(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"@s/a@1.0", "https://example.com/a.git#main"} {
		p := MustParsePackagePath(in)
		bare := p.WithoutVersion()
		if bare.Version() != "" {
			t.Errorf("%q.WithoutVersion().Version() = %q", in, bare.Version())
		}
		if !SamePackage(p, bare, true) {
			t.Errorf("%q.WithoutVersion() no longer identifies the same package", in)
		}
		if got := MustParsePackagePath(p.String()); !SamePackage(got, p, false) {
			t.Errorf("String() round trip of %q = %q", in, got)
		}
	}
}
