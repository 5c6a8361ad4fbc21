// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"slices"
	"strings"
	"testing"
)

func allIds() []Id {
	return []Id{
		StoreNotConfiguredId,
		ConfigLoadFailedId,
		InvalidDescriptorId,
		VersionNotFoundId,
		VersionReleasedId,
		DependencyConflictId,
		TransactionInProgressId,
		RemoteSyncFailedId,
		SchemaUnsupportedId,
		ManifestInvalidId,
		InvariantViolatedId,
	}
}

func TestId_Constants(t *testing.T) {
	t.Parallel()

	seen := make(map[Id]bool)
	for _, id := range allIds() {
		if seen[id] {
			t.Errorf("duplicate ID: %d", id)
		}
		seen[id] = true
	}
	if StoreNotConfiguredId != 1 {
		t.Errorf("StoreNotConfiguredId = %d, want 1", StoreNotConfiguredId)
	}
}

func TestGet(t *testing.T) {
	t.Parallel()

	for _, id := range allIds() {
		issue := Get(id)
		if issue == nil {
			t.Errorf("Get(%d) returned nil", id)
			continue
		}
		if issue.Id() != id {
			t.Errorf("Get(%d).Id() = %d", id, issue.Id())
		}
		if strings.TrimSpace(string(issue.MarkdownMsg())) == "" {
			t.Errorf("issue %d has no message", id)
		}
	}
	if Get(Id(9999)) != nil {
		t.Error("Get(unknown) should return nil")
	}
}

func TestValues(t *testing.T) {
	t.Parallel()

	values := Values()
	if len(values) != len(allIds()) {
		t.Fatalf("Values() returned %d issues, want %d", len(values), len(allIds()))
	}
	if !slices.IsSortedFunc(values, func(a, b *Issue) int { return int(a.Id() - b.Id()) }) {
		t.Error("Values() is not sorted by Id")
	}
}

func TestIssue_LinksAreCopies(t *testing.T) {
	t.Parallel()

	issue := &Issue{id: 1, mdMsg: "# x", docLinks: []HttpLink{"https://example.com/doc"}, extLinks: []HttpLink{"https://example.com/ext"}}
	links := issue.DocLinks()
	links[0] = "changed"
	if issue.DocLinks()[0] != "https://example.com/doc" {
		t.Error("DocLinks() exposed internal state")
	}
	ext := issue.ExtLinks()
	ext[0] = "changed"
	if issue.ExtLinks()[0] != "https://example.com/ext" {
		t.Error("ExtLinks() exposed internal state")
	}
}

func TestIssue_Render(t *testing.T) {
	t.Parallel()

	for _, issue := range Values() {
		out, err := issue.Render("notty")
		if err != nil {
			t.Errorf("Render(%d) failed: %v", issue.Id(), err)
			continue
		}
		if strings.TrimSpace(out) == "" {
			t.Errorf("Render(%d) returned empty output", issue.Id())
		}
	}
}

func TestIssue_Render_WithLinks(t *testing.T) {
	t.Parallel()

	issue := &Issue{id: 1, mdMsg: "# Title", docLinks: []HttpLink{"https://example.com/doc"}}
	out, err := issue.Render("notty")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "See also") || !strings.Contains(out, "https://example.com/doc") {
		t.Errorf("Render() = %q, want the links section", out)
	}
}

func TestDependencyConflictIssue_MentionsForce(t *testing.T) {
	t.Parallel()

	if !strings.Contains(string(Get(DependencyConflictId).MarkdownMsg()), "--force") {
		t.Error("conflict guidance should mention --force")
	}
}
