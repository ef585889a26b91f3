package utils

import (
	"strings"
	"testing"

	"github.com/vmeirelles/taskboard/internal/model"
)

func TestSanitizeTagsDedupesAndCaps(t *testing.T) {
	in := []string{" Go ", "go", "", "API", "api", "db"}
	got := SanitizeTags(in)
	want := []string{"go", "api", "db"}
	if len(got) != len(want) {
		t.Fatalf("expected %d tags, got %d (%v)", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("tag %d: expected %q, got %q", i, want[i], got[i])
		}
	}

	many := make([]string, 0, 30)
	for r := 'a'; r < 'a'+30; r++ {
		many = append(many, string(r))
	}
	if got := SanitizeTags(many); len(got) != 10 {
		t.Fatalf("expected cap of 10 tags, got %d", len(got))
	}
}

func TestSanitizeChecklistAssignsUniqueIDs(t *testing.T) {
	in := []model.ChecklistItem{
		{ID: "chk-1", Text: " first "},
		{ID: "chk-1", Text: "duplicate id"},
		{Text: "no id", Done: true},
		{ID: "chk-2", Text: "   "},
	}
	got := SanitizeChecklist(in)
	if len(got) != 3 {
		t.Fatalf("expected 3 items, got %d", len(got))
	}
	if got[0].Text != "first" {
		t.Fatalf("expected trimmed text, got %q", got[0].Text)
	}
	seen := map[string]bool{}
	for _, item := range got {
		if item.ID == "" || seen[item.ID] {
			t.Fatalf("expected unique non-empty ids, got %v", got)
		}
		seen[item.ID] = true
	}
	if !got[2].Done {
		t.Fatalf("expected done flag preserved")
	}
	if got[1].ID == "chk-1" {
		t.Fatalf("duplicate id should have been replaced")
	}
}

func TestSanitizeChecklistCapsAtFifty(t *testing.T) {
	in := make([]model.ChecklistItem, 60)
	for i := range in {
		in[i] = model.ChecklistItem{Text: "item"}
	}
	if got := SanitizeChecklist(in); len(got) != 50 {
		t.Fatalf("expected cap of 50 items, got %d", len(got))
	}
}

func TestSanitizeReminderText(t *testing.T) {
	if got := SanitizeReminderText("  lembrar  "); got != "lembrar" {
		t.Fatalf("expected trimmed text, got %q", got)
	}
	long := strings.Repeat("é", 300)
	got := SanitizeReminderText(long)
	if n := len([]rune(got)); n != 280 {
		t.Fatalf("expected 280 runes, got %d", n)
	}
}

func TestNewChecklistIDShape(t *testing.T) {
	id := NewChecklistID()
	if !strings.HasPrefix(id, "chk-") || len(id) != len("chk-")+10 {
		t.Fatalf("unexpected checklist id %q", id)
	}
}
