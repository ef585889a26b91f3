package utils

import (
	"crypto/rand"
	"encoding/hex"
	"strings"

	"github.com/vmeirelles/taskboard/internal/model"
)

const (
	maxTags           = 10
	maxChecklistItems = 50
	maxReminderLen    = 280
)

// SanitizeTags trims, lowercases and deduplicates tags, keeping the first
// occurrence of each and at most ten entries. Order of first appearance
// is preserved.
func SanitizeTags(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, t := range in {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
		if len(out) >= maxTags {
			break
		}
	}
	return out
}

// SanitizeChecklist drops items with empty trimmed text, ensures every
// item has a unique id and caps the list at fifty entries. Items without
// an id, or with an id already used, get a fresh one.
func SanitizeChecklist(in []model.ChecklistItem) []model.ChecklistItem {
	out := make([]model.ChecklistItem, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, item := range in {
		text := strings.TrimSpace(item.Text)
		if text == "" {
			continue
		}
		id := strings.TrimSpace(item.ID)
		if id == "" || seen[id] {
			id = NewChecklistID()
		}
		seen[id] = true
		out = append(out, model.ChecklistItem{ID: id, Text: text, Done: item.Done})
		if len(out) >= maxChecklistItems {
			break
		}
	}
	return out
}

// NewChecklistID returns a fresh checklist item id of the form chk-<hex>.
func NewChecklistID() string {
	buf := make([]byte, 5)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms; keep the
		// item usable anyway.
		return "chk-0000000000"
	}
	return "chk-" + hex.EncodeToString(buf)
}

// SanitizeReminderText trims reminder text and caps it at 280 characters.
func SanitizeReminderText(in string) string {
	t := strings.TrimSpace(in)
	if r := []rune(t); len(r) > maxReminderLen {
		t = string(r[:maxReminderLen])
	}
	return t
}
