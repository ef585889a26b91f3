package model

import (
	"encoding/json"
	"strconv"
)

// Task statuses form a fixed pipeline. Moving a card to a status with a
// lower index is a regression and requires a reason.
const (
	StatusBacklog  = "backlog"
	StatusAnalysis = "analysis"
	StatusDoing    = "doing"
	StatusBlocked  = "blocked"
	StatusReview   = "review"
	StatusDone     = "done"
)

// StatusOrder is the pipeline order used to detect regressions.
var StatusOrder = []string{
	StatusBacklog,
	StatusAnalysis,
	StatusDoing,
	StatusBlocked,
	StatusReview,
	StatusDone,
}

// StatusIndex returns the pipeline position of s, or -1 when s is not a
// valid status.
func StatusIndex(s string) int {
	for i, v := range StatusOrder {
		if v == s {
			return i
		}
	}
	return -1
}

// ValidStatus reports whether s is one of the pipeline statuses.
func ValidStatus(s string) bool { return StatusIndex(s) >= 0 }

// Priorities use the board's Portuguese labels.
const (
	PriorityLow    = "baixa"
	PriorityMedium = "media"
	PriorityHigh   = "alta"
)

// ValidPriority reports whether p is a known priority label.
func ValidPriority(p string) bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// NormalizePriority coerces unknown priority values to the default.
func NormalizePriority(p string) string {
	if ValidPriority(p) {
		return p
	}
	return PriorityMedium
}

// ChecklistItem is a single checklist entry of a task. Items arrive from
// clients either as plain strings or as {id,text,done} objects; both
// shapes decode into the same struct.
type ChecklistItem struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	Done bool   `json:"done"`
}

// UnmarshalJSON accepts a bare string (treated as the item text) or an
// object. Object ids may be numeric and are stringified.
func (i *ChecklistItem) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*i = ChecklistItem{Text: s}
		return nil
	}
	var obj struct {
		ID   any    `json:"id"`
		Text string `json:"text"`
		Done bool   `json:"done"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	i.Text = obj.Text
	i.Done = obj.Done
	switch v := obj.ID.(type) {
	case string:
		i.ID = v
	case float64:
		i.ID = strconv.FormatInt(int64(v), 10)
	default:
		i.ID = ""
	}
	return nil
}

// Task mirrors the 'tasks' table. Tags and checklist are persisted as JSON
// text columns and decoded by the repository. Timestamps are the TEXT
// values SQLite produces with datetime('now').
type Task struct {
	ID                 int64           `json:"id"`
	Code               string          `json:"code"`
	Title              string          `json:"title"`
	Status             string          `json:"status"`
	Priority           string          `json:"priority"`
	Description        string          `json:"description"`
	CreatedAt          string          `json:"created_at"`
	CompletedAt        *string         `json:"completed_at"`
	Assignee           string          `json:"assignee"`
	ParentID           *int64          `json:"parent_id"`
	UpdatedAt          string          `json:"updated_at"`
	Tags               []string        `json:"tags"`
	Checklist          []ChecklistItem `json:"checklist"`
	OwnerID            *int64          `json:"owner_id"`
	OwnerUsername      *string         `json:"owner_username"`
	RegressionReason   *string         `json:"regression_reason"`
	RegressionReasonAt *string         `json:"regression_reason_at"`
	TrackedSeconds     int64           `json:"tracked_seconds"`
	TimerStartedAt     *string         `json:"timer_started_at"`
}
