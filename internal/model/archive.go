package model

// ArchiveEntry is an immutable snapshot of a deleted task in 'done'
// status. A restore never reactivates the original row: it creates a new
// backlog task and links it through RestoredTaskID.
type ArchiveEntry struct {
	ID             int64           `json:"id"`
	TaskID         *int64          `json:"task_id"`
	Code           *string         `json:"code"`
	Title          string          `json:"title"`
	OriginalStatus *string         `json:"original_status"`
	Priority       *string         `json:"priority"`
	Assignee       *string         `json:"assignee"`
	OwnerID        *int64          `json:"owner_id"`
	OwnerUsername  *string         `json:"owner_username"`
	Tags           []string        `json:"tags"`
	Description    *string         `json:"description"`
	ParentID       *int64          `json:"parent_id"`
	Checklist      []ChecklistItem `json:"checklist"`
	TrackedSeconds int64           `json:"tracked_seconds"`
	DeletedAt      string          `json:"deleted_at"`
	DeletedBy      *string         `json:"deleted_by"`
	RestoredAt     *string         `json:"restored_at"`
	RestoredBy     *string         `json:"restored_by"`
	RestoredTaskID *int64          `json:"restored_task_id"`
}
