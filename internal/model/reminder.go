package model

// Reminder is a short per-user note. Reminders belong exclusively to
// their user; admins may list another user's reminders but edits still go
// through the ownership check.
type Reminder struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"user_id"`
	Text      string `json:"text"`
	Done      bool   `json:"done"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}
