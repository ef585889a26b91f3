// Package queue defines message payloads exchanged over the message broker.
package queue

// AuditRecordedEvent is published after every successful mutating or read
// request, mirroring the row written to the audit table. Downstream
// consumers can log or analyze activity without querying the primary
// database. Delivery is best effort, at most once.
type AuditRecordedEvent struct {
	User   string `json:"user"`
	Action string `json:"action"`
	Method string `json:"method"`
	Path   string `json:"path"`
	Date   string `json:"date"`
}
