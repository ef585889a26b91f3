package model

// AuditRecord is one append-only row of the audit trail. Rows are written
// only after a successful (status < 400) response, best effort.
type AuditRecord struct {
	ID     int64  `json:"id"`
	User   string `json:"user"`
	Action string `json:"action"`
	Method string `json:"method"`
	Path   string `json:"path"`
	Date   string `json:"date"`
}
