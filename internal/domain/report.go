package domain

import "time"

// ReportStatus represents review states for a submitted report.
type ReportStatus string

const (
	ReportStatusReceived ReportStatus = "received"
	ReportStatusApproved ReportStatus = "approved"
	ReportStatusRejected ReportStatus = "rejected"
)

// Valid reports whether the status is one of the supported values.
func (s ReportStatus) Valid() bool {
	switch s {
	case ReportStatusReceived, ReportStatusApproved, ReportStatusRejected:
		return true
	}
	return false
}

// Report is a submitted field-service report row. The form fields live in the
// free-form payload; the identity of the submitter is stamped into the payload
// under "created_by" at insert time. Rows are serialized verbatim onto the
// live feed, hence the JSON tags on the domain type.
type Report struct {
	ID        string         `json:"id"`
	Status    ReportStatus   `json:"status"`
	Payload   map[string]any `json:"payload"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}
