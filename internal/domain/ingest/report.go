// Package ingest defines the per-batch outcome types for bulk ingestion.
package ingest

// Reason classifies why a record was rejected.
type Reason string

// Rejection reasons.
const (
	ReasonMissingTitle  Reason = "missing_title"
	ReasonMissingAuthor Reason = "missing_author"
	ReasonInvalidYear   Reason = "invalid_year"
	ReasonWriteFailed   Reason = "write_failed"
)

// Rejection records one excluded record by its 1-based offset in the payload.
type Rejection struct {
	offset int
	reason Reason
	detail string
}

// NewRejection creates a rejection entry.
func NewRejection(offset int, reason Reason, detail string) Rejection {
	return Rejection{offset: offset, reason: reason, detail: detail}
}

// Offset returns the 1-based position of the record in the original payload.
func (r Rejection) Offset() int { return r.offset }

// Reason returns the rejection reason.
func (r Rejection) Reason() Reason { return r.reason }

// Detail returns the human-readable rejection detail, if any.
func (r Rejection) Detail() string { return r.detail }

// Report is the outcome of one ingest call. Created fresh per call, returned
// to the caller and discarded.
type Report struct {
	accepted int
	rejected []Rejection
}

// NewReport creates an ingestion report.
func NewReport(accepted int, rejected []Rejection) Report {
	return Report{accepted: accepted, rejected: rejected}
}

// Accepted returns the count of records durably written.
func (r Report) Accepted() int { return r.accepted }

// Rejected returns the rejections ordered by payload offset.
func (r Report) Rejected() []Rejection { return r.rejected }
