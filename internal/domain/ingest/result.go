package ingest

// ItemStatus is the write outcome of a single record in a bulk operation.
type ItemStatus string

// Bulk item status values.
const (
	StatusOK    ItemStatus = "ok"
	StatusError ItemStatus = "error"
)

// ItemResult is the outcome of writing one record in a bulk request.
type ItemResult struct {
	id     string
	status ItemStatus
	err    error
}

// NewOK creates a successful item result.
func NewOK(id string) ItemResult { return ItemResult{id: id, status: StatusOK} }

// NewError creates a failed item result.
func NewError(id string, err error) ItemResult {
	return ItemResult{id: id, status: StatusError, err: err}
}

// ID returns the record identifier (engine-assigned when the caller gave none).
func (r ItemResult) ID() string { return r.id }

// Status returns the write outcome.
func (r ItemResult) Status() ItemStatus { return r.status }

// Err returns the write error, if any.
func (r ItemResult) Err() error { return r.err }
