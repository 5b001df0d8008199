// Package batch describes per-item outcomes of multi-item operations
// (several transcripts, a file of verses).
package batch

// ItemStatus is the processing outcome of a single batch item.
type ItemStatus string

// Batch item status values.
const (
	StatusOK    ItemStatus = "ok"
	StatusError ItemStatus = "error"
)

// Result is the outcome of one item. A failed item never aborts the batch.
type Result struct {
	id     string
	status ItemStatus
	err    error
}

// NewOK creates a successful item result.
func NewOK(id string) Result { return Result{id: id, status: StatusOK} }

// NewError creates a failed item result.
func NewError(id string, err error) Result { return Result{id: id, status: StatusError, err: err} }

// ID returns the item identifier (video id or verse key).
func (r Result) ID() string { return r.id }

// Status returns the processing outcome.
func (r Result) Status() ItemStatus { return r.status }

// Err returns the failure, nil for successful items.
func (r Result) Err() error { return r.err }

// Summary counts successes and failures.
type Summary struct {
	Succeeded int
	Failed    int
}

// Summarize counts the outcomes of results.
func Summarize(results []Result) Summary {
	var s Summary
	for _, r := range results {
		if r.status == StatusOK {
			s.Succeeded++
		} else {
			s.Failed++
		}
	}
	return s
}
