package pipeline_type

import (
	"errors"
	"fmt"
)

// ErrEmptyQuery is returned before the pipeline starts when the incoming
// query is empty or whitespace.
var ErrEmptyQuery = errors.New("query cannot be empty")

// UpstreamError wraps a failure of an external collaborator (embedding
// endpoint, generation endpoint, vector store). The orchestrator converts
// these into degraded answers instead of letting them reach the caller.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
