package retrieval

import (
	"context"
	"errors"
	"fmt"

	"github.com/siherrmann/recall/helper"
	"github.com/siherrmann/recall/model"
)

// Retriever failure modes. Zero results is never an error, an empty
// candidate list is a successful retrieval.
var (
	// ErrUnavailable means the backing store could not be reached
	ErrUnavailable = errors.New("retriever unavailable")
	// ErrTimeout means the retriever exceeded its allotted budget
	ErrTimeout = errors.New("retriever timeout")
	// ErrInvalidQuery means a filter or parameter was malformed
	ErrInvalidQuery = errors.New("invalid retriever query")
)

// Retriever returns raw candidates for a query from one backing store.
// Implementations honor the user_id filter for tenant isolation and
// MaxResults as an upper bound on returned items.
type Retriever interface {
	Retrieve(ctx context.Context, query *model.Query) ([]model.Candidate, error)
	Source() model.SourceType
	Ping(ctx context.Context) error
}

// EmbedFunc generates an embedding for text
type EmbedFunc func(text string) ([]float32, error)

// ExtractFunc extracts named entities from text
type ExtractFunc func(text string) ([]*model.Entity, error)

// wrapBackendError classifies a backend failure into the retriever error
// taxonomy, keeping the original error in the chain
func wrapBackendError(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return helper.NewError(op, fmt.Errorf("%w: %v", ErrTimeout, err))
	}
	return helper.NewError(op, fmt.Errorf("%w: %v", ErrUnavailable, err))
}
