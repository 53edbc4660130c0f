// Package llm provides completion clients for the LLM providers Anjoman can
// route agent turns to. Each provider client speaks its native HTTP API; the
// Router dispatches by catalog provider and prices usage from the catalog.
package llm

import (
	"context"
	"errors"
	"time"
)

// Request is a single completion call.
type Request struct {
	Model        string
	System       string
	Prompt       string
	Temperature  float64
	MaxTokens    int
	JSONResponse bool
}

// Response is a successful completion with its usage accounting. Cost is
// filled in by the Router from catalog pricing; provider clients leave it 0.
type Response struct {
	Text      string
	TokensIn  int
	TokensOut int
	Cost      float64
}

// Client completes prompts against one LLM backend. Implementations must
// return an error for any failure, including an empty completion: a failure
// is always distinguishable from a successful-but-empty response.
type Client interface {
	Complete(ctx context.Context, req Request) (*Response, error)
}

// ErrEmptyCompletion is returned when a provider responds successfully but
// with no usable text.
var ErrEmptyCompletion = errors.New("empty completion")

// ErrUnknownModel is returned by the Router for models absent from the
// catalog or whose provider has no configured client.
var ErrUnknownModel = errors.New("unknown model")

const defaultCallTimeout = 120 * time.Second

// withCallTimeout applies the per-call timeout when the caller did not set
// a deadline, so a hung provider can never hang a whole round.
func withCallTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}
	return context.WithTimeout(ctx, timeout)
}
