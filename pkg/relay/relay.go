// Package relay forwards an upstream daemon sequence to a caller sink,
// strictly in arrival order.
package relay

import (
	"context"
	"fmt"
	"iter"

	"github.com/sirrobot01/dockdeck/pkg/classify"
)

// Sink receives relayed items. Returning an error aborts the relay.
type Sink[T any] func(T) error

// Reshape converts an upstream item. Items for which ok is false are dropped.
type Reshape[R, T any] func(R) (T, bool)

// Identity keeps every item unchanged
func Identity[T any](item T) (T, bool) {
	return item, true
}

// Run ranges over src and delivers each reshaped item to sink. It returns the
// number of delivered items and:
//   - nil when the upstream sequence ends
//   - a *classify.DaemonError when the upstream fails
//   - a *classify.UnexpectedError when the sink rejects an item
//   - ctx.Err() when the caller cancelled
func Run[R, T any](ctx context.Context, src iter.Seq2[R, error], reshape Reshape[R, T], sink Sink[T], cctx classify.Context) (int, error) {
	delivered := 0
	for raw, err := range src {
		if err != nil {
			if ctx.Err() != nil {
				return delivered, ctx.Err()
			}
			return delivered, classify.Classify(err, cctx)
		}

		item, ok := reshape(raw)
		if !ok {
			continue
		}

		if err := sink(item); err != nil {
			return delivered, &classify.UnexpectedError{
				Message: fmt.Sprintf("Failed to emit item %d: %v", delivered+1, err),
				Err:     err,
			}
		}
		delivered++

		if ctx.Err() != nil {
			return delivered, ctx.Err()
		}
	}
	return delivered, nil
}
