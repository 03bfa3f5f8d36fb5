package compose

import (
	"context"

	"github.com/pkg/errors"
)

// Func is the underlying callable of a step. Invocation receives the
// positional arguments the delivery mode produced; a tuple result is
// represented as []any so that splat delivery can unpack it.
type Func func(ctx context.Context, args ...any) (any, error)

// Compose builds a single callable threading one invocation through the
// given functions in order. The first function receives the composite's own
// arguments; each subsequent function receives the previous result delivered
// under the mode recorded for that adjacent pair; the composite returns the
// last function's result. Errors from an underlying function propagate
// unmodified, annotated only with the failing position.
//
// The plan must hold exactly len(fns)-1 modes, one per adjacent pair, as
// produced by Plan.
func Compose(fns []Func, plan []DeliveryMode) (Func, error) {
	if len(fns) == 0 {
		return nil, ErrEmptyPipeline
	}
	if len(plan) != len(fns)-1 {
		return nil, errors.Errorf("plan holds %d modes for %d adjacent pairs", len(plan), len(fns)-1)
	}

	// capture copies, the composite must not observe later mutations
	chain := make([]Func, len(fns))
	copy(chain, fns)
	modes := make([]DeliveryMode, len(plan))
	copy(modes, plan)

	return func(ctx context.Context, args ...any) (any, error) {
		result, err := chain[0](ctx, args...)
		if err != nil {
			return nil, err
		}

		for i, next := range chain[1:] {
			nextArgs, err := deliver(result, modes[i])
			if err != nil {
				return nil, errors.Wrapf(err, "step %d", i+2)
			}
			result, err = next(ctx, nextArgs...)
			if err != nil {
				return nil, err
			}
		}

		return result, nil
	}, nil
}

// deliver turns one step's result into the next step's argument list.
func deliver(result any, mode DeliveryMode) ([]any, error) {
	if mode == DeliverWhole {
		return []any{result}, nil
	}

	tuple, ok := result.([]any)
	if !ok {
		return nil, errors.Errorf("splat delivery requires a tuple result, got %T", result)
	}

	return tuple, nil
}
