package conduit

import (
	"context"

	"github.com/dcshock/conduit/scope"
)

// SourceOutcome tells a StatefulSource what to do after one pull: stay open
// with a next state and an output, or close. Build values with SourceOpen or
// SourceClosed.
type SourceOutcome[S, O any] struct {
	Closed    bool
	NextState S
	Output    O
}

// SourceOpen keeps the source open: output is emitted and the next pull sees
// next as the state.
func SourceOpen[S, O any](next S, output O) SourceOutcome[S, O] {
	return SourceOutcome[S, O]{NextState: next, Output: output}
}

// SourceClosed ends the source.
func SourceClosed[S, O any]() SourceOutcome[S, O] {
	return SourceOutcome[S, O]{Closed: true}
}

// StatefulSource builds a pure output producer from a pull function,
// threading state across pulls. pull runs lazily, once per value demanded by
// the consumer.
func StatefulSource[S, O any](
	initial S,
	pull func(ctx context.Context, state S) (SourceOutcome[S, O], error),
) Source[O] {
	var next func(S) Source[O]
	next = func(state S) Source[O] {
		return &Suspend[Unit, O, Unit]{Run: func(ctx context.Context) (Source[O], error) {
			out, err := pull(ctx, state)
			if err != nil {
				return nil, err
			}
			if out.Closed {
				return &Done[Unit, O, Unit]{}, nil
			}
			return &Emit[Unit, O, Unit]{Next: next(out.NextState), Value: out.Output}, nil
		}}
	}
	return next(initial)
}

// ResourceSource builds an output producer that owns a resource. The
// resource is acquired on the first pull and its release is registered with
// the scope carried by the run's context; release fires exactly once, on
// exhaustion (pull reports no more values), on consumer abandonment, or on
// failure unwind. pull has the iterator shape: it returns the next value and
// whether one was available.
func ResourceSource[S, O any](
	acquire func(ctx context.Context) (S, error),
	release func(ctx context.Context, res S) error,
	pull func(ctx context.Context, res S) (O, bool, error),
) Source[O] {
	var next func(S, *scope.Cleanup) Source[O]
	next = func(res S, cl *scope.Cleanup) Source[O] {
		return &Suspend[Unit, O, Unit]{Run: func(ctx context.Context) (Source[O], error) {
			out, ok, err := pull(ctx, res)
			if err != nil {
				return nil, err
			}
			if !ok {
				if err := cl.Release(ctx); err != nil {
					return nil, err
				}
				return &Done[Unit, O, Unit]{}, nil
			}
			return &Emit[Unit, O, Unit]{Next: next(res, cl), Abandon: Effect(cl.Release), Value: out}, nil
		}}
	}
	return &Suspend[Unit, O, Unit]{Run: func(ctx context.Context) (Source[O], error) {
		res, err := acquire(ctx)
		if err != nil {
			return nil, err
		}
		cl := scope.Register(ctx, func(ctx context.Context) error {
			return release(ctx, res)
		})
		return next(res, cl), nil
	}}
}
