package conduit

import (
	"context"

	"github.com/dcshock/conduit/scope"
)

// ResourceOutcome tells a WithResource conduit what to do after handling one
// input. There is no state threading here: mutable state, if any, lives
// inside the resource. Build values with ResourceProducing,
// ResourceFinished, or ResourceFinishedLeftover.
type ResourceOutcome[I, O any] struct {
	Outputs  []O
	Stopped  bool
	Leftover *I
}

// ResourceProducing continues the conduit after emitting outputs in order.
func ResourceProducing[I, O any](outputs ...O) ResourceOutcome[I, O] {
	return ResourceOutcome[I, O]{Outputs: outputs}
}

// ResourceFinished terminates the conduit after emitting outputs in order.
func ResourceFinished[I, O any](outputs ...O) ResourceOutcome[I, O] {
	return ResourceOutcome[I, O]{Outputs: outputs, Stopped: true}
}

// ResourceFinishedLeftover terminates the conduit after emitting outputs,
// handing leftover back as still-unconsumed input.
func ResourceFinishedLeftover[I, O any](leftover I, outputs ...O) ResourceOutcome[I, O] {
	return ResourceOutcome[I, O]{Outputs: outputs, Stopped: true, Leftover: &leftover}
}

// WithResource is Stateful with an owned resource. The resource is acquired
// lazily when the first input arrives and its release is registered with the
// scope carried by the run's context, so release fires exactly once on every
// exit path: normal finish, early abandonment by the consumer, effect
// failure unwind, or a close reached before any input (in which case the
// resource is acquired and released within the same close step, purely to
// run the finalizer under a real resource lifetime).
//
// acquire, onPush, onClose, and release are never retried; any failure
// propagates to the driver and the scope's unwind releases the resource.
func WithResource[S, I, O any](
	acquire func(ctx context.Context) (S, error),
	release func(ctx context.Context, res S) error,
	onPush func(ctx context.Context, res S, input I) (ResourceOutcome[I, O], error),
	onClose func(ctx context.Context, res S) ([]O, error),
) Conduit[I, O] {
	acquireScoped := func(ctx context.Context) (S, *scope.Cleanup, error) {
		res, err := acquire(ctx)
		if err != nil {
			var zero S
			return zero, nil, err
		}
		cl := scope.Register(ctx, func(ctx context.Context) error {
			return release(ctx, res)
		})
		return res, cl, nil
	}

	var await func(S, *scope.Cleanup) Conduit[I, O]
	push := func(res S, cl *scope.Cleanup, in I) Conduit[I, O] {
		return &Suspend[I, O, Unit]{Run: func(ctx context.Context) (Conduit[I, O], error) {
			out, err := onPush(ctx, res, in)
			if err != nil {
				return nil, err
			}
			if !out.Stopped {
				return EmitAll[I, O, Unit](out.Outputs, Effect(cl.Release), await(res, cl)), nil
			}
			var step Conduit[I, O] = &Done[I, O, Unit]{Final: Effect(cl.Release)}
			step = EmitAll[I, O, Unit](out.Outputs, Effect(cl.Release), step)
			if out.Leftover != nil {
				step = PushBack(*out.Leftover, step)
			}
			return step, nil
		}}
	}
	await = func(res S, cl *scope.Cleanup) Conduit[I, O] {
		return &Await[I, O, Unit]{
			OnInput: func(in I) Conduit[I, O] {
				return push(res, cl, in)
			},
			OnEnd: func() Conduit[I, O] {
				return &Suspend[I, O, Unit]{Run: func(ctx context.Context) (Conduit[I, O], error) {
					outs, err := onClose(ctx, res)
					if err != nil {
						return nil, err
					}
					if err := cl.Release(ctx); err != nil {
						return nil, err
					}
					return EmitAll[I, O, Unit](outs, nil, &Done[I, O, Unit]{}), nil
				}}
			},
		}
	}

	return &Await[I, O, Unit]{
		OnInput: func(in I) Conduit[I, O] {
			return &Suspend[I, O, Unit]{Run: func(ctx context.Context) (Conduit[I, O], error) {
				res, cl, err := acquireScoped(ctx)
				if err != nil {
					return nil, err
				}
				return push(res, cl, in), nil
			}}
		},
		OnEnd: func() Conduit[I, O] {
			return &Suspend[I, O, Unit]{Run: func(ctx context.Context) (Conduit[I, O], error) {
				res, cl, err := acquireScoped(ctx)
				if err != nil {
					return nil, err
				}
				outs, err := onClose(ctx, res)
				if err != nil {
					return nil, err
				}
				if err := cl.Release(ctx); err != nil {
					return nil, err
				}
				return EmitAll[I, O, Unit](outs, nil, &Done[I, O, Unit]{}), nil
			}}
		},
	}
}
