package conduit

import "context"

// SinkPushOutcome tells a StatefulSink what to do after handling one input:
// keep processing with a next state, or finish with a result, optionally
// handing back an unconsumed input. Build values with SinkProcessing,
// SinkDone, or SinkDoneLeftover.
type SinkPushOutcome[S, I, R any] struct {
	NextState S
	Stopped   bool
	Leftover  *I
	Result    R
}

// SinkProcessing continues the sink with next as the state.
func SinkProcessing[S, I, R any](next S) SinkPushOutcome[S, I, R] {
	return SinkPushOutcome[S, I, R]{NextState: next}
}

// SinkDone finishes the sink with result.
func SinkDone[S, I, R any](result R) SinkPushOutcome[S, I, R] {
	return SinkPushOutcome[S, I, R]{Stopped: true, Result: result}
}

// SinkDoneLeftover finishes the sink with result, handing leftover back as
// still-unconsumed input.
func SinkDoneLeftover[S, I, R any](leftover I, result R) SinkPushOutcome[S, I, R] {
	return SinkPushOutcome[S, I, R]{Stopped: true, Leftover: &leftover, Result: result}
}

// StatefulSink builds a result-producing consumer from a push function and a
// close finalizer, threading state across inputs the same way Stateful
// does. onClose computes the final result when upstream is exhausted before
// the sink finishes on its own.
func StatefulSink[S, I, R any](
	initial S,
	onPush func(ctx context.Context, state S, input I) (SinkPushOutcome[S, I, R], error),
	onClose func(ctx context.Context, state S) (R, error),
) Sink[I, R] {
	var await func(S) Sink[I, R]
	await = func(state S) Sink[I, R] {
		return &Await[I, Unit, R]{
			OnInput: func(in I) Sink[I, R] {
				return &Suspend[I, Unit, R]{Run: func(ctx context.Context) (Sink[I, R], error) {
					out, err := onPush(ctx, state, in)
					if err != nil {
						return nil, err
					}
					if !out.Stopped {
						return await(out.NextState), nil
					}
					var step Sink[I, R] = &Done[I, Unit, R]{Result: out.Result}
					if out.Leftover != nil {
						step = PushBack(*out.Leftover, step)
					}
					return step, nil
				}}
			},
			OnEnd: func() Sink[I, R] {
				return &Suspend[I, Unit, R]{Run: func(ctx context.Context) (Sink[I, R], error) {
					result, err := onClose(ctx, state)
					if err != nil {
						return nil, err
					}
					return &Done[I, Unit, R]{Result: result}, nil
				}}
			},
		}
	}
	return await(initial)
}
