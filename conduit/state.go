package conduit

import "context"

// PushOutcome tells a Stateful conduit what to do after handling one input:
// keep producing with a next state, or finish, optionally handing back an
// unconsumed input. Build values with Producing, Finished, or
// FinishedLeftover.
type PushOutcome[S, I, O any] struct {
	Outputs   []O
	NextState S
	Stopped   bool
	Leftover  *I
}

// Producing continues the conduit with next as the state after emitting
// outputs in order.
func Producing[S, I, O any](next S, outputs ...O) PushOutcome[S, I, O] {
	return PushOutcome[S, I, O]{Outputs: outputs, NextState: next}
}

// Finished terminates the conduit after emitting outputs in order.
func Finished[S, I, O any](outputs ...O) PushOutcome[S, I, O] {
	return PushOutcome[S, I, O]{Outputs: outputs, Stopped: true}
}

// FinishedLeftover terminates the conduit after emitting outputs, handing
// leftover back so the caller observes it as still-unconsumed input.
func FinishedLeftover[S, I, O any](leftover I, outputs ...O) PushOutcome[S, I, O] {
	return PushOutcome[S, I, O]{Outputs: outputs, Stopped: true, Leftover: &leftover}
}

// Stateful turns a push function and a close finalizer into a conduit,
// threading state across inputs. onPush is invoked at most once per input,
// strictly in arrival order, with the state produced by the previous push;
// state is replaced, never aliased. onClose runs on upstream exhaustion and
// its outputs are emitted before the conduit terminates.
func Stateful[S, I, O any](
	initial S,
	onPush func(ctx context.Context, state S, input I) (PushOutcome[S, I, O], error),
	onClose func(ctx context.Context, state S) ([]O, error),
) Conduit[I, O] {
	var await func(S) Conduit[I, O]
	await = func(state S) Conduit[I, O] {
		return &Await[I, O, Unit]{
			OnInput: func(in I) Conduit[I, O] {
				return &Suspend[I, O, Unit]{Run: func(ctx context.Context) (Conduit[I, O], error) {
					out, err := onPush(ctx, state, in)
					if err != nil {
						return nil, err
					}
					if !out.Stopped {
						return EmitAll[I, O, Unit](out.Outputs, nil, await(out.NextState)), nil
					}
					step := EmitAll[I, O, Unit](out.Outputs, nil, &Done[I, O, Unit]{})
					if out.Leftover != nil {
						step = PushBack(*out.Leftover, step)
					}
					return step, nil
				}}
			},
			OnEnd: func() Conduit[I, O] {
				return &Suspend[I, O, Unit]{Run: func(ctx context.Context) (Conduit[I, O], error) {
					outs, err := onClose(ctx, state)
					if err != nil {
						return nil, err
					}
					return EmitAll[I, O, Unit](outs, nil, &Done[I, O, Unit]{}), nil
				}}
			},
		}
	}
	return await(initial)
}
