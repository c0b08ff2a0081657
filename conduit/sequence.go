package conduit

import "context"

// SinkOutcome is the decision produced by one sequenced sink step: emit
// outputs and loop with a new state, stop, or hand the stream off to another
// conduit entirely. Build values with SinkEmit, SinkStop, or SinkHandOff.
type SinkOutcome[S, I, O any] struct {
	Outputs   []O
	NextState S
	Stopped   bool
	HandOff   Conduit[I, O]
}

// SinkEmit continues the loop with next as the state after emitting outputs
// in order.
func SinkEmit[S, I, O any](next S, outputs ...O) SinkOutcome[S, I, O] {
	return SinkOutcome[S, I, O]{Outputs: outputs, NextState: next}
}

// SinkStop terminates the loop with no further output.
func SinkStop[S, I, O any]() SinkOutcome[S, I, O] {
	return SinkOutcome[S, I, O]{Stopped: true}
}

// SinkHandOff abandons the loop; all further input and output is delegated
// entirely to c, with no wrapping and no further loop iterations.
func SinkHandOff[S, I, O any](c Conduit[I, O]) SinkOutcome[S, I, O] {
	return SinkOutcome[S, I, O]{HandOff: c}
}

// Sequence expresses a sequence of "run a sink, inspect its result, decide
// what happens next" steps as a single conduit. Each iteration first peeks
// (HasInput) so a step never starts against an exhausted upstream; the step
// sink itself may then consume zero, one, or many inputs before producing
// its outcome. Input a step hands back is redelivered to the next step, not
// to this conduit's upstream.
func Sequence[S, I, O any](initial S, step func(S) Sink[I, SinkOutcome[S, I, O]]) Conduit[I, O] {
	var loop func(S) Conduit[I, O]
	loop = func(state S) Conduit[I, O] {
		return embedSink(HasInput[I](), func(more bool) Conduit[I, O] {
			if !more {
				return &Done[I, O, Unit]{}
			}
			return embedSink(step(state), func(out SinkOutcome[S, I, O]) Conduit[I, O] {
				switch {
				case out.HandOff != nil:
					return out.HandOff
				case out.Stopped:
					return &Done[I, O, Unit]{}
				default:
					return EmitAll[I, O, Unit](out.Outputs, nil, loop(out.NextState))
				}
			})
		})
	}
	return loop(initial)
}

// embedSink drives a sink inside a conduit, forwarding the sink's input
// demands upstream. When the sink finishes, cont continues the conduit with
// its result. Input the sink hands back is redelivered newest-first: to the
// sink itself if it awaits again, otherwise handed to the enclosing consumer
// wrapped around the continuation with the newest value outermost.
func embedSink[I, O, R any](s Sink[I, R], cont func(R) Conduit[I, O]) Conduit[I, O] {
	return embedSinkPending(s, nil, cont)
}

// embedSinkPending is embedSink holding handed-back input, newest first,
// mirroring the driver's pending queue.
func embedSinkPending[I, O, R any](s Sink[I, R], pending []I, cont func(R) Conduit[I, O]) Conduit[I, O] {
	switch v := s.(type) {
	case *Await[I, Unit, R]:
		if len(pending) > 0 {
			in := pending[0]
			return embedSinkPending(v.OnInput(in), pending[1:], cont)
		}
		return &Await[I, O, Unit]{
			OnInput: func(in I) Conduit[I, O] { return embedSinkPending(v.OnInput(in), nil, cont) },
			OnEnd:   func() Conduit[I, O] { return embedSinkPending(v.OnEnd(), nil, cont) },
		}
	case *Suspend[I, Unit, R]:
		return &Suspend[I, O, Unit]{Run: func(ctx context.Context) (Conduit[I, O], error) {
			next, err := v.Run(ctx)
			if err != nil {
				return nil, err
			}
			return embedSinkPending(next, pending, cont), nil
		}}
	case *Emit[I, Unit, R]:
		// A sink produces no output sequence; skip past stray unit emits.
		return embedSinkPending(v.Next, pending, cont)
	case *Done[I, Unit, R]:
		final := v.Final
		result := v.Result
		return &Suspend[I, O, Unit]{Run: func(ctx context.Context) (Conduit[I, O], error) {
			if err := runEffect(ctx, final); err != nil {
				return nil, err
			}
			// The sink finished without consuming these; hand them to the
			// enclosing consumer, newest value outermost.
			k := cont(result)
			for i := len(pending) - 1; i >= 0; i-- {
				k = &Leftover[I, O, Unit]{Next: k, Value: pending[i]}
			}
			return k, nil
		}}
	case *Leftover[I, Unit, R]:
		// The chain is in redelivery order (newest first) and precedes any
		// older pending values.
		values, core := unwrapLeftovers(s)
		return embedSinkPending(core, append(values, pending...), cont)
	default:
		panic("conduit: unknown step shape")
	}
}
