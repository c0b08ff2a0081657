package conduit

import (
	"context"
	"errors"
)

// Fuse composes two stages: left's outputs become right's inputs. The fused
// step consumes left's input type and exposes right's output and result.
//
// Left is closed (its shutdown path drained, see closeStep) as soon as right
// finishes or the downstream consumer abandons the fused stage, so resources
// owned by either side are released no matter where termination originates.
// Input right hands back is re-emitted to right before anything newer from
// left; input left hands back propagates upstream of the fused stage.
func Fuse[A, B, C, R any](left Conduit[A, B], right Step[B, C, R]) Step[A, C, R] {
	switch r := right.(type) {
	case *Emit[B, C, R]:
		l := left
		abandon := r.Abandon
		return &Emit[A, C, R]{
			Next: Fuse(left, r.Next),
			Abandon: func(ctx context.Context) error {
				return errors.Join(runEffect(ctx, abandon), closeStep(ctx, l))
			},
			Value: r.Value,
		}
	case *Done[B, C, R]:
		l := left
		final := r.Final
		return &Done[A, C, R]{
			Final: func(ctx context.Context) error {
				return errors.Join(closeStep(ctx, l), runEffect(ctx, final))
			},
			Result: r.Result,
		}
	case *Suspend[B, C, R]:
		return &Suspend[A, C, R]{Run: func(ctx context.Context) (Step[A, C, R], error) {
			next, err := r.Run(ctx)
			if err != nil {
				return nil, err
			}
			return Fuse(left, next), nil
		}}
	case *Leftover[B, C, R]:
		// Redeliver by making the chain's values left's next outputs,
		// newest first.
		values, core := unwrapLeftovers[B, C, R](right)
		l := left
		abandon := func(ctx context.Context) error {
			return closeStep(ctx, l)
		}
		acc := left
		for i := len(values) - 1; i >= 0; i-- {
			acc = &Emit[A, B, Unit]{Next: acc, Abandon: abandon, Value: values[i]}
		}
		return Fuse(acc, core)
	case *Await[B, C, R]:
		switch l := left.(type) {
		case *Emit[A, B, Unit]:
			return Fuse(l.Next, r.OnInput(l.Value))
		case *Done[A, B, Unit]:
			final := l.Final
			return &Suspend[A, C, R]{Run: func(ctx context.Context) (Step[A, C, R], error) {
				if err := runEffect(ctx, final); err != nil {
					return nil, err
				}
				// Left is exhausted; later awaits keep seeing end-of-input.
				return Fuse[A, B, C, R](&Done[A, B, Unit]{}, r.OnEnd()), nil
			}}
		case *Await[A, B, Unit]:
			return &Await[A, C, R]{
				OnInput: func(in A) Step[A, C, R] { return Fuse(l.OnInput(in), right) },
				OnEnd:   func() Step[A, C, R] { return Fuse(l.OnEnd(), right) },
			}
		case *Suspend[A, B, Unit]:
			return &Suspend[A, C, R]{Run: func(ctx context.Context) (Step[A, C, R], error) {
				next, err := l.Run(ctx)
				if err != nil {
					return nil, err
				}
				return Fuse(next, right), nil
			}}
		case *Leftover[A, B, Unit]:
			return &Leftover[A, C, R]{Next: Fuse(l.Next, right), Value: l.Value}
		default:
			panic("conduit: unknown step shape")
		}
	default:
		panic("conduit: unknown step shape")
	}
}
