// Standard stages (stdlib-style) for common pipeline patterns.

package conduit

import (
	"context"
	"fmt"
	"time"
)

// Map returns a conduit that converts each input with fn, one output per
// input.
func Map[I, O any](fn func(ctx context.Context, in I) (O, error)) Conduit[I, O] {
	return Stateful(Unit{}, func(ctx context.Context, _ Unit, in I) (PushOutcome[Unit, I, O], error) {
		out, err := fn(ctx, in)
		if err != nil {
			return PushOutcome[Unit, I, O]{}, err
		}
		return Producing[Unit, I, O](Unit{}, out), nil
	}, func(context.Context, Unit) ([]O, error) {
		return nil, nil
	})
}

// Filter returns a conduit that keeps only inputs for which keep is true.
func Filter[T any](keep func(T) bool) Conduit[T, T] {
	return Stateful(Unit{}, func(_ context.Context, _ Unit, in T) (PushOutcome[Unit, T, T], error) {
		if keep(in) {
			return Producing[Unit, T, T](Unit{}, in), nil
		}
		return Producing[Unit, T, T](Unit{}), nil
	}, func(context.Context, Unit) ([]T, error) {
		return nil, nil
	})
}

// Identity returns a conduit that passes every input through unchanged.
// Useful as a no-op, for observer boundaries, or as a placeholder.
func Identity[T any]() Conduit[T, T] {
	return Filter(func(T) bool { return true })
}

// Tap returns a conduit that calls fn for each input then passes it through
// unchanged. Use for logging, metrics, or side effects without changing the
// value.
func Tap[T any](fn func(ctx context.Context, v T)) Conduit[T, T] {
	return Map(func(ctx context.Context, in T) (T, error) {
		fn(ctx, in)
		return in, nil
	})
}

// Erase adapts a typed conduit to Conduit[any, any] so it can live in a
// name-keyed registry and be fused with other erased stages. Inputs that are
// not of type I fail the run with a type error.
func Erase[I, O any](c Conduit[I, O]) Conduit[any, any] {
	switch v := c.(type) {
	case *Emit[I, O, Unit]:
		return &Emit[any, any, Unit]{Next: Erase(v.Next), Abandon: v.Abandon, Value: v.Value}
	case *Await[I, O, Unit]:
		return &Await[any, any, Unit]{
			OnInput: func(in any) Conduit[any, any] {
				t, ok := in.(I)
				if !ok {
					return &Suspend[any, any, Unit]{Run: func(context.Context) (Conduit[any, any], error) {
						var zero I
						return nil, fmt.Errorf("conduit: expected %T, got %T", zero, in)
					}}
				}
				return Erase(v.OnInput(t))
			},
			OnEnd: func() Conduit[any, any] { return Erase(v.OnEnd()) },
		}
	case *Done[I, O, Unit]:
		return &Done[any, any, Unit]{Final: v.Final}
	case *Suspend[I, O, Unit]:
		return &Suspend[any, any, Unit]{Run: func(ctx context.Context) (Conduit[any, any], error) {
			next, err := v.Run(ctx)
			if err != nil {
				return nil, err
			}
			return Erase(next), nil
		}}
	case *Leftover[I, O, Unit]:
		return &Leftover[any, any, Unit]{Next: Erase(v.Next), Value: v.Value}
	default:
		panic("conduit: unknown step shape")
	}
}

// WithTimeout wraps step so each of its suspended effects runs with a
// context deadline of now+timeout. An effect that does not return before its
// deadline fails the run with context.DeadlineExceeded.
func WithTimeout[I, O, R any](step Step[I, O, R], timeout time.Duration) Step[I, O, R] {
	switch v := step.(type) {
	case *Emit[I, O, R]:
		return &Emit[I, O, R]{Next: WithTimeout(v.Next, timeout), Abandon: v.Abandon, Value: v.Value}
	case *Await[I, O, R]:
		return &Await[I, O, R]{
			OnInput: func(in I) Step[I, O, R] { return WithTimeout(v.OnInput(in), timeout) },
			OnEnd:   func() Step[I, O, R] { return WithTimeout(v.OnEnd(), timeout) },
		}
	case *Done[I, O, R]:
		return v
	case *Suspend[I, O, R]:
		return &Suspend[I, O, R]{Run: func(ctx context.Context) (Step[I, O, R], error) {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			next, err := v.Run(ctx)
			if err != nil {
				return nil, err
			}
			return WithTimeout(next, timeout), nil
		}}
	case *Leftover[I, O, R]:
		return &Leftover[I, O, R]{Next: WithTimeout(v.Next, timeout), Value: v.Value}
	default:
		panic("conduit: unknown step shape")
	}
}
