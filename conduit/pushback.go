package conduit

import "context"

// PushBack returns a step equivalent to s except that value is redelivered
// as the first input s sees when resumed. It is total and has no effects of
// its own; effects already embedded in s run when the result is driven.
//
// A step able to accept input consumes the value at push time. One that
// cannot (finished, or already holding unconsumed leftovers) keeps the value
// in a leftover chain with the newest value outermost, so that consumers
// redeliver the chain newest-first.
func PushBack[I, O, R any](value I, s Step[I, O, R]) Step[I, O, R] {
	// Unwind a chain of nested leftovers iteratively rather than recursing,
	// so adversarial nesting cannot overflow the stack. values holds the
	// chain newest (outermost) first; older values are fed into the core
	// first so that redelivery stays newest-first.
	values := []I{value}
	for {
		lo, ok := s.(*Leftover[I, O, R])
		if !ok {
			break
		}
		values = append(values, lo.Value)
		s = lo.Next
	}
	for i := len(values) - 1; i >= 0; i-- {
		s = pushOne(values[i], s)
	}
	return s
}

// pushOne redelivers a single value into a step that is not a leftover
// chain head (PushBack has already unwound those).
func pushOne[I, O, R any](value I, s Step[I, O, R]) Step[I, O, R] {
	switch v := s.(type) {
	case *Emit[I, O, R]:
		// Output in flight is unaffected; only the continuation is patched.
		return &Emit[I, O, R]{Next: PushBack(value, v.Next), Abandon: v.Abandon, Value: v.Value}
	case *Await[I, O, R]:
		next := v.OnInput(value)
		if lo, ok := next.(*Leftover[I, O, R]); ok {
			// Declined again, possibly substituting a different value.
			return PushBack(lo.Value, lo.Next)
		}
		return next
	case *Done[I, O, R]:
		// Cannot un-finish; wrap so the value stays recoverable.
		return &Leftover[I, O, R]{Next: v, Value: value}
	case *Suspend[I, O, R]:
		return &Suspend[I, O, R]{Run: func(ctx context.Context) (Step[I, O, R], error) {
			next, err := v.Run(ctx)
			if err != nil {
				return nil, err
			}
			return PushBack(value, next), nil
		}}
	case *Leftover[I, O, R]:
		// The chain beneath is already resolved (its core cannot accept);
		// keep the newer value outermost so it is redelivered first.
		return &Leftover[I, O, R]{Next: v, Value: value}
	default:
		panic("conduit: unknown step shape")
	}
}

// unwrapLeftovers splits a leftover chain into its values (newest first) and
// the core step beneath them.
func unwrapLeftovers[I, O, R any](s Step[I, O, R]) ([]I, Step[I, O, R]) {
	var values []I
	for {
		lo, ok := s.(*Leftover[I, O, R])
		if !ok {
			return values, s
		}
		values = append(values, lo.Value)
		s = lo.Next
	}
}

// HasInput reports whether at least one more input is available, without
// consuming it: a received value is immediately pushed back and the sink
// finishes true; upstream exhaustion finishes false.
func HasInput[I any]() Sink[I, bool] {
	return &Await[I, Unit, bool]{
		OnInput: func(v I) Sink[I, bool] {
			return &Leftover[I, Unit, bool]{Next: &Done[I, Unit, bool]{Result: true}, Value: v}
		},
		OnEnd: func() Sink[I, bool] {
			return &Done[I, Unit, bool]{Result: false}
		},
	}
}
