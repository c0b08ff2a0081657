package conduit

import "context"

// Effect is a deferred side effect tied to a stage's lifecycle, such as an
// Emit's abandonment cleanup or a Done's trailing effect. A nil Effect is a
// no-op.
type Effect func(ctx context.Context) error

// Step is one node of a pipeline stage's coroutine representation: exactly
// one of Emit, Await, Done, Suspend, or Leftover, parameterized by input
// type I, output type O, and final result type R.
//
// The set of shapes is closed; drivers dispatch with a type switch. A
// well-formed step never transitions out of Done, and Leftover is produced
// by the pushback engine (or a builder routing a leftover through it), not
// constructed ad hoc.
type Step[I, O, R any] interface {
	step(I, O, R)
}

// Emit has a value ready for the consumer. Next is the continuation once the
// value is taken; Abandon is the cleanup to run if the consumer instead
// stops here. Every resource-owning stage keeps itself releasable at each
// Emit boundary through that effect.
type Emit[I, O, R any] struct {
	Next    Step[I, O, R]
	Abandon Effect
	Value   O
}

// Await wants one input value. OnInput continues with a received value;
// OnEnd continues after upstream exhaustion.
type Await[I, O, R any] struct {
	OnInput func(I) Step[I, O, R]
	OnEnd   func() Step[I, O, R]
}

// Done is terminal: no more input is consumed and no more output produced.
// Final is a trailing effect run once by the driver.
type Done[I, O, R any] struct {
	Final  Effect
	Result R
}

// Suspend is a deferred effect that, once executed, yields the next step.
// It is the only suspension point; Run is invoked at most once.
type Suspend[I, O, R any] struct {
	Run func(ctx context.Context) (Step[I, O, R], error)
}

// Leftover hands back an input value the stage is not consuming. Next is the
// step to resume once the value has been redelivered upstream.
type Leftover[I, O, R any] struct {
	Next  Step[I, O, R]
	Value I
}

func (*Emit[I, O, R]) step(I, O, R)     {}
func (*Await[I, O, R]) step(I, O, R)    {}
func (*Done[I, O, R]) step(I, O, R)     {}
func (*Suspend[I, O, R]) step(I, O, R)  {}
func (*Leftover[I, O, R]) step(I, O, R) {}

// Unit is the result type of stages that are driven for their outputs
// rather than a final value.
type Unit struct{}

// Conduit transforms an input sequence into an output sequence; it has no
// meaningful final result.
type Conduit[I, O any] = Step[I, O, Unit]

// Sink consumes input and is driven for a single final result; it produces
// no output sequence.
type Sink[I, R any] = Step[I, Unit, R]

// Source produces an output sequence and consumes nothing.
type Source[O any] = Step[Unit, O, Unit]

// EmitAll emits values in order and then continues as next. abandon becomes
// the cleanup of each emitted value, so a consumer stopping mid-sequence
// still triggers it.
func EmitAll[I, O, R any](values []O, abandon Effect, next Step[I, O, R]) Step[I, O, R] {
	s := next
	for i := len(values) - 1; i >= 0; i-- {
		s = &Emit[I, O, R]{Next: s, Abandon: abandon, Value: values[i]}
	}
	return s
}

func runEffect(ctx context.Context, e Effect) error {
	if e == nil {
		return nil
	}
	return e(ctx)
}

// closeStep drains a step's shutdown path without delivering further input:
// a pending suspension runs, an emit's Abandon cleanup runs, an awaiting
// stage's end-of-input path is followed to completion, and a terminal
// step's Final effect runs.
func closeStep[I, O, R any](ctx context.Context, s Step[I, O, R]) error {
	for {
		switch v := s.(type) {
		case *Emit[I, O, R]:
			return runEffect(ctx, v.Abandon)
		case *Done[I, O, R]:
			return runEffect(ctx, v.Final)
		case *Await[I, O, R]:
			s = v.OnEnd()
		case *Suspend[I, O, R]:
			next, err := v.Run(ctx)
			if err != nil {
				return err
			}
			s = next
		case *Leftover[I, O, R]:
			s = v.Next
		default:
			panic("conduit: unknown step shape")
		}
	}
}
