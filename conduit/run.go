package conduit

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dcshock/conduit/scope"
)

// ErrStop is returned by a Run callback to stop consuming outputs early.
// The stage's abandonment cleanup and the run's scope unwind still execute,
// so resources are released; Run reports ErrStop so the caller can tell an
// early stop from a failure.
var ErrStop = errors.New("conduit: stop")

// Iterator provides pull-based sequential access to a stream of values
// feeding a pipeline run.
type Iterator[T any] interface {
	// Next returns the next value. Returns (zero, false, nil) when exhausted.
	Next(ctx context.Context) (T, bool, error)
	// Close releases any resources held by the iterator.
	Close() error
}

type sliceIter[T any] struct {
	items []T
	index int
}

// SliceIterator returns an Iterator over items.
func SliceIterator[T any](items []T) Iterator[T] {
	return &sliceIter[T]{items: items}
}

func (it *sliceIter[T]) Next(_ context.Context) (T, bool, error) {
	if it.index >= len(it.items) {
		var zero T
		return zero, false, nil
	}
	v := it.items[it.index]
	it.index++
	return v, true, nil
}

func (it *sliceIter[T]) Close() error { return nil }

type sourceIter[O any] struct {
	step   Source[O]
	closed bool
}

// SourceIterator adapts a Source into an Iterator so it can feed a run.
// Close drains the source's shutdown path if it has not already finished.
func SourceIterator[O any](s Source[O]) Iterator[O] {
	return &sourceIter[O]{step: s}
}

func (it *sourceIter[O]) Next(ctx context.Context) (O, bool, error) {
	var zero O
	for {
		switch v := it.step.(type) {
		case *Emit[Unit, O, Unit]:
			it.step = v.Next
			return v.Value, true, nil
		case *Done[Unit, O, Unit]:
			if !it.closed {
				it.closed = true
				if err := runEffect(ctx, v.Final); err != nil {
					return zero, false, err
				}
			}
			return zero, false, nil
		case *Suspend[Unit, O, Unit]:
			next, err := v.Run(ctx)
			if err != nil {
				return zero, false, err
			}
			it.step = next
		case *Await[Unit, O, Unit]:
			// Sources have nothing upstream.
			it.step = v.OnEnd()
		case *Leftover[Unit, O, Unit]:
			it.step = v.Next
		default:
			panic("conduit: unknown step shape")
		}
	}
}

func (it *sourceIter[O]) Close() error {
	if it.closed {
		return nil
	}
	it.closed = true
	return closeStep(context.Background(), it.step)
}

// RunOptions is optional and attaches an Observer to a run. If Observer is
// set and RunID is empty, a new UUID is generated for the run. Name labels
// the run in observer output.
type RunOptions struct {
	Observer Observer
	RunID    string
	Name     string
}

// Run drives step against src until it finishes, invoking each for every
// emitted output in order, and returns the stage's final result.
//
// Run installs a scope.Scope in ctx when one is not already present and
// closes it on every exit path, so releases registered by resource-owning
// stages fire exactly once even on failure. Pushed-back input is redelivered
// before anything newer from src, newest first. If each returns ErrStop the
// stage is abandoned: its Emit cleanup runs, the scope unwinds, and Run
// returns ErrStop. Any other error from each, from src, or from a stage
// effect aborts the run; outputs already delivered are not retracted.
func Run[I, O, R any](ctx context.Context, src Iterator[I], step Step[I, O, R], each func(ctx context.Context, out O) error, opts *RunOptions) (R, error) {
	var zero R
	var obs Observer
	runID := ""
	name := ""
	if opts != nil && opts.Observer != nil {
		obs = opts.Observer
		runID = opts.RunID
		if runID == "" {
			runID = uuid.New().String()
		}
		name = opts.Name
	}

	sc, hasScope := scope.FromContext(ctx)
	if !hasScope {
		sc = scope.New()
		ctx = scope.WithScope(ctx, sc)
	}
	unwind := func(err error) error {
		if !hasScope {
			return errors.Join(err, sc.Close(ctx))
		}
		return err
	}

	if obs != nil {
		if err := obs.RunStarted(ctx, runID, name); err != nil {
			return zero, unwind(fmt.Errorf("run started: %w", err))
		}
	}
	result, err := drive(ctx, src, step, each, obs, runID)
	err = unwind(err)
	if obs != nil {
		var recorded any
		if err == nil {
			recorded = result
		}
		if postErr := obs.RunFinished(ctx, runID, recorded, err); postErr != nil {
			// Don't mask the run error.
			if err == nil {
				err = fmt.Errorf("run finished: %w", postErr)
			}
		}
	}
	if err != nil {
		return zero, err
	}
	return result, nil
}

func drive[I, O, R any](ctx context.Context, src Iterator[I], step Step[I, O, R], each func(ctx context.Context, out O) error, obs Observer, runID string) (R, error) {
	var zero R
	var pending []I // pushed-back inputs, newest first
	emitted := 0
	for {
		switch v := step.(type) {
		case *Emit[I, O, R]:
			if each != nil {
				if err := each(ctx, v.Value); err != nil {
					if abandonErr := runEffect(ctx, v.Abandon); abandonErr != nil {
						return zero, errors.Join(err, abandonErr)
					}
					return zero, err
				}
			}
			if obs != nil {
				if err := obs.OutputEmitted(ctx, runID, emitted, v.Value); err != nil {
					return zero, fmt.Errorf("output emitted: %w", err)
				}
			}
			emitted++
			step = v.Next
		case *Await[I, O, R]:
			if len(pending) > 0 {
				in := pending[0]
				pending = pending[1:]
				step = v.OnInput(in)
				continue
			}
			in, ok, err := src.Next(ctx)
			if err != nil {
				return zero, err
			}
			if ok {
				step = v.OnInput(in)
			} else {
				step = v.OnEnd()
			}
		case *Done[I, O, R]:
			if err := runEffect(ctx, v.Final); err != nil {
				return zero, err
			}
			return v.Result, nil
		case *Suspend[I, O, R]:
			next, err := v.Run(ctx)
			if err != nil {
				return zero, err
			}
			step = next
		case *Leftover[I, O, R]:
			// Take the whole chain at once: it is already in redelivery
			// order (newest first) and must precede older pending values.
			values, core := unwrapLeftovers(step)
			pending = append(values, pending...)
			step = core
		default:
			panic("conduit: unknown step shape")
		}
	}
}

// Collect runs step against src and returns all emitted outputs along with
// the stage's final result.
func Collect[I, O, R any](ctx context.Context, src Iterator[I], step Step[I, O, R], opts *RunOptions) ([]O, R, error) {
	var outs []O
	result, err := Run(ctx, src, step, func(_ context.Context, out O) error {
		outs = append(outs, out)
		return nil
	}, opts)
	return outs, result, err
}

// CollectSource drains a source and returns everything it produces.
func CollectSource[O any](ctx context.Context, s Source[O], opts *RunOptions) ([]O, error) {
	outs, _, err := Collect[Unit, O, Unit](ctx, SliceIterator[Unit](nil), s, opts)
	return outs, err
}
