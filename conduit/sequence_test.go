package conduit

import (
	"context"
	"strings"
	"testing"
)

// takeOneSink consumes a single input and finishes with it.
func takeOneSink[R any](result func(string) R) Sink[string, R] {
	return StatefulSink(Unit{},
		func(_ context.Context, _ Unit, in string) (SinkPushOutcome[Unit, string, R], error) {
			return SinkDone[Unit, string](result(in)), nil
		},
		func(_ context.Context, _ Unit) (R, error) {
			var zero R
			return zero, nil
		},
	)
}

// --- Sequence ---

func TestSequence_EmitThenStop_ConsumesOneInput(t *testing.T) {
	ctx := context.Background()
	consumed := 0
	step := func(state int) Sink[string, SinkOutcome[int, string, string]] {
		if state > 0 {
			return &Done[string, Unit, SinkOutcome[int, string, string]]{
				Result: SinkStop[int, string, string](),
			}
		}
		return takeOneSink(func(in string) SinkOutcome[int, string, string] {
			consumed++
			return SinkEmit[int, string](1, "x")
		})
	}

	outs, _, err := Collect(ctx, SliceIterator([]string{"i1", "i2"}), Sequence(0, step), nil)
	if err != nil {
		t.Fatal(err)
	}
	equalStrings(t, outs, []string{"x"})
	if consumed != 1 {
		t.Errorf("expected exactly one consumed input, got %d", consumed)
	}
}

func TestSequence_Exhaustion_NeverRunsStep(t *testing.T) {
	ctx := context.Background()
	stepCalls := 0
	step := func(state Unit) Sink[string, SinkOutcome[Unit, string, string]] {
		stepCalls++
		return takeOneSink(func(in string) SinkOutcome[Unit, string, string] {
			return SinkEmit[Unit, string](Unit{}, in)
		})
	}

	outs, _, err := Collect(ctx, SliceIterator[string](nil), Sequence(Unit{}, step), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(outs) != 0 {
		t.Errorf("expected no outputs, got %v", outs)
	}
	if stepCalls != 0 {
		t.Errorf("expected step never to run against exhausted upstream, got %d calls", stepCalls)
	}
}

func TestSequence_LoopsUntilExhaustion(t *testing.T) {
	ctx := context.Background()
	step := func(n int) Sink[string, SinkOutcome[int, string, string]] {
		return takeOneSink(func(in string) SinkOutcome[int, string, string] {
			return SinkEmit[int, string](n+1, strings.Repeat(in, n+1))
		})
	}

	outs, _, err := Collect(ctx, SliceIterator([]string{"a", "b", "c"}), Sequence(0, step), nil)
	if err != nil {
		t.Fatal(err)
	}
	equalStrings(t, outs, []string{"a", "bb", "ccc"})
}

func TestSequence_HandOff_DelegatesEntirely(t *testing.T) {
	ctx := context.Background()
	upper := Map(func(_ context.Context, in string) (string, error) {
		return strings.ToUpper(in), nil
	})
	step := func(state Unit) Sink[string, SinkOutcome[Unit, string, string]] {
		return takeOneSink(func(in string) SinkOutcome[Unit, string, string] {
			return SinkHandOff[Unit, string, string](upper)
		})
	}

	outs, _, err := Collect(ctx, SliceIterator([]string{"a", "b", "c"}), Sequence(Unit{}, step), nil)
	if err != nil {
		t.Fatal(err)
	}
	// The first input is consumed by the deciding step; everything after is
	// the hand-off target's alone.
	equalStrings(t, outs, []string{"B", "C"})
}

func TestEmbedSink_LeftoverChain_ConsumedNewestFirst(t *testing.T) {
	ctx := context.Background()
	// A sink resumed behind a two-value chain must see the newest value
	// first, then the older one, then fresh upstream input.
	chain := &Leftover[string, Unit, []string]{
		Next: &Leftover[string, Unit, []string]{
			Next:  collectSink(),
			Value: "older",
		},
		Value: "newer",
	}
	var seen []string
	c := embedSink[string, string](chain, func(r []string) Conduit[string, string] {
		seen = r
		return &Done[string, string, Unit]{}
	})
	_, _, err := Collect(ctx, SliceIterator([]string{"fresh"}), c, nil)
	if err != nil {
		t.Fatal(err)
	}
	equalStrings(t, seen, []string{"newer", "older", "fresh"})
}

func TestSequence_TwoValueLeftover_NextStepSeesNewestFirst(t *testing.T) {
	ctx := context.Background()
	// A step that hands back two values without consuming anything; the
	// following steps must receive them newest-first, ahead of upstream.
	step := func(n int) Sink[string, SinkOutcome[int, string, string]] {
		if n == 0 {
			done := &Done[string, Unit, SinkOutcome[int, string, string]]{
				Result: SinkEmit[int, string](1, "first"),
			}
			return &Leftover[string, Unit, SinkOutcome[int, string, string]]{
				Next: &Leftover[string, Unit, SinkOutcome[int, string, string]]{
					Next:  done,
					Value: "older",
				},
				Value: "newer",
			}
		}
		return takeOneSink(func(in string) SinkOutcome[int, string, string] {
			return SinkEmit[int, string](n+1, "got:"+in)
		})
	}

	outs, _, err := Collect(ctx, SliceIterator([]string{"x"}), Sequence(0, step), nil)
	if err != nil {
		t.Fatal(err)
	}
	equalStrings(t, outs, []string{"first", "got:newer", "got:older", "got:x"})
}

func TestSequence_StepLeftover_RedeliveredToNextStep(t *testing.T) {
	ctx := context.Background()
	// First step peeks at its input by handing it back; the second step must
	// see the same value.
	step := func(n int) Sink[string, SinkOutcome[int, string, string]] {
		return StatefulSink(Unit{},
			func(_ context.Context, _ Unit, in string) (SinkPushOutcome[Unit, string, SinkOutcome[int, string, string]], error) {
				if n == 0 {
					return SinkDoneLeftover[Unit, string](in, SinkEmit[int, string](1, "peek:"+in)), nil
				}
				return SinkDone[Unit, string](SinkEmit[int, string](n+1, "take:"+in)), nil
			},
			func(_ context.Context, _ Unit) (SinkOutcome[int, string, string], error) {
				return SinkStop[int, string, string](), nil
			},
		)
	}

	outs, _, err := Collect(ctx, SliceIterator([]string{"a"}), Sequence(0, step), nil)
	if err != nil {
		t.Fatal(err)
	}
	equalStrings(t, outs, []string{"peek:a", "take:a"})
}
