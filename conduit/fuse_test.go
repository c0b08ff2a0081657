package conduit

import (
	"context"
	"errors"
	"strconv"
	"testing"
)

// --- Fuse ---

func TestFuse_MapMap(t *testing.T) {
	ctx := context.Background()
	double := Map(func(_ context.Context, n int) (int, error) { return n * 2, nil })
	inc := Map(func(_ context.Context, n int) (int, error) { return n + 1, nil })

	outs, _, err := Collect(ctx, SliceIterator([]int{1, 2, 3}), Fuse(double, inc), nil)
	if err != nil {
		t.Fatal(err)
	}
	want := []int{3, 5, 7}
	if len(outs) != len(want) {
		t.Fatalf("expected %v, got %v", want, outs)
	}
	for i := range want {
		if outs[i] != want[i] {
			t.Errorf("[%d]: got %d, want %d", i, outs[i], want[i])
		}
	}
}

func TestFuse_TypeChange(t *testing.T) {
	ctx := context.Background()
	itoa := Map(func(_ context.Context, n int) (string, error) { return strconv.Itoa(n), nil })
	exclaim := Map(func(_ context.Context, s string) (string, error) { return s + "!", nil })

	outs, _, err := Collect(ctx, SliceIterator([]int{7, 8}), Fuse(itoa, exclaim), nil)
	if err != nil {
		t.Fatal(err)
	}
	equalStrings(t, outs, []string{"7!", "8!"})
}

func TestFuse_RightFinish_ClosesLeft(t *testing.T) {
	ctx := context.Background()
	res := &trackedResource{}
	takeOne := Stateful(Unit{},
		func(_ context.Context, _ Unit, in string) (PushOutcome[Unit, string, string], error) {
			return Finished[Unit, string, string](in), nil
		},
		func(context.Context, Unit) ([]string, error) { return nil, nil },
	)

	outs, _, err := Collect(ctx, SliceIterator([]string{"a", "b", "c"}), Fuse(echoResource(res), takeOne), nil)
	if err != nil {
		t.Fatal(err)
	}
	equalStrings(t, outs, []string{"a"})
	if res.released != 1 {
		t.Errorf("expected left's resource released when right finished, got %d releases", res.released)
	}
}

func TestFuse_ConsumerAbandonment_ClosesLeft(t *testing.T) {
	ctx := context.Background()
	res := &trackedResource{}

	var outs []string
	_, err := Run(ctx, SliceIterator([]string{"a", "b"}), Fuse(echoResource(res), Identity[string]()),
		func(_ context.Context, out string) error {
			outs = append(outs, out)
			return ErrStop
		}, nil)
	if !errors.Is(err, ErrStop) {
		t.Fatalf("expected ErrStop, got %v", err)
	}
	equalStrings(t, outs, []string{"a"})
	if res.released != 1 {
		t.Errorf("expected left's resource released on abandonment, got %d releases", res.released)
	}
}

func TestFuse_LeftExhaustion_RightCloseRuns(t *testing.T) {
	ctx := context.Background()
	finals := 0
	var left Conduit[string, string] = &Done[string, string, Unit]{
		Final: func(context.Context) error {
			finals++
			return nil
		},
	}
	batch := Stateful(0,
		func(_ context.Context, n int, _ string) (PushOutcome[int, string, string], error) {
			return Producing[int, string, string](n + 1), nil
		},
		func(_ context.Context, n int) ([]string, error) {
			return []string{"count:" + strconv.Itoa(n)}, nil
		},
	)

	outs, _, err := Collect(ctx, SliceIterator([]string{"unused"}), Fuse(left, batch), nil)
	if err != nil {
		t.Fatal(err)
	}
	// Left produced nothing, so right's close path emits its summary.
	equalStrings(t, outs, []string{"count:0"})
	if finals != 1 {
		t.Errorf("expected left's final effect to run once, got %d", finals)
	}
}

// declineFirst hands its first delivery back, then behaves as a plain
// pass-through.
func declineFirst() Conduit[string, string] {
	return &Await[string, string, Unit]{
		OnInput: func(in string) Conduit[string, string] {
			return &Leftover[string, string, Unit]{Next: Identity[string](), Value: in}
		},
		OnEnd: func() Conduit[string, string] {
			return &Done[string, string, Unit]{}
		},
	}
}

func TestFuse_RightLeftover_RedeliveredToRight(t *testing.T) {
	ctx := context.Background()
	// Right declines its first delivery; fusion must re-emit the value to
	// right, not lose it or send it upstream.
	outs, _, err := Collect(ctx, SliceIterator([]string{"a", "b"}), Fuse(Identity[string](), declineFirst()), nil)
	if err != nil {
		t.Fatal(err)
	}
	equalStrings(t, outs, []string{"a", "b"})
}

func TestFuse_LeftLeftover_PropagatesUpstream(t *testing.T) {
	ctx := context.Background()
	upper := Map(func(_ context.Context, s string) (string, error) { return s + "+", nil })

	outs, _, err := Collect(ctx, SliceIterator([]string{"a", "b"}), Fuse(declineFirst(), upper), nil)
	if err != nil {
		t.Fatal(err)
	}
	equalStrings(t, outs, []string{"a+", "b+"})
}

func TestFuse_RightPeek_DoesNotLoseInput(t *testing.T) {
	ctx := context.Background()
	right := embedSink(HasInput[string](), func(more bool) Conduit[string, string] {
		if !more {
			return &Done[string, string, Unit]{}
		}
		return Identity[string]()
	})

	outs, _, err := Collect(ctx, SliceIterator([]string{"a", "b"}), Fuse(Identity[string](), right), nil)
	if err != nil {
		t.Fatal(err)
	}
	equalStrings(t, outs, []string{"a", "b"})
}

func TestFuse_ThreeStages(t *testing.T) {
	ctx := context.Background()
	double := Map(func(_ context.Context, n int) (int, error) { return n * 2, nil })
	keepBig := Filter(func(n int) bool { return n > 4 })
	inc := Map(func(_ context.Context, n int) (int, error) { return n + 1, nil })

	outs, _, err := Collect(ctx, SliceIterator([]int{1, 2, 3}), Fuse(Fuse(double, keepBig), inc), nil)
	if err != nil {
		t.Fatal(err)
	}
	want := []int{7}
	if len(outs) != len(want) {
		t.Fatalf("expected %v, got %v", want, outs)
	}
	if outs[0] != 7 {
		t.Errorf("expected 7, got %d", outs[0])
	}
}
