package conduit

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

// --- Map / Filter / Tap / Identity ---

func TestMap_Transforms(t *testing.T) {
	ctx := context.Background()
	upper := Map(func(_ context.Context, s string) (string, error) {
		return strings.ToUpper(s), nil
	})

	outs, _, err := Collect(ctx, SliceIterator([]string{"a", "b"}), upper, nil)
	if err != nil {
		t.Fatal(err)
	}
	equalStrings(t, outs, []string{"A", "B"})
}

func TestMap_ErrorFailsRun(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")
	bad := Map(func(_ context.Context, s string) (string, error) {
		if s == "bad" {
			return "", boom
		}
		return s, nil
	})

	outs, _, err := Collect(ctx, SliceIterator([]string{"ok", "bad"}), bad, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	equalStrings(t, outs, []string{"ok"})
}

func TestFilter_Keeps(t *testing.T) {
	ctx := context.Background()
	evens := Filter(func(n int) bool { return n%2 == 0 })

	outs, _, err := Collect(ctx, SliceIterator([]int{1, 2, 3, 4}), evens, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := []int{2, 4}
	if len(outs) != len(want) {
		t.Fatalf("expected %v, got %v", want, outs)
	}
	for i := range want {
		if outs[i] != want[i] {
			t.Errorf("[%d]: got %d, want %d", i, outs[i], want[i])
		}
	}
}

func TestTap_SeesValuesUnchanged(t *testing.T) {
	ctx := context.Background()
	var seen []string
	tap := Tap(func(_ context.Context, v string) {
		seen = append(seen, v)
	})

	outs, _, err := Collect(ctx, SliceIterator([]string{"a", "b"}), tap, nil)
	if err != nil {
		t.Fatal(err)
	}
	equalStrings(t, outs, []string{"a", "b"})
	equalStrings(t, seen, []string{"a", "b"})
}

// --- Erase ---

func TestErase_RoundTrip(t *testing.T) {
	ctx := context.Background()
	upper := Erase(Map(func(_ context.Context, s string) (string, error) {
		return strings.ToUpper(s), nil
	}))

	outs, _, err := Collect(ctx, SliceIterator([]any{"a", "b"}), upper, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(outs) != 2 || outs[0] != "A" || outs[1] != "B" {
		t.Errorf("expected [A B], got %v", outs)
	}
}

func TestErase_TypeMismatch(t *testing.T) {
	ctx := context.Background()
	upper := Erase(Map(func(_ context.Context, s string) (string, error) { return s, nil }))

	_, _, err := Collect(ctx, SliceIterator([]any{42}), upper, nil)
	if err == nil || !strings.Contains(err.Error(), "expected") {
		t.Fatalf("expected type error, got %v", err)
	}
}

// --- WithTimeout ---

func TestWithTimeout_SetsDeadline(t *testing.T) {
	ctx := context.Background()
	sawDeadline := false
	c := WithTimeout(Map(func(ctx context.Context, s string) (string, error) {
		_, sawDeadline = ctx.Deadline()
		return s, nil
	}), time.Minute)

	if _, _, err := Collect(ctx, SliceIterator([]string{"a"}), c, nil); err != nil {
		t.Fatal(err)
	}
	if !sawDeadline {
		t.Error("expected the push effect to observe a deadline")
	}
}

func TestWithTimeout_Expires(t *testing.T) {
	ctx := context.Background()
	stuck := WithTimeout(Map(func(ctx context.Context, s string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}), 10*time.Millisecond)

	_, _, err := Collect(ctx, SliceIterator([]string{"a"}), stuck, nil)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}
