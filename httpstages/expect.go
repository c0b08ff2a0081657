package httpstages

import (
	"context"
	"fmt"
	"reflect"

	"github.com/dcshock/conduit/conduit"
)

// Expect returns a conduit that runs the predicate on each input. If the
// predicate returns an error, the run fails with it. Otherwise the input is
// passed through unchanged. Use after ParseJSON to verify decoded results
// (e.g. check a status field or required keys).
func Expect(predicate func(any) error) conduit.Conduit[any, any] {
	if predicate == nil {
		panic("httpstages.Expect: predicate must not be nil")
	}
	return conduit.Map(func(_ context.Context, in any) (any, error) {
		if err := predicate(in); err != nil {
			return nil, fmt.Errorf("expect: %w", err)
		}
		return in, nil
	})
}

// ExpectEqual returns a conduit that checks each input equals expected using
// reflect.DeepEqual. Works for primitives, slices, and maps (e.g. parsed
// JSON).
func ExpectEqual(expected any) conduit.Conduit[any, any] {
	return Expect(func(v any) error {
		if !reflect.DeepEqual(v, expected) {
			return fmt.Errorf("got %v, want %v", v, expected)
		}
		return nil
	})
}
