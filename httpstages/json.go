package httpstages

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dcshock/conduit/conduit"
)

// ParseJSON returns a conduit that unmarshals each input from JSON into a
// value (e.g. map[string]any for objects).
func ParseJSON() conduit.Conduit[[]byte, any] {
	return conduit.Map(func(_ context.Context, raw []byte) (any, error) {
		var out any
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, fmt.Errorf("parsejson: %w", err)
		}
		return out, nil
	})
}

// ParseJSONTo returns a conduit that unmarshals each input from JSON into a
// value of type T, emitting *T.
func ParseJSONTo[T any]() conduit.Conduit[[]byte, *T] {
	return conduit.Map(func(_ context.Context, raw []byte) (*T, error) {
		var out T
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, fmt.Errorf("parsejsonto: %w", err)
		}
		return &out, nil
	})
}
