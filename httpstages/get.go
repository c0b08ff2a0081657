package httpstages

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/dcshock/conduit/conduit"
)

// fetchClient is the resource owned by a Fetch or Get stage for one run.
// When the stage created the client it also tears it down on release;
// a caller-supplied client is borrowed and left alone.
type fetchClient struct {
	client *http.Client
	owned  bool
}

func acquireClient(client *http.Client) func(context.Context) (*fetchClient, error) {
	return func(context.Context) (*fetchClient, error) {
		if client != nil {
			return &fetchClient{client: client}, nil
		}
		return &fetchClient{client: &http.Client{}, owned: true}, nil
	}
}

func releaseClient(_ context.Context, fc *fetchClient) error {
	if fc.owned {
		fc.client.CloseIdleConnections()
	}
	return nil
}

func get(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("http get: new request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get %q: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("http get %q: status %d", url, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("http get %q: read body: %w", url, err)
	}
	return body, nil
}

// Fetch returns a conduit that performs an HTTP GET for each input URL and
// emits the response body. The client is the stage's owned resource: if
// client is nil one is created on the first URL and its idle connections are
// closed when the run ends, including when the consumer stops early. The
// run's context is used for each request (timeout and cancellation).
func Fetch(client *http.Client) conduit.Conduit[string, []byte] {
	return conduit.WithResource(
		acquireClient(client),
		releaseClient,
		func(ctx context.Context, fc *fetchClient, url string) (conduit.ResourceOutcome[string, []byte], error) {
			body, err := get(ctx, fc.client, url)
			if err != nil {
				return conduit.ResourceOutcome[string, []byte]{}, err
			}
			return conduit.ResourceProducing[string](body), nil
		},
		func(context.Context, *fetchClient) ([][]byte, error) {
			return nil, nil
		},
	)
}

// Get returns a one-shot source that performs an HTTP GET to the fixed url
// and produces the response body. The client is owned the same way as in
// Fetch.
func Get(client *http.Client, url string) conduit.Source[[]byte] {
	type getState struct {
		fc   *fetchClient
		done bool
	}
	return conduit.ResourceSource(
		func(ctx context.Context) (*getState, error) {
			fc, err := acquireClient(client)(ctx)
			if err != nil {
				return nil, err
			}
			return &getState{fc: fc}, nil
		},
		func(ctx context.Context, st *getState) error {
			return releaseClient(ctx, st.fc)
		},
		func(ctx context.Context, st *getState) ([]byte, bool, error) {
			if st.done {
				return nil, false, nil
			}
			st.done = true
			body, err := get(ctx, st.fc.client, url)
			if err != nil {
				return nil, false, err
			}
			return body, true, nil
		},
	)
}
