// Package httpstages provides conduit stages for HTTP requests and response
// handling.
//
// Use Fetch to turn a stream of URLs into a stream of response bodies (the
// HTTP client is owned by the stage for the length of the run), ParseJSON to
// unmarshal bodies, and Expect to verify decoded values and fail the run if
// not as expected.
//
// Example pipeline: urls → Fetch → ParseJSON → Expect(predicate)
//
//	c := conduit.Fuse(httpstages.Fetch(nil),
//	    conduit.Fuse(httpstages.ParseJSON(), httpstages.Expect(func(v any) error {
//	        m, _ := v.(map[string]any)
//	        if m["status"] != "ok" { return fmt.Errorf("unexpected status") }
//	        return nil
//	    })))
//	_, _, err := conduit.Collect(ctx, conduit.SliceIterator(urls), c, nil)
package httpstages
