package conduit

import (
	"context"
	"errors"
	"time"
)

// RetryPolicy configures WithRetry. Backoff is the delay before a failed
// suspension is re-run. If ShouldRetry is non-nil, only errors for which it
// returns true are retried; otherwise all errors are. Use RetryableErr in a
// push or close function to mark an error as retryable and IsRetryable as
// the ShouldRetry predicate. MaxAttempts caps the total number of tries of
// one suspension (0 means 3).
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
	ShouldRetry func(err error) bool
}

// Retryable marks err as retryable. Use with RetryPolicy.ShouldRetry so only
// these errors trigger a retry (e.g. transient failures), not permanent ones.
type Retryable struct{ Err error }

func (e *Retryable) Error() string { return e.Err.Error() }
func (e *Retryable) Unwrap() error { return e.Err }
func RetryableErr(err error) error { return &Retryable{Err: err} }
func IsRetryable(err error) bool   { return errors.As(err, new(*Retryable)) }

// WithRetry wraps step so each suspended effect that fails is re-run, up to
// policy.MaxAttempts tries with policy.Backoff between them. The effect must
// be safe to run again after a failure; the core builders never retry on
// their own. Context cancellation is never retried and cuts the backoff
// sleep short.
func WithRetry[I, O, R any](step Step[I, O, R], policy RetryPolicy) Step[I, O, R] {
	maxAttempts := policy.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	switch v := step.(type) {
	case *Emit[I, O, R]:
		return &Emit[I, O, R]{Next: WithRetry(v.Next, policy), Abandon: v.Abandon, Value: v.Value}
	case *Await[I, O, R]:
		return &Await[I, O, R]{
			OnInput: func(in I) Step[I, O, R] { return WithRetry(v.OnInput(in), policy) },
			OnEnd:   func() Step[I, O, R] { return WithRetry(v.OnEnd(), policy) },
		}
	case *Done[I, O, R]:
		return v
	case *Suspend[I, O, R]:
		return &Suspend[I, O, R]{Run: func(ctx context.Context) (Step[I, O, R], error) {
			var lastErr error
			for attempt := 0; attempt < maxAttempts; attempt++ {
				if attempt > 0 {
					select {
					case <-time.After(policy.Backoff):
					case <-ctx.Done():
						return nil, errors.Join(lastErr, ctx.Err())
					}
				}
				next, err := v.Run(ctx)
				if err == nil {
					return WithRetry(next, policy), nil
				}
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return nil, err
				}
				if policy.ShouldRetry != nil && !policy.ShouldRetry(err) {
					return nil, err
				}
				lastErr = err
			}
			return nil, lastErr
		}}
	case *Leftover[I, O, R]:
		return &Leftover[I, O, R]{Next: WithRetry(v.Next, policy), Value: v.Value}
	default:
		panic("conduit: unknown step shape")
	}
}
