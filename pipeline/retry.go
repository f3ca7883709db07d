package pipeline

import (
	"context"
	"strconv"
	"time"

	"github.com/nabbar/htcore/herrs"
	"github.com/nabbar/htcore/htctx"
	"github.com/nabbar/htcore/htreq"
)

// RetryPolicy controls Retry's backoff and eligibility.
type RetryPolicy struct {
	// MaxAttempts is the total number of sends allowed, including the
	// first: MaxAttempts-1 retries at most (the "retry bound N+1"
	// invariant — N retries means N+1 total attempts).
	MaxAttempts int
	// BaseDelay is the backoff before the first retry; each subsequent
	// retry doubles it, capped at MaxDelay.
	BaseDelay time.Duration
	MaxDelay  time.Duration
	// IdempotentOnly restricts retries to idempotent methods (the
	// default); set false to retry any method (the caller's own
	// decision to make, never the default).
	IdempotentOnly bool
}

// DefaultRetryPolicy retries network/timeout/DNS failures and 5xx
// responses up to twice more (3 attempts total), starting at 200ms and
// doubling up to 2s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    3,
		BaseDelay:      200 * time.Millisecond,
		MaxDelay:       2 * time.Second,
		IdempotentOnly: true,
	}
}

// Retry wraps next, resending on a Retryable transport error (per
// herrs.Kind.Retryable) or a 5xx response status up to
// policy.MaxAttempts times, with doubling backoff; the last response is
// returned when attempts run out. The attempt count reached is recorded in sig's state bag under
// "retry.attempts" for Logging/Metrics middleware to read.
func Retry(policy RetryPolicy) Middleware {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 1
	}
	return func(next Handler) Handler {
		return func(ctx context.Context, sig *htctx.Context, req htreq.Request) htreq.Response {
			delay := policy.BaseDelay
			var resp htreq.Response

			for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
				sig.Set("retry.attempts", attempt)
				resp = next(ctx, sig, req)

				if resp.Err == nil && resp.Status < 500 {
					return resp
				}
				if policy.IdempotentOnly && !req.Method().Idempotent() {
					return resp
				}
				if resp.Err != nil && resp.Err.HasKind(herrs.KindCancelled) {
					return resp
				}
				if resp.Err != nil && !resp.Err.Retryable() {
					return resp
				}
				if attempt == policy.MaxAttempts {
					return resp
				}

				sig.Record("retry.backoff", map[string]string{"attempt": strconv.Itoa(attempt), "delay": delay.String()})
				select {
				case <-ctx.Done():
					return resp
				case <-time.After(delay):
				}
				delay *= 2
				if delay > policy.MaxDelay {
					delay = policy.MaxDelay
				}
			}
			return resp
		}
	}
}
