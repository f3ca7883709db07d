package pipeline

import "time"

// RetryThenTimeout is Idiom A: each individual attempt gets its own
// per-attempt deadline, and failed attempts are retried — so the total
// wall-clock time can exceed d, up to roughly policy.MaxAttempts*d.
// Suits a caller who cares about bounding a single attempt's latency more
// than the request's total latency.
func RetryThenTimeout(d time.Duration, policy RetryPolicy) Middleware {
	return func(next Handler) Handler {
		return Retry(policy)(Timeout(d)(next))
	}
}

// TimeoutThenRetry is Idiom B: one deadline covers every attempt and
// retry combined, so the request never runs longer than d in total.
// Suits a caller enforcing a hard SLA on the whole call, retries
// included.
func TimeoutThenRetry(d time.Duration, policy RetryPolicy) Middleware {
	return func(next Handler) Handler {
		return Timeout(d)(Retry(policy)(next))
	}
}
