package retry

import "time"

// BackoffFn computes the delay to wait after the given failed attempt
// (1-indexed), before the next one. Callers supply the schedule; Do only
// drives the loop.
type BackoffFn func(attempt int) time.Duration

// Param holds the parameters for retry logic. These are supplied by the
// caller (ultimately from config) and are not known by the retry handler.
type Param struct {
	MaxAttempts int
	Backoff     BackoffFn
}

func NewParam(maxAttempts int, backoff BackoffFn) Param {
	return Param{MaxAttempts: maxAttempts, Backoff: backoff}
}

// Result is the outcome of a retried call: the value on success, the
// terminal classified error on failure, and how many attempts were made.
type Result[T any] struct {
	Value    T
	Err      error
	Attempts int
}
