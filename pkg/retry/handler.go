// Package retry provides the generic bounded-attempt retry loop used by the
// static fetcher. Only a failure.ClassifiedError's IsRetryable() governs
// whether another attempt is made; the backoff schedule between attempts is
// supplied by the caller so different consumers (linear for HTTP retries,
// exponential elsewhere) can share one loop.
package retry

import (
	"context"

	"github.com/rohmanhakim/hybridcrawl/pkg/failure"
	"github.com/rohmanhakim/hybridcrawl/pkg/timeutil"
)

// Do executes fn up to param.MaxAttempts times, stopping early whenever fn
// returns a non-retryable error or a success. ctx is observed before every
// sleep so cancellation is honored at every suspension point.
func Do[T any](ctx context.Context, param Param, sleeper timeutil.Sleeper, fn func() (T, failure.ClassifiedError)) Result[T] {
	var zero T
	var lastErr failure.ClassifiedError

	if param.MaxAttempts < 1 {
		return Result[T]{Value: zero, Err: &ExhaustedError{Attempts: 0, LastErr: nil}, Attempts: 0}
	}

	for attempt := 1; attempt <= param.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return Result[T]{Value: zero, Err: ctx.Err(), Attempts: attempt - 1}
		default:
		}

		value, err := fn()
		if err == nil {
			return Result[T]{Value: value, Err: nil, Attempts: attempt}
		}
		lastErr = err

		if !err.IsRetryable() {
			return Result[T]{Value: zero, Err: err, Attempts: attempt}
		}
		if attempt == param.MaxAttempts {
			break
		}

		if param.Backoff != nil {
			delay := param.Backoff(attempt)
			select {
			case <-ctx.Done():
				return Result[T]{Value: zero, Err: ctx.Err(), Attempts: attempt}
			default:
				sleeper.Sleep(delay)
			}
		}
	}

	return Result[T]{Value: zero, Err: &ExhaustedError{Attempts: param.MaxAttempts, LastErr: lastErr}, Attempts: param.MaxAttempts}
}
