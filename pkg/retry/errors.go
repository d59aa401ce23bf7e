package retry

import (
	"fmt"

	"github.com/rohmanhakim/hybridcrawl/pkg/failure"
)

type ExhaustedError struct {
	Attempts int
	LastErr  error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("retry: exhausted %d attempts, last error: %v", e.Attempts, e.LastErr)
}

func (e *ExhaustedError) Unwrap() error { return e.LastErr }

func (e *ExhaustedError) Severity() failure.Severity { return failure.SeverityMedium }

// IsRetryable is false: exhaustion is itself the terminal outcome.
func (e *ExhaustedError) IsRetryable() bool { return false }

func (e *ExhaustedError) UserMessage() string {
	return "the request failed after multiple attempts"
}

var _ failure.ClassifiedError = (*ExhaustedError)(nil)
