package screenshot

import "github.com/rohmanhakim/hybridcrawl/pkg/failure"

type ScreenshotError struct {
	Message   string
	Retryable bool
	Path      string
}

func (e *ScreenshotError) Error() string { return e.Message }

func (e *ScreenshotError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityMedium
	}
	return failure.SeverityHigh
}

func (e *ScreenshotError) IsRetryable() bool { return e.Retryable }

func (e *ScreenshotError) UserMessage() string {
	return "could not save the page screenshot"
}

var _ failure.ClassifiedError = (*ScreenshotError)(nil)
