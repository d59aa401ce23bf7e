package classify

import (
	"fmt"

	"github.com/rohmanhakim/hybridcrawl/pkg/failure"
)

// Error is the concrete failure.ClassifiedError every fetcher, detector,
// and orchestrator path returns. It carries the closed ErrorKind plus
// enough context (the underlying error) for logs, without ever leaking raw
// exception text to a caller — UserMessage always comes from the policy
// table, never from Err.
type Error struct {
	Kind ErrorKind
	Err  error
}

func New(kind ErrorKind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Severity() failure.Severity {
	return PolicyFor(e.Kind).Severity
}

func (e *Error) IsRetryable() bool {
	return PolicyFor(e.Kind).Retryable
}

func (e *Error) UserMessage() string {
	return PolicyFor(e.Kind).UserMessage
}

var _ failure.ClassifiedError = (*Error)(nil)
