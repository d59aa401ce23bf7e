package fileutil

import (
	"fmt"

	"github.com/rohmanhakim/hybridcrawl/pkg/failure"
)

type FileErrorCause string

const (
	ErrCausePathError FileErrorCause = "path error"
)

type FileError struct {
	Message   string
	Retryable bool
	Cause     FileErrorCause
}

func (e *FileError) Error() string {
	return fmt.Sprintf("fileutil error: %s: %s", e.Cause, e.Message)
}

func (e *FileError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityMedium
	}
	return failure.SeverityHigh
}

func (e *FileError) IsRetryable() bool { return e.Retryable }

func (e *FileError) UserMessage() string {
	return "could not access the local filesystem"
}

var _ failure.ClassifiedError = (*FileError)(nil)
