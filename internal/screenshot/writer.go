// Package screenshot persists the full-page PNG the dynamic fetcher
// captures, handing the caller back a stable file path instead of the raw
// bytes.
//
// Grounded on internal/storage.LocalSink's write-to-disk idiom (ensure
// directory, deterministic filename, wrap os errors into a
// failure.ClassifiedError), narrowed from content-hashed Markdown files to
// timestamp-named PNGs.
package screenshot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rohmanhakim/hybridcrawl/internal/metadata"
	"github.com/rohmanhakim/hybridcrawl/pkg/failure"
	"github.com/rohmanhakim/hybridcrawl/pkg/fileutil"
)

type Sink interface {
	Write(outputDir string, data []byte, capturedAt time.Time) (string, failure.ClassifiedError)
}

type LocalSink struct {
	metadataSink metadata.Sink
}

func NewLocalSink(metadataSink metadata.Sink) LocalSink {
	return LocalSink{metadataSink: metadataSink}
}

// Write saves data under outputDir as screenshot-<unix-ms>.png and returns
// the full path written.
func (s *LocalSink) Write(outputDir string, data []byte, capturedAt time.Time) (string, failure.ClassifiedError) {
	path, err := write(outputDir, data, capturedAt)
	if err != nil {
		var screenshotErr *ScreenshotError
		errors.As(err, &screenshotErr)
		s.metadataSink.RecordError(
			time.Now(),
			"screenshot",
			"LocalSink.Write",
			metadata.CauseContentInvalid,
			err.Error(),
			nil,
		)
		return "", screenshotErr
	}
	return path, nil
}

func write(outputDir string, data []byte, capturedAt time.Time) (string, failure.ClassifiedError) {
	if err := fileutil.EnsureDir(outputDir); err != nil {
		return "", &ScreenshotError{
			Message:   err.Error(),
			Retryable: err.IsRetryable(),
			Path:      outputDir,
		}
	}

	filename := fmt.Sprintf("screenshot-%d.png", capturedAt.UnixMilli())
	fullPath := filepath.Join(outputDir, filename)

	if err := os.WriteFile(fullPath, data, 0644); err != nil {
		retryable := errors.Is(err, syscall.ENOSPC)
		return "", &ScreenshotError{
			Message:   err.Error(),
			Retryable: retryable,
			Path:      fullPath,
		}
	}

	return fullPath, nil
}
