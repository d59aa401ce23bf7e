/*
Metadata Collected
- Fetch timestamps
- HTTP status codes
- Crawl depth
- Method chosen (static/dynamic)

Logging Goals
- Debuggable crawl behavior
- Post-run auditability
- Failure diagnostics

Structured logging is preferred. Allowed: primitive values, timestamps, URLs
(as values, never objects with behavior), status codes, durations,
identifiers (session ID). Everything here is observational — see
ErrorCause's doc comment in data.go for the control-flow boundary.
*/
package metadata

import (
	"log"
	"time"
)

// Sink is the structured-logging boundary every pipeline stage accepts.
// Implementations must never panic and must never be consulted for control
// flow.
type Sink interface {
	RecordFetch(event FetchEvent)
	RecordError(observedAt time.Time, packageName, action string, cause ErrorCause, errorString string, attrs []Attribute)
	RecordFinal(stats CrawlStats)
}

// Recorder is the default Sink: a thin wrapper over the standard logger,
// favoring structured but dependency-free logging over a third-party
// structured logger.
type Recorder struct {
	prefix string
}

func NewRecorder(prefix string) Recorder {
	return Recorder{prefix: prefix}
}

func (r *Recorder) RecordFetch(event FetchEvent) {
	log.Printf(
		"[%s] fetch url=%s method=%s status=%d depth=%d retries=%d duration=%s content_type=%q",
		r.prefix, event.URL, event.Method, event.HTTPStatus, event.CrawlDepth, event.RetryCount, event.Duration, event.ContentType,
	)
}

func (r *Recorder) RecordError(observedAt time.Time, packageName, action string, cause ErrorCause, errorString string, attrs []Attribute) {
	log.Printf(
		"[%s] error pkg=%s action=%s cause=%s at=%s msg=%q attrs=%s",
		r.prefix, packageName, action, cause, observedAt.Format(time.RFC3339), errorString, formatAttrs(attrs),
	)
}

func (r *Recorder) RecordFinal(stats CrawlStats) {
	log.Printf(
		"[%s] crawl complete pages=%d errors=%d duration=%s",
		r.prefix, stats.TotalPages, stats.TotalErrors, stats.Duration,
	)
}

func formatAttrs(attrs []Attribute) string {
	out := "{"
	for i, a := range attrs {
		if i > 0 {
			out += ","
		}
		out += string(a.Key) + "=" + a.Value
	}
	return out + "}"
}

var _ Sink = (*Recorder)(nil)
