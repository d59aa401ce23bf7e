// Package events defines the typed lifecycle events a crawl session
// publishes to a caller-supplied sink, and the sink contract itself.
package events

import "time"

// Kind identifies which event payload a Event carries.
type Kind string

const (
	KindStart           Kind = "crawl:start"
	KindMethodDetected   Kind = "crawl:method-detected"
	KindProgress         Kind = "crawl:progress"
	KindDepthChange       Kind = "crawl:depth-change"
	KindLinkFound         Kind = "crawl:link-found"
	KindError             Kind = "crawl:error"
	KindComplete           Kind = "crawl:complete"
)

type CrawlType string

const (
	CrawlTypeSingle    CrawlType = "single"
	CrawlTypeRecursive CrawlType = "recursive"
)

// Event is a tagged union: exactly one of the payload fields below is
// populated, selected by Kind. Publish receives this struct as-is so
// sinks can switch on Kind without a type assertion per payload.
type Event struct {
	Kind Kind

	Start           *StartPayload
	MethodDetected  *MethodDetectedPayload
	Progress        *ProgressPayload
	DepthChange     *DepthChangePayload
	LinkFound       *LinkFoundPayload
	Error           *ErrorPayload
	Complete        *CompletePayload
}

type StartPayload struct {
	SessionID string
	SeedURL   string
	MaxDepth  int
	CrawlType CrawlType
	Timestamp time.Time
}

type MethodDetectedPayload struct {
	URL       string
	Method    string
	Reason    string
	Timestamp time.Time
}

type ProgressPayload struct {
	Percentage     float64
	PagesProcessed int
	TotalEstimate  int
	CurrentURL     string
	Status         string
}

type DepthChangePayload struct {
	CurrentDepth     int
	MaxDepth         int
	PagesAtThisDepth int
	Timestamp        time.Time
}

// LinkFoundPayload is emitted for every 5th link discovered on a page;
// LinkCount is the running total for that page, not the whole session.
type LinkFoundPayload struct {
	URL       string
	SourceURL string
	Depth     int
	LinkCount int
}

type ErrorPayload struct {
	SessionID    string
	ErrorKind    string
	ErrorMessage string
	FailedURL    string
	Fatal        bool
	Depth        *int
	Timestamp    time.Time
}

type CompletePayload struct {
	SessionID           string
	TotalPages          int
	TotalLinks           int
	Duration             time.Duration
	Method               string
	MaxDepthReached      int
	SuccessRate          float64
	AverageResponseTime  time.Duration
	UniqueDomains        int
	Timestamp            time.Time
}

// Sink is the consumed interface: a single non-throwing Publish call.
// Implementations must never panic; Publisher treats a sink failure as
// best-effort and never aborts a crawl over it.
type Sink interface {
	Publish(event Event)
}

// NoopSink drops every event. Used when no sink is configured.
type NoopSink struct{}

func (NoopSink) Publish(Event) {}

var _ Sink = NoopSink{}
