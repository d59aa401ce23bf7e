// Package hybridcrawl wires the Static and Dynamic Fetchers, the Method
// Detector, and the URL normalizer into the three operations exposed by
// the core: CrawlOne, CrawlBatch, and CrawlRecursive.
//
// Only the Recursive Scheduler (CrawlRecursive) may admit a URL into an
// internal/traverse.Frontier — a "sole admission authority" invariant:
// every depth/page/domain-scope/dedup check happens in the scheduler,
// before a candidate is ever pushed onto the depth-first frontier.
package hybridcrawl

import (
	"net/url"
	"time"

	"github.com/rohmanhakim/hybridcrawl/internal/classify"
	"github.com/rohmanhakim/hybridcrawl/internal/detect"
)

// FetchMethod names which fetcher ultimately produced a PageResult.
type FetchMethod string

const (
	MethodStatic  FetchMethod = "static"
	MethodDynamic FetchMethod = "dynamic"
)

// Metadata mirrors the PageResult.metadata field group.
type Metadata struct {
	Description string
	Keywords    []string
	Author      string
	OGImage     string
	Favicon     string
	Language    string
	ContentType string
}

// Diagnostics carries the low-level fetch facts a caller may want for
// observability without reaching into the fetcher packages directly.
type Diagnostics struct {
	Duration     time.Duration
	StatusCode   int
	ResponseSize int
	TLSVersion   string
	TLSCipher    string
	UsedLegacy   bool
}

// Detection is the Method Detector's verdict, carried alongside a
// PageResult whether or not it ended up driving the fetch choice.
type Detection struct {
	Reason     string
	Confidence float64
	Framework  detect.Framework
}

// ResultError is the classified failure attached to a PageResult whose
// Success is false. It is never constructed from raw exception text.
type ResultError struct {
	Kind    classify.ErrorKind
	Message string
}

// PageResult is the semantic record CrawlOne always returns, success or
// failure.
type PageResult struct {
	URL         url.URL
	FinalURL    url.URL
	Title       string
	Links       []url.URL
	Metadata    Metadata
	FetchMethod FetchMethod
	Diagnostics Diagnostics
	Detection   Detection
	Success     bool
	Error       *ResultError

	// Depth and CrawledAt are populated only by CrawlRecursive; CrawlOne
	// and CrawlBatch leave Depth at 0 and CrawledAt at the zero value.
	Depth     int
	CrawledAt time.Time

	// detectionMarkup is the raw static-fetch body, carried from
	// fetchStatic to the Method Detector call in CrawlOne. It never
	// leaves the package.
	detectionMarkup string
}

// SessionState is CrawlSession's lifecycle state machine: Idle never
// appears on a returned session (CrawlRecursive creates it Running); Aborted is
// reachable only via caller cancellation.
type SessionState string

const (
	SessionRunning   SessionState = "running"
	SessionCompleted SessionState = "completed"
	SessionAborted   SessionState = "aborted"
)

// CrawlSession is the process-local aggregation of one CrawlRecursive
// call: frozen at return, mutated only by the Scheduler while running.
type CrawlSession struct {
	SessionID       string
	SeedURL         url.URL
	BaseHost        string
	Results         []PageResult
	MaxDepthReached int
	State           SessionState
	StartedAt       time.Time
	FinishedAt      time.Time
}

// TotalLinks sums the sanitized, deduplicated link count across every
// page in the session — used for the crawl:complete event and the
// webhook notification.
func (s CrawlSession) TotalLinks() int {
	total := 0
	for _, r := range s.Results {
		total += len(r.Links)
	}
	return total
}

// Duration is FinishedAt - StartedAt, valid once the session is terminal.
func (s CrawlSession) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}
