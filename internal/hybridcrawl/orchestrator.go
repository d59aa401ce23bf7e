package hybridcrawl

import (
	"bytes"
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/rohmanhakim/hybridcrawl/internal/classify"
	"github.com/rohmanhakim/hybridcrawl/internal/config"
	"github.com/rohmanhakim/hybridcrawl/internal/detect"
	"github.com/rohmanhakim/hybridcrawl/internal/events"
	"github.com/rohmanhakim/hybridcrawl/internal/fetchdynamic"
	"github.com/rohmanhakim/hybridcrawl/internal/fetchstatic"
	"github.com/rohmanhakim/hybridcrawl/internal/htmlinfo"
	"github.com/rohmanhakim/hybridcrawl/internal/metadata"
	"github.com/rohmanhakim/hybridcrawl/internal/screenshot"
	"github.com/rohmanhakim/hybridcrawl/internal/urlnorm"
)

// DynamicRenderer is the subset of *fetchdynamic.Fetcher the Orchestrator
// needs. It exists so tests can inject a fake renderer instead of
// launching a real headless browser.
type DynamicRenderer interface {
	Render(ctx context.Context, target string, params fetchdynamic.Params) fetchdynamic.RenderOutcome
	Close() error
}

// Orchestrator is the Hybrid Orchestrator: it owns the lazily-launched
// dynamic fetcher's browser process for its lifetime and makes every
// static/dynamic dispatch decision. A session (CrawlRecursive) or a batch
// (CrawlBatch) shares one Orchestrator so its browser process is reused
// across calls instead of relaunched per page; CrawlOne's package-level
// convenience wrapper builds and tears one down per call.
type Orchestrator struct {
	metadataSink   metadata.Sink
	publisher      events.Publisher
	screenshotSink screenshot.Sink
	newDynamic     func() (DynamicRenderer, error)

	dynamicMu sync.Mutex
	dynamic   DynamicRenderer
}

func NewOrchestrator(metadataSink metadata.Sink, sink events.Sink, screenshotSink screenshot.Sink) *Orchestrator {
	return &Orchestrator{
		metadataSink:   metadataSink,
		publisher:      events.NewPublisher(sink, metadataSink),
		screenshotSink: screenshotSink,
		newDynamic: func() (DynamicRenderer, error) {
			return fetchdynamic.New()
		},
	}
}

// NewOrchestratorWithDynamic creates an Orchestrator whose dynamic fetcher
// is supplied by newDynamic instead of a real headless browser — used by
// tests that need to drive the dynamic-fallback branches of CrawlOne
// without a Chromium binary.
func NewOrchestratorWithDynamic(metadataSink metadata.Sink, sink events.Sink, screenshotSink screenshot.Sink, newDynamic func() (DynamicRenderer, error)) *Orchestrator {
	o := NewOrchestrator(metadataSink, sink, screenshotSink)
	o.newDynamic = newDynamic
	return o
}

// Close releases the dynamic fetcher's browser process, if one was ever
// launched. Safe to call on an Orchestrator that never needed it.
func (o *Orchestrator) Close() error {
	if o.dynamic == nil {
		return nil
	}
	return o.dynamic.Close()
}

func (o *Orchestrator) ensureDynamic() (DynamicRenderer, *classify.Error) {
	o.dynamicMu.Lock()
	defer o.dynamicMu.Unlock()

	if o.dynamic != nil {
		return o.dynamic, nil
	}
	f, err := o.newDynamic()
	if err != nil {
		return nil, classify.New(classify.Unknown, err)
	}
	o.dynamic = f
	return f, nil
}

// CrawlOne implements the Hybrid Orchestrator's decision tree: forced
// method, initial static fast path, fallback to dynamic on
// static failure or an empty link set, and a Method Detector gate on
// static success. It never returns an error — every outcome, including a
// malformed URL, comes back as a PageResult.
func (o *Orchestrator) CrawlOne(ctx context.Context, rawURL string, opts config.Options) PageResult {
	target, err := urlnorm.ValidateAbsolute(rawURL)
	if err != nil {
		return invalidURLResult(rawURL, err)
	}

	switch opts.ForceMethod() {
	case config.ForceMethodDynamic:
		o.publisher.Publish(methodDetectedEvent(target.String(), string(MethodDynamic), "forced"))
		return o.renderDynamic(ctx, target, opts, Detection{})
	case config.ForceMethodStatic:
		o.publisher.Publish(methodDetectedEvent(target.String(), string(MethodStatic), "forced"))
		return o.fetchStatic(ctx, target, opts)
	}

	o.publisher.Publish(methodDetectedEvent(target.String(), string(MethodStatic), "initial fast path"))
	staticResult := o.fetchStatic(ctx, target, opts)

	if !staticResult.Success {
		reason := "static error: " + string(staticResult.Error.Kind)
		o.publisher.Publish(methodDetectedEvent(target.String(), string(MethodDynamic), reason))
		return o.renderDynamic(ctx, target, opts, Detection{})
	}
	if len(staticResult.Links) == 0 {
		o.publisher.Publish(methodDetectedEvent(target.String(), string(MethodDynamic), "empty static result"))
		return o.renderDynamic(ctx, target, opts, Detection{})
	}

	linkStrs := make([]string, len(staticResult.Links))
	for i, l := range staticResult.Links {
		linkStrs[i] = l.String()
	}
	verdict := detect.Detect(staticResult.detectionMarkup, linkStrs)
	detection := Detection{
		Reason:     verdict.Reason,
		Confidence: verdict.Confidence,
		Framework:  verdict.Framework,
	}

	if verdict.NeedsDynamic && verdict.Confidence >= opts.DetectionThreshold() {
		o.publisher.Publish(methodDetectedEvent(target.String(), string(MethodDynamic), verdict.Reason))
		return o.renderDynamic(ctx, target, opts, detection)
	}

	staticResult.Detection = detection
	return staticResult
}

func (o *Orchestrator) fetchStatic(ctx context.Context, target url.URL, opts config.Options) PageResult {
	params := fetchstatic.Params{
		Timeout:      opts.Timeout(),
		MaxRetries:   opts.MaxRetries(),
		UserAgent:    opts.UserAgent(),
		MaxRedirects: 5,
	}
	outcome := fetchstatic.Fetch(ctx, target, params)

	o.metadataSink.RecordFetch(metadata.FetchEvent{
		URL:         target.String(),
		HTTPStatus:  outcome.StatusCode,
		Duration:    outcome.Duration,
		ContentType: outcome.ContentType,
		RetryCount:  outcome.RetryCount,
		Method:      string(MethodStatic),
	})

	if !outcome.Success {
		return PageResult{
			URL:         target,
			FinalURL:    outcome.FinalURL,
			FetchMethod: MethodStatic,
			Diagnostics: diagnosticsFrom(outcome),
			Success:     false,
			Error:       resultErrorFrom(outcome.Err),
		}
	}

	info, parseErr := htmlinfo.Parse(bytes.NewReader(outcome.Body), outcome.ContentType)
	if parseErr != nil {
		cerr := classify.New(classify.Unknown, parseErr)
		return PageResult{
			URL:         target,
			FinalURL:    outcome.FinalURL,
			FetchMethod: MethodStatic,
			Diagnostics: diagnosticsFrom(outcome),
			Success:     false,
			Error:       resultErrorFrom(cerr),
		}
	}

	links := urlnorm.SanitizeLinks(info.RawLinks, outcome.FinalURL)

	return PageResult{
		URL:             target,
		FinalURL:        outcome.FinalURL,
		Title:           info.Title,
		Links:           links,
		Metadata:        metadataFrom(info.Metadata),
		FetchMethod:     MethodStatic,
		Diagnostics:     diagnosticsFrom(outcome),
		Success:         true,
		detectionMarkup: string(outcome.Body),
	}
}

func (o *Orchestrator) renderDynamic(ctx context.Context, target url.URL, opts config.Options, detection Detection) PageResult {
	fetcher, cerr := o.ensureDynamic()
	if cerr != nil {
		return PageResult{
			URL:         target,
			FetchMethod: MethodDynamic,
			Detection:   detection,
			Success:     false,
			Error:       resultErrorFrom(cerr),
		}
	}

	width, height := opts.Viewport()
	params := fetchdynamic.Params{
		Timeout:        opts.Timeout(),
		BlockResources: opts.BlockResources(),
		WaitUntil:      fetchdynamic.WaitUntil(opts.WaitUntil()),
		ViewportWidth:  width,
		ViewportHeight: height,
		AutoScroll:     opts.AutoScroll(),
		MaxScrolls:     opts.MaxScrolls(),
		Screenshot:     opts.Screenshot(),
		UserAgent:      opts.UserAgent(),
	}
	outcome := fetcher.Render(ctx, target.String(), params)

	o.metadataSink.RecordFetch(metadata.FetchEvent{
		URL:         target.String(),
		HTTPStatus:  outcome.StatusCode,
		Duration:    outcome.Duration,
		ContentType: "text/html",
		Method:      string(MethodDynamic),
	})

	if !outcome.Success {
		return PageResult{
			URL:         target,
			FetchMethod: MethodDynamic,
			Detection:   detection,
			Diagnostics: Diagnostics{Duration: outcome.Duration},
			Success:     false,
			Error:       resultErrorFrom(outcome.Err),
		}
	}

	links := urlnorm.SanitizeLinks(outcome.Info.RawLinks, outcome.FinalURL)

	result := PageResult{
		URL:         target,
		FinalURL:    outcome.FinalURL,
		Title:       outcome.Info.Title,
		Links:       links,
		Metadata:    metadataFrom(outcome.Info.Metadata),
		FetchMethod: MethodDynamic,
		Diagnostics: Diagnostics{Duration: outcome.Duration, StatusCode: outcome.StatusCode},
		Detection:   detection,
		Success:     true,
	}

	if outcome.HasScreenshot && o.screenshotSink != nil {
		if _, werr := o.screenshotSink.Write("screenshots", outcome.Screenshot, time.Now()); werr != nil {
			o.metadataSink.RecordError(time.Now(), "hybridcrawl", "renderDynamic", metadata.CauseContentInvalid, werr.Error(), nil)
		}
	}

	return result
}

func invalidURLResult(rawURL string, err error) PageResult {
	return PageResult{
		Success: false,
		Error: &ResultError{
			Kind:    classify.InvalidURL,
			Message: classify.PolicyFor(classify.InvalidURL).UserMessage,
		},
	}
}

func resultErrorFrom(cerr *classify.Error) *ResultError {
	if cerr == nil {
		return nil
	}
	return &ResultError{Kind: cerr.Kind, Message: cerr.UserMessage()}
}

func diagnosticsFrom(outcome fetchstatic.FetchOutcome) Diagnostics {
	return Diagnostics{
		Duration:     outcome.Duration,
		StatusCode:   outcome.StatusCode,
		ResponseSize: outcome.Size,
		TLSVersion:   outcome.TLSInfo.Version,
		TLSCipher:    outcome.TLSInfo.CipherSuite,
		UsedLegacy:   outcome.TLSInfo.UsedLegacy,
	}
}

func metadataFrom(m htmlinfo.Metadata) Metadata {
	return Metadata{
		Description: m.Description,
		Keywords:    m.Keywords,
		Author:      m.Author,
		OGImage:     m.OGImage,
		Favicon:     m.Favicon,
		Language:    m.Language,
		ContentType: m.ContentType,
	}
}

func methodDetectedEvent(url, method, reason string) events.Event {
	return events.Event{
		Kind: events.KindMethodDetected,
		MethodDetected: &events.MethodDetectedPayload{
			URL:       url,
			Method:    method,
			Reason:    reason,
			Timestamp: time.Now(),
		},
	}
}
