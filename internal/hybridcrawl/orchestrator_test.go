package hybridcrawl_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohmanhakim/hybridcrawl/internal/classify"
	"github.com/rohmanhakim/hybridcrawl/internal/config"
	"github.com/rohmanhakim/hybridcrawl/internal/events"
	"github.com/rohmanhakim/hybridcrawl/internal/fetchdynamic"
	"github.com/rohmanhakim/hybridcrawl/internal/hybridcrawl"
	"github.com/rohmanhakim/hybridcrawl/internal/metadata"
)

type collectingSink struct {
	events []events.Event
}

func (c *collectingSink) Publish(e events.Event) {
	c.events = append(c.events, e)
}

func (c *collectingSink) kinds() []events.Kind {
	kinds := make([]events.Kind, len(c.events))
	for i, e := range c.events {
		kinds[i] = e.Kind
	}
	return kinds
}

// fakeDynamic satisfies hybridcrawl.DynamicRenderer without a real
// browser, so tests can drive CrawlOne's dynamic-fallback branches.
type fakeDynamic struct {
	outcome fetchdynamic.RenderOutcome
	closed  bool
}

func (f *fakeDynamic) Render(ctx context.Context, target string, params fetchdynamic.Params) fetchdynamic.RenderOutcome {
	return f.outcome
}

func (f *fakeDynamic) Close() error {
	f.closed = true
	return nil
}

func newTestOrchestrator(sink events.Sink, dynamic *fakeDynamic) *hybridcrawl.Orchestrator {
	recorder := metadata.NewRecorder("test")
	return hybridcrawl.NewOrchestratorWithDynamic(&recorder, sink, nil, func() (hybridcrawl.DynamicRenderer, error) {
		return dynamic, nil
	})
}

func TestCrawlOne_ForcedStatic_ReturnsTitleAndSanitizedLinks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><head><title>Example</title></head><body>
			<a href="/a">a</a><a href="/b">b</a><a href="mailto:x@y">mail</a>
		</body></html>`))
	}))
	defer server.Close()

	opts, err := config.WithDefault(server.URL).WithForceMethod(config.ForceMethodStatic).Build()
	require.NoError(t, err)

	sink := &collectingSink{}
	orchestrator := newTestOrchestrator(sink, &fakeDynamic{})
	defer orchestrator.Close()

	result := orchestrator.CrawlOne(t.Context(), server.URL, opts)

	require.True(t, result.Success)
	assert.Equal(t, "Example", result.Title)
	assert.Equal(t, hybridcrawl.MethodStatic, result.FetchMethod)
	assert.Len(t, result.Links, 2)
	assert.Contains(t, sink.kinds(), events.KindMethodDetected)
}

func TestCrawlOne_InvalidURL_ReturnsClassifiedFailure(t *testing.T) {
	opts, err := config.WithDefault("javascript:alert(1)").Build()
	require.NoError(t, err)

	sink := &collectingSink{}
	orchestrator := newTestOrchestrator(sink, &fakeDynamic{})
	defer orchestrator.Close()

	result := orchestrator.CrawlOne(t.Context(), "javascript:alert(1)", opts)

	require.False(t, result.Success)
	require.NotNil(t, result.Error)
	assert.Equal(t, classify.InvalidURL, result.Error.Kind)
}

func TestCrawlOne_StaticEmptyLinks_FallsBackToDynamic(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><head><title>No Links</title></head><body>plain text</body></html>`))
	}))
	defer server.Close()

	opts, err := config.WithDefault(server.URL).Build()
	require.NoError(t, err)

	finalURL, err := url.Parse(server.URL)
	require.NoError(t, err)

	sink := &collectingSink{}
	dynamic := &fakeDynamic{outcome: fetchdynamic.RenderOutcome{
		FinalURL: *finalURL,
		Success:  true,
	}}
	orchestrator := newTestOrchestrator(sink, dynamic)
	defer orchestrator.Close()

	result := orchestrator.CrawlOne(t.Context(), server.URL, opts)

	found := false
	for _, e := range sink.events {
		if e.Kind == events.KindMethodDetected && e.MethodDetected.Reason == "empty static result" {
			found = true
		}
	}
	assert.True(t, found, "expected an empty-static-result method-detected event")
	assert.Equal(t, hybridcrawl.MethodDynamic, result.FetchMethod)
	assert.True(t, result.Success)
}

func TestCrawlOne_DetectorGate_SwitchesToDynamicOnHighConfidence(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><head><title>SPA</title></head><body id="__NEXT_DATA__">
			<a href="/a">a</a>
		</body></html>`))
	}))
	defer server.Close()

	opts, err := config.WithDefault(server.URL).Build()
	require.NoError(t, err)

	finalURL, err := url.Parse(server.URL)
	require.NoError(t, err)

	sink := &collectingSink{}
	dynamic := &fakeDynamic{outcome: fetchdynamic.RenderOutcome{
		FinalURL: *finalURL,
		Success:  true,
	}}
	orchestrator := newTestOrchestrator(sink, dynamic)
	defer orchestrator.Close()

	result := orchestrator.CrawlOne(t.Context(), server.URL, opts)

	assert.Equal(t, hybridcrawl.MethodDynamic, result.FetchMethod)
}

func TestCrawlOne_DynamicLaunchFailure_ReturnsFailurePageResult(t *testing.T) {
	opts, err := config.WithDefault("https://dynamic-only.test").WithForceMethod(config.ForceMethodDynamic).Build()
	require.NoError(t, err)

	recorder := metadata.NewRecorder("test")
	sink := &collectingSink{}
	orchestrator := hybridcrawl.NewOrchestratorWithDynamic(&recorder, sink, nil, func() (hybridcrawl.DynamicRenderer, error) {
		return nil, assertErr{}
	})
	defer orchestrator.Close()

	result := orchestrator.CrawlOne(t.Context(), "https://dynamic-only.test", opts)

	require.False(t, result.Success)
	assert.Equal(t, hybridcrawl.MethodDynamic, result.FetchMethod)
}

type assertErr struct{}

func (assertErr) Error() string { return "launch failed" }
