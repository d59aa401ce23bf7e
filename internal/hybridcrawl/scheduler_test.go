package hybridcrawl_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohmanhakim/hybridcrawl/internal/config"
	"github.com/rohmanhakim/hybridcrawl/internal/events"
	"github.com/rohmanhakim/hybridcrawl/internal/hybridcrawl"
	"github.com/rohmanhakim/hybridcrawl/internal/metadata"
)

// siteGraph wires up a small in-memory site so CrawlRecursive can be
// exercised deterministically: "/" links to "/a", "/b", and an external
// host; "/a" links to "/a1", "/a2"; "/b" links to "/b1".
func siteGraph(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	page := func(title string, links ...string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			body := fmt.Sprintf("<html><head><title>%s</title></head><body>", title)
			for _, l := range links {
				body += fmt.Sprintf(`<a href="%s">link</a>`, l)
			}
			body += "</body></html>"
			w.Write([]byte(body))
		}
	}
	mux.HandleFunc("/", page("root", "/a", "/b", "https://external.test/x"))
	mux.HandleFunc("/a", page("a", "/a1", "/a2"))
	mux.HandleFunc("/a1", page("a1"))
	mux.HandleFunc("/a2", page("a2"))
	mux.HandleFunc("/b", page("b", "/b1"))
	mux.HandleFunc("/b1", page("b1"))
	return httptest.NewServer(mux)
}

func TestCrawlRecursive_RespectsDepthPageAndDomainScope(t *testing.T) {
	server := siteGraph(t)
	defer server.Close()

	opts, err := config.WithDefault(server.URL).
		WithForceMethod(config.ForceMethodStatic).
		WithMaxDepth(2).
		WithMaxPages(5).
		WithChildLinksPerPage(2).
		WithSameDomainOnly(true).
		WithDelayMs(500).
		Build()
	require.NoError(t, err)

	recorder := metadata.NewRecorder("test")
	scheduler := hybridcrawl.NewScheduler(&recorder, events.NoopSink{}, nil)
	defer scheduler.Close()

	session := scheduler.CrawlRecursive(t.Context(), server.URL, opts)

	assert.Len(t, session.Results, 5)
	assert.Equal(t, 2, session.MaxDepthReached)
	assert.Equal(t, hybridcrawl.SessionCompleted, session.State)

	seen := make(map[string]bool)
	for _, r := range session.Results {
		assert.LessOrEqual(t, r.Depth, opts.MaxDepth())
		path := r.FinalURL.Path
		if path == "" {
			path = "/"
		}
		seen[path] = true
	}
	assert.True(t, seen["/"])
	assert.True(t, seen["/a"])
	assert.True(t, seen["/b"])
}

func TestCrawlRecursive_MaxDepthZero_VisitsOnlySeed(t *testing.T) {
	server := siteGraph(t)
	defer server.Close()

	opts, err := config.WithDefault(server.URL).
		WithForceMethod(config.ForceMethodStatic).
		WithMaxDepth(0).
		WithDelayMs(500).
		Build()
	require.NoError(t, err)

	recorder := metadata.NewRecorder("test")
	scheduler := hybridcrawl.NewScheduler(&recorder, events.NoopSink{}, nil)
	defer scheduler.Close()

	session := scheduler.CrawlRecursive(t.Context(), server.URL, opts)

	require.Len(t, session.Results, 1)
	assert.Equal(t, 0, session.Results[0].Depth)
}

func TestCrawlRecursive_MaxPagesOne_VisitsOnlySeed(t *testing.T) {
	server := siteGraph(t)
	defer server.Close()

	opts, err := config.WithDefault(server.URL).
		WithForceMethod(config.ForceMethodStatic).
		WithMaxPages(1).
		WithDelayMs(500).
		Build()
	require.NoError(t, err)

	recorder := metadata.NewRecorder("test")
	scheduler := hybridcrawl.NewScheduler(&recorder, events.NoopSink{}, nil)
	defer scheduler.Close()

	session := scheduler.CrawlRecursive(t.Context(), server.URL, opts)

	assert.Len(t, session.Results, 1)
}

func TestCrawlRecursive_InvalidSeed_ReturnsAbortedSession(t *testing.T) {
	opts, err := config.WithDefault("javascript:alert(1)").
		WithForceMethod(config.ForceMethodStatic).
		Build()
	require.NoError(t, err)

	recorder := metadata.NewRecorder("test")
	scheduler := hybridcrawl.NewScheduler(&recorder, events.NoopSink{}, nil)
	defer scheduler.Close()

	session := scheduler.CrawlRecursive(t.Context(), "javascript:alert(1)", opts)

	assert.Equal(t, hybridcrawl.SessionAborted, session.State)
	assert.Empty(t, session.Results)
}

func TestCrawlRecursive_EmitsStartAndCompleteExactlyOnce(t *testing.T) {
	server := siteGraph(t)
	defer server.Close()

	opts, err := config.WithDefault(server.URL).
		WithForceMethod(config.ForceMethodStatic).
		WithMaxDepth(1).
		WithMaxPages(3).
		WithDelayMs(500).
		Build()
	require.NoError(t, err)

	sink := &collectingSink{}
	recorder := metadata.NewRecorder("test")
	scheduler := hybridcrawl.NewScheduler(&recorder, sink, nil)
	defer scheduler.Close()

	scheduler.CrawlRecursive(t.Context(), server.URL, opts)

	startCount, completeCount := 0, 0
	for i, e := range sink.events {
		if e.Kind == events.KindStart {
			startCount++
			assert.Equal(t, 0, i, "crawl:start must be first")
		}
		if e.Kind == events.KindComplete {
			completeCount++
			assert.Equal(t, len(sink.events)-1, i, "crawl:complete must be last")
		}
	}
	assert.Equal(t, 1, startCount)
	assert.Equal(t, 1, completeCount)
}
