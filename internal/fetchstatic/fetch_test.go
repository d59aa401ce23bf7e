package fetchstatic_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohmanhakim/hybridcrawl/internal/classify"
	"github.com/rohmanhakim/hybridcrawl/internal/fetchstatic"
)

func testParams() fetchstatic.Params {
	return fetchstatic.Params{
		Timeout:      5 * time.Second,
		MaxRetries:   2,
		UserAgent:    "hybridcrawl-test/1.0",
		MaxRedirects: 5,
	}
}

func mustParseURL(t *testing.T, raw string) url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return *u
}

func TestFetch_SucceedsFirstAttempt(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("<html>hello</html>"))
	}))
	defer server.Close()

	outcome := fetchstatic.Fetch(t.Context(), mustParseURL(t, server.URL), testParams())

	require.True(t, outcome.Success)
	assert.Equal(t, 0, outcome.RetryCount)
	assert.Equal(t, http.StatusOK, outcome.StatusCode)
	assert.Equal(t, "text/html", outcome.ContentType)
	assert.Equal(t, "<html>hello</html>", string(outcome.Body))
	assert.False(t, outcome.TLSInfo.UsedLegacy)
}

func TestFetch_RetriesServerErrorThenSucceeds(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	outcome := fetchstatic.Fetch(t.Context(), mustParseURL(t, server.URL), testParams())

	require.True(t, outcome.Success)
	assert.Equal(t, int32(2), atomic.LoadInt32(&attempts))
	assert.Equal(t, 1, outcome.RetryCount)
}

func TestFetch_NonRetryableClientErrorStopsImmediately(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	outcome := fetchstatic.Fetch(t.Context(), mustParseURL(t, server.URL), testParams())

	require.False(t, outcome.Success)
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
	require.NotNil(t, outcome.Err)
	assert.Equal(t, classify.HTTP4xx, outcome.Err.Kind)
}

func TestFetch_RateLimitedRetries(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	outcome := fetchstatic.Fetch(t.Context(), mustParseURL(t, server.URL), testParams())

	require.True(t, outcome.Success)
	assert.Equal(t, int32(2), atomic.LoadInt32(&attempts))
}

func TestFetch_SelfSignedCertFallsBackToLegacyAndSucceeds(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("legacy-ok"))
	}))
	defer server.Close()

	params := testParams()
	params.MaxRetries = 1

	outcome := fetchstatic.Fetch(t.Context(), mustParseURL(t, server.URL), params)

	require.True(t, outcome.Success)
	assert.True(t, outcome.TLSInfo.UsedLegacy)
	assert.Equal(t, "legacy-ok", string(outcome.Body))
}

// A Legacy-profile attempt that itself fails with a kind that would
// normally be retryable (HTTP_5xx) must not send the loop back for
// another Strict attempt: the single-shot Legacy fallback is terminal
// for the whole call, regardless of the kind its own outcome carries.
func TestFetch_SelfSignedCertLegacyFailureDoesNotRetryStrict(t *testing.T) {
	var attempts int32
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	params := testParams()
	params.MaxRetries = 3

	outcome := fetchstatic.Fetch(t.Context(), mustParseURL(t, server.URL), params)

	require.False(t, outcome.Success)
	assert.True(t, outcome.TLSInfo.UsedLegacy)
	require.NotNil(t, outcome.Err)
	assert.Equal(t, classify.HTTP5xx, outcome.Err.Kind)
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts), "server must be hit only once, by the single Legacy attempt")
}
