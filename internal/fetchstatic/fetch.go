// Package fetchstatic is the TLS-strict static HTTP fetcher: it retries
// transient failures under a Strict certificate policy and falls back,
// once and only once per call, to a Legacy profile when the error
// classifier reports an SSL-family failure.
//
// Carries two *tls.Config profiles instead of one ambient http.Client,
// and uses pkg/retry/pkg/timeutil for the attempt loop with a linear
// 1500*attempt backoff schedule between tries.
package fetchstatic

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rohmanhakim/hybridcrawl/internal/classify"
	"github.com/rohmanhakim/hybridcrawl/pkg/failure"
	"github.com/rohmanhakim/hybridcrawl/pkg/retry"
	"github.com/rohmanhakim/hybridcrawl/pkg/timeutil"
)

const linearBackoffBase = 1500 * time.Millisecond

// terminalError forces IsRetryable to false regardless of the wrapped
// kind's own policy, so retry.Do stops instead of spending another Strict
// attempt. Used once the single-shot Legacy-TLS fallback has fired (or
// been deliberately skipped for an unrecoverable kind) — that decision is
// final for the whole Fetch call, independent of whether the resulting
// error would otherwise be considered retryable.
type terminalError struct {
	failure.ClassifiedError
}

func (terminalError) IsRetryable() bool { return false }

// Fetch performs a static HTTP GET of target under the Strict TLS profile,
// making at most params.MaxRetries attempts in all, retrying retryable
// failures after a 1500*attempt millisecond linear backoff. Any SSL-family classification
// short-circuits the loop: SSLCertExpired is treated as unrecoverable and
// never gets a Legacy attempt (certificate expiry is not something a
// weaker verification policy can fix); every other SSL-family kind gets a
// single Legacy-profile attempt, and its outcome — success or failure — is
// returned as terminal without consuming or triggering further Strict
// retries, even if that outcome's own kind would otherwise be retryable.
func Fetch(ctx context.Context, target url.URL, params Params) FetchOutcome {
	start := time.Now()

	strictClient := newClient(strictTLSConfig(), params)
	legacyClient := newClient(legacyTLSConfig(), params)

	usedLegacy := false
	var lastOutcome FetchOutcome
	var lastClassified *classify.Error

	retryParam := retry.NewParam(params.MaxRetries, func(attempt int) time.Duration {
		return timeutil.LinearBackoffDelay(linearBackoffBase, attempt)
	})

	result := retry.Do(ctx, retryParam, timeutil.NewRealSleeper(), func() (FetchOutcome, failure.ClassifiedError) {
		outcome, cerr := doAttempt(ctx, strictClient, target, params)
		if cerr != nil && classify.IsSSLFamily(cerr.Kind) {
			if cerr.Kind == classify.SSLCertExpired {
				lastOutcome = outcome
				lastClassified = cerr
				return outcome, terminalError{cerr}
			}

			usedLegacy = true
			outcome, cerr = doAttempt(ctx, legacyClient, target, params)
			outcome.TLSInfo.UsedLegacy = true
			lastOutcome = outcome
			lastClassified = cerr

			if cerr == nil {
				return outcome, nil
			}
			return outcome, terminalError{cerr}
		}

		lastOutcome = outcome
		lastClassified = cerr

		if cerr == nil {
			return outcome, nil
		}
		return outcome, cerr
	})

	outcome := lastOutcome
	outcome.URL = target
	outcome.Duration = time.Since(start)
	outcome.RetryCount = result.Attempts - 1
	outcome.TLSInfo.UsedLegacy = outcome.TLSInfo.UsedLegacy || usedLegacy

	if result.Err != nil {
		outcome.Success = false
		if lastClassified != nil {
			outcome.Err = lastClassified
		} else {
			outcome.Err = classify.New(classify.Unknown, result.Err)
		}
		return outcome
	}

	outcome.Success = true
	return outcome
}

func doAttempt(ctx context.Context, client *http.Client, target url.URL, params Params) (FetchOutcome, *classify.Error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return FetchOutcome{}, classify.New(classify.InvalidURL, err)
	}
	for key, value := range requestHeaders(params.UserAgent) {
		req.Header.Set(key, value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return FetchOutcome{}, classifyTransportErr(err)
	}
	defer resp.Body.Close()

	finalURL := target
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = *resp.Request.URL
	}

	tlsInfo := TLSInfo{}
	if resp.TLS != nil {
		tlsInfo.Version = tlsVersionName(resp.TLS.Version)
		tlsInfo.CipherSuite = tlsCipherSuiteName(resp.TLS.CipherSuite)
	}

	if resp.StatusCode >= 400 {
		io.Copy(io.Discard, resp.Body)
		return FetchOutcome{
			FinalURL:   finalURL,
			StatusCode: resp.StatusCode,
			TLSInfo:    tlsInfo,
		}, classifyStatus(resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return FetchOutcome{
			FinalURL:   finalURL,
			StatusCode: resp.StatusCode,
			TLSInfo:    tlsInfo,
		}, classify.New(classify.Unknown, err)
	}

	return FetchOutcome{
		FinalURL:    finalURL,
		Body:        body,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Size:        len(body),
		TLSInfo:     tlsInfo,
	}, nil
}

func newClient(tlsConfig *tls.Config, params Params) *http.Client {
	transport := &http.Transport{
		TLSClientConfig: tlsConfig,
	}
	return &http.Client{
		Transport: transport,
		Timeout:   params.Timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= params.MaxRedirects {
				return fmt.Errorf("stopped after %d redirects", params.MaxRedirects)
			}
			return nil
		},
	}
}

func tlsCipherSuiteName(id uint16) string {
	return tls.CipherSuiteName(id)
}

func requestHeaders(userAgent string) map[string]string {
	return map[string]string{
		"User-Agent":      userAgent,
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language": "en",
		"Accept-Encoding": "gzip, deflate, br",
		"Connection":      "keep-alive",
	}
}
