package fetchstatic

import (
	"net/url"
	"time"

	"github.com/rohmanhakim/hybridcrawl/internal/classify"
)

// TLSInfo records which handshake profile actually served the response.
type TLSInfo struct {
	Version        string
	CipherSuite    string
	UsedLegacy     bool
}

// FetchOutcome is the result of a single static fetch attempt,
// including the terminal outcome of any retries or Legacy fallback.
type FetchOutcome struct {
	URL         url.URL
	FinalURL    url.URL
	Body        []byte
	StatusCode  int
	ContentType string
	Size        int
	TLSInfo     TLSInfo
	Duration    time.Duration
	RetryCount  int
	Success     bool
	Err         *classify.Error
}

// Params configures a single Fetch call.
type Params struct {
	Timeout     time.Duration
	MaxRetries  int
	UserAgent   string
	MaxRedirects int
}

func DefaultParams() Params {
	return Params{
		Timeout:      30 * time.Second,
		MaxRetries:   2,
		UserAgent:    "hybridcrawl/1.0",
		MaxRedirects: 5,
	}
}
