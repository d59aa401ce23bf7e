package fetchdynamic

import (
	"net/url"
	"time"

	"github.com/rohmanhakim/hybridcrawl/internal/classify"
	"github.com/rohmanhakim/hybridcrawl/internal/htmlinfo"
)

type WaitUntil string

const (
	WaitUntilLoad        WaitUntil = "load"
	WaitUntilNetworkIdle WaitUntil = "networkidle"
)

// Params configures a single Render call. Every field has a spec-documented
// default; the orchestrator populates this from internal/config.Options.
type Params struct {
	Timeout        time.Duration
	BlockResources bool
	WaitUntil      WaitUntil
	ViewportWidth  int
	ViewportHeight int
	AutoScroll     bool
	MaxScrolls     int
	Screenshot     bool
	UserAgent      string
}

func DefaultParams() Params {
	return Params{
		Timeout:        30 * time.Second,
		BlockResources: true,
		WaitUntil:      WaitUntilNetworkIdle,
		ViewportWidth:  1920,
		ViewportHeight: 1080,
		AutoScroll:     false,
		MaxScrolls:     10,
		Screenshot:     false,
		UserAgent:      "hybridcrawl/1.0",
	}
}

// RenderOutcome is the result of rendering a page in a headless browser.
type RenderOutcome struct {
	FinalURL       url.URL
	HTML           string
	Info           htmlinfo.Info
	StatusCode     int
	Screenshot     []byte
	HasScreenshot  bool
	Duration       time.Duration
	Success        bool
	Err            *classify.Error
}

// blockedResourceTypes lists the resource kinds dropped when
// Params.BlockResources is set.
var blockedResourceTypes = map[string]bool{
	"Image":       true,
	"Stylesheet":  true,
	"Font":        true,
	"Media":       true,
	"WebSocket":   true,
}

// blockedHosts is a short, well-known analytics-domain list: the subset
// that shows up across common scrapers without pulling in a full
// tracker-blocklist dependency.
var blockedHosts = []string{
	"google-analytics.com",
	"googletagmanager.com",
	"doubleclick.net",
	"facebook.net",
	"hotjar.com",
	"segment.io",
	"mixpanel.com",
}
