// Package fetchdynamic drives a headless browser to render pages that the
// static fetcher or method detector judged to need full JavaScript
// execution: single-page applications, client-rendered frameworks, and
// pages whose initial HTML carries little more than a script bundle.
//
// Page acquisition, request hijacking for resource blocking, registering
// the network-idle wait before Navigate, and releasing the page on every
// exit path including panic recovery follow the same go-rod usage pattern
// as other headless-rendering tools: acquire, hijack, wait, release.
package fetchdynamic

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/rohmanhakim/hybridcrawl/internal/classify"
	"github.com/rohmanhakim/hybridcrawl/internal/htmlinfo"
)

// Fetcher owns a single headless browser process and hands out one fresh
// page (browser context) per Render call.
type Fetcher struct {
	browser *rod.Browser
}

// New launches a headless Chromium instance and returns a Fetcher bound to
// it. The browser is shared across Render calls; pages are not.
func New() (*Fetcher, error) {
	controlURL, err := launcher.New().Headless(true).Launch()
	if err != nil {
		return nil, fmt.Errorf("launch headless browser: %w", err)
	}
	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect to headless browser: %w", err)
	}
	return &Fetcher{browser: browser}, nil
}

// Close shuts down the underlying browser process.
func (f *Fetcher) Close() error {
	return f.browser.Close()
}

// Render navigates to target in a fresh page, waits for the page to settle
// per params.WaitUntil, optionally auto-scrolls and screenshots it, then
// extracts title/metadata/links from the rendered DOM. The page is closed
// on every exit path, including a panic during extraction.
func (f *Fetcher) Render(ctx context.Context, target string, params Params) (outcome RenderOutcome) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, params.Timeout)
	defer cancel()

	page, err := f.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return errorOutcome(classify.New(classify.Unknown, err), start)
	}

	defer func() {
		if r := recover(); r != nil {
			outcome = errorOutcome(classify.New(classify.Unknown, fmt.Errorf("dynamic render panicked: %v", r)), start)
		}
		_ = page.Navigate("about:blank")
		_ = page.Close()
	}()

	p := page.Context(ctx)

	if err := p.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:  params.ViewportWidth,
		Height: params.ViewportHeight,
	}); err != nil {
		return errorOutcome(classify.New(classify.Unknown, err), start)
	}

	var router *rod.HijackRouter
	if params.BlockResources {
		router = mountHijack(p)
		defer func() { _ = router.Stop() }()
	}

	var waitIdle func()
	if params.WaitUntil == WaitUntilNetworkIdle {
		waitIdle = p.WaitRequestIdle(500*time.Millisecond, nil, nil, nil)
	}

	if err := p.Navigate(target); err != nil {
		return errorOutcome(classifyNavError(err), start)
	}

	if waitIdle != nil {
		waitIdle()
	} else if err := p.WaitLoad(); err != nil {
		return errorOutcome(classifyNavError(err), start)
	}

	if params.AutoScroll {
		autoScroll(p, params.MaxScrolls)
	}

	var shot []byte
	if params.Screenshot {
		if bytes, err := p.Screenshot(true, &proto.PageCaptureScreenshot{
			Format:                proto.PageCaptureScreenshotFormatPng,
			CaptureBeyondViewport: true,
		}); err == nil {
			shot = bytes
		}
	}

	rawHTML, err := p.HTML()
	if err != nil {
		return errorOutcome(classify.New(classify.Unknown, err), start)
	}

	finalURLStr := evalStringOrEmpty(p, `() => window.location.href`)
	finalURL := target
	if finalURLStr != "" {
		finalURL = finalURLStr
	}
	finalParsed, err := url.Parse(finalURL)
	if err != nil {
		return errorOutcome(classify.New(classify.InvalidURL, err), start)
	}

	info, err := htmlinfo.Parse(strings.NewReader(rawHTML), "text/html")
	if err != nil {
		return errorOutcome(classify.New(classify.Unknown, err), start)
	}
	if info.Title == "" {
		info.Title = evalStringOrEmpty(p, `() => document.title`)
	}

	return RenderOutcome{
		FinalURL:      *finalParsed,
		HTML:          rawHTML,
		Info:          info,
		StatusCode:    200,
		Screenshot:    shot,
		HasScreenshot: shot != nil,
		Duration:      time.Since(start),
		Success:       true,
	}
}

func evalStringOrEmpty(p *rod.Page, js string) string {
	res, err := p.Eval(js)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}

func classifyNavError(err error) *classify.Error {
	kind := classify.FromTransportError(err)
	return classify.New(kind, err)
}

func errorOutcome(cerr *classify.Error, start time.Time) RenderOutcome {
	return RenderOutcome{
		Duration: time.Since(start),
		Success:  false,
		Err:      cerr,
	}
}
