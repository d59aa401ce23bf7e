package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

type ForceMethod string

const (
	ForceMethodAuto    ForceMethod = "auto"
	ForceMethodStatic  ForceMethod = "static"
	ForceMethodDynamic ForceMethod = "dynamic"
)

type WaitUntil string

const (
	WaitUntilLoad        WaitUntil = "load"
	WaitUntilNetworkIdle WaitUntil = "networkidle"
)

// Options is the full set of recognized crawl options, built either via
// the functional builder, a JSON config file, or a CLI flag overlay.
// All three converge on Build(), which validates once.
type Options struct {
	seedURL            string
	forceMethod        ForceMethod
	detectionThreshold float64
	maxRetries         int
	timeoutMs          int
	maxDepth           int
	maxPages           int
	childLinksPerPage  int
	delayMs            int
	sameDomainOnly     bool
	blockResources     bool
	autoScroll         bool
	screenshot         bool
	concurrency        int

	// Dynamic fetcher tuning.
	viewportWidth  int
	viewportHeight int
	waitUntil      WaitUntil
	maxScrolls     int

	// Ambient collaborators.
	webhookURL string
	userAgent  string
}

type optionsDTO struct {
	SeedURL            string      `json:"seedUrl"`
	ForceMethod        ForceMethod `json:"forceMethod,omitempty"`
	DetectionThreshold float64     `json:"detectionThreshold,omitempty"`
	MaxRetries         int         `json:"maxRetries,omitempty"`
	TimeoutMs          int         `json:"timeoutMs,omitempty"`
	MaxDepth           int         `json:"maxDepth,omitempty"`
	MaxPages           int         `json:"maxPages,omitempty"`
	ChildLinksPerPage  int         `json:"childLinksPerPage,omitempty"`
	DelayMs            int         `json:"delayMs,omitempty"`
	SameDomainOnly     *bool       `json:"sameDomainOnly,omitempty"`
	BlockResources     *bool       `json:"blockResources,omitempty"`
	AutoScroll         bool        `json:"autoScroll,omitempty"`
	Screenshot         bool        `json:"screenshot,omitempty"`
	Concurrency        int         `json:"concurrency,omitempty"`
	ViewportWidth      int         `json:"viewportWidth,omitempty"`
	ViewportHeight     int         `json:"viewportHeight,omitempty"`
	WaitUntil          WaitUntil   `json:"waitUntil,omitempty"`
	MaxScrolls         int         `json:"maxScrolls,omitempty"`
	WebhookURL         string      `json:"webhookUrl,omitempty"`
	UserAgent          string      `json:"userAgent,omitempty"`
}

// WithDefault returns a builder seeded with this crawler's documented
// defaults, for the given seed URL.
func WithDefault(seedURL string) *Options {
	return &Options{
		seedURL:            seedURL,
		forceMethod:        ForceMethodAuto,
		detectionThreshold: 0.5,
		maxRetries:         2,
		timeoutMs:          30000,
		maxDepth:           3,
		maxPages:           50,
		childLinksPerPage:  3,
		delayMs:            1500,
		sameDomainOnly:     true,
		blockResources:     true,
		autoScroll:         false,
		screenshot:         false,
		concurrency:        3,
		viewportWidth:      1920,
		viewportHeight:     1080,
		waitUntil:          WaitUntilNetworkIdle,
		maxScrolls:         10,
		userAgent:          "hybridcrawl/1.0",
	}
}

func WithConfigFile(seedURL, path string) (Options, error) {
	if _, err := os.Stat(path); err != nil {
		return Options{}, fmt.Errorf("%w: %s", ErrFileDoesNotExist, err.Error())
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("%w: %s", ErrReadConfigFail, err.Error())
	}

	dto := optionsDTO{}
	if err := json.Unmarshal(content, &dto); err != nil {
		return Options{}, fmt.Errorf("%w: %s", ErrConfigParsingFail, err.Error())
	}
	if dto.SeedURL == "" {
		dto.SeedURL = seedURL
	}
	return optionsFromDTO(dto)
}

func optionsFromDTO(dto optionsDTO) (Options, error) {
	opts := WithDefault(dto.SeedURL)

	if dto.ForceMethod != "" {
		opts.WithForceMethod(dto.ForceMethod)
	}
	if dto.DetectionThreshold != 0 {
		opts.WithDetectionThreshold(dto.DetectionThreshold)
	}
	if dto.MaxRetries != 0 {
		opts.WithMaxRetries(dto.MaxRetries)
	}
	if dto.TimeoutMs != 0 {
		opts.WithTimeoutMs(dto.TimeoutMs)
	}
	if dto.MaxDepth != 0 {
		opts.WithMaxDepth(dto.MaxDepth)
	}
	if dto.MaxPages != 0 {
		opts.WithMaxPages(dto.MaxPages)
	}
	if dto.ChildLinksPerPage != 0 {
		opts.WithChildLinksPerPage(dto.ChildLinksPerPage)
	}
	if dto.DelayMs != 0 {
		opts.WithDelayMs(dto.DelayMs)
	}
	if dto.SameDomainOnly != nil {
		opts.WithSameDomainOnly(*dto.SameDomainOnly)
	}
	if dto.BlockResources != nil {
		opts.WithBlockResources(*dto.BlockResources)
	}
	opts.WithAutoScroll(dto.AutoScroll)
	opts.WithScreenshot(dto.Screenshot)
	if dto.Concurrency != 0 {
		opts.WithConcurrency(dto.Concurrency)
	}
	if dto.ViewportWidth != 0 {
		opts.WithViewport(dto.ViewportWidth, opts.viewportHeight)
	}
	if dto.ViewportHeight != 0 {
		opts.WithViewport(opts.viewportWidth, dto.ViewportHeight)
	}
	if dto.WaitUntil != "" {
		opts.WithWaitUntil(dto.WaitUntil)
	}
	if dto.MaxScrolls != 0 {
		opts.WithMaxScrolls(dto.MaxScrolls)
	}
	if dto.WebhookURL != "" {
		opts.WithWebhookURL(dto.WebhookURL)
	}
	if dto.UserAgent != "" {
		opts.WithUserAgent(dto.UserAgent)
	}

	return opts.Build()
}

func (o *Options) WithForceMethod(m ForceMethod) *Options { o.forceMethod = m; return o }
func (o *Options) WithDetectionThreshold(t float64) *Options {
	o.detectionThreshold = t
	return o
}
func (o *Options) WithMaxRetries(n int) *Options        { o.maxRetries = n; return o }
func (o *Options) WithTimeoutMs(ms int) *Options        { o.timeoutMs = ms; return o }
func (o *Options) WithMaxDepth(n int) *Options          { o.maxDepth = n; return o }
func (o *Options) WithMaxPages(n int) *Options          { o.maxPages = n; return o }
func (o *Options) WithChildLinksPerPage(n int) *Options { o.childLinksPerPage = n; return o }
func (o *Options) WithDelayMs(ms int) *Options          { o.delayMs = ms; return o }
func (o *Options) WithSameDomainOnly(b bool) *Options   { o.sameDomainOnly = b; return o }
func (o *Options) WithBlockResources(b bool) *Options   { o.blockResources = b; return o }
func (o *Options) WithAutoScroll(b bool) *Options       { o.autoScroll = b; return o }
func (o *Options) WithScreenshot(b bool) *Options       { o.screenshot = b; return o }
func (o *Options) WithConcurrency(n int) *Options       { o.concurrency = n; return o }
func (o *Options) WithViewport(w, h int) *Options {
	o.viewportWidth = w
	o.viewportHeight = h
	return o
}
func (o *Options) WithWaitUntil(w WaitUntil) *Options { o.waitUntil = w; return o }
func (o *Options) WithMaxScrolls(n int) *Options       { o.maxScrolls = n; return o }
func (o *Options) WithWebhookURL(u string) *Options    { o.webhookURL = u; return o }
func (o *Options) WithUserAgent(ua string) *Options    { o.userAgent = ua; return o }

// Build validates the accumulated options and returns an immutable copy.
func (o *Options) Build() (Options, error) {
	if o.seedURL == "" {
		return Options{}, fmt.Errorf("%w: seedUrl cannot be empty", ErrInvalidConfig)
	}
	switch o.forceMethod {
	case ForceMethodAuto, ForceMethodStatic, ForceMethodDynamic:
	default:
		return Options{}, fmt.Errorf("%w: unrecognized forceMethod %q", ErrInvalidConfig, o.forceMethod)
	}
	if o.detectionThreshold < 0 || o.detectionThreshold > 1 {
		return Options{}, fmt.Errorf("%w: detectionThreshold must be within [0,1]", ErrInvalidConfig)
	}
	if o.delayMs < 500 || o.delayMs > 5000 {
		return Options{}, fmt.Errorf("%w: delayMs must be within [500,5000]", ErrInvalidConfig)
	}
	if o.maxDepth < 0 || o.maxDepth > 5 {
		return Options{}, fmt.Errorf("%w: maxDepth must be within [0,5]", ErrInvalidConfig)
	}
	if o.maxPages < 1 || o.maxPages > 100 {
		return Options{}, fmt.Errorf("%w: maxPages must be within [1,100]", ErrInvalidConfig)
	}
	if o.childLinksPerPage < 1 || o.childLinksPerPage > 10 {
		return Options{}, fmt.Errorf("%w: childLinksPerPage must be within [1,10]", ErrInvalidConfig)
	}
	if o.concurrency < 1 {
		return Options{}, fmt.Errorf("%w: concurrency must be at least 1", ErrInvalidConfig)
	}
	return *o, nil
}

func (o Options) SeedURL() string                 { return o.seedURL }
func (o Options) ForceMethod() ForceMethod         { return o.forceMethod }
func (o Options) DetectionThreshold() float64      { return o.detectionThreshold }
func (o Options) MaxRetries() int                  { return o.maxRetries }
func (o Options) TimeoutMs() int                   { return o.timeoutMs }
func (o Options) Timeout() time.Duration           { return time.Duration(o.timeoutMs) * time.Millisecond }
func (o Options) MaxDepth() int                    { return o.maxDepth }
func (o Options) MaxPages() int                    { return o.maxPages }
func (o Options) ChildLinksPerPage() int           { return o.childLinksPerPage }
func (o Options) DelayMs() int                     { return o.delayMs }
func (o Options) Delay() time.Duration             { return time.Duration(o.delayMs) * time.Millisecond }
func (o Options) SameDomainOnly() bool             { return o.sameDomainOnly }
func (o Options) BlockResources() bool             { return o.blockResources }
func (o Options) AutoScroll() bool                 { return o.autoScroll }
func (o Options) Screenshot() bool                 { return o.screenshot }
func (o Options) Concurrency() int                 { return o.concurrency }
func (o Options) Viewport() (int, int)             { return o.viewportWidth, o.viewportHeight }
func (o Options) WaitUntil() WaitUntil             { return o.waitUntil }
func (o Options) MaxScrolls() int                  { return o.maxScrolls }
func (o Options) WebhookURL() string               { return o.webhookURL }
func (o Options) UserAgent() string                { return o.userAgent }
