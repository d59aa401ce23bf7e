// Package cli is the Cobra-based command surface for local, manual crawls.
// It owns flag parsing and config-builder wiring only; every actual fetch
// decision lives in internal/hybridcrawl.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rohmanhakim/hybridcrawl/internal/build"
	"github.com/rohmanhakim/hybridcrawl/internal/config"
	"github.com/rohmanhakim/hybridcrawl/internal/events"
	"github.com/rohmanhakim/hybridcrawl/internal/hybridcrawl"
	"github.com/rohmanhakim/hybridcrawl/internal/metadata"
	"github.com/rohmanhakim/hybridcrawl/internal/screenshot"
)

var (
	cfgFile            string
	seedURL            string
	batchURLs          []string
	recursive          bool
	forceMethod        string
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
	screenshotFlag     bool
	concurrency        int
	viewportWidth      int
	viewportHeight     int
	waitUntil          string
	maxScrolls         int
	webhookURL         string
	userAgent          string
	showVersion        bool
)

var rootCmd = &cobra.Command{
	Use:   "hybridcrawl",
	Short: "A hybrid static/dynamic web crawler.",
	Long: `hybridcrawl fetches a page with a static HTTP client first and falls
back to a headless browser only when the page's markup signals it needs
JavaScript execution to produce meaningful content.

Run "hybridcrawl crawl --seed-url <url>" for a single fetch, add
--recursive to expand the crawl under depth and page budgets.`,
	Run: func(cmd *cobra.Command, args []string) {
		if showVersion {
			fmt.Println(build.FullVersion())
			return
		}
		cmd.Usage()
	},
}

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Crawl one page, a batch of pages, or a whole site recursively.",
	Run: func(cmd *cobra.Command, args []string) {
		opts, err := InitConfigWithError()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}

		sink := &consoleSink{}
		recorder := metadata.NewRecorder("hybridcrawl")
		var shots screenshot.Sink
		if screenshotFlag {
			local := screenshot.NewLocalSink(&recorder)
			shots = &local
		}

		ctx := context.Background()

		switch {
		case recursive:
			runRecursive(ctx, opts, sink, &recorder, shots)
		case len(batchURLs) > 0:
			runBatch(ctx, opts, sink, &recorder, shots)
		default:
			runSingle(ctx, opts, sink, &recorder)
		}
	},
}

func runSingle(ctx context.Context, opts config.Options, sink events.Sink, metadataSink metadata.Sink) {
	result := hybridcrawl.CrawlOne(ctx, opts.SeedURL(), opts, sink, metadataSink)
	printResult(result)
	if !result.Success {
		os.Exit(1)
	}
}

func runBatch(ctx context.Context, opts config.Options, sink events.Sink, metadataSink metadata.Sink, shots screenshot.Sink) {
	results := hybridcrawl.CrawlBatch(ctx, batchURLs, opts, sink, metadataSink, shots)
	for _, result := range results {
		printResult(result)
	}
}

func runRecursive(ctx context.Context, opts config.Options, sink events.Sink, metadataSink metadata.Sink, shots screenshot.Sink) {
	scheduler := hybridcrawl.NewScheduler(metadataSink, sink, shots)
	defer scheduler.Close()

	session := scheduler.CrawlRecursive(ctx, opts.SeedURL(), opts)
	fmt.Printf("\nsession %s finished with state=%s pages=%d links=%d maxDepth=%d duration=%s\n",
		session.SessionID, session.State, len(session.Results), session.TotalLinks(), session.MaxDepthReached, session.Duration())
}

func printResult(result hybridcrawl.PageResult) {
	if !result.Success {
		msg := "unknown error"
		if result.Error != nil {
			msg = fmt.Sprintf("%s: %s", result.Error.Kind, result.Error.Message)
		}
		fmt.Printf("FAIL %s (%s)\n", result.URL.String(), msg)
		return
	}
	fmt.Printf("OK   %s [%s] %q (%d links)\n", result.FinalURL.String(), result.FetchMethod, result.Title, len(result.Links))
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to happen
// once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(crawlCmd)
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "print the build version and exit")

	crawlCmd.Flags().StringVar(&cfgFile, "config-file", "", "config file path (JSON)")
	crawlCmd.Flags().StringVar(&seedURL, "seed-url", "", "starting URL to crawl")
	crawlCmd.Flags().StringArrayVar(&batchURLs, "batch-url", nil, "fetch each of these URLs concurrently instead of a single/recursive crawl (can be repeated)")
	crawlCmd.Flags().BoolVar(&recursive, "recursive", false, "expand the crawl from seed-url under depth and page budgets")
	crawlCmd.Flags().StringVar(&forceMethod, "force-method", "", "auto|static|dynamic — skip the Method Detector and always use this fetch method")
	crawlCmd.Flags().Float64Var(&detectionThreshold, "detection-threshold", 0, "confidence the Method Detector needs before switching to dynamic")
	crawlCmd.Flags().IntVar(&maxRetries, "max-retries", 0, "static fetch retry attempts")
	crawlCmd.Flags().IntVar(&timeoutMs, "timeout-ms", 0, "per-page fetch timeout in milliseconds")
	crawlCmd.Flags().IntVar(&maxDepth, "max-depth", 0, "maximum link depth from seed URL (recursive only)")
	crawlCmd.Flags().IntVar(&maxPages, "max-pages", 0, "maximum number of pages to visit (recursive only)")
	crawlCmd.Flags().IntVar(&childLinksPerPage, "child-links-per-page", 0, "maximum children admitted per page (recursive only)")
	crawlCmd.Flags().IntVar(&delayMs, "delay-ms", 0, "base delay between fetches to the same host, 500-5000")
	crawlCmd.Flags().BoolVar(&sameDomainOnly, "same-domain-only", true, "restrict recursive expansion to the seed's hostname")
	crawlCmd.Flags().BoolVar(&blockResources, "block-resources", true, "block images/fonts/media in the dynamic renderer")
	crawlCmd.Flags().BoolVar(&autoScroll, "auto-scroll", false, "scroll the page before capture, for infinite-scroll sites")
	crawlCmd.Flags().BoolVar(&screenshotFlag, "screenshot", false, "capture and persist a full-page screenshot on dynamic fetches")
	crawlCmd.Flags().IntVar(&concurrency, "concurrency", 0, "concurrent fetch workers for --batch-url")
	crawlCmd.Flags().IntVar(&viewportWidth, "viewport-width", 0, "dynamic renderer viewport width")
	crawlCmd.Flags().IntVar(&viewportHeight, "viewport-height", 0, "dynamic renderer viewport height")
	crawlCmd.Flags().StringVar(&waitUntil, "wait-until", "", "load|networkidle — dynamic renderer wait condition")
	crawlCmd.Flags().IntVar(&maxScrolls, "max-scrolls", 0, "maximum auto-scroll iterations")
	crawlCmd.Flags().StringVar(&webhookURL, "webhook-url", "", "POST a completion notification here after a recursive crawl")
	crawlCmd.Flags().StringVar(&userAgent, "user-agent", "", "user agent string for every fetch")
}

// InitConfig builds crawl options from --config-file or CLI flags, exiting
// the process on error. InitConfigWithError is the same logic without the
// os.Exit, for callers that want to handle the error themselves.
func InitConfig() config.Options {
	opts, err := InitConfigWithError()
	if err != nil {
		fmt.Printf("Error: %s\n", err)
		os.Exit(1)
	}
	return opts
}

func InitConfigWithError() (config.Options, error) {
	if cfgFile != "" {
		fmt.Printf("Initializing config from file: %s\n", cfgFile)
		return config.WithConfigFile(seedURL, cfgFile)
	}

	if seedURL == "" {
		return config.Options{}, fmt.Errorf("--seed-url is required")
	}

	builder := config.WithDefault(seedURL)

	if forceMethod != "" {
		builder = builder.WithForceMethod(config.ForceMethod(forceMethod))
	}
	if detectionThreshold > 0 {
		builder = builder.WithDetectionThreshold(detectionThreshold)
	}
	if maxRetries > 0 {
		builder = builder.WithMaxRetries(maxRetries)
	}
	if timeoutMs > 0 {
		builder = builder.WithTimeoutMs(timeoutMs)
	}
	if maxDepth > 0 {
		builder = builder.WithMaxDepth(maxDepth)
	}
	if maxPages > 0 {
		builder = builder.WithMaxPages(maxPages)
	}
	if childLinksPerPage > 0 {
		builder = builder.WithChildLinksPerPage(childLinksPerPage)
	}
	if delayMs > 0 {
		builder = builder.WithDelayMs(delayMs)
	}
	builder = builder.WithSameDomainOnly(sameDomainOnly)
	builder = builder.WithBlockResources(blockResources)
	builder = builder.WithAutoScroll(autoScroll)
	builder = builder.WithScreenshot(screenshotFlag)
	if concurrency > 0 {
		builder = builder.WithConcurrency(concurrency)
	}
	if viewportWidth > 0 || viewportHeight > 0 {
		w, h := builder.Viewport()
		if viewportWidth > 0 {
			w = viewportWidth
		}
		if viewportHeight > 0 {
			h = viewportHeight
		}
		builder = builder.WithViewport(w, h)
	}
	if waitUntil != "" {
		builder = builder.WithWaitUntil(config.WaitUntil(waitUntil))
	}
	if maxScrolls > 0 {
		builder = builder.WithMaxScrolls(maxScrolls)
	}
	if webhookURL != "" {
		builder = builder.WithWebhookURL(webhookURL)
	}
	if userAgent != "" {
		builder = builder.WithUserAgent(userAgent)
	}

	return builder.Build()
}

// ResetFlags restores every package-level flag variable to its zero value.
// Tests call this between cases since Cobra flags are process-global.
func ResetFlags() {
	cfgFile = ""
	seedURL = ""
	batchURLs = nil
	recursive = false
	forceMethod = ""
	detectionThreshold = 0
	maxRetries = 0
	timeoutMs = 0
	maxDepth = 0
	maxPages = 0
	childLinksPerPage = 0
	delayMs = 0
	sameDomainOnly = true
	blockResources = true
	autoScroll = false
	screenshotFlag = false
	concurrency = 0
	viewportWidth = 0
	viewportHeight = 0
	waitUntil = ""
	maxScrolls = 0
	webhookURL = ""
	userAgent = ""
}

// Test helper functions to set flag values from tests, mirroring Cobra
// flags being process-global state.
func SetConfigFileForTest(path string)        { cfgFile = path }
func SetSeedURLForTest(url string)            { seedURL = url }
func SetRecursiveForTest(r bool)              { recursive = r }
func SetForceMethodForTest(m string)          { forceMethod = m }
func SetMaxDepthForTest(n int)                { maxDepth = n }
func SetMaxPagesForTest(n int)                { maxPages = n }
func SetDelayMsForTest(ms int)                { delayMs = ms }
func SetConcurrencyForTest(n int)             { concurrency = n }
func SetUserAgentForTest(ua string)           { userAgent = ua }

// consoleSink prints every event to stdout, reporting crawl progress
// directly to the terminal rather than through a structured logger.
type consoleSink struct{}

func (consoleSink) Publish(e events.Event) {
	switch e.Kind {
	case events.KindStart:
		fmt.Printf("[start] session=%s seed=%s maxDepth=%d type=%s\n", e.Start.SessionID, e.Start.SeedURL, e.Start.MaxDepth, e.Start.CrawlType)
	case events.KindMethodDetected:
		fmt.Printf("[method] %s -> %s (%s)\n", e.MethodDetected.URL, e.MethodDetected.Method, e.MethodDetected.Reason)
	case events.KindProgress:
		fmt.Printf("[progress] %.1f%% (%d/%d) %s\n", e.Progress.Percentage, e.Progress.PagesProcessed, e.Progress.TotalEstimate, e.Progress.CurrentURL)
	case events.KindDepthChange:
		fmt.Printf("[depth] now at depth %d/%d\n", e.DepthChange.CurrentDepth, e.DepthChange.MaxDepth)
	case events.KindLinkFound:
		fmt.Printf("[links] %d found on %s\n", e.LinkFound.LinkCount, e.LinkFound.SourceURL)
	case events.KindError:
		fmt.Printf("[error] %s fatal=%t %s\n", e.Error.FailedURL, e.Error.Fatal, e.Error.ErrorMessage)
	case events.KindComplete:
		fmt.Printf("[complete] session=%s pages=%d links=%d duration=%s\n", e.Complete.SessionID, e.Complete.TotalPages, e.Complete.TotalLinks, e.Complete.Duration)
	}
}

var _ events.Sink = consoleSink{}
