package hybridcrawl

import (
	"context"
	"time"

	"github.com/rohmanhakim/hybridcrawl/internal/config"
	"github.com/rohmanhakim/hybridcrawl/internal/events"
	"github.com/rohmanhakim/hybridcrawl/internal/metadata"
)

// CrawlOne is the package-level entry point for a single-page fetch: it
// builds a throwaway Orchestrator (and the browser process behind it, if
// one ends up being needed) and tears it down before returning. Callers
// making many calls — CrawlBatch, CrawlRecursive — construct their own
// long-lived Orchestrator instead, so the browser process is reused
// across pages.
//
// Publishes crawl:start/crawl:complete (crawlType=single) around the
// fetch, so a direct CrawlOne call satisfies the same start-before-any-
// method-detected, complete-last ordering guarantee CrawlRecursive
// provides for its own session.
func CrawlOne(ctx context.Context, rawURL string, opts config.Options, sink events.Sink, metadataSink metadata.Sink) PageResult {
	o := NewOrchestrator(metadataSink, sink, nil)
	defer o.Close()

	publisher := events.NewPublisher(sink, metadataSink)
	startedAt := time.Now()
	sid := sessionID(rawURL, startedAt)

	publisher.Publish(events.Event{
		Kind: events.KindStart,
		Start: &events.StartPayload{
			SessionID: sid,
			SeedURL:   rawURL,
			CrawlType: events.CrawlTypeSingle,
			Timestamp: startedAt,
		},
	})

	result := o.CrawlOne(ctx, rawURL, opts)

	finishedAt := time.Now()
	results := []PageResult{result}
	publisher.Publish(events.Event{
		Kind: events.KindComplete,
		Complete: &events.CompletePayload{
			SessionID:     sid,
			TotalPages:    1,
			TotalLinks:    totalLinks(results),
			Duration:      finishedAt.Sub(startedAt),
			SuccessRate:   successRate(results),
			UniqueDomains: uniqueDomains(results),
			Timestamp:     finishedAt,
		},
	})

	return result
}
