package hybridcrawl

import (
	"context"
	"sync"
	"time"

	"github.com/rohmanhakim/hybridcrawl/internal/config"
	"github.com/rohmanhakim/hybridcrawl/internal/events"
	"github.com/rohmanhakim/hybridcrawl/internal/metadata"
	"github.com/rohmanhakim/hybridcrawl/internal/screenshot"
)

// interBatchPause separates consecutive batches of opts.Concurrency()
// parallel CrawlOne calls.
const interBatchPause = 1 * time.Second

// CrawlBatch runs CrawlOne over urls with up to opts.Concurrency() calls
// in flight at once, pausing interBatchPause between batches. Unlike
// CrawlRecursive, no visited set is shared across calls — duplicate URLs
// in urls are fetched once per occurrence. Results are returned in the
// same order as urls, regardless of completion order within a batch.
// sink and metadataSink are invoked concurrently from every goroutine in
// a batch; the metadata.Recorder default is safe for this (built on
// log.Printf), and any custom sink must be too.
//
// The whole batch is treated as a single crawl:start/crawl:complete
// envelope (crawlType=single) rather than one pair per URL, since the
// batch itself — not any individual page — is the unit CrawlBatch's
// caller submitted.
func CrawlBatch(ctx context.Context, urls []string, opts config.Options, sink events.Sink, metadataSink metadata.Sink, screenshotSink screenshot.Sink) []PageResult {
	results := make([]PageResult, len(urls))
	if len(urls) == 0 {
		return results
	}

	concurrency := opts.Concurrency()
	if concurrency < 1 {
		concurrency = 1
	}

	orchestrator := NewOrchestrator(metadataSink, sink, screenshotSink)
	defer orchestrator.Close()

	publisher := events.NewPublisher(sink, metadataSink)
	startedAt := time.Now()
	sid := sessionID(urls[0], startedAt)

	publisher.Publish(events.Event{
		Kind: events.KindStart,
		Start: &events.StartPayload{
			SessionID: sid,
			SeedURL:   urls[0],
			CrawlType: events.CrawlTypeSingle,
			Timestamp: startedAt,
		},
	})

	for start := 0; start < len(urls); start += concurrency {
		if ctx.Err() != nil {
			break
		}

		end := start + concurrency
		if end > len(urls) {
			end = len(urls)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				results[idx] = orchestrator.CrawlOne(ctx, urls[idx], opts)
			}(i)
		}
		wg.Wait()

		if end < len(urls) {
			time.Sleep(interBatchPause)
		}
	}

	finishedAt := time.Now()
	publisher.Publish(events.Event{
		Kind: events.KindComplete,
		Complete: &events.CompletePayload{
			SessionID:     sid,
			TotalPages:    len(results),
			TotalLinks:    totalLinks(results),
			Duration:      finishedAt.Sub(startedAt),
			SuccessRate:   successRate(results),
			UniqueDomains: uniqueDomains(results),
			Timestamp:     finishedAt,
		},
	})

	return results
}
