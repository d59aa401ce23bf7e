package hybridcrawl

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rohmanhakim/hybridcrawl/internal/classify"
	"github.com/rohmanhakim/hybridcrawl/internal/config"
	"github.com/rohmanhakim/hybridcrawl/internal/events"
	"github.com/rohmanhakim/hybridcrawl/internal/metadata"
	"github.com/rohmanhakim/hybridcrawl/internal/screenshot"
	"github.com/rohmanhakim/hybridcrawl/internal/traverse"
	"github.com/rohmanhakim/hybridcrawl/internal/urlnorm"
	"github.com/rohmanhakim/hybridcrawl/internal/webhook"
	"github.com/rohmanhakim/hybridcrawl/pkg/hashutil"
	"github.com/rohmanhakim/hybridcrawl/pkg/limiter"
	"github.com/rohmanhakim/hybridcrawl/pkg/timeutil"
)

// Scheduler is the Recursive Scheduler: the sole admission authority for
// a crawl session. Every depth/page/domain-scope/dedup check happens here,
// before a candidate is ever submitted to its internal/traverse.Frontier —
// only the scheduler may enqueue, a rule that holds regardless of whether
// the frontier underneath orders work breadth-first or depth-first.
type Scheduler struct {
	orchestrator *Orchestrator
	metadataSink metadata.Sink
	publisher    events.Publisher
	rateLimiter  limiter.RateLimiter
	sleeper      timeutil.Sleeper
	notifier     webhook.Notifier
}

func NewScheduler(metadataSink metadata.Sink, sink events.Sink, screenshotSink screenshot.Sink) *Scheduler {
	return &Scheduler{
		orchestrator: NewOrchestrator(metadataSink, sink, screenshotSink),
		metadataSink: metadataSink,
		publisher:    events.NewPublisher(sink, metadataSink),
		rateLimiter:  limiter.NewConcurrentRateLimiter(),
		sleeper:      timeutil.NewRealSleeper(),
		notifier:     webhook.NewNotifier(metadataSink),
	}
}

// Close releases the Scheduler's Orchestrator (and its browser process,
// if ever launched).
func (s *Scheduler) Close() error {
	return s.orchestrator.Close()
}

// CrawlRecursive implements the Recursive Scheduler's deterministic
// depth-first traversal: admission is checked once per
// candidate before it ever reaches the traversal frontier, results are
// appended in visitation order, and cancellation aborts the session
// without discarding work already done.
func (s *Scheduler) CrawlRecursive(ctx context.Context, seedURL string, opts config.Options) CrawlSession {
	seed, err := urlnorm.ValidateAbsolute(seedURL)
	if err != nil {
		now := time.Now()
		return CrawlSession{
			SessionID:  sessionID(seedURL, now),
			State:      SessionAborted,
			StartedAt:  now,
			FinishedAt: now,
		}
	}

	startedAt := time.Now()
	session := CrawlSession{
		SessionID: sessionID(seedURL, startedAt),
		SeedURL:   seed,
		BaseHost:  strings.ToLower(seed.Hostname()),
		State:     SessionRunning,
		StartedAt: startedAt,
	}

	s.publisher.Publish(events.Event{
		Kind: events.KindStart,
		Start: &events.StartPayload{
			SessionID: session.SessionID,
			SeedURL:   seed.String(),
			MaxDepth:  opts.MaxDepth(),
			CrawlType: events.CrawlTypeRecursive,
			Timestamp: startedAt,
		},
	})

	s.rateLimiter.SetBaseDelay(opts.Delay())

	frontier := traverse.NewFrontier()
	seedKey := urlnorm.NormalizeKey(seed)
	frontier.MarkVisited(seedKey)
	frontier.Submit([]traverse.Candidate{{URL: seed, Depth: 0}})

	lastDepth := -1
	var lastFetchAt time.Time

	for {
		if ctx.Err() != nil {
			session.State = SessionAborted
			s.publisher.Publish(sessionErrorEvent(session.SessionID, "context canceled", "", true, nil))
			break
		}

		candidate, ok := frontier.Next()
		if !ok {
			session.State = SessionCompleted
			break
		}
		if candidate.Depth > opts.MaxDepth() || frontier.VisitedCount() > opts.MaxPages() {
			continue
		}

		if candidate.Depth != lastDepth {
			lastDepth = candidate.Depth
			s.publisher.Publish(events.Event{
				Kind: events.KindDepthChange,
				DepthChange: &events.DepthChangePayload{
					CurrentDepth:     candidate.Depth,
					MaxDepth:         opts.MaxDepth(),
					PagesAtThisDepth: 1,
					Timestamp:        time.Now(),
				},
			})
		}

		pct := float64(100 * frontier.VisitedCount() / opts.MaxPages())
		if pct > 100 {
			pct = 100
		}
		s.publisher.Publish(events.Event{
			Kind: events.KindProgress,
			Progress: &events.ProgressPayload{
				Percentage:     pct,
				PagesProcessed: frontier.VisitedCount(),
				TotalEstimate:  opts.MaxPages(),
				CurrentURL:     candidate.URL.String(),
				Status:         "fetching",
			},
		})

		if !lastFetchAt.IsZero() {
			wait := s.rateLimiter.ResolveDelay(session.BaseHost)
			if wait > 0 {
				s.sleeper.Sleep(wait)
			}
		}
		lastFetchAt = time.Now()

		result := s.orchestrator.CrawlOne(ctx, candidate.URL.String(), opts)
		s.rateLimiter.MarkLastFetchAsNow(session.BaseHost)
		result.Depth = candidate.Depth
		result.CrawledAt = lastFetchAt
		session.Results = append(session.Results, result)
		if candidate.Depth > session.MaxDepthReached {
			session.MaxDepthReached = candidate.Depth
		}

		if !result.Success {
			errMessage := "unknown error"
			if result.Error != nil {
				errMessage = result.Error.Message
				if result.Error.Kind == classify.RateLimited {
					s.rateLimiter.RegisterRateLimited(session.BaseHost)
				}
			}
			s.publisher.Publish(sessionErrorEvent(session.SessionID, errMessage, candidate.URL.String(), false, &candidate.Depth))
			if len(session.Results) >= opts.MaxPages() {
				session.State = SessionCompleted
				break
			}
			continue
		}

		if candidate.Depth < opts.MaxDepth() {
			s.admitChildren(frontier, session, result, candidate.Depth+1, opts)
		}

		if len(session.Results) >= opts.MaxPages() {
			session.State = SessionCompleted
			break
		}
	}

	session.FinishedAt = time.Now()
	if session.State == SessionRunning {
		session.State = SessionCompleted
	}

	s.publisher.Publish(events.Event{
		Kind: events.KindComplete,
		Complete: &events.CompletePayload{
			SessionID:       session.SessionID,
			TotalPages:      len(session.Results),
			TotalLinks:      session.TotalLinks(),
			Duration:        session.Duration(),
			MaxDepthReached: session.MaxDepthReached,
			SuccessRate:     successRate(session.Results),
			UniqueDomains:   uniqueDomains(session.Results),
			Timestamp:       session.FinishedAt,
		},
	})

	s.metadataSink.RecordFinal(metadata.CrawlStats{
		TotalPages:  len(session.Results),
		TotalErrors: totalErrors(session.Results),
		Duration:    session.Duration(),
	})

	s.notifier.Notify(opts.WebhookURL(), webhook.Notification{
		SessionID:  session.SessionID,
		SeedURL:    seed.String(),
		TotalPages: len(session.Results),
		TotalLinks: session.TotalLinks(),
		Duration:   session.Duration(),
		Success:    session.State == SessionCompleted,
	})

	return session
}

// admitChildren applies the admission checks (depth, page cap, dedup,
// domain scope) to a page's sanitized links, in their emitted order, and
// submits the surviving candidates — capped at childLinksPerPage — to the
// frontier. It is the only place outside CrawlRecursive's own loop that
// touches the frontier, preserving the "sole admission authority" rule.
func (s *Scheduler) admitChildren(frontier *traverse.Frontier, session CrawlSession, result PageResult, childDepth int, opts config.Options) {
	var admitted []traverse.Candidate
	linkCount := 0

	for _, link := range result.Links {
		if len(admitted) >= opts.ChildLinksPerPage() {
			break
		}
		if frontier.VisitedCount() >= opts.MaxPages() {
			break
		}

		key := urlnorm.NormalizeKey(link)
		if frontier.Visited(key) {
			continue
		}
		if opts.SameDomainOnly() && !strings.EqualFold(link.Hostname(), session.BaseHost) {
			continue
		}

		frontier.MarkVisited(key)
		admitted = append(admitted, traverse.Candidate{URL: link, Depth: childDepth})

		linkCount++
		if linkCount%5 == 0 {
			s.publisher.Publish(events.Event{
				Kind: events.KindLinkFound,
				LinkFound: &events.LinkFoundPayload{
					URL:       link.String(),
					SourceURL: result.URL.String(),
					Depth:     childDepth,
					LinkCount: linkCount,
				},
			})
		}
	}

	frontier.Submit(admitted)
}

func sessionErrorEvent(sessionID, message, failedURL string, fatal bool, depth *int) events.Event {
	return events.Event{
		Kind: events.KindError,
		Error: &events.ErrorPayload{
			SessionID:    sessionID,
			ErrorMessage: message,
			FailedURL:    failedURL,
			Fatal:        fatal,
			Depth:        depth,
			Timestamp:    time.Now(),
		},
	}
}

func successRate(results []PageResult) float64 {
	if len(results) == 0 {
		return 0
	}
	ok := 0
	for _, r := range results {
		if r.Success {
			ok++
		}
	}
	return float64(ok) / float64(len(results))
}

func uniqueDomains(results []PageResult) int {
	seen := make(map[string]struct{})
	for _, r := range results {
		seen[strings.ToLower(r.FinalURL.Hostname())] = struct{}{}
	}
	return len(seen)
}

func totalLinks(results []PageResult) int {
	total := 0
	for _, r := range results {
		total += len(r.Links)
	}
	return total
}

func totalErrors(results []PageResult) int {
	errs := 0
	for _, r := range results {
		if !r.Success {
			errs++
		}
	}
	return errs
}

func sessionID(seedURL string, at time.Time) string {
	sum, err := hashutil.HashBytes([]byte(fmt.Sprintf("%s|%d", seedURL, at.UnixNano())), hashutil.HashAlgoBLAKE3)
	if err != nil {
		return fmt.Sprintf("session-%d", at.UnixNano())
	}
	return sum[:16]
}
