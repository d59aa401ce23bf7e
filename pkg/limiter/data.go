package limiter

import "time"

// hostTiming tracks per-host rate-limiting state used by ConcurrentRateLimiter.
type hostTiming struct {
	lastFetchAt   time.Time
	callsAtDouble int
}

func (h *hostTiming) LastFetchAt() time.Time { return h.lastFetchAt }
func (h *hostTiming) CallsAtDouble() int     { return h.callsAtDouble }
