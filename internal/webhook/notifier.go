// Package webhook posts a best-effort crawl-completion notification to a
// caller-configured URL. A failed delivery is logged and never surfaces to
// the crawl itself.
//
// Grounded on internal/assets.LocalResolver's "reported, not fatal"
// posture: a short-timeout http.Client that treats delivery failure as
// observational. This package reuses that posture for outbound
// notification instead of inbound asset fetch.
package webhook

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rohmanhakim/hybridcrawl/internal/metadata"
)

const notifyTimeout = 5 * time.Second

// Notification is the JSON body POSTed when a recursive crawl completes.
type Notification struct {
	SessionID  string        `json:"sessionId"`
	SeedURL    string        `json:"seedUrl"`
	TotalPages int           `json:"totalPages"`
	TotalLinks int           `json:"totalLinks"`
	Duration   time.Duration `json:"durationMs"`
	Success    bool          `json:"success"`
}

// MarshalJSON writes Duration as whole milliseconds, matching its
// durationMs key.
func (n Notification) MarshalJSON() ([]byte, error) {
	type alias Notification
	return json.Marshal(struct {
		alias
		Duration int64 `json:"durationMs"`
	}{alias(n), n.Duration.Milliseconds()})
}

type Notifier struct {
	client       *http.Client
	metadataSink metadata.Sink
}

func NewNotifier(metadataSink metadata.Sink) Notifier {
	return Notifier{
		client:       &http.Client{Timeout: notifyTimeout},
		metadataSink: metadataSink,
	}
}

// Notify POSTs notification as JSON to webhookURL. If webhookURL is empty,
// Notify is a no-op. Failures are logged through the Metadata Recorder and
// never returned.
func (n Notifier) Notify(webhookURL string, notification Notification) {
	if webhookURL == "" {
		return
	}

	body, err := json.Marshal(notification)
	if err != nil {
		n.recordFailure(webhookURL, err)
		return
	}

	req, err := http.NewRequest(http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		n.recordFailure(webhookURL, err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		n.recordFailure(webhookURL, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		n.recordFailure(webhookURL, errStatus(resp.StatusCode))
	}
}

func (n Notifier) recordFailure(webhookURL string, err error) {
	n.metadataSink.RecordError(
		time.Now(),
		"webhook",
		"Notifier.Notify",
		metadata.CauseNetworkFailure,
		err.Error(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrURL, webhookURL),
		},
	)
}

type statusError int

func (e statusError) Error() string {
	return http.StatusText(int(e))
}

func errStatus(code int) error {
	return statusError(code)
}
