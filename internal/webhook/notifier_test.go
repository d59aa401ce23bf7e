package webhook_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohmanhakim/hybridcrawl/internal/metadata"
	"github.com/rohmanhakim/hybridcrawl/internal/webhook"
)

func TestNotifier_Notify_PostsJSONBody(t *testing.T) {
	received := make(chan webhook.Notification, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var n webhook.Notification
		require.NoError(t, json.NewDecoder(r.Body).Decode(&n))
		received <- n
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	recorder := metadata.NewRecorder("test")
	notifier := webhook.NewNotifier(&recorder)

	notifier.Notify(server.URL, webhook.Notification{
		SessionID:  "sess-1",
		SeedURL:    "https://example.com",
		TotalPages: 3,
		TotalLinks: 7,
		Duration:   time.Second,
		Success:    true,
	})

	select {
	case n := <-received:
		assert.Equal(t, "sess-1", n.SessionID)
		assert.Equal(t, 3, n.TotalPages)
	case <-time.After(2 * time.Second):
		t.Fatal("webhook was not delivered")
	}
}

func TestNotifier_Notify_EmptyURLIsNoop(t *testing.T) {
	recorder := metadata.NewRecorder("test")
	notifier := webhook.NewNotifier(&recorder)
	notifier.Notify("", webhook.Notification{})
}

func TestNotifier_Notify_ServerErrorDoesNotPanic(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	recorder := metadata.NewRecorder("test")
	notifier := webhook.NewNotifier(&recorder)
	notifier.Notify(server.URL, webhook.Notification{})
}
