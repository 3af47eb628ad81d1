package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookSend(t *testing.T) {
	var got payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	hook := NewWebhook(DefaultConfig(srv.URL))
	err := hook.Send(context.Background(), "pool failover detected")

	require.NoError(t, err)
	assert.Equal(t, "pool failover detected", got.Text)
}

func TestWebhookSendErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid_payload", http.StatusBadRequest)
	}))
	defer srv.Close()

	hook := NewWebhook(DefaultConfig(srv.URL))
	err := hook.Send(context.Background(), "msg")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "http status 400")
}

func TestWebhookSendNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	hook := NewWebhook(DefaultConfig(srv.URL))
	err := hook.Send(context.Background(), "msg")

	require.Error(t, err)
}

func TestWebhookSendTimeout(t *testing.T) {
	blocked := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-blocked
	}))
	defer func() {
		close(blocked)
		srv.Close()
	}()

	hook := NewWebhook(Config{URL: srv.URL, Timeout: 50 * time.Millisecond})

	start := time.Now()
	err := hook.Send(context.Background(), "msg")

	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second, "send must respect the configured timeout")
}

func TestWebhookSendRedirectStatusIsSuccess(t *testing.T) {
	// Any non-error status counts as delivered.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	hook := NewWebhook(DefaultConfig(srv.URL))
	require.NoError(t, hook.Send(context.Background(), "msg"))
}
