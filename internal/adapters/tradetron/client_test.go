package tradetron

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harilal/tradetoggle/internal/adapters/session"
	"github.com/harilal/tradetoggle/internal/domain"
)

type fakeClock struct {
	sleeps []time.Duration
}

func (f *fakeClock) Now() time.Time { return time.Unix(1700000000, 0) }

func (f *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	f.sleeps = append(f.sleeps, d)
	return ctx.Err()
}

// newTestClient validates a session against the mux (which must serve
// the probe endpoint) and binds a client with a recording clock.
func newTestClient(t *testing.T, server *httptest.Server, clock *fakeClock) *Client {
	t.Helper()

	blob, err := domain.EncodeCookies([]domain.Cookie{
		{Name: "laravel_session", Value: "sess"},
		{Name: "XSRF-TOKEN", Value: "token"},
	})
	require.NoError(t, err)

	store := session.Store{BaseURL: server.URL, HTTPClient: server.Client()}
	sess, err := store.Create(context.Background(), blob)
	require.NoError(t, err)

	return &Client{Session: sess, Clock: clock}
}

func probeHandler(mux *http.ServeMux) {
	mux.HandleFunc("/api/pricing/user-taxes", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"balances":{}}}`))
	})
}

func TestToggleRetriesServerErrorsThenSucceeds(t *testing.T) {
	t.Parallel()

	statuses := []int{503, 503, 200}
	var calls int
	mux := http.NewServeMux()
	probeHandler(mux)
	mux.HandleFunc("/api/deployed/status", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var cmd struct {
			Status string `json:"status"`
			ID     int64  `json:"id"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&cmd))
		assert.Equal(t, "Start", cmd.Status)
		assert.Equal(t, int64(42), cmd.ID)

		status := statuses[calls]
		calls++
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"data":"ok"}`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	clock := &fakeClock{}
	client := newTestClient(t, server, clock)

	outcome := client.Toggle(context.Background(), 42, domain.StateStart)
	assert.True(t, outcome.Succeeded)
	assert.Equal(t, 200, outcome.StatusCode)
	assert.Equal(t, 3, calls)
	// Linear backoff: base*1 then base*2.
	require.Len(t, clock.sleeps, 2)
	assert.Equal(t, 3*time.Second, clock.sleeps[0])
	assert.Equal(t, 6*time.Second, clock.sleeps[1])
}

func TestToggleTreatsClientErrorAsTerminal(t *testing.T) {
	t.Parallel()

	var calls int
	mux := http.NewServeMux()
	probeHandler(mux)
	mux.HandleFunc("/api/deployed/status", func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"not found"}`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	clock := &fakeClock{}
	client := newTestClient(t, server, clock)

	outcome := client.Toggle(context.Background(), 42, domain.StatePaused)
	assert.False(t, outcome.Succeeded)
	assert.Equal(t, 404, outcome.StatusCode)
	assert.Contains(t, outcome.Body, "not found")
	assert.Equal(t, 1, calls)
	assert.Empty(t, clock.sleeps)
}

func TestToggleExhaustsRetriesOnPersistentServerError(t *testing.T) {
	t.Parallel()

	var calls int
	mux := http.NewServeMux()
	probeHandler(mux)
	mux.HandleFunc("/api/deployed/status", func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"message":"overloaded"}`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	clock := &fakeClock{}
	client := newTestClient(t, server, clock)

	outcome := client.Toggle(context.Background(), 42, domain.StatePaused)
	assert.False(t, outcome.Succeeded)
	assert.Equal(t, 503, outcome.StatusCode)
	assert.Equal(t, 3, calls)
	assert.Len(t, clock.sleeps, 2)
}

func TestToggleReportsTransportErrorAfterRetries(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	probeHandler(mux)
	server := httptest.NewServer(mux)

	clock := &fakeClock{}
	client := newTestClient(t, server, clock)
	server.Close()

	outcome := client.Toggle(context.Background(), 42, domain.StatePaused)
	assert.False(t, outcome.Succeeded)
	assert.Equal(t, 0, outcome.StatusCode)
	assert.NotEmpty(t, outcome.TransportErr)
	assert.Len(t, clock.sleeps, 2)
}

func TestToggleRequiresJSONBodyForSuccess(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	probeHandler(mux)
	mux.HandleFunc("/api/deployed/status", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html>login page</html>`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := newTestClient(t, server, &fakeClock{})

	outcome := client.Toggle(context.Background(), 42, domain.StateStart)
	assert.False(t, outcome.Succeeded)
	assert.Equal(t, 200, outcome.StatusCode)
}
