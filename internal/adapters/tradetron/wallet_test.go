package tradetron

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunningCountFromWalletSummary(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/pricing/user-taxes", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"balances":{"running":3,"deployed":5}}}`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := newTestClient(t, server, &fakeClock{})

	count, err := client.RunningCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestRunningCountAcceptsStringForm(t *testing.T) {
	t.Parallel()

	var probed bool
	mux := http.NewServeMux()
	mux.HandleFunc("/api/pricing/user-taxes", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if !probed {
			probed = true
			_, _ = w.Write([]byte(`{"data":{"balances":{}}}`))
			return
		}
		_, _ = w.Write([]byte(`{"data":{"balances":{"running":"7"}}}`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := newTestClient(t, server, &fakeClock{})

	count, err := client.RunningCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, count)
}

func TestRunningCountFallsBackToMarkup(t *testing.T) {
	t.Parallel()

	summaryCalls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/api/pricing/user-taxes", func(w http.ResponseWriter, _ *http.Request) {
		summaryCalls++
		if summaryCalls == 1 {
			// Session validation probe.
			_, _ = w.Write([]byte(`{}`))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("/user/dashboard", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<div class="wallet"><span>Running</span><b> 4</b></div>`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := newTestClient(t, server, &fakeClock{})

	count, err := client.RunningCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestRunningCountUnavailable(t *testing.T) {
	t.Parallel()

	summaryCalls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/api/pricing/user-taxes", func(w http.ResponseWriter, _ *http.Request) {
		summaryCalls++
		if summaryCalls == 1 {
			_, _ = w.Write([]byte(`{}`))
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	})
	mux.HandleFunc("/user/dashboard", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body>nothing here</body></html>`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := newTestClient(t, server, &fakeClock{})

	_, err := client.RunningCount(context.Background())
	require.Error(t, err)
}

func TestBalancesReturnsRawMapping(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/pricing/user-taxes", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"balances":{"running":2,"credits":"150.50"}}}`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := newTestClient(t, server, &fakeClock{})

	balances, err := client.Balances(context.Background())
	require.NoError(t, err)
	assert.Equal(t, float64(2), balances["running"])
	assert.Equal(t, "150.50", balances["credits"])
}
