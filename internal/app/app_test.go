package app

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/crossfeed/internal/config"
)

// syncBuffer serializes writes so concurrent goroutines can share one log
// sink.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := strings.TrimSpace(b.buf.String())
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func validationServers(t *testing.T) (infoURL, marketsURL string) {
	t.Helper()
	infoSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"universe":[{"name":"BTC"}]}`))
	}))
	t.Cleanup(infoSrv.Close)
	marketsSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[{"symbol":"BTC-USD-PERP"}]}`))
	}))
	t.Cleanup(marketsSrv.Close)
	return infoSrv.URL, marketsSrv.URL
}

func TestRunPropagatesRunIDToComponentLoggers(t *testing.T) {
	infoURL, marketsURL := validationServers(t)

	cfg := config.Defaults()
	cfg.Hyperliquid.InfoURL = infoURL
	cfg.Paradex.RestURL = marketsURL
	// Unroutable feed endpoints so every dial fails immediately and the feeds
	// log through their component loggers before the deadline hits.
	cfg.Hyperliquid.WSURL = "ws://127.0.0.1:1"
	cfg.Paradex.WSURL = "ws://127.0.0.1:1"
	cfg.Display.TickMs = 2000
	require.NoError(t, cfg.Validate())

	out := &syncBuffer{}
	logger := slog.New(slog.NewJSONHandler(out, nil))

	application := New(&cfg, logger)
	defer application.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	err := application.Run(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	var runID string
	feedLines := 0
	for _, line := range out.lines() {
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &rec), "log line: %s", line)

		if rec["msg"] == "starting application" {
			id, _ := rec["run_id"].(string)
			runID = id
		}
		if rec["component"] == "hyperliquid_feed" || rec["component"] == "paradex_feed" {
			feedLines++
			assert.Equal(t, runID, rec["run_id"], "feed line missing the run id: %s", line)
		}
	}

	require.NotEmpty(t, runID, "startup line should carry a run id")
	assert.Greater(t, feedLines, 0, "expected at least one feed log line")
}

func TestRunFailsFastOnUnknownSymbol(t *testing.T) {
	infoSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"universe":[{"name":"ETH"}]}`))
	}))
	t.Cleanup(infoSrv.Close)
	_, marketsURL := validationServers(t)

	cfg := config.Defaults()
	cfg.Hyperliquid.InfoURL = infoSrv.URL
	cfg.Paradex.RestURL = marketsURL
	require.NoError(t, cfg.Validate())

	application := New(&cfg, slog.New(slog.NewJSONHandler(&syncBuffer{}, nil)))
	defer application.Close()

	err := application.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validate hyperliquid symbol")
}
