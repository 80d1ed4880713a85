package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/crossfeed/internal/domain"
	"github.com/alanyoungcy/crossfeed/internal/feed"
)

func testServer(t *testing.T) *Server {
	t.Helper()

	hl := domain.NewOrderBook(domain.ExchangeHyperliquid, "BTC")
	hl.Connected = true
	hl.Bids = []domain.Level{{Price: "100", Size: "2"}}
	hl.Asks = []domain.Level{{Price: "101", Size: "1"}}

	pdx := domain.NewOrderBook(domain.ExchangeParadex, "BTC-USD-PERP")
	pdx.Bids = []domain.Level{{Price: "100.5", Size: "3"}}
	pdx.Asks = []domain.Level{{Price: "101.5", Size: "4"}}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(Config{Port: 0, MaxDepth: 10}, feed.NewLatest(hl), feed.NewLatest(pdx), logger)
}

func do(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := do(t, testServer(t), "/api/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status string          `json:"status"`
		Feeds  map[string]bool `json:"feeds"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.True(t, body.Feeds["hyperliquid"])
	assert.False(t, body.Feeds["paradex"])
}

func TestBooks(t *testing.T) {
	rec := do(t, testServer(t), "/api/books")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]domain.OrderBook
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 2)
	assert.Equal(t, "BTC", body["hyperliquid"].Symbol)
	assert.Equal(t, "BTC-USD-PERP", body["paradex"].Symbol)
}

func TestMerged(t *testing.T) {
	rec := do(t, testServer(t), "/api/merged")
	require.Equal(t, http.StatusOK, rec.Code)

	var body domain.MergedBook
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Bids, 2)
	// best bid across both venues is Paradex's 100.5
	assert.Equal(t, 100.5, body.Bids[0].Price)
	assert.Equal(t, domain.ExchangeParadex, body.Bids[0].Exchange)
	require.NotNil(t, body.Signals.CrossSpread)
	assert.InDelta(t, 0.5, *body.Signals.CrossSpread, 1e-9)
}

func TestMergedDepthParam(t *testing.T) {
	s := testServer(t)

	rec := do(t, s, "/api/merged?depth=1")
	require.Equal(t, http.StatusOK, rec.Code)
	var body domain.MergedBook
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Bids, 1)
	assert.Len(t, body.Asks, 1)

	for _, bad := range []string{"0", "11", "abc"} {
		rec := do(t, s, "/api/merged?depth="+bad)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "depth=%s", bad)
	}
}
