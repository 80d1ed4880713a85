package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/crossfeed/internal/domain"
)

func TestLatestInitialState(t *testing.T) {
	cell := NewLatest(domain.NewOrderBook(domain.ExchangeHyperliquid, "BTC"))

	book := cell.Load()
	assert.Equal(t, domain.ExchangeHyperliquid, book.Exchange)
	assert.False(t, book.Connected)
	assert.Empty(t, book.Bids)
	assert.Zero(t, cell.Seq())
}

func TestLatestOverwriteWins(t *testing.T) {
	cell := NewLatest(domain.NewOrderBook(domain.ExchangeHyperliquid, "BTC"))

	for i := 1; i <= 5; i++ {
		b := cell.Load()
		b.MessageCount = int64(i)
		cell.Store(b)
	}

	// A reader that missed intermediate states still sees the freshest one.
	book := cell.Load()
	assert.Equal(t, int64(5), book.MessageCount)
	assert.Equal(t, uint64(5), cell.Seq())
}

func TestLatestLoadIsACopy(t *testing.T) {
	cell := NewLatest(domain.NewOrderBook(domain.ExchangeParadex, "BTC-USD-PERP"))

	b := cell.Load()
	b.Connected = true
	b.Bids = []domain.Level{{Price: "1", Size: "1"}}
	cell.Store(b)

	got := cell.Load()
	got.Connected = false
	got.Bids = nil

	// Mutating the returned value must not affect the slot.
	again := cell.Load()
	require.True(t, again.Connected)
	require.Len(t, again.Bids, 1)
}
