package feed

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/crossfeed/internal/domain"
	"github.com/alanyoungcy/crossfeed/internal/platform/paradex"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHyperliquidHandleFrameAppliesBook(t *testing.T) {
	cell := NewLatest(domain.NewOrderBook(domain.ExchangeHyperliquid, "BTC"))
	f := NewHyperliquidFeed("ws://unused", "BTC", cell, discardLogger())

	f.handleFrame([]byte(`{
		"channel": "l2Book",
		"data": {
			"coin": "BTC",
			"levels": [
				[{"px":"64000","sz":"1","n":2}],
				[{"px":"64001","sz":"2","n":1}]
			],
			"time": 1700000000001
		}
	}`))

	book := cell.Load()
	assert.Equal(t, int64(1), book.MessageCount)
	assert.Equal(t, int64(1700000000001), book.LastUpdateMs)
	require.Len(t, book.Bids, 1)
	assert.Equal(t, "64000", book.Bids[0].Price)
	require.Len(t, book.Asks, 1)
	assert.Equal(t, "64001", book.Asks[0].Price)
}

func TestHyperliquidLatestFrameWinsEvenIfOlderTimestamp(t *testing.T) {
	cell := NewLatest(domain.NewOrderBook(domain.ExchangeHyperliquid, "BTC"))
	f := NewHyperliquidFeed("ws://unused", "BTC", cell, discardLogger())

	f.handleFrame([]byte(`{"channel":"l2Book","data":{"coin":"BTC","levels":[[{"px":"100","sz":"1","n":1}],[]],"time":2000}}`))
	f.handleFrame([]byte(`{"channel":"l2Book","data":{"coin":"BTC","levels":[[{"px":"99","sz":"1","n":1}],[]],"time":1000}}`))

	book := cell.Load()
	assert.Equal(t, int64(1000), book.LastUpdateMs)
	assert.Equal(t, "99", book.Bids[0].Price)
}

func TestHyperliquidMalformedFrameLeavesBookUntouched(t *testing.T) {
	cell := NewLatest(domain.NewOrderBook(domain.ExchangeHyperliquid, "BTC"))
	f := NewHyperliquidFeed("ws://unused", "BTC", cell, discardLogger())

	f.handleFrame([]byte(`{"channel":"l2Book","data":{"coin":"BTC","levels":[[{"px":"1","sz":"1","n":1}],[]],"time":1}}`))
	before := cell.Load()

	f.handleFrame([]byte(`this is not json`))
	f.handleFrame([]byte(`{"channel":"l2Book","data":{"levels":"nope"}}`))
	f.handleFrame([]byte(`{"channel":"somethingElse","data":{}}`))

	after := cell.Load()
	assert.Equal(t, before.MessageCount, after.MessageCount)
	assert.Equal(t, before.Bids, after.Bids)
	assert.Equal(t, before.Asks, after.Asks)
}

func TestHyperliquidPongAndAckDoNotCount(t *testing.T) {
	cell := NewLatest(domain.NewOrderBook(domain.ExchangeHyperliquid, "BTC"))
	f := NewHyperliquidFeed("ws://unused", "BTC", cell, discardLogger())

	f.handleFrame([]byte(`{"channel":"pong"}`))
	f.handleFrame([]byte(`{"channel":"subscriptionResponse","data":{}}`))

	assert.Zero(t, cell.Load().MessageCount)
}

func TestParadexHandleFrameSnapshotThenDelta(t *testing.T) {
	cell := NewLatest(domain.NewOrderBook(domain.ExchangeParadex, "BTC-USD-PERP"))
	f := NewParadexFeed("ws://unused", "BTC-USD-PERP", cell, discardLogger())
	local := paradex.NewLocalBook()

	f.handleFrame([]byte(`{
		"jsonrpc":"2.0","method":"subscription",
		"params":{"channel":"order_book.BTC-USD-PERP.snapshot@15@100ms","data":{
			"inserts":[
				{"price":"64000","side":"BUY","size":"1"},
				{"price":"64010","side":"SELL","size":"2"}
			],
			"deletes":[],"updates":[],
			"last_updated_at":1700000000000000,
			"market":"BTC-USD-PERP","update_type":"s"
		}}
	}`), local)

	book := cell.Load()
	assert.Equal(t, int64(1), book.MessageCount)
	require.Len(t, book.Bids, 1)
	require.Len(t, book.Asks, 1)

	f.handleFrame([]byte(`{
		"jsonrpc":"2.0","method":"subscription",
		"params":{"channel":"order_book.BTC-USD-PERP.snapshot@15@100ms","data":{
			"inserts":[],"updates":[],
			"deletes":[{"price":"64000","side":"BUY","size":"0"}],
			"last_updated_at":1700000001000000,
			"market":"BTC-USD-PERP","update_type":"d"
		}}
	}`), local)

	book = cell.Load()
	assert.Equal(t, int64(2), book.MessageCount)
	assert.Empty(t, book.Bids)
	require.Len(t, book.Asks, 1)
	assert.Equal(t, int64(1700000001000), book.LastUpdateMs)
}

func TestParadexAckErrorAndMalformedFramesIgnored(t *testing.T) {
	cell := NewLatest(domain.NewOrderBook(domain.ExchangeParadex, "BTC-USD-PERP"))
	f := NewParadexFeed("ws://unused", "BTC-USD-PERP", cell, discardLogger())
	local := paradex.NewLocalBook()

	f.handleFrame([]byte(`{"jsonrpc":"2.0","result":{},"id":1}`), local)
	f.handleFrame([]byte(`{"jsonrpc":"2.0","error":{"code":-32600,"message":"bad"},"id":2}`), local)
	f.handleFrame([]byte(`garbage`), local)
	f.handleFrame([]byte(`{"jsonrpc":"2.0","method":"subscription","params":{"channel":"c"}}`), local)

	book := cell.Load()
	assert.Zero(t, book.MessageCount)
	assert.Empty(t, book.Bids)
	assert.Empty(t, book.Asks)
}

func TestParadexUnknownUpdateTypeDoesNotPublish(t *testing.T) {
	cell := NewLatest(domain.NewOrderBook(domain.ExchangeParadex, "BTC-USD-PERP"))
	f := NewParadexFeed("ws://unused", "BTC-USD-PERP", cell, discardLogger())
	local := paradex.NewLocalBook()

	f.handleFrame([]byte(`{
		"jsonrpc":"2.0","method":"subscription",
		"params":{"channel":"c","data":{
			"inserts":[{"price":"1","side":"BUY","size":"1"}],
			"deletes":[],"updates":[],
			"last_updated_at":1,"market":"m","update_type":"z"
		}}
	}`), local)

	assert.Zero(t, cell.Load().MessageCount)
}
