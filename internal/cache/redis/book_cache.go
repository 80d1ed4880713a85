package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alanyoungcy/crossfeed/internal/domain"
)

// BookCache mirrors a venue's latest normalized book into Redis sorted sets
// and hashes. Each write replaces the previous state wholesale, matching the
// latest-value-wins semantics of the in-process cell.
//
// Key schema:
//
//	book:{exchange}:bids     - sorted set of bid prices (score = price)
//	book:{exchange}:asks     - sorted set of ask prices (score = price)
//	book:{exchange}:bid:size - hash mapping price -> size for bids
//	book:{exchange}:ask:size - hash mapping price -> size for asks
//	book:{exchange}:bbo      - hash with fields "bid" and "ask"
//	book:{exchange}:meta     - hash with "symbol", "ts_ms", "connected",
//	                           "message_count"
//	signals:cross            - hash of the latest merged signals
type BookCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewBookCache creates a BookCache backed by the given Client. Keys expire
// after ttl so stale state disappears if the process dies; ttl 0 disables
// expiry.
func NewBookCache(c *Client, ttl time.Duration) *BookCache {
	return &BookCache{rdb: c.Underlying(), ttl: ttl}
}

func bookBidsKey(ex domain.Exchange) string    { return "book:" + string(ex) + ":bids" }
func bookAsksKey(ex domain.Exchange) string    { return "book:" + string(ex) + ":asks" }
func bookBidSizeKey(ex domain.Exchange) string { return "book:" + string(ex) + ":bid:size" }
func bookAskSizeKey(ex domain.Exchange) string { return "book:" + string(ex) + ":ask:size" }
func bookBBOKey(ex domain.Exchange) string     { return "book:" + string(ex) + ":bbo" }
func bookMetaKey(ex domain.Exchange) string    { return "book:" + string(ex) + ":meta" }

const signalsKey = "signals:cross"

// SetBook atomically replaces the mirrored book for the book's venue.
func (bc *BookCache) SetBook(ctx context.Context, book domain.OrderBook) error {
	ex := book.Exchange
	keys := []string{
		bookBidsKey(ex), bookAsksKey(ex),
		bookBidSizeKey(ex), bookAskSizeKey(ex),
		bookBBOKey(ex), bookMetaKey(ex),
	}

	pipe := bc.rdb.TxPipeline()
	pipe.Del(ctx, keys...)

	for _, lvl := range book.Bids {
		pipe.ZAdd(ctx, bookBidsKey(ex), redis.Z{Score: lvl.PriceFloat(), Member: lvl.Price})
		pipe.HSet(ctx, bookBidSizeKey(ex), lvl.Price, lvl.Size)
	}
	for _, lvl := range book.Asks {
		pipe.ZAdd(ctx, bookAsksKey(ex), redis.Z{Score: lvl.PriceFloat(), Member: lvl.Price})
		pipe.HSet(ctx, bookAskSizeKey(ex), lvl.Price, lvl.Size)
	}

	if bid, ok := book.BestBid(); ok {
		pipe.HSet(ctx, bookBBOKey(ex), "bid", strconv.FormatFloat(bid, 'f', -1, 64))
	}
	if ask, ok := book.BestAsk(); ok {
		pipe.HSet(ctx, bookBBOKey(ex), "ask", strconv.FormatFloat(ask, 'f', -1, 64))
	}

	pipe.HSet(ctx, bookMetaKey(ex),
		"symbol", book.Symbol,
		"ts_ms", strconv.FormatInt(book.LastUpdateMs, 10),
		"connected", strconv.FormatBool(book.Connected),
		"message_count", strconv.FormatInt(book.MessageCount, 10),
	)

	if bc.ttl > 0 {
		for _, key := range keys {
			pipe.Expire(ctx, key, bc.ttl)
		}
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: set book %s: %w", ex, err)
	}
	return nil
}

// SetSignals replaces the mirrored cross-venue signals. Absent signals are
// written as empty fields so consumers can tell "no data" from zero.
func (bc *BookCache) SetSignals(ctx context.Context, sig domain.Signals) error {
	fields := map[string]string{
		"cross_spread":        formatOpt(sig.CrossSpread),
		"cross_spread_pct":    formatOpt(sig.CrossSpreadPct),
		"best_bid_exchange":   string(sig.BestBidExchange),
		"best_ask_exchange":   string(sig.BestAskExchange),
		"liquidity_imbalance": formatOpt(sig.LiquidityImbalance),
		"total_bid_usd":       strconv.FormatFloat(sig.TotalBidUSD, 'f', -1, 64),
		"total_ask_usd":       strconv.FormatFloat(sig.TotalAskUSD, 'f', -1, 64),
	}

	pipe := bc.rdb.TxPipeline()
	pipe.Del(ctx, signalsKey)
	pipe.HSet(ctx, signalsKey, fields)
	if bc.ttl > 0 {
		pipe.Expire(ctx, signalsKey, bc.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: set signals: %w", err)
	}
	return nil
}

func formatOpt(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
