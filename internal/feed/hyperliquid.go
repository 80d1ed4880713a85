package feed

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/alanyoungcy/crossfeed/internal/platform/hyperliquid"
)

const (
	// reconnectDelay is the fixed wait between connection attempts. Feeds
	// retry forever with no backoff growth and no attempt cap.
	reconnectDelay = 3 * time.Second

	// heartbeatInterval is how often the keep-alive frame is sent while a
	// connection is up.
	heartbeatInterval = 20 * time.Second
)

// HyperliquidFeed keeps one logical connection to the Hyperliquid l2Book
// channel alive and publishes every applied update to its Latest cell. The
// venue re-sends the full top-of-book on each message, so reconciliation is
// stateless: each frame replaces the book's sides outright.
type HyperliquidFeed struct {
	wsURL  string
	symbol string
	latest *Latest
	logger *slog.Logger
}

// NewHyperliquidFeed creates the feed. latest must be seeded with the venue's
// empty initial book.
func NewHyperliquidFeed(wsURL, symbol string, latest *Latest, logger *slog.Logger) *HyperliquidFeed {
	return &HyperliquidFeed{
		wsURL:  wsURL,
		symbol: symbol,
		latest: latest,
		logger: logger.With(slog.String("component", "hyperliquid_feed")),
	}
}

// Run connects, subscribes, and reads until the connection fails, then
// reconnects after a fixed delay, forever. It returns only when ctx is
// cancelled. Book content survives a disconnect unchanged (stale but
// present); only the connected flag drops.
func (f *HyperliquidFeed) Run(ctx context.Context) error {
	for {
		if err := f.runConnection(ctx); err != nil {
			f.logger.Warn("connection ended, reconnecting",
				slog.String("error", err.Error()),
			)
		}

		book := f.latest.Load()
		book.Connected = false
		f.latest.Store(book)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(reconnectDelay):
		}
	}
}

// runConnection performs one connection attempt: dial, subscribe, heartbeat,
// read loop. It returns when the transport fails, the server closes, or ctx
// is cancelled.
func (f *HyperliquidFeed) runConnection(ctx context.Context) error {
	sess, err := hyperliquid.Dial(ctx, f.wsURL)
	if err != nil {
		return err
	}

	// done stops the heartbeat and the ctx watcher when this attempt ends,
	// so neither outlives the transport it writes to.
	done := make(chan struct{})
	defer close(done)
	defer sess.Close()

	go func() {
		select {
		case <-ctx.Done():
			sess.Close()
		case <-done:
		}
	}()

	book := f.latest.Load()
	book.Connected = true
	f.latest.Store(book)
	f.logger.Info("connected", slog.String("symbol", f.symbol))

	if err := sess.Subscribe(f.symbol); err != nil {
		return err
	}
	f.logger.Info("subscribed to l2Book", slog.String("symbol", f.symbol))

	go f.heartbeat(sess, done)

	for {
		raw, err := sess.ReadFrame()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		f.handleFrame(raw)
	}
}

// heartbeat sends the keep-alive frame on a fixed interval. A send failure
// terminates only this goroutine; recovery is driven by the read loop
// observing the transport failure.
func (f *HyperliquidFeed) heartbeat(sess *hyperliquid.Session, done <-chan struct{}) {
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := sess.Ping(); err != nil {
				f.logger.Warn("heartbeat send failed", slog.String("error", err.Error()))
				return
			}
			f.logger.Debug("sent ping")
		}
	}
}

// handleFrame dispatches one inbound text frame. Malformed or unrecognized
// frames are logged and dropped; they never alter the published book.
func (f *HyperliquidFeed) handleFrame(raw []byte) {
	if hyperliquid.IsPong(raw) {
		f.logger.Debug("received pong")
		return
	}

	var env hyperliquid.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		f.logger.Warn("dropping malformed frame", slog.String("error", err.Error()))
		return
	}

	switch env.Channel {
	case "subscriptionResponse":
		f.logger.Debug("subscription confirmed")
	case "l2Book":
		upd, err := hyperliquid.ParseBook(env.Data)
		if err != nil {
			f.logger.Warn("dropping unparsable l2Book frame", slog.String("error", err.Error()))
			return
		}
		book := f.latest.Load()
		book.Bids = upd.Bids
		book.Asks = upd.Asks
		book.LastUpdateMs = upd.TimeMs
		book.MessageCount++
		f.latest.Store(book)
	default:
		f.logger.Debug("unhandled channel", slog.String("channel", env.Channel))
	}
}
