package feed

import (
	"context"
	"log/slog"
	"time"

	"github.com/alanyoungcy/crossfeed/internal/platform/paradex"
)

// ParadexFeed keeps one logical connection to the Paradex order-book channel
// alive and publishes every applied update to its Latest cell. The venue
// sends snapshot+delta messages, so the feed carries a LocalBook: private
// price-keyed state rebuilt from nothing on every connection attempt. A
// fresh connection's book is only trustworthy after its first snapshot.
type ParadexFeed struct {
	wsURL  string
	market string
	latest *Latest
	logger *slog.Logger
}

// NewParadexFeed creates the feed. latest must be seeded with the venue's
// empty initial book.
func NewParadexFeed(wsURL, market string, latest *Latest, logger *slog.Logger) *ParadexFeed {
	return &ParadexFeed{
		wsURL:  wsURL,
		market: market,
		latest: latest,
		logger: logger.With(slog.String("component", "paradex_feed")),
	}
}

// Run connects, subscribes, and reads until the connection fails, then
// reconnects after a fixed delay, forever. It returns only when ctx is
// cancelled. Book content survives a disconnect unchanged (stale but
// present); only the connected flag drops.
func (f *ParadexFeed) Run(ctx context.Context) error {
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

func (f *ParadexFeed) runConnection(ctx context.Context) error {
	sess, err := paradex.Dial(ctx, f.wsURL)
	if err != nil {
		return err
	}

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
	f.logger.Info("connected", slog.String("market", f.market))

	if err := sess.Subscribe(f.market); err != nil {
		return err
	}
	f.logger.Info("subscribed to order_book", slog.String("market", f.market))

	go f.heartbeat(sess, done)

	// Reconciliation state is scoped to this attempt and never reused
	// across reconnects.
	local := paradex.NewLocalBook()

	for {
		raw, err := sess.ReadFrame()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		f.handleFrame(raw, local)
	}
}

func (f *ParadexFeed) heartbeat(sess *paradex.Session, done <-chan struct{}) {
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := sess.Heartbeat(); err != nil {
				f.logger.Warn("heartbeat send failed", slog.String("error", err.Error()))
				return
			}
			f.logger.Debug("sent heartbeat")
		}
	}
}

// handleFrame dispatches one inbound JSON-RPC frame against the current
// connection's LocalBook. Malformed or unrecognized frames are logged and
// dropped; they never alter reconciliation state or the published book.
func (f *ParadexFeed) handleFrame(raw []byte, local *paradex.LocalBook) {
	frame, err := paradex.ParseFrame(raw)
	if err != nil {
		f.logger.Warn("dropping malformed frame", slog.String("error", err.Error()))
		return
	}

	if len(frame.Error) > 0 {
		f.logger.Warn("rpc error", slog.String("error", string(frame.Error)))
		return
	}
	if len(frame.Result) > 0 {
		f.logger.Debug("rpc ack", slog.Any("id", frame.ID))
		return
	}
	if frame.Method != "subscription" {
		f.logger.Debug("unhandled method", slog.String("method", frame.Method))
		return
	}

	data, err := paradex.ParseBookData(frame)
	if err != nil {
		f.logger.Warn("dropping unparsable book push", slog.String("error", err.Error()))
		return
	}

	if !local.Apply(data) {
		f.logger.Debug("unknown update_type", slog.String("update_type", data.UpdateType))
		return
	}

	bids, asks := local.Levels(paradex.MaxBookDepth)
	book := f.latest.Load()
	book.Bids = bids
	book.Asks = asks
	book.LastUpdateMs = data.LastUpdatedMs()
	book.MessageCount++
	f.latest.Store(book)
}
