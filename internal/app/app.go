// Package app provides the top-level application lifecycle: it validates the
// configured symbols against both venues, starts the two feed goroutines, the
// consumer loop, and the optional Redis mirror and HTTP status API, and blocks
// until the context is cancelled.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	rediscache "github.com/alanyoungcy/crossfeed/internal/cache/redis"
	"github.com/alanyoungcy/crossfeed/internal/config"
	"github.com/alanyoungcy/crossfeed/internal/domain"
	"github.com/alanyoungcy/crossfeed/internal/feed"
	"github.com/alanyoungcy/crossfeed/internal/merge"
	"github.com/alanyoungcy/crossfeed/internal/platform/hyperliquid"
	"github.com/alanyoungcy/crossfeed/internal/platform/paradex"
	"github.com/alanyoungcy/crossfeed/internal/render"
	"github.com/alanyoungcy/crossfeed/internal/server"
)

// App is the root application object. It owns the configuration, logger, and a
// list of cleanup functions that are called in reverse order on shutdown.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	closers []func()
}

// New creates a new App from the given configuration and logger.
func New(cfg *config.Config, logger *slog.Logger) *App {
	return &App{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "app")),
	}
}

// Run is the main entry point. It validates the symbols, wires the feeds,
// consumer, and optional sinks, and blocks until the context is cancelled or a
// component fails.
func (a *App) Run(ctx context.Context) error {
	// Attach the run id to the logger itself so every line from the feeds,
	// consumer, and server carries it.
	runID := uuid.NewString()
	a.logger = a.logger.With(slog.String("run_id", runID))

	a.logger.InfoContext(ctx, "starting application",
		slog.String("hyperliquid_symbol", a.cfg.Hyperliquid.Symbol),
		slog.String("paradex_symbol", a.cfg.Paradex.Symbol),
	)

	if err := a.validateSymbols(ctx); err != nil {
		return err
	}

	hlCell := feed.NewLatest(domain.NewOrderBook(domain.ExchangeHyperliquid, a.cfg.Hyperliquid.Symbol))
	pdxCell := feed.NewLatest(domain.NewOrderBook(domain.ExchangeParadex, a.cfg.Paradex.Symbol))

	var bookCache *rediscache.BookCache
	if a.cfg.Redis.Addr != "" {
		client, err := rediscache.New(ctx, rediscache.ClientConfig{
			Addr:     a.cfg.Redis.Addr,
			Password: a.cfg.Redis.Password,
			DB:       a.cfg.Redis.DB,
		})
		if err != nil {
			return fmt.Errorf("app: connect redis: %w", err)
		}
		a.closers = append(a.closers, func() { _ = client.Close() })
		bookCache = rediscache.NewBookCache(client, time.Duration(a.cfg.Redis.TTLSeconds)*time.Second)
		a.logger.InfoContext(ctx, "redis mirror enabled", slog.String("addr", a.cfg.Redis.Addr))
	}

	g, ctx := errgroup.WithContext(ctx)

	hlFeed := feed.NewHyperliquidFeed(a.cfg.Hyperliquid.WSURL, a.cfg.Hyperliquid.Symbol, hlCell, a.logger)
	g.Go(func() error {
		return hlFeed.Run(ctx)
	})

	pdxFeed := feed.NewParadexFeed(a.cfg.Paradex.WSURL, a.cfg.Paradex.Symbol, pdxCell, a.logger)
	g.Go(func() error {
		return pdxFeed.Run(ctx)
	})

	g.Go(func() error {
		return a.runConsumer(ctx, hlCell, pdxCell, bookCache)
	})

	if a.cfg.Server.Port > 0 {
		srv := server.New(server.Config{
			Port:     a.cfg.Server.Port,
			MaxDepth: a.cfg.Display.Depth,
		}, hlCell, pdxCell, a.logger)

		g.Go(func() error {
			return srv.Start()
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	return g.Wait()
}

// validateSymbols checks the configured symbols against both venues' REST
// APIs before opening any stream. An unknown symbol is fatal.
func (a *App) validateSymbols(ctx context.Context) error {
	infoClient := hyperliquid.NewInfoClient(a.cfg.Hyperliquid.InfoURL)
	if err := infoClient.ValidateSymbol(ctx, a.cfg.Hyperliquid.Symbol); err != nil {
		return fmt.Errorf("app: validate hyperliquid symbol: %w", err)
	}

	marketsClient := paradex.NewMarketsClient(a.cfg.Paradex.RestURL)
	if err := marketsClient.ValidateSymbol(ctx, a.cfg.Paradex.Symbol); err != nil {
		return fmt.Errorf("app: validate paradex symbol: %w", err)
	}

	a.logger.InfoContext(ctx, "symbols validated")
	return nil
}

// runConsumer samples both cells on a fixed interval, merges them, prints the
// board, and mirrors the state to Redis when configured. A slow tick never
// blocks the feeds; it only means a coalesced view.
func (a *App) runConsumer(ctx context.Context, hlCell, pdxCell *feed.Latest, bookCache *rediscache.BookCache) error {
	ticker := time.NewTicker(time.Duration(a.cfg.Display.TickMs) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		hl := hlCell.Load()
		pdx := pdxCell.Load()
		merged := merge.Build(&hl, &pdx, a.cfg.Display.Depth)

		fmt.Fprintln(os.Stdout, render.Board(hl, pdx, merged, a.cfg.Display.Depth))

		if bookCache != nil {
			if err := bookCache.SetBook(ctx, hl); err != nil {
				a.logger.WarnContext(ctx, "redis mirror failed",
					slog.String("exchange", string(hl.Exchange)),
					slog.String("error", err.Error()),
				)
			}
			if err := bookCache.SetBook(ctx, pdx); err != nil {
				a.logger.WarnContext(ctx, "redis mirror failed",
					slog.String("exchange", string(pdx.Exchange)),
					slog.String("error", err.Error()),
				)
			}
			if err := bookCache.SetSignals(ctx, merged.Signals); err != nil {
				a.logger.WarnContext(ctx, "redis signals mirror failed",
					slog.String("error", err.Error()),
				)
			}
		}
	}
}

// Close tears down all resources in reverse registration order. It is safe to
// call multiple times; subsequent calls are no-ops.
func (a *App) Close() {
	a.logger.Info("shutting down application")
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
