// Package config defines the top-level configuration for the crossfeed
// aggregator and provides validation helpers.
package config

import (
	"fmt"
	"strings"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by CROSSFEED_* environment
// variables.
type Config struct {
	Hyperliquid HyperliquidConfig `toml:"hyperliquid"`
	Paradex     ParadexConfig     `toml:"paradex"`
	Display     DisplayConfig     `toml:"display"`
	Redis       RedisConfig       `toml:"redis"`
	Server      ServerConfig      `toml:"server"`
	LogLevel    string            `toml:"log_level"`
}

// HyperliquidConfig holds the Hyperliquid symbol and endpoints.
type HyperliquidConfig struct {
	Symbol  string `toml:"symbol"`   // e.g. "BTC"
	WSURL   string `toml:"ws_url"`
	InfoURL string `toml:"info_url"`
}

// ParadexConfig holds the Paradex market and endpoints.
type ParadexConfig struct {
	Symbol  string `toml:"symbol"` // e.g. "BTC-USD-PERP"
	WSURL   string `toml:"ws_url"`
	RestURL string `toml:"rest_url"`
}

// DisplayConfig controls the consumer loop: how many merged levels to show
// and how often to sample the feeds.
type DisplayConfig struct {
	Depth  int   `toml:"depth"`
	TickMs int64 `toml:"tick_ms"`
}

// RedisConfig holds parameters for the optional Redis mirror. An empty Addr
// disables it.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	TTLSeconds int    `toml:"ttl_seconds"`
}

// ServerConfig holds parameters for the optional HTTP status API. Port 0
// disables it.
type ServerConfig struct {
	Port int `toml:"port"`
}

// Defaults returns the built-in configuration that a TOML file and env vars
// are layered on top of.
func Defaults() Config {
	return Config{
		Hyperliquid: HyperliquidConfig{
			Symbol:  "BTC",
			WSURL:   "wss://api.hyperliquid.xyz/ws",
			InfoURL: "https://api.hyperliquid.xyz/info",
		},
		Paradex: ParadexConfig{
			Symbol:  "BTC-USD-PERP",
			WSURL:   "wss://ws.api.prod.paradex.trade/v1",
			RestURL: "https://api.prod.paradex.trade/v1",
		},
		Display: DisplayConfig{
			Depth:  10,
			TickMs: 250,
		},
		Redis: RedisConfig{
			TTLSeconds: 30,
		},
		LogLevel: "info",
	}
}

// Validate checks bounds and normalizes symbols to upper case. It returns a
// descriptive error for the first violation found; a failed validation is
// fatal at startup.
func (c *Config) Validate() error {
	c.Hyperliquid.Symbol = strings.ToUpper(strings.TrimSpace(c.Hyperliquid.Symbol))
	if c.Hyperliquid.Symbol == "" {
		return fmt.Errorf("config: hyperliquid.symbol must not be empty")
	}

	c.Paradex.Symbol = strings.ToUpper(strings.TrimSpace(c.Paradex.Symbol))
	if c.Paradex.Symbol == "" {
		return fmt.Errorf("config: paradex.symbol must not be empty")
	}

	if c.Hyperliquid.WSURL == "" || c.Hyperliquid.InfoURL == "" {
		return fmt.Errorf("config: hyperliquid endpoints must not be empty")
	}
	if c.Paradex.WSURL == "" || c.Paradex.RestURL == "" {
		return fmt.Errorf("config: paradex endpoints must not be empty")
	}

	if c.Display.Depth < 1 || c.Display.Depth > 10 {
		return fmt.Errorf("config: display.depth must be between 1 and 10, got %d", c.Display.Depth)
	}
	if c.Display.TickMs < 50 || c.Display.TickMs > 2000 {
		return fmt.Errorf("config: display.tick_ms must be between 50 and 2000, got %d", c.Display.TickMs)
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port must be between 0 and 65535, got %d", c.Server.Port)
	}

	return nil
}
