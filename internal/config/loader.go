package config

import (
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies CROSSFEED_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known CROSSFEED_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators point at other endpoints or symbols without touching the
// TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Hyperliquid ──
	setStr(&cfg.Hyperliquid.Symbol, "CROSSFEED_HYPERLIQUID_SYMBOL")
	setStr(&cfg.Hyperliquid.WSURL, "CROSSFEED_HYPERLIQUID_WS_URL")
	setStr(&cfg.Hyperliquid.InfoURL, "CROSSFEED_HYPERLIQUID_INFO_URL")

	// ── Paradex ──
	setStr(&cfg.Paradex.Symbol, "CROSSFEED_PARADEX_SYMBOL")
	setStr(&cfg.Paradex.WSURL, "CROSSFEED_PARADEX_WS_URL")
	setStr(&cfg.Paradex.RestURL, "CROSSFEED_PARADEX_REST_URL")

	// ── Display ──
	setInt(&cfg.Display.Depth, "CROSSFEED_DISPLAY_DEPTH")
	setInt64(&cfg.Display.TickMs, "CROSSFEED_DISPLAY_TICK_MS")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "CROSSFEED_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "CROSSFEED_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "CROSSFEED_REDIS_DB")
	setInt(&cfg.Redis.TTLSeconds, "CROSSFEED_REDIS_TTL_SECONDS")

	// ── Server ──
	setInt(&cfg.Server.Port, "CROSSFEED_SERVER_PORT")

	// ── Top-level ──
	setStr(&cfg.LogLevel, "CROSSFEED_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}
