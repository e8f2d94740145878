// Package config loads the engine's runtime configuration from a
// JSON file, with environment-variable overrides for secrets so keys
// never need to sit in a checked-in file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// DefaultPath is where the engine looks for its config file absent an
// override.
const DefaultPath = "config.json"

// Config is the full set of runtime knobs. Fields without a JSON tag
// are not meant to be set from the file.
type Config struct {
	AlpacaAPIKey    string `json:"alpaca_api_key"`
	AlpacaAPISecret string `json:"alpaca_api_secret"`
	FREDAPIKey      string `json:"fred_api_key,omitempty"`

	Paper bool `json:"paper"`

	OptionsStreamURL  string `json:"options_stream_url,omitempty"`
	EquitiesStreamURL string `json:"equities_stream_url,omitempty"`

	// SubscribeQuotes resolves the open question of whether the
	// options feed subscribes to quotes in addition to trades. The
	// upstream source only ever requested trades; quotes add load but
	// let analytics run off NBBO midpoint instead of waiting for a
	// print.
	SubscribeQuotes bool `json:"subscribe_quotes"`

	// ExpiryUseNYClose resolves whether the naive 16:00 expiry wall
	// clock is interpreted as US/Eastern market close (true) or UTC
	// (false, the zero-value default). The upstream feed never
	// disambiguated this.
	ExpiryUseNYClose bool `json:"expiry_use_ny_close"`

	TableCapacity int `json:"table_capacity,omitempty"`

	DisplayIntervalSeconds int `json:"display_interval_seconds,omitempty"`

	RiskFreeRateFallback float64 `json:"risk_free_rate_fallback,omitempty"`

	Symbols []string `json:"symbols"`

	valid bool
}

// Valid reports whether Load populated the minimum required fields.
func (c *Config) Valid() bool { return c.valid }

// Load reads path (DefaultPath when empty), parses its JSON, applies
// environment overrides for the two API secrets, and fills in
// defaults for anything the file left zero.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	if v := os.Getenv("APCA_API_KEY_ID"); v != "" {
		cfg.AlpacaAPIKey = v
	}
	if v := os.Getenv("APCA_API_SECRET_KEY"); v != "" {
		cfg.AlpacaAPISecret = v
	}
	if v := os.Getenv("FRED_API_KEY"); v != "" {
		cfg.FREDAPIKey = v
	}

	if cfg.AlpacaAPIKey == "" || cfg.AlpacaAPISecret == "" {
		return nil, fmt.Errorf("config: missing alpaca_api_key or alpaca_api_secret")
	}

	cfg.applyDefaults()
	cfg.valid = true
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.OptionsStreamURL == "" {
		c.OptionsStreamURL = "wss://stream.data.alpaca.markets/v1beta1/indicative"
	}
	if c.EquitiesStreamURL == "" {
		if c.Paper {
			c.EquitiesStreamURL = "wss://stream.data.alpaca.markets/v2/iex"
		} else {
			c.EquitiesStreamURL = "wss://stream.data.alpaca.markets/v2/sip"
		}
	}
	if c.TableCapacity <= 0 {
		c.TableCapacity = 100
	}
	if c.DisplayIntervalSeconds <= 0 {
		c.DisplayIntervalSeconds = 2
	}
	if c.RiskFreeRateFallback <= 0 {
		c.RiskFreeRateFallback = 0.05
	}
	// ExpiryUseNYClose defaults to false (UTC), its zero value; no fixup needed.
}

// ExpiryCloseUTC reports whether the 16:00 expiry wall clock should
// be interpreted in UTC, i.e. the negation of ExpiryUseNYClose.
func (c *Config) ExpiryCloseUTC() bool { return !c.ExpiryUseNYClose }
