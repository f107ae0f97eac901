// Package config loads runtime settings for the relay and agent
// binaries from a TOML file, with environment-free defaults so both
// run with no file at all.
package config

import (
	"os"

	"github.com/pelletier/go-toml"
)

// Config holds every tunable of the relay and agent processes.
type Config struct {
	// ListenAddr is the relay's HTTP listen address.
	ListenAddr string `toml:"listen_addr"`

	// RelayURL is the websocket endpoint the agent dials, without the
	// document path segment.
	RelayURL string `toml:"relay_url"`

	// Document names the shared document; the relay keeps one hub and
	// one Redis channel per document.
	Document string `toml:"document"`

	// RedisAddr enables the cross-instance relay bridge when non-empty.
	RedisAddr string `toml:"redis_addr"`

	// UserName is the display name announced in the join message.
	UserName string `toml:"user_name"`

	// Discovery toggles zeroconf advertisement/browsing on the agent.
	Discovery bool `toml:"discovery"`

	// LogLevel is an apex/log level string (debug, info, warn, error).
	LogLevel string `toml:"log_level"`

	// UndoDepth bounds the undo stack; 0 means the default.
	UndoDepth int `toml:"undo_depth"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		ListenAddr: ":8081",
		RelayURL:   "ws://localhost:8081/ws",
		Document:   "default",
		UserName:   "anonymous",
		LogLevel:   "info",
	}
}

// Load reads path over the defaults. A missing file is not an error;
// the defaults are returned as-is.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
