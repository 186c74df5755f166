// Package config loads and exposes application configuration (TOML).
package config

import (
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// Default configuration values used when a field is missing in TOML.
const (
	DefaultConfigPath     = "config.toml"
	DefaultHTTPAddr       = ":8080"
	DefaultMediaRoot      = "data/media"
	DefaultJWTExpiresIn   = "24h"
	DefaultMaxFileSize    = int64(2 << 20)
	DefaultMaxImageWidth  = 4096
	DefaultMaxImageHeight = 4096
	DefaultRatePerSecond  = 10.0
	DefaultRateBurst      = 20
	DefaultTmpCleanup     = "@every 1h"
	DefaultTmpTTL         = "24h"
)

// Entity processing modes.
const (
	// ModeMove moves the temporary file into the entity's dispersion path.
	ModeMove = "move"
	// ModeContent wraps the temporary file into an image content payload.
	ModeContent = "content"
)

// Config is the root application configuration loaded from TOML.
type Config struct {
	Log       LogConfig       `toml:"log"`
	Server    ServerConfig    `toml:"server"`
	Auth      AuthConfig      `toml:"auth"`
	Media     MediaConfig     `toml:"media"`
	Entities  []EntityConfig  `toml:"entities"`
	RateLimit RateLimitConfig `toml:"rate_limit"`
}

// LogConfig holds logging level and format (e.g. level=info, format=text).
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// ServerConfig holds the HTTP server listen address.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// AuthConfig holds JWT secret and token expiry (e.g. 24h).
type AuthConfig struct {
	JWTSecret    string `toml:"jwt_secret"`
	JWTExpiresIn string `toml:"jwt_expires_in"`
}

// MediaConfig holds the media root and upload limits.
type MediaConfig struct {
	Root              string   `toml:"root"`
	MaxFileSize       int64    `toml:"max_file_size"`
	MaxImageWidth     int      `toml:"max_image_width"`
	MaxImageHeight    int      `toml:"max_image_height"`
	AllowedExtensions []string `toml:"allowed_extensions"`
	// TmpCleanupSchedule is a cron expression for purging stale uploads.
	// Empty disables the janitor.
	TmpCleanupSchedule string `toml:"tmp_cleanup_schedule"`
	TmpTTL             string `toml:"tmp_ttl"`
}

// EntityConfig maps an entity type code to its processing mode.
type EntityConfig struct {
	Code string `toml:"code"`
	Mode string `toml:"mode"`
}

// RateLimitConfig bounds upload requests per client.
type RateLimitConfig struct {
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
}

// EntityModes returns entity code -> mode with codes and modes normalized.
// Entries with an unknown mode are skipped.
func (c Config) EntityModes() map[string]string {
	modes := make(map[string]string, len(c.Entities))
	for _, e := range c.Entities {
		code := strings.TrimSpace(e.Code)
		mode := strings.ToLower(strings.TrimSpace(e.Mode))
		if code == "" {
			continue
		}
		if mode != ModeMove && mode != ModeContent {
			continue
		}
		modes[code] = mode
	}
	return modes
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Addr: DefaultHTTPAddr,
		},
		Auth: AuthConfig{
			JWTExpiresIn: DefaultJWTExpiresIn,
		},
		Media: MediaConfig{
			Root:               DefaultMediaRoot,
			MaxFileSize:        DefaultMaxFileSize,
			MaxImageWidth:      DefaultMaxImageWidth,
			MaxImageHeight:     DefaultMaxImageHeight,
			AllowedExtensions:  []string{"jpg", "jpeg", "gif", "png"},
			TmpCleanupSchedule: DefaultTmpCleanup,
			TmpTTL:             DefaultTmpTTL,
		},
		Entities: []EntityConfig{
			{Code: "customer", Mode: ModeContent},
			{Code: "customer_address", Mode: ModeMove},
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: DefaultRatePerSecond,
			Burst:             DefaultRateBurst,
		},
	}
}

// Load reads and parses the TOML config file at path and applies default values for missing fields.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultConfigPath
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	// Entities from the file replace the defaults instead of appending to them.
	defaults := cfg.Entities
	cfg.Entities = nil
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}
	if len(cfg.Entities) == 0 {
		cfg.Entities = defaults
	}

	return cfg, nil
}
