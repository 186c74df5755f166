// Package boot provides runtime configuration derived from the loaded config.
package boot

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/memohai/formmedia/internal/config"
	"github.com/memohai/formmedia/internal/media"
)

// RuntimeConfig holds parsed runtime settings (JWT, server address, media root).
// Values may be overridden by environment variables (HTTP_ADDR, MEDIA_ROOT, JWT_SECRET).
type RuntimeConfig struct {
	JwtSecret          string
	JwtExpiresIn       time.Duration
	ServerAddr         string
	MediaRoot          string
	TmpCleanupSchedule string
	TmpTTL             time.Duration
}

// ProvideRuntimeConfig builds RuntimeConfig from the given config and applies env overrides.
func ProvideRuntimeConfig(cfg config.Config) (*RuntimeConfig, error) {
	jwtExpiresIn, err := time.ParseDuration(cfg.Auth.JWTExpiresIn)
	if err != nil {
		return nil, fmt.Errorf("invalid jwt expires in: %w", err)
	}

	tmpTTL, err := time.ParseDuration(cfg.Media.TmpTTL)
	if err != nil {
		return nil, fmt.Errorf("invalid tmp ttl: %w", err)
	}

	ret := &RuntimeConfig{
		JwtSecret:          cfg.Auth.JWTSecret,
		JwtExpiresIn:       jwtExpiresIn,
		ServerAddr:         cfg.Server.Addr,
		MediaRoot:          cfg.Media.Root,
		TmpCleanupSchedule: cfg.Media.TmpCleanupSchedule,
		TmpTTL:             tmpTTL,
	}

	if value := os.Getenv("HTTP_ADDR"); value != "" {
		ret.ServerAddr = value
	}
	if value := os.Getenv("MEDIA_ROOT"); value != "" {
		ret.MediaRoot = value
	}
	if value := os.Getenv("JWT_SECRET"); value != "" {
		ret.JwtSecret = value
	}

	if strings.TrimSpace(ret.JwtSecret) == "" {
		return nil, errors.New("jwt secret is required")
	}
	if strings.TrimSpace(ret.MediaRoot) == "" {
		return nil, errors.New("media root is required")
	}
	return ret, nil
}

// MediaOptions converts the media and entity sections into media.Options.
func MediaOptions(cfg config.Config) media.Options {
	modes := make(map[string]media.Mode)
	for code, mode := range cfg.EntityModes() {
		modes[code] = media.Mode(mode)
	}
	return media.Options{
		Limits: media.Limits{
			MaxFileSize:       cfg.Media.MaxFileSize,
			MaxImageWidth:     cfg.Media.MaxImageWidth,
			MaxImageHeight:    cfg.Media.MaxImageHeight,
			AllowedExtensions: cfg.Media.AllowedExtensions,
		},
		EntityModes: modes,
	}
}
