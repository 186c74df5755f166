package boot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memohai/formmedia/internal/config"
	"github.com/memohai/formmedia/internal/media"
)

func TestProvideRuntimeConfig(t *testing.T) {
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("MEDIA_ROOT", "")
	cfg := config.Default()
	cfg.Auth.JWTSecret = "secret"

	rc, err := ProvideRuntimeConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, rc.JwtExpiresIn)
	assert.Equal(t, config.DefaultMediaRoot, rc.MediaRoot)
	assert.Equal(t, 24*time.Hour, rc.TmpTTL)
	assert.Equal(t, config.DefaultTmpCleanup, rc.TmpCleanupSchedule)

	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("MEDIA_ROOT", "/srv/media")
	rc, err = ProvideRuntimeConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, ":9999", rc.ServerAddr)
	assert.Equal(t, "/srv/media", rc.MediaRoot)
}

func TestProvideRuntimeConfigErrors(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	cfg := config.Default()
	_, err := ProvideRuntimeConfig(cfg)
	assert.Error(t, err, "missing secret")

	cfg.Auth.JWTSecret = "secret"
	cfg.Auth.JWTExpiresIn = "soon"
	_, err = ProvideRuntimeConfig(cfg)
	assert.Error(t, err)

	cfg.Auth.JWTExpiresIn = "1h"
	cfg.Media.TmpTTL = "a while"
	_, err = ProvideRuntimeConfig(cfg)
	assert.Error(t, err)
}

func TestMediaOptions(t *testing.T) {
	opts := MediaOptions(config.Default())
	assert.Equal(t, map[string]media.Mode{
		"customer":         media.ModeContent,
		"customer_address": media.ModeMove,
	}, opts.EntityModes)
	assert.Equal(t, config.DefaultMaxFileSize, opts.Limits.MaxFileSize)
}
