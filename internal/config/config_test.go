package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultHTTPAddr, cfg.Server.Addr)
	assert.Equal(t, DefaultMediaRoot, cfg.Media.Root)
	assert.Equal(t, DefaultTmpCleanup, cfg.Media.TmpCleanupSchedule)
	assert.Equal(t, DefaultTmpTTL, cfg.Media.TmpTTL)
	assert.Equal(t, map[string]string{
		"customer":         ModeContent,
		"customer_address": ModeMove,
	}, cfg.EntityModes())
}

func TestLoadOverridesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[log]
level = "debug"
format = "json"

[media]
root = "/srv/media"
max_file_size = 1024
tmp_cleanup_schedule = ""

[[entities]]
code = "customer_address"
mode = "MOVE"

[[entities]]
code = "vendor"
mode = "bogus"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "/srv/media", cfg.Media.Root)
	assert.Equal(t, int64(1024), cfg.Media.MaxFileSize)
	assert.Equal(t, DefaultMaxImageWidth, cfg.Media.MaxImageWidth)
	assert.Empty(t, cfg.Media.TmpCleanupSchedule)
	assert.Equal(t, DefaultTmpTTL, cfg.Media.TmpTTL)
	assert.Equal(t, map[string]string{"customer_address": ModeMove}, cfg.EntityModes())
}

func TestLoadInvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[media\nroot ="), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}
