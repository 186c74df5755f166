// Package modules groups the fx providers of the media server.
package modules

import (
	"fmt"
	"log/slog"

	"go.uber.org/fx"

	"github.com/memohai/formmedia/internal/boot"
	"github.com/memohai/formmedia/internal/config"
	"github.com/memohai/formmedia/internal/logger"
	"github.com/memohai/formmedia/internal/storage"
	"github.com/memohai/formmedia/internal/storage/localfs"
)

// ConfigPath is the TOML file the application loads; empty means the default path.
type ConfigPath string

var InfraModule = fx.Module(
	"infra",
	fx.Provide(
		provideConfig,
		provideLogger,
		boot.ProvideRuntimeConfig,
		fx.Annotate(provideMediaDirectory, fx.As(new(storage.Directory))),
	),
)

// ---------------------------------------------------------------------------
// infrastructure providers
// ---------------------------------------------------------------------------

func provideConfig(path ConfigPath) (config.Config, error) {
	cfg, err := config.Load(string(path))
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func provideLogger(cfg config.Config) *slog.Logger {
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	return logger.L
}

func provideMediaDirectory(log *slog.Logger, rc *boot.RuntimeConfig) (*localfs.Directory, error) {
	dir, err := localfs.New(rc.MediaRoot)
	if err != nil {
		return nil, fmt.Errorf("open media root: %w", err)
	}
	log.Info("media root ready", slog.String("root", dir.Root()))
	return dir, nil
}
