package modules

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/memohai/formmedia/internal/boot"
	"github.com/memohai/formmedia/internal/config"
	"github.com/memohai/formmedia/internal/handlers"
	"github.com/memohai/formmedia/internal/media"
	"github.com/memohai/formmedia/internal/schedule"
	"github.com/memohai/formmedia/internal/server"
	"github.com/memohai/formmedia/internal/storage"
)

var MediaModule = fx.Module(
	"media",
	fx.Provide(
		provideMediaService,
		asServerHandler(provideMediaHandler),
		asServerHandler(handlers.NewPingHandler),
		asServerHandler(provideSwaggerHandler),
		provideJanitor,
	),
	fx.Invoke(startJanitor),
)

func asServerHandler(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(server.Handler)),
		fx.ResultTags(`group:"server_handlers"`),
	)
}

func provideMediaService(log *slog.Logger, dir storage.Directory, cfg config.Config) *media.Service {
	return media.NewService(log, dir, boot.MediaOptions(cfg))
}

func provideMediaHandler(log *slog.Logger, service *media.Service, cfg config.Config) *handlers.MediaHandler {
	return handlers.NewMediaHandler(log, service, cfg.RateLimit)
}

func provideSwaggerHandler(log *slog.Logger) *handlers.SwaggerHandler {
	return handlers.NewSwaggerHandler(log, handlers.DefaultSwaggerSpecPath)
}

func provideJanitor(log *slog.Logger, service *media.Service, rc *boot.RuntimeConfig) (*schedule.Service, error) {
	return schedule.NewService(log, service, rc.TmpCleanupSchedule, rc.TmpTTL)
}

func startJanitor(lc fx.Lifecycle, janitor *schedule.Service) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			return janitor.Start()
		},
		OnStop: func(ctx context.Context) error {
			return janitor.Stop(ctx)
		},
	})
}
