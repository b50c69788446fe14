package cmd

import (
	"context"
	"log/slog"

	"github.com/pymetra/registration/internal/app"
	"github.com/pymetra/registration/internal/config"
	"github.com/pymetra/registration/internal/logger"
)

// withApp loads the configuration, wires the application and hands it to fn
func withApp(ctx context.Context, fn func(ctx context.Context, a *app.App) error) error {
	cfg := load()
	defer logger.Flush()

	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			slog.Error("failed to close app", "error", err)
		}
	}()

	return fn(ctx, a)
}

func load() *config.Config {
	cfg := config.Load()
	logger.Init(logger.Options{
		Service:     cfg.AppName,
		Environment: cfg.AppEnv,
		Development: cfg.IsDevelopment(),
		SentryDSN:   cfg.SentryDSN,
	})
	return cfg
}
