package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"learning-buddy/internal/app"
	"learning-buddy/internal/config"
	"learning-buddy/internal/logger"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	lg := logger.New(cfg.Log, cfg.App.AppName)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bootstrap, cleanup, err := app.Bootstrap(ctx, cfg, lg)
	if err != nil {
		lg.Fatal().Err(err).Msg("failed to bootstrap app")
	}
	defer func() {
		if err := cleanup(); err != nil {
			lg.Error().Err(err).Msg("cleanup error")
		}
	}()

	addr, err := app.ListenAddr(cfg.App.HTTPPort)
	if err != nil {
		lg.Fatal().Err(err).Msg("invalid HTTP port")
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- bootstrap.Fiber.Listen(addr)
	}()
	lg.Info().Str("addr", addr).Str("env", cfg.App.Environment).Msg("server listening")

	select {
	case err := <-errCh:
		if err != nil {
			lg.Error().Err(err).Msg("server error")
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := bootstrap.Fiber.ShutdownWithContext(shutdownCtx); err != nil {
			lg.Error().Err(err).Msg("shutdown error")
		}
		lg.Info().Msg("server stopped")
	}
}
