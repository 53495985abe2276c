package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clubroyale/auction-league/internal/app"
	"github.com/clubroyale/auction-league/internal/config"
	"github.com/clubroyale/auction-league/internal/observability"
	"github.com/clubroyale/auction-league/internal/platform/logging"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Default().Error("load config", "error", err)
		os.Exit(1)
	}

	baseLogger := logging.NewJSON(cfg.LogLevel)

	logger, logShutdown, err := observability.InitShippedLogger(cfg, baseLogger)
	if err != nil {
		baseLogger.Error("init shipped logger", "error", err)
		os.Exit(1)
	}
	logging.SetDefault(logger)

	if err := run(cfg, logger, logShutdown); err != nil {
		logger.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *logging.Logger, logShutdown func(context.Context) error) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	uptraceShutdown, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		return err
	}

	pyroscopeStop, err := observability.InitPyroscope(cfg, logger)
	if err != nil {
		return err
	}

	pprofServer, err := observability.StartPprofServer(cfg, logger)
	if err != nil {
		return err
	}

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}

	application.StartWorkers(ctx)

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("http server starting",
			"addr", application.Server.Addr,
			"env", cfg.AppEnv,
			"version", cfg.ServiceVersion,
		)
		if err := application.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var shutdownErr error
	if err := application.Server.Shutdown(shutdownCtx); err != nil {
		shutdownErr = errors.Join(shutdownErr, err)
	}

	application.StopWorkers()

	if err := application.Close(); err != nil {
		shutdownErr = errors.Join(shutdownErr, err)
	}
	if err := observability.StopPprofServer(pprofServer, logger, 5*time.Second); err != nil {
		shutdownErr = errors.Join(shutdownErr, err)
	}
	if err := pyroscopeStop(); err != nil {
		shutdownErr = errors.Join(shutdownErr, err)
	}
	if err := uptraceShutdown(shutdownCtx); err != nil {
		shutdownErr = errors.Join(shutdownErr, err)
	}
	if err := logShutdown(shutdownCtx); err != nil {
		shutdownErr = errors.Join(shutdownErr, err)
	}

	logger.Info("server stopped")

	return shutdownErr
}
