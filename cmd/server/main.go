// Command main is the entry point for the microblog API server.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"microblog/internal/bootstrap"
	"microblog/internal/config"
	"microblog/internal/middleware"
	"microblog/internal/observability"
	"microblog/internal/server"

	"github.com/joho/godotenv"
)

func main() {
	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		middleware.Logger.Warn("failed to read .env", slog.String("error", err.Error()))
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		middleware.Logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	middleware.Logger = middleware.NewLogger(cfg.Env, os.Stdout)

	shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:  observability.ServiceName,
		Environment:  cfg.Env,
		Enabled:      cfg.TracingEnabled,
		Exporter:     cfg.TracingExporter,
		OTLPEndpoint: cfg.OTLPEndpoint,
		SamplerRatio: cfg.TracingSampleRatio,
	})
	if err != nil {
		middleware.Logger.Error("failed to initialize tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	rt, err := bootstrap.InitRuntime(cfg)
	if err != nil {
		middleware.Logger.Error("failed to initialize runtime", slog.String("error", err.Error()))
		os.Exit(1)
	}

	srv, err := server.NewServerWithDeps(cfg, rt.DB, rt.Redis, rt.Index)
	if err != nil {
		middleware.Logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		middleware.Logger.Info("shutting down server")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			middleware.Logger.Error("server shutdown error", slog.String("error", err.Error()))
		}
		if err := shutdownTracing(ctx); err != nil {
			middleware.Logger.Error("tracer shutdown error", slog.String("error", err.Error()))
		}
	}()

	if err := srv.Start(); err != nil {
		middleware.Logger.Error("server stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
