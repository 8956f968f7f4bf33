package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/JonMunkholm/quizbank/internal/config"
	"github.com/JonMunkholm/quizbank/internal/core"
	"github.com/JonMunkholm/quizbank/internal/database"
	"github.com/JonMunkholm/quizbank/internal/logging"
	"github.com/JonMunkholm/quizbank/internal/web"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// Load .env file if it exists; real environment variables win
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logFile := logging.Setup(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.File)
	defer logFile.Close()

	slog.Info("configuration loaded", "config", cfg.String())

	policy, err := core.ParseColumnPolicy(cfg.Import.ColumnPolicy)
	if err != nil {
		slog.Error("invalid import configuration", "error", err)
		os.Exit(1)
	}

	// Connect to database. Later connection loss is handled by Acquire.
	provider := database.NewProvider(database.PgxDialer(cfg.Database), cfg.Database.ConnectTimeout, cfg.Database.PingInterval)
	ctx := context.Background()
	if err := provider.Open(ctx); err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer provider.Close()

	if u, err := url.Parse(cfg.Database.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		slog.Info("connected to database")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	service := core.NewService(
		provider,
		core.NewImportLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime),
		core.NewMetrics(registry),
		core.Config{
			ColumnPolicy:  policy,
			MirrorToCBT:   cfg.Import.MirrorToCBT,
			ImportTimeout: cfg.Upload.Timeout,
			QueryTimeout:  cfg.Database.QueryTimeout,
		},
	)

	server := web.NewServer(service, cfg, registry)

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Stop accepting requests first, then let running imports commit
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}

		if status := service.ImportStatus(); status.Active > 0 {
			slog.Info("waiting for imports to complete", "active", status.Active)
			if err := service.WaitForImports(shutdownCtx); err != nil {
				slog.Warn("imports did not complete in time", "error", err)
			} else {
				slog.Info("all imports completed")
			}
		}
	}()

	if err := server.Start(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	<-done
	slog.Info("server stopped")
}
