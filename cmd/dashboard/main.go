package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	httpadapter "github.com/couchcryptid/uk-accident-dashboard/internal/adapter/http"
	"github.com/couchcryptid/uk-accident-dashboard/internal/config"
	"github.com/couchcryptid/uk-accident-dashboard/internal/dashboard"
	"github.com/couchcryptid/uk-accident-dashboard/internal/dataset"
	"github.com/couchcryptid/uk-accident-dashboard/internal/domain"
	"github.com/couchcryptid/uk-accident-dashboard/internal/observability"
)

func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	if envErr != nil {
		logger.Debug("no .env file loaded", "error", envErr)
	}

	accidents, stats, err := dataset.LoadAccidents(cfg.AccidentsPath)
	if err != nil {
		logger.Error("failed to load accidents", "path", cfg.AccidentsPath, "error", err)
		os.Exit(1)
	}
	metrics.DatasetRows.WithLabelValues("accidents").Set(float64(stats.Kept))
	metrics.DatasetDropped.WithLabelValues("accidents").Add(float64(stats.Dropped))
	logger.Info("accidents loaded", "path", cfg.AccidentsPath, "rows", stats.Kept, "dropped", stats.Dropped)

	// The vehicle table is optional; VEHICLES_PATH="" skips it.
	var vehicles *domain.VehicleTable
	if cfg.VehiclesPath != "" {
		vehicles, stats, err = dataset.LoadVehicles(cfg.VehiclesPath)
		if err != nil {
			logger.Error("failed to load vehicles", "path", cfg.VehiclesPath, "error", err)
			os.Exit(1)
		}
		metrics.DatasetRows.WithLabelValues("vehicles").Set(float64(stats.Kept))
		metrics.DatasetDropped.WithLabelValues("vehicles").Add(float64(stats.Dropped))
		logger.Info("vehicles loaded", "path", cfg.VehiclesPath, "rows", stats.Kept, "dropped", stats.Dropped)
	}
	metrics.DatasetReady.Set(1)

	d := dashboard.New(accidents, vehicles, dashboard.Settings{
		CacheSize:   cfg.ViewCacheSize,
		MapboxToken: cfg.MapboxToken,
		MapboxStyle: cfg.MapboxStyle,
	}, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, d, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
