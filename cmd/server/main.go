// Package main - Entry point for the hotel capacity API server
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"hotel-capacity/api"
	"hotel-capacity/core/estimate"
	"hotel-capacity/core/session"
	"hotel-capacity/core/site"
	"hotel-capacity/internal/config"
	"hotel-capacity/internal/logging"
	"hotel-capacity/internal/metrics"
)

var version = "0.1.0"

func main() {
	cfgPath := flag.String("config", "", "config file (JSON)")
	envFile := flag.String("env-file", ".env", "dotenv file with HOTELCAP_* overrides")
	flag.Parse()

	// A missing .env is normal outside development
	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", *envFile, err)
		os.Exit(1)
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	config.Set(cfg)

	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
		os.Exit(1)
	}
	defer logging.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessions, closeSessions, err := openSessions(ctx, cfg.Session)
	if err != nil {
		logging.Fatal("session store unavailable", zap.String("backend", cfg.Session.Backend), zap.Error(err))
	}
	defer closeSessions()

	server := api.NewServer(api.Options{
		Version:   version,
		Estimator: estimate.NewEstimator(cfg.Calculator.StoreyHeightM, logging.Logger),
		Dataset:   loadDataset(cfg.Dataset),
		Sessions:  sessions,
		Logger:    logging.Logger,
	})

	logging.Info("hotel capacity server starting",
		zap.String("version", version),
		zap.String("addr", cfg.Server.Addr),
		zap.String("session_backend", cfg.Session.Backend),
	)

	readTimeout := time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second
	if err := server.ListenAndServe(ctx, cfg.Server.Addr, readTimeout); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logging.Fatal("server failed", zap.Error(err))
	}
	logging.Info("server stopped")
}

// loadDataset loads the configured dataset. Failure is logged and yields nil:
// the server still starts and site endpoints answer 503.
func loadDataset(c config.DatasetConfig) *site.Dataset {
	if c.Path == "" {
		logging.Warn("no dataset configured; site endpoints are disabled")
		return nil
	}

	ds, err := site.Load(c.Path, site.Fields{
		Name:      c.NameField,
		Area:      c.AreaField,
		PlotRatio: c.PlotRatioField,
		MaxHeight: c.HeightField,
	})
	if err != nil {
		logging.Error("failed to load dataset", zap.String("path", c.Path), zap.Error(err))
		return nil
	}

	metrics.DatasetSites.Set(float64(len(ds.Names())))
	for _, dup := range ds.Duplicates() {
		logging.Warn("duplicate site name; first row wins", zap.String("site", dup))
	}
	logging.Info("dataset loaded", zap.String("path", c.Path), zap.Int("sites", ds.Len()))
	return ds
}

func openSessions(ctx context.Context, c config.SessionConfig) (session.Store, func(), error) {
	if c.Backend != "redis" {
		return session.NewMemoryStore(c.TTL()), func() {}, nil
	}

	store := session.NewRedisStore(c.RedisAddr, c.RedisPassword, c.RedisDB, c.TTL())
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := store.Ping(pingCtx); err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("redis at %s: %w", c.RedisAddr, err)
	}
	return store, func() { _ = store.Close() }, nil
}
