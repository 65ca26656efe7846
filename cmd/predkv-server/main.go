// Package main provides the entry point for predkv-server.
//
// predkv-server is a network-accessible key-value store for primitive
// keys and values, with predicate queries and periodic snapshot
// persistence.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/predkv/predkv/internal/infra/buildinfo"
	"github.com/predkv/predkv/internal/infra/confloader"
	"github.com/predkv/predkv/internal/infra/shutdown"
	"github.com/predkv/predkv/internal/server/config"
	"github.com/predkv/predkv/internal/server/kvserver"
	"github.com/predkv/predkv/internal/storage"
	"github.com/predkv/predkv/internal/storage/snapshot"
	"github.com/predkv/predkv/internal/telemetry/logger"
	"github.com/predkv/predkv/internal/telemetry/metric"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configFile  = flag.String("config", "", "Path to configuration file")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("predkv-server %s\n", buildinfo.String())
		return nil
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, slogLogger, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	log.Info("starting predkv-server",
		"version", buildinfo.Version,
		"commit", buildinfo.Commit,
		"config", *configFile)

	metrics := metric.New()

	engine, err := initStorage(cfg, slogLogger, metrics)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	engine.Recover()
	engine.Start()

	srvCfg := &kvserver.Config{
		Address:      cfg.Server.Addr,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		RateLimit:    cfg.Server.RateLimit,
	}
	srv := kvserver.New(srvCfg, engine.Store(), slogLogger, metrics)

	shutdownHandler := shutdown.NewHandler(30*time.Second, slogLogger)

	shutdownHandler.OnShutdown("storage engine", func(ctx context.Context) error {
		return engine.Close()
	})

	var metricsSrv *http.Server
	if cfg.Metrics.Enabled {
		metricsSrv = &http.Server{
			Addr:    cfg.Metrics.Addr,
			Handler: metrics.Handler(),
		}
		go func() {
			log.Info("metrics server listening", "addr", cfg.Metrics.Addr)
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("metrics server error", "error", err)
			}
		}()
		shutdownHandler.OnShutdown("metrics server", func(ctx context.Context) error {
			return metricsSrv.Shutdown(ctx)
		})
	}

	if err := srv.Start(context.Background()); err != nil {
		return fmt.Errorf("start server: %w", err)
	}
	shutdownHandler.OnShutdown("tcp server", srv.Shutdown)

	log.Info("server started, press Ctrl+C to stop")
	if err := shutdownHandler.Wait(); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

// loadConfig loads configuration from file and environment.
func loadConfig(configFile string) (*config.ServerConfig, error) {
	cfg := config.Default()

	opts := []confloader.Option{}
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}

	if err := confloader.NewLoader(opts...).Load(cfg); err != nil {
		return nil, err
	}

	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// initLogger initializes the structured logger and installs it as the
// process default.
func initLogger(cfg *config.ServerConfig) (logger.Logger, *slog.Logger, error) {
	log := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	logger.SetDefault(log)
	return log, log.Slog(), nil
}

// initStorage initializes the storage engine.
func initStorage(cfg *config.ServerConfig, log *slog.Logger, metrics *metric.Metrics) (*storage.Engine, error) {
	snapCfg := snapshot.Config{
		Path:     cfg.Storage.File,
		Compress: cfg.Storage.Compress,
	}
	if cfg.Storage.EncryptionKey != "" {
		key, err := snapshot.DeriveKey(cfg.Storage.EncryptionKey)
		if err != nil {
			return nil, err
		}
		snapCfg.Key = key
	}

	return storage.New(storage.Config{
		Snapshot:         snapCfg,
		SnapshotInterval: cfg.Storage.SnapshotInterval,
		Logger:           log,
		Metrics:          metrics,
	})
}
