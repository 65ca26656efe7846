// Package config defines the server configuration structure.
package config

import (
	"errors"
	"net"
	"time"

	"github.com/predkv/predkv/internal/storage/snapshot"
)

// Verify validates the configuration.
func Verify(cfg *ServerConfig) error {
	if err := verifyServer(&cfg.Server); err != nil {
		return err
	}
	if err := verifyStorage(&cfg.Storage); err != nil {
		return err
	}
	if err := verifyMetrics(&cfg.Metrics); err != nil {
		return err
	}
	return nil
}

func verifyServer(cfg *ServerSection) error {
	if cfg.Addr == "" {
		return errors.New("server.addr is required")
	}
	if _, _, err := net.SplitHostPort(cfg.Addr); err != nil {
		return errors.New("server.addr is not a valid host:port: " + err.Error())
	}
	if cfg.RateLimit < 0 {
		return errors.New("server.rate_limit must not be negative")
	}
	return nil
}

func verifyStorage(cfg *StorageSection) error {
	if cfg.File == "" {
		return errors.New("storage.file is required")
	}
	if cfg.SnapshotInterval < time.Second {
		return errors.New("storage.snapshot_interval must be at least 1s")
	}
	if cfg.EncryptionKey != "" && len(cfg.EncryptionKey) < snapshot.MinPassphraseLength {
		return errors.New("storage.encryption_key is too short")
	}
	return nil
}

func verifyMetrics(cfg *MetricsSection) error {
	if !cfg.Enabled {
		return nil
	}
	if _, _, err := net.SplitHostPort(cfg.Addr); err != nil {
		return errors.New("metrics.addr is not a valid host:port: " + err.Error())
	}
	return nil
}
