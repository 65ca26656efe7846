// Package config defines the server configuration structure.
package config

import "time"

// ServerConfig is the root configuration for predkv-server.
type ServerConfig struct {
	Server  ServerSection  `koanf:"server"`
	Storage StorageSection `koanf:"storage"`
	Metrics MetricsSection `koanf:"metrics"`
	Log     LogSection     `koanf:"log"`
}

// ServerSection configures the TCP endpoint.
type ServerSection struct {
	Addr         string        `koanf:"addr"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	IdleTimeout  time.Duration `koanf:"idle_timeout"`

	// RateLimit is the maximum number of requests per second per
	// client IP. Zero disables rate limiting.
	RateLimit int `koanf:"rate_limit"`
}

// StorageSection configures persistence behavior.
type StorageSection struct {
	// File is the snapshot file path.
	File string `koanf:"file"`

	// SnapshotInterval is the period between automatic snapshots.
	SnapshotInterval time.Duration `koanf:"snapshot_interval"`

	// Compress enables zstd compression of the snapshot payload.
	Compress bool `koanf:"compress"`

	// EncryptionKey is an optional passphrase. When set, the snapshot
	// payload is encrypted at rest.
	EncryptionKey string `koanf:"encryption_key"`
}

// MetricsSection configures the Prometheus endpoint.
type MetricsSection struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
