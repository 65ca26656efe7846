// Package config defines the server configuration structure.
package config

import "time"

// Default configuration values.
const (
	DefaultAddr         = "127.0.0.1:65535"
	DefaultReadTimeout  = 30 * time.Second
	DefaultWriteTimeout = 30 * time.Second
	DefaultIdleTimeout  = 5 * time.Minute

	DefaultStorageFile      = "data"
	DefaultSnapshotInterval = 60 * time.Minute

	DefaultMetricsAddr = "127.0.0.1:9420"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			Addr:         DefaultAddr,
			ReadTimeout:  DefaultReadTimeout,
			WriteTimeout: DefaultWriteTimeout,
			IdleTimeout:  DefaultIdleTimeout,
			RateLimit:    0,
		},
		Storage: StorageSection{
			File:             DefaultStorageFile,
			SnapshotInterval: DefaultSnapshotInterval,
			Compress:         false,
		},
		Metrics: MetricsSection{
			Enabled: false,
			Addr:    DefaultMetricsAddr,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
