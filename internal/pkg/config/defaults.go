package config

import "time"

// Значения конфигурации по умолчанию.
const (
	// Server
	DefaultServerHost      = "0.0.0.0"
	DefaultServerPort      = 8080
	DefaultReadTimeout     = 10 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 15 * time.Second
	DefaultMaxUploadSizeMB = 32

	// Processing
	DefaultTaskTimeout     = 120 * time.Second
	DefaultTaskTTL         = 24 * time.Hour
	DefaultCacheTTL        = 60 * time.Minute
	DefaultCleanupInterval = 1 * time.Hour

	// Parsing
	DefaultDateOrder = "dmy"

	// Logging
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

func defaultConfig() *Config {
	return &Config{
		Server: Server{
			Host:            DefaultServerHost,
			Port:            DefaultServerPort,
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			IdleTimeout:     DefaultIdleTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
			MaxUploadSizeMB: DefaultMaxUploadSizeMB,
		},
		Processing: Processing{
			TaskTimeout:     DefaultTaskTimeout,
			TaskTTL:         DefaultTaskTTL,
			CacheTTL:        DefaultCacheTTL,
			CleanupInterval: DefaultCleanupInterval,
		},
		Parsing: Parsing{
			DateOrder: DefaultDateOrder,
		},
		Logging: Logging{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
