package config

// Значения конфигурации бота по умолчанию.
const (
	DefaultBotConfigFile          = "bot_config.yml"
	DefaultBackendURL             = "http://localhost:8080"
	DefaultPollingIntervalSeconds = 2
	DefaultHTTPTimeoutSeconds     = 30
	DefaultTaskTimeoutSeconds     = 300
	DefaultMaxFileSizeMB          = 20
	DefaultNameColumnWidth        = 14
	DefaultLogLevel               = "info"
	DefaultLogFormat              = "json"
)
