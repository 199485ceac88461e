package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// RenderOptions определяет параметры текстовой сводки в сообщениях.
type RenderOptions struct {
	// NameWidth — ширина столбца с именем участника. В Telegram строка <pre> уже консоли.
	NameWidth int `yaml:"name_width"`
}

// BotConfig содержит конфигурацию для Telegram-бота
type BotConfig struct {
	Token                  string        `yaml:"token"`
	BackendURL             string        `yaml:"backend_url"`
	PollingIntervalSeconds int           `yaml:"polling_interval_seconds"`
	HTTPTimeoutSeconds     int           `yaml:"http_timeout_seconds"`
	TaskTimeoutSeconds     int           `yaml:"task_timeout_seconds"`
	MaxFileSizeMB          int           `yaml:"max_file_size_mb"`
	ExcelAttachment        bool          `yaml:"excel_attachment"`
	Render                 RenderOptions `yaml:"render"`
}

// Logging содержит конфигурацию логирования бота
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config является оберткой для соответствия структуре YAML файла.
type Config struct {
	Bot     BotConfig `yaml:"bot"`
	Logging Logging   `yaml:"logging"`
}

// PollingInterval возвращает интервал опроса статуса задачи.
func (c *BotConfig) PollingInterval() time.Duration {
	return time.Duration(c.PollingIntervalSeconds) * time.Second
}

// HTTPTimeout возвращает таймаут запросов к бэкенду и к файлам Telegram.
func (c *BotConfig) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

// TaskTimeout возвращает предельное время ожидания одной задачи.
func (c *BotConfig) TaskTimeout() time.Duration {
	return time.Duration(c.TaskTimeoutSeconds) * time.Second
}

// MaxFileSizeBytes возвращает предельный размер принимаемого файла.
func (c *BotConfig) MaxFileSizeBytes() int {
	return c.MaxFileSizeMB << 20
}

// LoadBotConfig загружает конфигурацию бота из указанного файла.
// Переменные BOT_TOKEN и BACKEND_URL (в том числе из .env) переопределяют значения из файла.
func LoadBotConfig(filename string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read bot config file %s: %w", filename, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bot config: %w", err)
	}

	if v := os.Getenv("BOT_TOKEN"); v != "" {
		cfg.Bot.Token = v
	}
	if v := os.Getenv("BACKEND_URL"); v != "" {
		cfg.Bot.BackendURL = v
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	botCfg := &c.Bot
	if botCfg.BackendURL == "" {
		botCfg.BackendURL = DefaultBackendURL
	}
	if botCfg.PollingIntervalSeconds == 0 {
		botCfg.PollingIntervalSeconds = DefaultPollingIntervalSeconds
	}
	if botCfg.HTTPTimeoutSeconds == 0 {
		botCfg.HTTPTimeoutSeconds = DefaultHTTPTimeoutSeconds
	}
	if botCfg.TaskTimeoutSeconds == 0 {
		botCfg.TaskTimeoutSeconds = DefaultTaskTimeoutSeconds
	}
	if botCfg.MaxFileSizeMB == 0 {
		botCfg.MaxFileSizeMB = DefaultMaxFileSizeMB
	}
	if botCfg.Render.NameWidth == 0 {
		botCfg.Render.NameWidth = DefaultNameColumnWidth
	}
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}
}

// Validate проверяет корректность конфигурации бота.
func (c *BotConfig) Validate() error {
	if c.Token == "" || c.Token == "YOUR_TELEGRAM_BOT_TOKEN" {
		return fmt.Errorf("bot.token is not configured")
	}
	if c.BackendURL == "" {
		return fmt.Errorf("bot.backend_url cannot be empty")
	}
	if c.PollingIntervalSeconds <= 0 {
		return fmt.Errorf("bot.polling_interval_seconds must be positive")
	}
	if c.HTTPTimeoutSeconds <= 0 {
		return fmt.Errorf("bot.http_timeout_seconds must be positive")
	}
	if c.TaskTimeoutSeconds <= 0 {
		return fmt.Errorf("bot.task_timeout_seconds must be positive")
	}
	if c.MaxFileSizeMB <= 0 {
		return fmt.Errorf("bot.max_file_size_mb must be positive")
	}
	if c.Render.NameWidth <= 0 {
		return fmt.Errorf("bot.render.name_width must be positive")
	}
	return nil
}
