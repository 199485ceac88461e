// Package config предоставляет управление конфигурацией приложения
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// DefaultConfigFile — файл конфигурации, который читается, если путь не задан явно.
const DefaultConfigFile = "config.yml"

// Server содержит конфигурацию HTTP-сервера
type Server struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxUploadSizeMB int64         `yaml:"max_upload_size_mb"`
}

// Processing содержит конфигурацию фоновой обработки
type Processing struct {
	TaskTimeout     time.Duration `yaml:"task_timeout"` // 0 - без ограничений
	TaskTTL         time.Duration `yaml:"task_ttl"`
	CacheTTL        time.Duration `yaml:"cache_ttl"`
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
}

// Parsing содержит настройки разбора расшифровок
type Parsing struct {
	// DateOrder — порядок дня и месяца в датах: "dmy" или "mdy".
	DateOrder string `yaml:"date_order"`
}

// Logging содержит конфигурацию логирования
type Logging struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Config содержит конфигурацию приложения
type Config struct {
	Server     Server     `yaml:"server"`
	Processing Processing `yaml:"processing"`
	Parsing    Parsing    `yaml:"parsing"`
	Logging    Logging    `yaml:"logging"`
}

// LoadConfig собирает конфигурацию: значения по умолчанию, затем YAML-файл, затем
// переменные окружения (в том числе из .env). Пустой path означает config.yml.
// Валидация выполняется отдельно вызовом Validate.
func LoadConfig(path string) (*Config, error) {
	// .env необязателен
	_ = godotenv.Load()

	if path == "" {
		path = DefaultConfigFile
	}

	cfg := defaultConfig()
	if err := loadFromYAML(path, cfg); err != nil {
		return nil, err
	}
	if err := applyEnv(cfg); err != nil {
		return nil, fmt.Errorf("не удалось применить переменные окружения: %w", err)
	}

	return cfg, nil
}

// loadFromYAML накладывает значения из YAML-файла на cfg. Отсутствие файла не ошибка.
func loadFromYAML(filename string, cfg *Config) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("не удалось прочитать файл конфигурации %s: %w", filename, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("не удалось разобрать YAML конфигурацию: %w", err)
	}

	return nil
}

// applyEnv переопределяет значения из переменных окружения
func applyEnv(cfg *Config) error {
	if v := os.Getenv("SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("недопустимый SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}

	durations := []struct {
		key    string
		target *time.Duration
	}{
		{"TASK_TIMEOUT", &cfg.Processing.TaskTimeout},
		{"CACHE_TTL", &cfg.Processing.CacheTTL},
	}
	for _, d := range durations {
		v := os.Getenv(d.key)
		if v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("недопустимый %s: %w", d.key, err)
		}
		*d.target = parsed
	}

	if v := os.Getenv("DATE_ORDER"); v != "" {
		cfg.Parsing.DateOrder = strings.ToLower(v)
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}

	return nil
}

// Address возвращает адрес сервера в формате "host:port"
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// MaxUploadBytes возвращает предельный размер загружаемого файла в байтах
func (c *Config) MaxUploadBytes() int64 {
	return c.Server.MaxUploadSizeMB << 20
}

// Validate проверяет, являются ли значения конфигурации допустимыми
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port должен быть действительным номером порта (1-65535)")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout должен быть положительным")
	}
	if c.Server.MaxUploadSizeMB <= 0 {
		return fmt.Errorf("server.max_upload_size_mb должен быть положительным")
	}

	if c.Processing.TaskTimeout < 0 {
		return fmt.Errorf("processing.task_timeout должен быть неотрицательным (0 для отсутствия ограничений)")
	}
	if c.Processing.TaskTTL <= 0 {
		return fmt.Errorf("processing.task_ttl должен быть положительным")
	}
	if c.Processing.CacheTTL <= 0 {
		return fmt.Errorf("processing.cache_ttl должен быть положительным")
	}
	if c.Processing.CleanupInterval <= 0 {
		return fmt.Errorf("processing.cleanup_interval должен быть положительным")
	}

	switch c.Parsing.DateOrder {
	case "dmy", "mdy":
	default:
		return fmt.Errorf("parsing.date_order должен быть одним из: dmy, mdy")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level должен быть одним из: debug, info, warn, error")
	}

	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format должен быть одним из: text, json")
	}

	return nil
}
