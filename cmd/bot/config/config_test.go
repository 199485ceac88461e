package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bot_config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadBotConfig(t *testing.T) {
	t.Run("значения по умолчанию", func(t *testing.T) {
		t.Setenv("BOT_TOKEN", "")
		t.Setenv("BACKEND_URL", "")

		cfg, err := LoadBotConfig(writeConfig(t, "bot:\n  token: \"123:abc\"\n"))
		require.NoError(t, err)

		assert.Equal(t, "123:abc", cfg.Bot.Token)
		assert.Equal(t, DefaultBackendURL, cfg.Bot.BackendURL)
		assert.Equal(t, 2*time.Second, cfg.Bot.PollingInterval())
		assert.Equal(t, 30*time.Second, cfg.Bot.HTTPTimeout())
		assert.Equal(t, 20<<20, cfg.Bot.MaxFileSizeBytes())
		assert.Equal(t, DefaultNameColumnWidth, cfg.Bot.Render.NameWidth)
		assert.False(t, cfg.Bot.ExcelAttachment)
		assert.Equal(t, "json", cfg.Logging.Format)
		assert.NoError(t, cfg.Bot.Validate())
	})

	t.Run("значения из файла", func(t *testing.T) {
		t.Setenv("BOT_TOKEN", "")
		t.Setenv("BACKEND_URL", "")

		cfg, err := LoadBotConfig(writeConfig(t, `
bot:
  token: "123:abc"
  backend_url: "http://analyzer:8080"
  polling_interval_seconds: 5
  excel_attachment: true
  render:
    name_width: 10
logging:
  level: debug
  format: text
`))
		require.NoError(t, err)

		assert.Equal(t, "http://analyzer:8080", cfg.Bot.BackendURL)
		assert.Equal(t, 5*time.Second, cfg.Bot.PollingInterval())
		assert.True(t, cfg.Bot.ExcelAttachment)
		assert.Equal(t, 10, cfg.Bot.Render.NameWidth)
		assert.Equal(t, Logging{Level: "debug", Format: "text"}, cfg.Logging)
	})

	t.Run("переменные окружения важнее файла", func(t *testing.T) {
		t.Setenv("BOT_TOKEN", "999:env")
		t.Setenv("BACKEND_URL", "http://env:9000")

		cfg, err := LoadBotConfig(writeConfig(t, "bot:\n  token: YOUR_TELEGRAM_BOT_TOKEN\n"))
		require.NoError(t, err)
		assert.Equal(t, "999:env", cfg.Bot.Token)
		assert.Equal(t, "http://env:9000", cfg.Bot.BackendURL)
	})

	t.Run("отсутствующий файл", func(t *testing.T) {
		_, err := LoadBotConfig(filepath.Join(t.TempDir(), "missing.yml"))
		assert.Error(t, err)
	})

	t.Run("битый YAML", func(t *testing.T) {
		_, err := LoadBotConfig(writeConfig(t, "bot: ["))
		assert.Error(t, err)
	})
}

func TestBotConfig_Validate(t *testing.T) {
	valid := func() BotConfig {
		return BotConfig{
			Token:                  "123:abc",
			BackendURL:             "http://localhost:8080",
			PollingIntervalSeconds: 1,
			HTTPTimeoutSeconds:     1,
			TaskTimeoutSeconds:     1,
			MaxFileSizeMB:          1,
			Render:                 RenderOptions{NameWidth: 10},
		}
	}

	tests := []struct {
		name   string
		mutate func(*BotConfig)
	}{
		{"токен-заглушка", func(c *BotConfig) { c.Token = "YOUR_TELEGRAM_BOT_TOKEN" }},
		{"пустой адрес бэкенда", func(c *BotConfig) { c.BackendURL = "" }},
		{"нулевой интервал опроса", func(c *BotConfig) { c.PollingIntervalSeconds = 0 }},
		{"нулевой таймаут HTTP", func(c *BotConfig) { c.HTTPTimeoutSeconds = 0 }},
		{"нулевой таймаут задачи", func(c *BotConfig) { c.TaskTimeoutSeconds = 0 }},
		{"нулевой размер файла", func(c *BotConfig) { c.MaxFileSizeMB = 0 }},
		{"нулевая ширина столбца", func(c *BotConfig) { c.Render.NameWidth = 0 }},
	}

	cfg := valid()
	require.NoError(t, cfg.Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
