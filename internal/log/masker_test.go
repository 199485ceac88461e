package log

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMask(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "токен в URL",
			input:    `Post "https://api.telegram.org/bot8462697481:AAEJSXuTcb2F1Js2sWiK0TVWvxbHL9xX05Q/getUpdates"`,
			expected: `Post "https://api.telegram.org/bot***:***masked-token***/getUpdates"`,
		},
		{
			name:     "номер телефона с пробелами и дефисами",
			input:    "sender +7 916 123-45-67 joined",
			expected: "sender +***67 joined",
		},
		{
			name:     "номер со скобками",
			input:    "+1 (555) 010-9999",
			expected: "+***99",
		},
		{
			name:     "даты и время не трогаются",
			input:    "01/02/2024, 09:00 - 2024-02-01",
			expected: "01/02/2024, 09:00 - 2024-02-01",
		},
		{
			name:     "обычный текст",
			input:    "No secrets here",
			expected: "No secrets here",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, mask(tt.input))
		})
	}
}

func TestMaskingHandler(t *testing.T) {
	t.Run("сообщение и атрибуты", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		logger := NewMaskedLogger(slog.NewJSONHandler(&buf, nil))

		logger.Info("message from +44 7700 900123",
			slog.String("sender", "+44 7700 900123"),
			slog.Any("error", errors.New("bot123456789:AAABCdEfGhIjKlMnOpQrStUvWxYz1234567 rejected")),
			slog.Group("chat", slog.String("phone", "+44 7700 900123")),
		)

		out := buf.String()
		assert.NotContains(t, out, "7700 900123")
		assert.NotContains(t, out, "AAABCdEfGhIjKlMnOpQrStUvWxYz1234567")
		assert.Contains(t, out, "+***23")
		assert.Contains(t, out, "***masked-token***")
	})

	t.Run("атрибуты из With", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		logger := NewMaskedLogger(slog.NewJSONHandler(&buf, nil)).
			With(slog.String("token", "bot8462697481:AAEJSXuTcb2F1Js2sWiK0TVWvxbHL9xX05Q"))

		logger.Info("with attrs")

		assert.NotContains(t, buf.String(), "AAEJSXuTcb2F1Js2sWiK0TVWvxbHL9xX05Q")
		assert.Contains(t, buf.String(), "***masked-token***")
	})
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "warn", "json")

	logger.Info("skipped")
	logger.Warn("kept", "phone", "+7 916 123-45-67")

	out := buf.String()
	assert.NotContains(t, out, "skipped")
	assert.Contains(t, out, `"msg":"kept"`)
	assert.Contains(t, out, "+***67")

	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("unknown"))
}
