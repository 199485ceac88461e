package log

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTGBotAPIAdapter(t *testing.T) {
	var buf bytes.Buffer
	adapter := &TGBotAPIAdapter{Logger: New(&buf, "info", "text")}

	adapter.Printf("Endpoint: %s", "https://api.telegram.org/bot8462697481:AAEJSXuTcb2F1Js2sWiK0TVWvxbHL9xX05Q/getMe")
	adapter.Println("done", 42)

	out := buf.String()
	assert.Contains(t, out, "bot***:***masked-token***/getMe")
	assert.Contains(t, out, "done 42")
	assert.Contains(t, out, slog.LevelInfo.String())
	assert.Contains(t, out, "component=tgbotapi")
}
