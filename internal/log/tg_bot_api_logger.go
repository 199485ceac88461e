package log

import (
	"fmt"
	"log/slog"
	"strings"
)

// TGBotAPIAdapter передает внутренние сообщения go-telegram-bot-api/v5 в slog бота
// анализатора. Записи помечаются component=tgbotapi и проходят через маскирующий
// обработчик, поэтому токен из URL запросов в лог не попадает.
type TGBotAPIAdapter struct {
	Logger *slog.Logger
}

// Println реализует tgbotapi.Logger.
func (a *TGBotAPIAdapter) Println(v ...interface{}) {
	a.write(fmt.Sprintln(v...))
}

// Printf реализует tgbotapi.Logger.
func (a *TGBotAPIAdapter) Printf(format string, v ...interface{}) {
	a.write(fmt.Sprintf(format, v...))
}

func (a *TGBotAPIAdapter) write(text string) {
	a.Logger.Info(strings.TrimSpace(text), "component", "tgbotapi")
}
