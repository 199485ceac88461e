package log

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
)

// MaskingHandler оборачивает slog.Handler и скрывает секреты и персональные данные:
// токены бота и телефонные номера, которые в экспортах WhatsApp часто служат именем отправителя.
type MaskingHandler struct {
	handler slog.Handler
}

// NewMaskingHandler создает новый обработчик с маскировкой
func NewMaskingHandler(handler slog.Handler) *MaskingHandler {
	return &MaskingHandler{handler: handler}
}

// токен бота в формате botID:token
var botTokenRegex = regexp.MustCompile(`(\bbot\d+:[A-Za-z0-9_-]{35,})`)

// международный номер: "+", затем цифры с пробелами, дефисами и скобками
var phoneRegex = regexp.MustCompile(`\+\d[\d \-()]{6,}\d`)

// mask заменяет найденные токены и номера телефонов на маску.
// У номера остаются две последние цифры, чтобы записи разных отправителей различались.
func mask(text string) string {
	text = botTokenRegex.ReplaceAllString(text, "bot***:***masked-token***")
	return phoneRegex.ReplaceAllStringFunc(text, func(phone string) string {
		digits := strings.Map(func(r rune) rune {
			if r >= '0' && r <= '9' {
				return r
			}
			return -1
		}, phone)
		return "+***" + digits[len(digits)-2:]
	})
}

// Enabled реализует интерфейс slog.Handler
func (h *MaskingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle реализует интерфейс slog.Handler
func (h *MaskingHandler) Handle(ctx context.Context, record slog.Record) error {
	// Атрибуты исходной записи могут переиспользоваться slog, поэтому собирается новая запись.
	r := slog.NewRecord(record.Time, record.Level, mask(record.Message), record.PC)
	record.Attrs(func(a slog.Attr) bool {
		r.AddAttrs(maskAttr(a))
		return true
	})

	return h.handler.Handle(ctx, r)
}

// WithAttrs реализует интерфейс slog.Handler
func (h *MaskingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	masked := make([]slog.Attr, len(attrs))
	for i, attr := range attrs {
		masked[i] = maskAttr(attr)
	}
	return &MaskingHandler{handler: h.handler.WithAttrs(masked)}
}

// WithGroup реализует интерфейс slog.Handler
func (h *MaskingHandler) WithGroup(name string) slog.Handler {
	return &MaskingHandler{handler: h.handler.WithGroup(name)}
}

func maskAttr(a slog.Attr) slog.Attr {
	return slog.Attr{Key: a.Key, Value: maskValue(a.Value)}
}

func maskValue(value slog.Value) slog.Value {
	switch value.Kind() {
	case slog.KindString:
		return slog.StringValue(mask(value.String()))
	case slog.KindAny:
		if err, ok := value.Any().(error); ok {
			return slog.StringValue(mask(err.Error()))
		}
		return value
	case slog.KindGroup:
		group := value.Group()
		masked := make([]slog.Attr, len(group))
		for i, attr := range group {
			masked[i] = maskAttr(attr)
		}
		return slog.GroupValue(masked...)
	default:
		return value
	}
}

// NewMaskedLogger создает slog.Logger с маскировкой поверх handler
func NewMaskedLogger(handler slog.Handler) *slog.Logger {
	return slog.New(NewMaskingHandler(handler))
}
