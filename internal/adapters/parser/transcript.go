package parser

import (
	"bytes"
	"strings"
	"whatsapp-chat-analyzer/internal/domain"
	"whatsapp-chat-analyzer/internal/ports"
)

// mediaMarkers — подстроки, которыми экспорт заменяет вложения.
var mediaMarkers = []string{
	"<Media omitted>",
	"image omitted",
	"video omitted",
	"audio omitted",
	"sticker omitted",
	"GIF omitted",
	"document omitted",
}

// Невидимые символы, которыми iOS-экспорт помечает строки, и "узкие" пробелы перед AM/PM.
var lineCleaner = strings.NewReplacer(
	"\u200e", "",
	"\u200f", "",
	"\ufeff", "",
	"\u202f", " ",
	"\u00a0", " ",
)

// Option определяет функциональную опцию для конфигурации парсера.
type Option func(*TranscriptParser)

// WithDateOrder — опция для явного указания порядка дня и месяца.
func WithDateOrder(order DateOrder) Option {
	return func(p *TranscriptParser) {
		if order != "" {
			p.order = order
		}
	}
}

// TranscriptParser реализует интерфейс Parser для текстовых экспортов переписки.
type TranscriptParser struct {
	grammars []headerGrammar
	order    DateOrder
}

// NewTranscriptParser создает новый экземпляр TranscriptParser.
func NewTranscriptParser(opts ...Option) ports.Parser {
	p := &TranscriptParser{
		grammars: defaultGrammars,
		order:    DayFirst,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse преобразует текст расшифровки в упорядоченную последовательность сообщений.
func (p *TranscriptParser) Parse(data []byte) []domain.Message {
	messages, _ := p.ParseWithReport(data)
	return messages
}

// ParseWithReport разбирает текст и дополнительно сообщает, сколько строк было отброшено.
// Разбор никогда не завершается ошибкой: пустой или полностью нераспознанный ввод дает пустой срез.
func (p *TranscriptParser) ParseWithReport(data []byte) ([]domain.Message, domain.ParseReport) {
	var report domain.ParseReport
	messages := make([]domain.Message, 0)

	var current *domain.Message
	flush := func() {
		if current != nil {
			current.IsMedia = IsMediaContent(current.Content)
			messages = append(messages, *current)
			current = nil
		}
	}

	// Строки режутся прямо по data: у строки нет верхнего предела длины.
	rest := data
	for len(rest) > 0 {
		var raw []byte
		raw, rest, _ = bytes.Cut(rest, []byte{'\n'})
		report.Lines++
		line := lineCleaner.Replace(string(bytes.TrimSuffix(raw, []byte{'\r'})))

		if msg, ok := p.matchHeader(line); ok {
			flush()
			current = &msg
			report.Headers++
			continue
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if current == nil {
			report.Discarded++
			continue
		}
		current.Content += "\n" + trimmed
		report.Continuations++
	}
	flush()

	return messages, report
}

// matchHeader пробует грамматики по порядку. Решает первая совпавшая:
// если ее дату нельзя нормализовать или отправитель пуст, строка не считается заголовком.
func (p *TranscriptParser) matchHeader(line string) (domain.Message, bool) {
	for _, g := range p.grammars {
		fields, ok := g.match(line)
		if !ok {
			continue
		}
		ts, ok := NormalizeTimestamp(fields.Date, fields.Time, p.order)
		sender := strings.TrimSpace(fields.Sender)
		if !ok || sender == "" {
			return domain.Message{}, false
		}
		return domain.Message{
			Timestamp: ts,
			Sender:    sender,
			Content:   strings.TrimSpace(fields.Content),
		}, true
	}
	return domain.Message{}, false
}

// IsMediaContent сообщает, содержит ли текст маркер пропущенного вложения.
func IsMediaContent(content string) bool {
	for _, marker := range mediaMarkers {
		if strings.Contains(content, marker) {
			return true
		}
	}
	return false
}
