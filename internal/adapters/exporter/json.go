package exporter

import (
	"encoding/json"
	"fmt"
	"io"
	"whatsapp-chat-analyzer/internal/domain"
	"whatsapp-chat-analyzer/internal/ports"
)

// JSONExporter реализует интерфейс Exporter, сериализуя отчет по схеме текущей версии.
type JSONExporter struct {
	w      io.Writer
	indent bool
}

// NewJSONExporter создает новый экземпляр JSONExporter.
func NewJSONExporter(w io.Writer, indent bool) ports.Exporter {
	return &JSONExporter{w: w, indent: indent}
}

// Export записывает отчет в формате JSON.
func (e *JSONExporter) Export(report *domain.Report) error {
	if err := encode(e.w, report, e.indent); err != nil {
		return fmt.Errorf("не удалось сериализовать отчет: %w", err)
	}
	return nil
}

// WriteTranscript записывает нормализованную последовательность сообщений в версионированной обертке.
func WriteTranscript(w io.Writer, messages []domain.Message, indent bool) error {
	if err := encode(w, domain.NewTranscript(messages), indent); err != nil {
		return fmt.Errorf("не удалось сериализовать сообщения: %w", err)
	}
	return nil
}

func encode(w io.Writer, v any, indent bool) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
