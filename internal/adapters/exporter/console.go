package exporter

import (
	"io"
	"os"
	"whatsapp-chat-analyzer/internal/domain"
	"whatsapp-chat-analyzer/internal/ports"
)

// ConsoleExporter реализует интерфейс Exporter для вывода текстовой сводки.
type ConsoleExporter struct {
	w    io.Writer
	opts TableOptions
}

// NewConsoleExporter создает экспортер, пишущий в w. Если w равен nil, используется stdout.
func NewConsoleExporter(w io.Writer, opts TableOptions) ports.Exporter {
	if w == nil {
		w = os.Stdout
	}
	return &ConsoleExporter{w: w, opts: opts}
}

// Export выводит сводку отчета.
func (e *ConsoleExporter) Export(report *domain.Report) error {
	return RenderSummary(e.w, report, e.opts)
}
