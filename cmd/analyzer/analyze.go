package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"whatsapp-chat-analyzer/internal/adapters/exporter"
	"whatsapp-chat-analyzer/internal/adapters/parser"
	"whatsapp-chat-analyzer/internal/core/services"
	"whatsapp-chat-analyzer/internal/domain"
	"whatsapp-chat-analyzer/internal/ports"
	"whatsapp-chat-analyzer/internal/server/usecase"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatXLSX  = "xlsx"
)

func analyzeCmd(flags *globalFlags) *cobra.Command {
	var participant, format, output string
	var nameWidth int

	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Build a statistics report for a transcript (.txt or .zip export)",
		Long: `Parse an exported chat and print its statistics report.

Without --format the report is a table when stdout is a terminal and JSON otherwise.
The xlsx format always needs --output unless stdout is redirected.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			outFormat, err := resolveFormat(format, output)
			if err != nil {
				return err
			}

			scorer := services.NewLexiconScorer()
			uc := usecase.NewAnalyzeChatUseCase(e.cfg,
				parser.NewTranscriptParser(parser.WithDateOrder(e.dateOrder)),
				services.NewStatsService(scorer),
				services.NewAnalyticsService(scorer),
				nil,
				usecase.WithLogger(e.logger),
			)

			result, err := uc.ProcessChat(cmd.Context(), args[0], domain.AnalysisOptions{Participant: participant})
			if err != nil {
				if errors.Is(err, domain.ErrNoMessages) {
					return fmt.Errorf("%s: %w (check --date-order and the export format)", args[0], err)
				}
				return err
			}

			w, closeFn, err := openOutput(cmd.OutOrStdout(), output)
			if err != nil {
				return err
			}
			exp, err := newExporter(outFormat, w, nameWidth)
			if err != nil {
				_ = closeFn()
				return err
			}
			if err := exp.Export(result.Report); err != nil {
				_ = closeFn()
				return err
			}
			return closeFn()
		},
	}

	cmd.Flags().StringVarP(&participant, "participant", "p", "", "analyze only messages from this sender")
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: table, json or xlsx")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the report to a file instead of stdout")
	cmd.Flags().IntVar(&nameWidth, "name-width", exporter.DefaultNameWidth, "participant column width in table output")

	return cmd
}

// resolveFormat выбирает формат вывода по умолчанию и проверяет явно заданный.
func resolveFormat(format, output string) (string, error) {
	stdoutIsTerminal := term.IsTerminal(int(os.Stdout.Fd()))

	if format == "" {
		if output == "" && stdoutIsTerminal {
			return formatTable, nil
		}
		return formatJSON, nil
	}

	switch format {
	case formatTable, formatJSON:
		return format, nil
	case formatXLSX:
		if output == "" && stdoutIsTerminal {
			return "", errors.New("xlsx output to a terminal is not supported, use --output")
		}
		return format, nil
	default:
		return "", fmt.Errorf("unknown format %q: want table, json or xlsx", format)
	}
}

func newExporter(format string, w io.Writer, nameWidth int) (ports.Exporter, error) {
	switch format {
	case formatTable:
		return exporter.NewConsoleExporter(w, exporter.TableOptions{NameWidth: nameWidth}), nil
	case formatJSON:
		return exporter.NewJSONExporter(w, true), nil
	case formatXLSX:
		return exporter.NewExcelExporter(w), nil
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

// openOutput возвращает файл output или stdout команды, если путь не задан.
func openOutput(stdout io.Writer, output string) (io.Writer, func() error, error) {
	if output == "" {
		return stdout, func() error { return nil }, nil
	}
	f, err := os.Create(output)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f.Close, nil
}
