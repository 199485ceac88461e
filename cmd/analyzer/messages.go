package main

import (
	"whatsapp-chat-analyzer/internal/adapters/exporter"
	"whatsapp-chat-analyzer/internal/adapters/parser"
	"whatsapp-chat-analyzer/internal/adapters/source"

	"github.com/spf13/cobra"
)

func messagesCmd(flags *globalFlags) *cobra.Command {
	var output string
	var compact bool

	cmd := &cobra.Command{
		Use:   "messages <file>",
		Short: "Print the normalized message sequence as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			data, err := source.NewFileSource(args[0]).Fetch()
			if err != nil {
				return err
			}

			messages, report := parser.NewTranscriptParser(parser.WithDateOrder(e.dateOrder)).ParseWithReport(data)
			e.logger.Info("Расшифровка разобрана",
				"file", args[0],
				"messages", len(messages),
				"lines", report.Lines,
				"discarded", report.Discarded,
			)

			w, closeFn, err := openOutput(cmd.OutOrStdout(), output)
			if err != nil {
				return err
			}
			if err := exporter.WriteTranscript(w, messages, !compact); err != nil {
				_ = closeFn()
				return err
			}
			return closeFn()
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write JSON to a file instead of stdout")
	cmd.Flags().BoolVar(&compact, "compact", false, "print JSON without indentation")

	return cmd
}
