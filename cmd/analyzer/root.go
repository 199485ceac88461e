package main

import (
	"fmt"
	"io"
	"log/slog"
	"whatsapp-chat-analyzer/internal/adapters/parser"
	applog "whatsapp-chat-analyzer/internal/log"
	"whatsapp-chat-analyzer/internal/pkg/config"

	"github.com/spf13/cobra"
)

// globalFlags — флаги, общие для всех подкоманд.
type globalFlags struct {
	configPath string
	dateOrder  string
}

func newRootCmd() *cobra.Command {
	var flags globalFlags

	rootCmd := &cobra.Command{
		Use:           "analyzer",
		Short:         "Offline statistics for exported WhatsApp chats",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to config file (default config.yml)")
	rootCmd.PersistentFlags().StringVar(&flags.dateOrder, "date-order", "", "day/month order in timestamps: dmy or mdy")

	rootCmd.AddCommand(analyzeCmd(&flags))
	rootCmd.AddCommand(messagesCmd(&flags))

	return rootCmd
}

// env — разобранная конфигурация для одной команды.
type env struct {
	cfg       *config.Config
	dateOrder parser.DateOrder
	logger    *slog.Logger
}

// loadEnv читает конфигурацию и применяет флаги поверх нее. Логи пишутся в stderr,
// чтобы не смешиваться с отчетом.
func loadEnv(flags *globalFlags, stderr io.Writer) (*env, error) {
	cfg, err := config.LoadConfig(flags.configPath)
	if err != nil {
		return nil, err
	}
	if flags.dateOrder != "" {
		cfg.Parsing.DateOrder = flags.dateOrder
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	order, err := parser.ParseDateOrder(cfg.Parsing.DateOrder)
	if err != nil {
		return nil, err
	}

	return &env{
		cfg:       cfg,
		dateOrder: order,
		logger:    applog.New(stderr, cfg.Logging.Level, cfg.Logging.Format),
	}, nil
}
