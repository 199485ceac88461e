package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"whatsapp-chat-analyzer/cmd/bot/config"
	"whatsapp-chat-analyzer/internal/apiclient"
	"whatsapp-chat-analyzer/internal/bot"
	"whatsapp-chat-analyzer/internal/log"
)

func main() {
	configPath := flag.String("config", config.DefaultBotConfigFile, "путь к файлу конфигурации бота")
	flag.Parse()

	// Загрузка конфигурации бота
	cfg, err := config.LoadBotConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load bot config: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Bot.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to validate bot config: %v\n", err)
		os.Exit(1)
	}

	// Логгер с маскировкой токенов и номеров телефонов
	logger := log.New(os.Stdout, cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(logger)

	// Инициализация компонентов
	taskStore := bot.NewTaskStore()
	serverClient := apiclient.New(cfg.Bot.BackendURL, cfg.Bot.HTTPTimeout())

	b, err := bot.NewBot(cfg.Bot, serverClient, taskStore, logger.With(slog.String("component", "bot")))
	if err != nil {
		slog.Error("failed to create bot", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("Bot created successfully, starting...", slog.String("backend", cfg.Bot.BackendURL))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start блокируется до сигнала и дожидается активных задач
	b.Start(ctx)

	slog.Info("Bot stopped gracefully")
}
