package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"whatsapp-chat-analyzer/internal/adapters/parser"
	"whatsapp-chat-analyzer/internal/cache"
	"whatsapp-chat-analyzer/internal/core/services"
	applog "whatsapp-chat-analyzer/internal/log"
	"whatsapp-chat-analyzer/internal/metrics"
	"whatsapp-chat-analyzer/internal/pkg/config"
	"whatsapp-chat-analyzer/internal/server"
	"whatsapp-chat-analyzer/internal/server/usecase"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	if err := run(); err != nil {
		slog.Error("application run failed", "error", err)
		os.Exit(1)
	}
}

// run инкапсулирует всю логику инициализации и запуска приложения.
func run() error {
	configPath := flag.String("config", "", "путь к файлу конфигурации (по умолчанию config.yml)")
	flag.Parse()

	// 1. Загрузка конфигурации
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		// Логгер еще не инициализирован, выводим в stderr
		_, _ = fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Инициализация логгера
	logger := applog.New(os.Stdout, cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(logger)

	// 3. Валидация конфигурации (после инициализации логгера)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	dateOrder, err := parser.ParseDateOrder(cfg.Parsing.DateOrder)
	if err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	// 4. Метрики
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	appMetrics := metrics.New(registry)

	// 5. Инициализация зависимостей
	taskStore := server.NewTaskStore()
	cacheStore := cache.NewCacheStore()
	scorer := services.NewLexiconScorer()
	processor := usecase.NewAnalyzeChatUseCase(cfg,
		parser.NewTranscriptParser(parser.WithDateOrder(dateOrder)),
		services.NewStatsService(scorer),
		services.NewAnalyticsService(scorer),
		cacheStore,
		usecase.WithMetrics(appMetrics),
		usecase.WithLogger(logger),
	)

	// 6. Создание HTTP-сервера
	srv, err := server.New(cfg, processor, taskStore, cacheStore,
		server.WithRegistry(registry),
		server.WithMetrics(appMetrics),
		server.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()
	srv.StartBackground(appCtx)

	// 7. Запуск сервера и graceful shutdown
	serverErr := make(chan error, 1)
	go func() {
		defer close(serverErr)
		logger.Info("Starting server", "addr", cfg.Address())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		logger.Info("Signal received, shutting down...")
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	// Сначала останавливаем фоновые тикеры
	appCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	<-serverErr
	logger.Info("Application exited gracefully")
	return nil
}
