package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"whatsapp-chat-analyzer/internal/adapters/source"
	"whatsapp-chat-analyzer/internal/cache"
	"whatsapp-chat-analyzer/internal/core/services"
	"whatsapp-chat-analyzer/internal/domain"
	"whatsapp-chat-analyzer/internal/metrics"
	"whatsapp-chat-analyzer/internal/pkg/config"
	"whatsapp-chat-analyzer/internal/ports"
)

// AnalyzeChatUseCase инкапсулирует конвейер анализа расшифровки:
// источник, разбор, фильтр по участнику, статистика, тренд и значки, кэш.
type AnalyzeChatUseCase struct {
	cfg        *config.Config
	parser     ports.Parser
	stats      ports.StatsService
	analytics  ports.AnalyticsService
	cacheStore *cache.CacheStore
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// Option настраивает AnalyzeChatUseCase.
type Option func(*AnalyzeChatUseCase)

// WithMetrics подключает метрики конвейера.
func WithMetrics(m *metrics.Metrics) Option {
	return func(uc *AnalyzeChatUseCase) {
		uc.metrics = m
	}
}

// WithLogger задает логгер; по умолчанию используется slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(uc *AnalyzeChatUseCase) {
		uc.logger = logger
	}
}

// NewAnalyzeChatUseCase создает новый экземпляр AnalyzeChatUseCase.
func NewAnalyzeChatUseCase(
	cfg *config.Config,
	parser ports.Parser,
	stats ports.StatsService,
	analytics ports.AnalyticsService,
	cacheStore *cache.CacheStore,
	opts ...Option,
) *AnalyzeChatUseCase {
	uc := &AnalyzeChatUseCase{
		cfg:        cfg,
		parser:     parser,
		stats:      stats,
		analytics:  analytics,
		cacheStore: cacheStore,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// ProcessChat анализирует файл экспорта (.txt или .zip) по пути filePath.
func (uc *AnalyzeChatUseCase) ProcessChat(ctx context.Context, filePath string, opts domain.AnalysisOptions) (*domain.AnalysisResult, error) {
	return uc.Analyze(ctx, source.NewFileSource(filePath), opts)
}

// AnalyzeBytes анализирует уже загруженное содержимое экспорта.
func (uc *AnalyzeChatUseCase) AnalyzeBytes(ctx context.Context, data []byte, opts domain.AnalysisOptions) (*domain.AnalysisResult, error) {
	return uc.Analyze(ctx, source.NewMemorySource(data), opts)
}

// FromCache возвращает ранее построенный отчет по хешу расшифровки и фильтру.
func (uc *AnalyzeChatUseCase) FromCache(hash, participant string) (*domain.AnalysisResult, bool) {
	if uc.cacheStore == nil {
		return nil, false
	}
	item, found := uc.cacheStore.Get(cache.Key(hash, participant))
	if !found {
		return nil, false
	}
	uc.metrics.ObserveAnalysis(metrics.ResultCached, 0)
	return item.Data, true
}

// Analyze выполняет полный конвейер для произвольного источника данных.
// Отсутствие сообщений возвращается как domain.ErrNoMessages.
func (uc *AnalyzeChatUseCase) Analyze(ctx context.Context, ds ports.DataSource, opts domain.AnalysisOptions) (*domain.AnalysisResult, error) {
	started := time.Now()

	result, err := uc.analyze(ctx, ds, opts, started)
	if err != nil {
		uc.metrics.ObserveAnalysis(metrics.ResultFailed, time.Since(started))
		return nil, err
	}
	return result, nil
}

func (uc *AnalyzeChatUseCase) analyze(ctx context.Context, ds ports.DataSource, opts domain.AnalysisOptions, started time.Time) (*domain.AnalysisResult, error) {
	data, err := ds.Fetch()
	if err != nil {
		return nil, fmt.Errorf("не удалось получить расшифровку: %w", err)
	}

	hash := cache.CalculateHash(data)
	logger := uc.logger.With(slog.String("hash", hash[:12]), slog.String("participant", opts.Participant))

	if cached, found := uc.FromCache(hash, opts.Participant); found {
		logger.Info("Попадание в кеш")
		return cached, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	messages, parseReport := uc.parser.ParseWithReport(data)
	uc.metrics.ObserveParse(len(messages), parseReport.Discarded)
	logger.Info("Расшифровка разобрана",
		slog.Int("messages", len(messages)),
		slog.Int("lines", parseReport.Lines),
		slog.Int("discarded", parseReport.Discarded),
	)
	if len(messages) == 0 {
		return nil, domain.ErrNoMessages
	}

	subset := messages
	if opts.Participant != "" {
		subset = services.FilterByParticipant(messages, opts.Participant)
		if len(subset) == 0 {
			return nil, fmt.Errorf("%w: %q", domain.ErrUnknownParticipant, opts.Participant)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stats := uc.stats.Calculate(subset)
	health := uc.analytics.HealthTrend(subset)

	// Значки зависят от доли участника во всей переписке, поэтому считаются по полной последовательности.
	behaviors := uc.analytics.DetectBehaviors(messages, nil)
	if opts.Participant != "" {
		behaviors = map[string][]domain.BehaviorBadge{opts.Participant: behaviors[opts.Participant]}
	}

	result := &domain.AnalysisResult{
		Hash: hash,
		Report: &domain.Report{
			SchemaVersion: domain.SchemaVersion,
			Participant:   opts.Participant,
			Stats:         stats,
			HealthTrend:   health,
			Behaviors:     behaviors,
			Parse:         parseReport,
		},
		Messages: subset,
	}

	if uc.cacheStore != nil {
		ttl := uc.cfg.Processing.CacheTTL
		uc.cacheStore.Put(cache.Key(hash, opts.Participant), result, ttl)
		logger.Debug("Результат кеширован", slog.String("ttl", ttl.String()))
	}

	uc.metrics.ObserveAnalysis(metrics.ResultOK, time.Since(started))
	logger.Info("Анализ завершен", slog.Int("total_messages", stats.TotalMessages), slog.Int("participants", len(stats.Participants)))
	return result, nil
}
