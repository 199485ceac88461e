package usecase

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
	"whatsapp-chat-analyzer/internal/adapters/parser"
	"whatsapp-chat-analyzer/internal/cache"
	"whatsapp-chat-analyzer/internal/core/services"
	"whatsapp-chat-analyzer/internal/domain"
	"whatsapp-chat-analyzer/internal/metrics"
	"whatsapp-chat-analyzer/internal/pkg/config"
	"whatsapp-chat-analyzer/internal/ports"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const transcript = "[01/02/2024, 09:00:00] Alice: I love this, amazing!\n" +
	"[01/02/2024, 09:05:00] Bob: ok\nsee you soon\n" +
	"[02/02/2024, 23:30:00] Alice: <Media omitted>\n" +
	"[03/03/2024, 02:10:00] Alice: still awake\n"

type mockParser struct{ mock.Mock }

func (m *mockParser) Parse(data []byte) []domain.Message {
	messages, _ := m.ParseWithReport(data)
	return messages
}

func (m *mockParser) ParseWithReport(data []byte) ([]domain.Message, domain.ParseReport) {
	args := m.Called(data)
	var messages []domain.Message
	if res := args.Get(0); res != nil {
		messages = res.([]domain.Message)
	}
	return messages, args.Get(1).(domain.ParseReport)
}

func newUseCase(prs ports.Parser, cacheStore *cache.CacheStore, opts ...Option) *AnalyzeChatUseCase {
	cfg := &config.Config{Processing: config.Processing{CacheTTL: 10 * time.Minute}}
	return NewAnalyzeChatUseCase(cfg, prs, services.NewStatsService(nil), services.NewAnalyticsService(nil), cacheStore, opts...)
}

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestAnalyzeChatUseCase(t *testing.T) {
	ctx := context.Background()

	t.Run("полный конвейер с настоящим парсером", func(t *testing.T) {
		cacheStore := cache.NewCacheStore()
		uc := newUseCase(parser.NewTranscriptParser(), cacheStore)

		result, err := uc.ProcessChat(ctx, writeTemp(t, "chat.txt", []byte(transcript)), domain.AnalysisOptions{})
		require.NoError(t, err)

		report := result.Report
		assert.Equal(t, domain.SchemaVersion, report.SchemaVersion)
		assert.Equal(t, 4, report.Stats.TotalMessages)
		assert.Equal(t, []string{"Alice", "Bob"}, report.Stats.Participants)
		assert.Equal(t, domain.ParseReport{Lines: 5, Headers: 4, Continuations: 1}, report.Parse)
		assert.Equal(t, "ok\nsee you soon", result.Messages[1].Content)
		assert.True(t, result.Messages[2].IsMedia)
		require.Len(t, report.HealthTrend, 2)
		assert.Equal(t, "2024-02", report.HealthTrend[0].MonthKey)
		assert.Contains(t, report.Behaviors, "Bob")

		assert.Equal(t, cache.CalculateHash([]byte(transcript)), result.Hash)
		cached, found := cacheStore.Get(result.Hash)
		require.True(t, found)
		assert.Same(t, result, cached.Data)
	})

	t.Run("архив экспорта", func(t *testing.T) {
		var buf bytes.Buffer
		w := zip.NewWriter(&buf)
		fw, err := w.Create("_chat.txt")
		require.NoError(t, err)
		_, err = fw.Write([]byte(transcript))
		require.NoError(t, err)
		require.NoError(t, w.Close())

		result, err := newUseCase(parser.NewTranscriptParser(), cache.NewCacheStore()).AnalyzeBytes(ctx, buf.Bytes(), domain.AnalysisOptions{})
		require.NoError(t, err)
		assert.Equal(t, 4, result.Report.Stats.TotalMessages)
		assert.Equal(t, cache.CalculateHash([]byte(transcript)), result.Hash)
	})

	t.Run("фильтр по участнику", func(t *testing.T) {
		cacheStore := cache.NewCacheStore()
		uc := newUseCase(parser.NewTranscriptParser(), cacheStore)

		result, err := uc.AnalyzeBytes(ctx, []byte(transcript), domain.AnalysisOptions{Participant: "Alice"})
		require.NoError(t, err)

		report := result.Report
		assert.Equal(t, "Alice", report.Participant)
		assert.Equal(t, 3, report.Stats.TotalMessages)
		assert.Equal(t, []string{"Alice"}, report.Stats.Participants)
		assert.Len(t, result.Messages, 3)
		// доля Alice считается по всей переписке: 3 из 4
		assert.Equal(t, []domain.BehaviorBadge{domain.Badge(domain.BadgeCarry), domain.Badge(domain.BadgeEagerBeaver), domain.Badge(domain.BadgeNightOwl)}, report.Behaviors["Alice"])
		assert.Len(t, report.Behaviors, 1)

		_, found := cacheStore.Get(cache.Key(result.Hash, "Alice"))
		assert.True(t, found)
		_, found = cacheStore.Get(result.Hash)
		assert.False(t, found, "отчет по участнику не должен подменять отчет по всей переписке")
	})

	t.Run("неизвестный участник", func(t *testing.T) {
		_, err := newUseCase(parser.NewTranscriptParser(), cache.NewCacheStore()).AnalyzeBytes(ctx, []byte(transcript), domain.AnalysisOptions{Participant: "Carol"})
		assert.ErrorIs(t, err, domain.ErrUnknownParticipant)
	})

	t.Run("попадание в кеш не вызывает парсер", func(t *testing.T) {
		p := new(mockParser)
		cacheStore := cache.NewCacheStore()
		uc := newUseCase(p, cacheStore)

		data := []byte("anything")
		hash := cache.CalculateHash(data)
		cachedResult := &domain.AnalysisResult{Hash: hash, Report: &domain.Report{SchemaVersion: domain.SchemaVersion}}
		cacheStore.Put(hash, cachedResult, time.Minute)

		result, err := uc.AnalyzeBytes(ctx, data, domain.AnalysisOptions{})
		require.NoError(t, err)
		assert.Same(t, cachedResult, result)
		p.AssertNotCalled(t, "ParseWithReport", mock.Anything)

		fromCache, found := uc.FromCache(hash, "")
		assert.True(t, found)
		assert.Same(t, cachedResult, fromCache)
	})

	t.Run("нет сообщений", func(t *testing.T) {
		p := new(mockParser)
		p.On("ParseWithReport", []byte("garbage")).Return(nil, domain.ParseReport{Lines: 1, Discarded: 1}).Once()
		reg := prometheus.NewRegistry()
		uc := newUseCase(p, cache.NewCacheStore(), WithMetrics(metrics.New(reg)))

		_, err := uc.AnalyzeBytes(ctx, []byte("garbage"), domain.AnalysisOptions{})
		assert.ErrorIs(t, err, domain.ErrNoMessages)
		p.AssertExpectations(t)
	})

	t.Run("ошибка источника", func(t *testing.T) {
		_, err := newUseCase(parser.NewTranscriptParser(), cache.NewCacheStore()).ProcessChat(ctx, filepath.Join(t.TempDir(), "missing.txt"), domain.AnalysisOptions{})
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("отмененный контекст", func(t *testing.T) {
		p := new(mockParser)
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := newUseCase(p, cache.NewCacheStore()).AnalyzeBytes(cancelled, []byte(transcript), domain.AnalysisOptions{})
		assert.True(t, errors.Is(err, context.Canceled))
		p.AssertNotCalled(t, "ParseWithReport", mock.Anything)
	})

	t.Run("без кеша", func(t *testing.T) {
		result, err := newUseCase(parser.NewTranscriptParser(), nil).AnalyzeBytes(ctx, []byte(transcript), domain.AnalysisOptions{})
		require.NoError(t, err)
		assert.Equal(t, 4, result.Report.Stats.TotalMessages)
	})
}
