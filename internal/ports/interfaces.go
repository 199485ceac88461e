package ports

import (
	"whatsapp-chat-analyzer/internal/domain"
)

// DataSource определяет интерфейс для получения исходного текста расшифровки.
type DataSource interface {
	// Fetch загружает данные из источника и возвращает их в виде байтового среза.
	Fetch() ([]byte, error)
}

// Parser определяет интерфейс для разбора текста расшифровки в последовательность сообщений.
// Разбор никогда не завершается ошибкой: нераспознанные строки отбрасываются и учитываются в отчете.
type Parser interface {
	Parse(data []byte) []domain.Message
	ParseWithReport(data []byte) ([]domain.Message, domain.ParseReport)
}

// SentimentScorer определяет интерфейс лексиконной оценки тональности текста.
type SentimentScorer interface {
	Score(text string) int
}

// StatsService определяет интерфейс агрегатора статистики.
type StatsService interface {
	Calculate(messages []domain.Message) *domain.StatisticsSummary
}

// AnalyticsService определяет интерфейс модуля "здоровья" переписки и поведенческих значков.
type AnalyticsService interface {
	HealthTrend(messages []domain.Message) []domain.HealthPoint
	DetectBehaviors(messages []domain.Message, participants []string) map[string][]domain.BehaviorBadge
}

// Exporter определяет интерфейс для вывода результата.
type Exporter interface {
	// Export принимает готовый отчет и выводит его.
	Export(report *domain.Report) error
}
