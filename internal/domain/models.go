package domain

import (
	"errors"
	"time"
)

// SchemaVersion — версия JSON-схемы Transcript и Report.
// Увеличивается при любом несовместимом изменении полей.
const SchemaVersion = "1"

// ErrNoMessages возвращается вызывающей стороной, когда в расшифровке
// не найдено ни одного сообщения.
var ErrNoMessages = errors.New("no messages found in transcript")

// ErrUnknownParticipant возвращается, если фильтр указывает отправителя, которого нет в расшифровке.
var ErrUnknownParticipant = errors.New("participant not found in transcript")

// Message представляет одно сообщение из экспортированной переписки.
type Message struct {
	Timestamp time.Time `json:"timestamp"`
	Sender    string    `json:"sender"`
	// Content может содержать переводы строк, пришедшие из строк-продолжений.
	Content string `json:"content"`
	IsMedia bool   `json:"is_media"`
}

// Transcript — версионированная обертка над нормализованной последовательностью сообщений.
type Transcript struct {
	SchemaVersion string    `json:"schema_version"`
	Messages      []Message `json:"messages"`
}

// NewTranscript создает Transcript текущей версии схемы.
func NewTranscript(messages []Message) *Transcript {
	if messages == nil {
		messages = []Message{}
	}
	return &Transcript{SchemaVersion: SchemaVersion, Messages: messages}
}

// ParseReport описывает, как парсер распорядился строками расшифровки.
type ParseReport struct {
	Lines         int `json:"lines"`
	Headers       int `json:"headers"`
	Continuations int `json:"continuations"`
	// Discarded — непустые строки, которые не удалось отнести ни к одному сообщению.
	Discarded int `json:"discarded"`
}

// EmojiCount — частота одного эмодзи.
type EmojiCount struct {
	Emoji string `json:"emoji"`
	Count int    `json:"count"`
}

// BusiestDay — самый активный день.
type BusiestDay struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// WordCount — элемент облака слов.
type WordCount struct {
	Text  string `json:"text"`
	Value int    `json:"value"`
}

// SentimentPoint — средняя тональность за один день.
type SentimentPoint struct {
	Date  string  `json:"date"`
	Score float64 `json:"score"`
}

// SentimentStats содержит агрегаты тональности.
type SentimentStats struct {
	ByParticipant map[string]float64 `json:"by_participant"`
	Timeline      []SentimentPoint   `json:"timeline"`
	Overall       float64            `json:"overall"`
}

// ReplyTimeStats содержит среднее время ответа в минутах.
type ReplyTimeStats struct {
	ByParticipant  map[string]int `json:"by_participant"`
	OverallAverage int            `json:"overall_average"`
}

// AdvancedStats — вложенный блок расширенной статистики.
type AdvancedStats struct {
	Sentiment SentimentStats `json:"sentiment"`
	ReplyTime ReplyTimeStats `json:"reply_time"`
	WordCloud []WordCount    `json:"word_cloud"`
}

// StatisticsSummary — полный набор метрик по последовательности сообщений.
type StatisticsSummary struct {
	TotalMessages         int            `json:"total_messages"`
	TotalWords            int            `json:"total_words"`
	Participants          []string       `json:"participants"`
	MessagesByParticipant map[string]int `json:"messages_by_participant"`
	WordsByParticipant    map[string]int `json:"words_by_participant"`
	MessagesByDate        map[string]int `json:"messages_by_date"`
	MessagesByHour        [24]int        `json:"messages_by_hour"`
	MessagesByDayOfWeek   [7]int         `json:"messages_by_day_of_week"`
	TopEmojis             []EmojiCount   `json:"top_emojis"`
	AverageMessageLength  float64        `json:"average_message_length"`
	BusiestDay            BusiestDay     `json:"busiest_day"`
	BusiestHour           int            `json:"busiest_hour"`
	FirstMessage          *time.Time     `json:"first_message"`
	LastMessage           *time.Time     `json:"last_message"`
	ChatDuration          int            `json:"chat_duration"`
	Advanced              AdvancedStats  `json:"advanced"`
}

// NewEmptySummary возвращает полностью обнуленную сводку с непустыми (но пустыми) коллекциями,
// чтобы JSON содержал [] и {}, а не null.
func NewEmptySummary() *StatisticsSummary {
	return &StatisticsSummary{
		Participants:          []string{},
		MessagesByParticipant: map[string]int{},
		WordsByParticipant:    map[string]int{},
		MessagesByDate:        map[string]int{},
		TopEmojis:             []EmojiCount{},
		Advanced: AdvancedStats{
			Sentiment: SentimentStats{
				ByParticipant: map[string]float64{},
				Timeline:      []SentimentPoint{},
			},
			ReplyTime: ReplyTimeStats{
				ByParticipant: map[string]int{},
			},
			WordCloud: []WordCount{},
		},
	}
}

// Trend — направление изменения "здоровья" переписки относительно прошлого месяца.
type Trend string

const (
	TrendBullish Trend = "Bullish"
	TrendBearish Trend = "Bearish"
)

// HealthPoint — показатели одного календарного месяца.
type HealthPoint struct {
	MonthKey      string  `json:"month_key"`
	MessageVolume int     `json:"message_volume"`
	AvgSentiment  float64 `json:"avg_sentiment"`
	HealthScore   int     `json:"health_score"`
	Trend         Trend   `json:"trend"`
}

// BadgeKind — замкнутый набор поведенческих значков.
type BadgeKind string

const (
	BadgeGhost       BadgeKind = "ghost"
	BadgeCarry       BadgeKind = "carry"
	BadgeEagerBeaver BadgeKind = "eager_beaver"
	BadgeNightOwl    BadgeKind = "night_owl"
	BadgeEarlyBird   BadgeKind = "early_bird"
)

// BehaviorBadge — значок, присвоенный участнику.
type BehaviorBadge struct {
	Kind        BadgeKind `json:"kind"`
	Label       string    `json:"label"`
	Icon        string    `json:"icon"`
	Description string    `json:"description"`
	Color       string    `json:"color"`
}

var badgeCatalog = map[BadgeKind]BehaviorBadge{
	BadgeGhost: {
		Kind:        BadgeGhost,
		Label:       "The Ghost",
		Icon:        "👻",
		Description: "Hardly ever replies. Are they even reading this?",
		Color:       "gray",
	},
	BadgeCarry: {
		Kind:        BadgeCarry,
		Label:       "The Carry",
		Icon:        "🎒",
		Description: "Carrying the conversation on their back.",
		Color:       "blue",
	},
	BadgeEagerBeaver: {
		Kind:        BadgeEagerBeaver,
		Label:       "Eager Beaver",
		Icon:        "🥺",
		Description: "Sends multiple messages in a row. A lot.",
		Color:       "pink",
	},
	BadgeNightOwl: {
		Kind:        BadgeNightOwl,
		Label:       "Night Owl",
		Icon:        "🦉",
		Description: "Most active when the world sleeps (1 AM - 5 AM).",
		Color:       "purple",
	},
	BadgeEarlyBird: {
		Kind:        BadgeEarlyBird,
		Label:       "Early Bird",
		Icon:        "🌅",
		Description: "Up and texting before breakfast (5 AM - 9 AM).",
		Color:       "orange",
	},
}

// Badge возвращает описание значка указанного вида.
func Badge(kind BadgeKind) BehaviorBadge {
	return badgeCatalog[kind]
}

// AnalysisOptions управляет тем, какой срез переписки анализировать.
type AnalysisOptions struct {
	// Participant ограничивает статистику сообщениями одного отправителя. Пустое значение означает всю переписку.
	Participant string `json:"participant,omitempty"`
}

// Report — версионированный результат анализа одной расшифровки.
type Report struct {
	SchemaVersion string                     `json:"schema_version"`
	Participant   string                     `json:"participant,omitempty"`
	Stats         *StatisticsSummary         `json:"stats"`
	HealthTrend   []HealthPoint              `json:"health_trend"`
	Behaviors     map[string][]BehaviorBadge `json:"behaviors"`
	Parse         ParseReport                `json:"parse"`
}

// AnalysisResult объединяет отчет и сообщения, по которым он построен.
type AnalysisResult struct {
	// Hash — SHA256 текста расшифровки; по нему можно повторно запросить отчет из кэша.
	Hash     string
	Report   *Report
	Messages []Message
}
