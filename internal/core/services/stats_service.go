package services

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"whatsapp-chat-analyzer/internal/domain"
	"whatsapp-chat-analyzer/internal/ports"
)

const (
	// replyCutoffMinutes — паузы от этого значения считаются разрывом разговора, а не ответом.
	replyCutoffMinutes = 360
	topEmojiCount      = 10
	dateKeyLayout      = "2006-01-02"
)

var emojiRegex = regexp.MustCompile(`[\x{1F300}-\x{1F9FF}\x{2600}-\x{27BF}\x{1F1E0}-\x{1F1FF}]`)

// StatsServiceImpl реализует интерфейс StatsService.
type StatsServiceImpl struct {
	scorer ports.SentimentScorer
}

// NewStatsService создает новый экземпляр StatsServiceImpl.
// Если scorer равен nil, используется словарная оценка по умолчанию.
func NewStatsService(scorer ports.SentimentScorer) ports.StatsService {
	if scorer == nil {
		scorer = NewLexiconScorer()
	}
	return &StatsServiceImpl{scorer: scorer}
}

// sumCount — накопитель для средних значений.
type sumCount struct {
	sum   float64
	count int
}

func (sc sumCount) avg() float64 {
	if sc.count == 0 {
		return 0
	}
	return sc.sum / float64(sc.count)
}

// orderedCounter считает вхождения ключей и помнит порядок их первого появления.
type orderedCounter struct {
	counts map[string]int
	order  []string
}

func newOrderedCounter() *orderedCounter {
	return &orderedCounter{counts: make(map[string]int)}
}

func (c *orderedCounter) inc(key string) {
	if _, seen := c.counts[key]; !seen {
		c.order = append(c.order, key)
	}
	c.counts[key]++
}

// Calculate вычисляет полную сводку за один проход по сообщениям и один проход свертки.
// Пустой ввод дает обнуленную сводку без запуска основного прохода.
func (s *StatsServiceImpl) Calculate(messages []domain.Message) *domain.StatisticsSummary {
	stats := domain.NewEmptySummary()
	if len(messages) == 0 {
		return stats
	}

	byParticipant := newOrderedCounter()
	byDate := newOrderedCounter()
	emojis := newOrderedCounter()
	words := NewWordFrequency()

	sentimentBySender := make(map[string]*sumCount)
	sentimentByDate := make(map[string]*sumCount)
	replyBySender := make(map[string]*sumCount)
	var sentimentOrder, replyOrder []string

	var prev *domain.Message
	for i := range messages {
		msg := &messages[i]

		byParticipant.inc(msg.Sender)
		stats.WordsByParticipant[msg.Sender] += len(strings.Fields(msg.Content))
		words.Add(msg.Content)

		dateKey := msg.Timestamp.Format(dateKeyLayout)
		byDate.inc(dateKey)
		stats.MessagesByHour[msg.Timestamp.Hour()]++
		stats.MessagesByDayOfWeek[msg.Timestamp.Weekday()]++

		for _, e := range emojiRegex.FindAllString(msg.Content, -1) {
			emojis.inc(e)
		}

		if score := s.scorer.Score(msg.Content); score != 0 {
			if _, ok := sentimentBySender[msg.Sender]; !ok {
				sentimentBySender[msg.Sender] = &sumCount{}
				sentimentOrder = append(sentimentOrder, msg.Sender)
			}
			sentimentBySender[msg.Sender].sum += float64(score)
			sentimentBySender[msg.Sender].count++

			if _, ok := sentimentByDate[dateKey]; !ok {
				sentimentByDate[dateKey] = &sumCount{}
			}
			sentimentByDate[dateKey].sum += float64(score)
			sentimentByDate[dateKey].count++
		}

		if prev != nil && prev.Sender != msg.Sender {
			minutes := msg.Timestamp.Sub(prev.Timestamp).Minutes()
			if minutes < replyCutoffMinutes {
				if _, ok := replyBySender[msg.Sender]; !ok {
					replyBySender[msg.Sender] = &sumCount{}
					replyOrder = append(replyOrder, msg.Sender)
				}
				replyBySender[msg.Sender].sum += minutes
				replyBySender[msg.Sender].count++
			}
		}
		prev = msg
	}

	stats.TotalMessages = len(messages)
	stats.Participants = append(stats.Participants, byParticipant.order...)
	stats.MessagesByParticipant = byParticipant.counts
	stats.MessagesByDate = byDate.counts
	for _, n := range stats.WordsByParticipant {
		stats.TotalWords += n
	}
	stats.AverageMessageLength = float64(stats.TotalWords) / float64(stats.TotalMessages)

	stats.BusiestDay = busiestDay(byDate)
	stats.BusiestHour = busiestHour(stats.MessagesByHour)
	stats.TopEmojis = topEmojis(emojis, topEmojiCount)

	first := messages[0].Timestamp
	last := messages[len(messages)-1].Timestamp
	stats.FirstMessage = &first
	stats.LastMessage = &last
	stats.ChatDuration = int(math.Ceil(last.Sub(first).Hours() / 24))

	var overallSentiment sumCount
	for _, sender := range sentimentOrder {
		sc := sentimentBySender[sender]
		stats.Advanced.Sentiment.ByParticipant[sender] = round2(sc.avg())
		overallSentiment.sum += sc.sum
		overallSentiment.count += sc.count
	}
	stats.Advanced.Sentiment.Overall = round2(overallSentiment.avg())
	stats.Advanced.Sentiment.Timeline = sentimentTimeline(sentimentByDate)

	var overallReply sumCount
	for _, sender := range replyOrder {
		sc := replyBySender[sender]
		stats.Advanced.ReplyTime.ByParticipant[sender] = roundHalfUp(sc.avg())
		overallReply.sum += sc.sum
		overallReply.count += sc.count
	}
	stats.Advanced.ReplyTime.OverallAverage = roundHalfUp(overallReply.avg())

	stats.Advanced.WordCloud = words.Top(WordCloudSize)

	return stats
}

// FilterByParticipant возвращает подпоследовательность сообщений одного отправителя
// в исходном порядке.
func FilterByParticipant(messages []domain.Message, sender string) []domain.Message {
	filtered := make([]domain.Message, 0)
	for _, msg := range messages {
		if msg.Sender == sender {
			filtered = append(filtered, msg)
		}
	}
	return filtered
}

// busiestDay выбирает день с максимумом сообщений; при равенстве побеждает встреченный раньше.
func busiestDay(byDate *orderedCounter) domain.BusiestDay {
	best := domain.BusiestDay{}
	for _, date := range byDate.order {
		if count := byDate.counts[date]; count > best.Count {
			best = domain.BusiestDay{Date: date, Count: count}
		}
	}
	return best
}

// busiestHour выбирает час с максимумом сообщений; при равенстве побеждает более ранний.
func busiestHour(hours [24]int) int {
	best, top := 0, 0
	for hour, count := range hours {
		if count > top {
			best, top = hour, count
		}
	}
	return best
}

func topEmojis(emojis *orderedCounter, n int) []domain.EmojiCount {
	ranked := make([]domain.EmojiCount, 0, len(emojis.order))
	for _, e := range emojis.order {
		ranked = append(ranked, domain.EmojiCount{Emoji: e, Count: emojis.counts[e]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

func sentimentTimeline(byDate map[string]*sumCount) []domain.SentimentPoint {
	timeline := make([]domain.SentimentPoint, 0, len(byDate))
	for date, sc := range byDate {
		timeline = append(timeline, domain.SentimentPoint{Date: date, Score: round2(sc.avg())})
	}
	sort.Slice(timeline, func(i, j int) bool {
		return timeline[i].Date < timeline[j].Date
	})
	return timeline
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// roundHalfUp округляет половины вверх, в том числе для отрицательных значений.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

