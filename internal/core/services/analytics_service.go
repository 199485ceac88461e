package services

import (
	"math"
	"sort"
	"whatsapp-chat-analyzer/internal/domain"
	"whatsapp-chat-analyzer/internal/ports"
)

// Пороги значков фиксированы и сравниваются строго.
const (
	ghostShareThreshold      = 0.1
	carryShareThreshold      = 0.6
	doubleTextThreshold      = 0.3
	nightOwlShareThreshold   = 0.2
	earlyBirdShareThreshold  = 0.2
	healthVolumeWeight       = 0.4
	healthSentimentWeight    = 0.6
	neutralMonthSentiment    = 0.5
	lexiconSentimentHalfSpan = 5.0
)

// AnalyticsServiceImpl реализует интерфейс AnalyticsService.
type AnalyticsServiceImpl struct {
	scorer ports.SentimentScorer
}

// NewAnalyticsService создает новый экземпляр AnalyticsServiceImpl.
func NewAnalyticsService(scorer ports.SentimentScorer) ports.AnalyticsService {
	if scorer == nil {
		scorer = NewLexiconScorer()
	}
	return &AnalyticsServiceImpl{scorer: scorer}
}

type monthAccumulator struct {
	volume    int
	sentiment sumCount
}

// HealthTrend строит помесячный тренд "здоровья" переписки.
//
// Тональность месяца равна средней ненулевой оценке, переведенной из шкалы словаря
// [-5, 5] в [0, 1]; месяц без сигнала считается нейтральным (0.5). Объем нормируется
// по самому активному месяцу.
func (s *AnalyticsServiceImpl) HealthTrend(messages []domain.Message) []domain.HealthPoint {
	points := make([]domain.HealthPoint, 0)
	if len(messages) == 0 {
		return points
	}

	months := make(map[string]*monthAccumulator)
	for _, msg := range messages {
		key := msg.Timestamp.Format("2006-01")
		acc, ok := months[key]
		if !ok {
			acc = &monthAccumulator{}
			months[key] = acc
		}
		acc.volume++
		if score := s.scorer.Score(msg.Content); score != 0 {
			acc.sentiment.sum += float64(score)
			acc.sentiment.count++
		}
	}

	keys := make([]string, 0, len(months))
	maxVolume := 0
	for key, acc := range months {
		keys = append(keys, key)
		if acc.volume > maxVolume {
			maxVolume = acc.volume
		}
	}
	sort.Strings(keys)

	for i, key := range keys {
		acc := months[key]
		sentiment := normalizedSentiment(acc.sentiment)
		volume := float64(acc.volume) / float64(maxVolume) * 100
		score := int(math.Round(healthVolumeWeight*volume + healthSentimentWeight*sentiment*100))

		trend := domain.TrendBullish
		if i > 0 && score < points[i-1].HealthScore {
			trend = domain.TrendBearish
		}

		points = append(points, domain.HealthPoint{
			MonthKey:      key,
			MessageVolume: acc.volume,
			AvgSentiment:  round2(sentiment),
			HealthScore:   score,
			Trend:         trend,
		})
	}

	return points
}

func normalizedSentiment(sc sumCount) float64 {
	if sc.count == 0 {
		return neutralMonthSentiment
	}
	v := (sc.avg() + lexiconSentimentHalfSpan) / (2 * lexiconSentimentHalfSpan)
	return math.Min(1, math.Max(0, v))
}

type behaviorStats struct {
	count       int
	nightOwl    int
	earlyBird   int
	doubleTexts int
}

// DetectBehaviors присваивает участникам поведенческие значки. Виды значков проверяются
// независимо, поэтому участник может получить несколько сразу. Если participants
// равен nil, используются отправители в порядке первого появления.
func (s *AnalyticsServiceImpl) DetectBehaviors(messages []domain.Message, participants []string) map[string][]domain.BehaviorBadge {
	if participants == nil {
		participants = uniqueSenders(messages)
	}

	behaviors := make(map[string][]domain.BehaviorBadge, len(participants))
	stats := make(map[string]*behaviorStats, len(participants))
	for _, p := range participants {
		behaviors[p] = []domain.BehaviorBadge{}
		stats[p] = &behaviorStats{}
	}
	if len(messages) == 0 {
		return behaviors
	}

	lastSender := ""
	for i, msg := range messages {
		st, known := stats[msg.Sender]
		if known {
			st.count++
			hour := msg.Timestamp.Hour()
			if hour >= 1 && hour < 5 {
				st.nightOwl++
			}
			if hour >= 5 && hour < 9 {
				st.earlyBird++
			}
			if i > 0 && lastSender == msg.Sender {
				st.doubleTexts++
			}
		}
		lastSender = msg.Sender
	}

	total := float64(len(messages))
	for _, p := range participants {
		st := stats[p]
		if st.count == 0 {
			continue
		}
		count := float64(st.count)
		share := count / total

		if share < ghostShareThreshold {
			behaviors[p] = append(behaviors[p], domain.Badge(domain.BadgeGhost))
		}
		if share > carryShareThreshold {
			behaviors[p] = append(behaviors[p], domain.Badge(domain.BadgeCarry))
		}
		if float64(st.doubleTexts)/count > doubleTextThreshold {
			behaviors[p] = append(behaviors[p], domain.Badge(domain.BadgeEagerBeaver))
		}
		if float64(st.nightOwl)/count > nightOwlShareThreshold {
			behaviors[p] = append(behaviors[p], domain.Badge(domain.BadgeNightOwl))
		}
		if float64(st.earlyBird)/count > earlyBirdShareThreshold {
			behaviors[p] = append(behaviors[p], domain.Badge(domain.BadgeEarlyBird))
		}
	}

	return behaviors
}

func uniqueSenders(messages []domain.Message) []string {
	seen := make(map[string]bool)
	senders := make([]string, 0)
	for _, msg := range messages {
		if !seen[msg.Sender] {
			seen[msg.Sender] = true
			senders = append(senders, msg.Sender)
		}
	}
	return senders
}
