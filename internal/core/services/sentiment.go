package services

import (
	"strings"
	"unicode"
	"whatsapp-chat-analyzer/internal/ports"
)

// sentimentLexicon — упрощенный словарь на основе AFINN-165. Заполняется один раз и не изменяется.
var sentimentLexicon = map[string]int{
	// Позитивные
	"amazing": 4, "awesome": 4, "beautiful": 3, "best": 3, "better": 2,
	"brilliant": 4, "celebrate": 3, "confident": 2, "congrats": 3, "congratulations": 3,
	"cool": 1, "cute": 2, "dedicated": 2, "delighted": 3, "excellent": 3,
	"excited": 3, "exciting": 3, "favorite": 2, "fav": 2, "fun": 2, "funny": 2,
	"glad": 3, "good": 2, "great": 3, "happy": 3, "haha": 1, "hahaha": 2,
	"hope": 2, "hug": 2, "interesting": 2, "joy": 3, "kind": 2, "laugh": 1,
	"like": 1, "lol": 1, "love": 4, "loved": 3, "lovely": 3, "luck": 3,
	"nice": 2, "ok": 1, "okay": 1, "perfect": 3, "please": 1, "pleased": 2,
	"proud": 2, "ready": 1, "super": 3, "support": 2, "sweet": 2, "thank": 2,
	"thanks": 2, "thx": 1, "win": 4, "winner": 4, "wonderful": 4, "wow": 4,
	"yay": 3, "yes": 1, "yeah": 1, "yep": 1, "100": 3,
	"🔥": 2, "❤️": 3, "❤": 3, "😊": 1, "😂": 1, "😍": 3, "👍": 1, "🎉": 3, "✨": 2,

	// Негативные
	"bad": -3, "boring": -2, "broken": -1, "busy": -1, "crazy": -1,
	"cry": -2, "damn": -2, "dead": -3, "die": -3, "disappointed": -2,
	"done": -1, "dumb": -3, "error": -2, "fail": -2, "failed": -2,
	"fault": -2, "fear": -2, "fight": -2, "fuck": -4, "hate": -3,
	"hell": -4, "help": -2, "hurt": -2, "ignore": -1, "insane": -2,
	"issue": -1, "kill": -3, "late": -1, "leave": -1, "lie": -2,
	"lone": -1, "lose": -3, "loss": -3, "mad": -3, "miss": -1,
	"missed": -1, "no": -1, "nope": -1, "pain": -2, "problem": -2,
	"sad": -2, "shit": -4, "shut": -1, "sick": -2, "sorry": -1,
	"stop": -1, "stupid": -2, "suck": -3, "terrible": -3, "tired": -2,
	"trouble": -2, "ugly": -3, "upset": -2, "waste": -2, "weak": -2,
	"worry": -3, "worst": -3, "wrong": -2, "wtf": -4,
	"😭": -2, "😞": -1, "😡": -2, "💔": -3, "👎": -1,
}

// SentimentLabel — грубая категория тональности для отображения.
type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "Positive"
	SentimentNeutral  SentimentLabel = "Neutral"
	SentimentNegative SentimentLabel = "Negative"
)

// LexiconScorer реализует интерфейс SentimentScorer поиском слов в словаре.
type LexiconScorer struct{}

// NewLexiconScorer создает новый экземпляр LexiconScorer.
func NewLexiconScorer() ports.SentimentScorer {
	return &LexiconScorer{}
}

// Score суммирует веса всех найденных в словаре слов. Результат не ограничен диапазоном:
// длинные или насыщенные эмодзи сообщения могут выходить за [-5, 5]. Ноль означает
// отсутствие сигнала и исключается из агрегатов.
func (s *LexiconScorer) Score(text string) int {
	if text == "" {
		return 0
	}

	score := 0
	for _, word := range strings.FieldsFunc(strings.ToLower(text), isSentimentSeparator) {
		score += sentimentLexicon[word]
	}
	return score
}

// Label классифицирует оценку: >= 2 позитивная, <= -2 негативная, иначе нейтральная.
func Label(score float64) SentimentLabel {
	switch {
	case score >= 2:
		return SentimentPositive
	case score <= -2:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

func isSentimentSeparator(r rune) bool {
	switch r {
	case ',', '.', '!', '?', ';', ':':
		return true
	}
	return unicode.IsSpace(r)
}
