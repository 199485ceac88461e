package services

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
	"whatsapp-chat-analyzer/internal/domain"
)

// WordCloudSize — сколько слов попадает в облако.
const WordCloudSize = 75

// stopWords — служебные слова, не несущие смысла для облака слов.
var stopWords = buildStopWords(
	// английские
	"the", "and", "for", "are", "but", "not", "you", "all", "any", "can", "had", "her",
	"was", "one", "our", "out", "day", "get", "has", "him", "his", "how", "man", "new",
	"now", "old", "see", "two", "way", "who", "boy", "did", "its", "let", "put", "say",
	"she", "too", "use", "that", "with", "have", "this", "will", "your", "from", "they",
	"know", "want", "been", "good", "much", "some", "time", "very", "when", "come",
	"here", "just", "like", "long", "make", "many", "more", "only", "over", "such",
	"take", "than", "them", "well", "were", "what", "then", "there", "these", "their",
	"would", "about", "could", "should", "which", "where", "while", "into", "also",
	"because", "being", "both", "each", "even", "ever", "every", "going",
	"gonna", "got", "i'm", "it's", "don't", "didn't", "can't", "won't", "that's",
	"yes", "yeah", "okay", "lol", "haha", "hahaha", "omg", "really", "still", "though",
	"thing", "things", "think", "thought", "why", "yet", "off", "own", "same", "ours",
	"mine", "yours", "those", "doing", "does", "done", "dont", "im", "ive", "youre",
	// маркеры вложений и служебных сообщений экспорта
	"<media", "omitted>", "omitted", "image", "video", "audio", "sticker", "gif",
	"document", "deleted", "message", "null", "https", "http", "www", "edited",
)

func buildStopWords(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// WordFrequency накапливает частоты слов по всему корпусу, запоминая порядок первого появления.
type WordFrequency struct {
	counts map[string]int
	order  []string
}

// NewWordFrequency создает пустой построитель облака слов.
func NewWordFrequency() *WordFrequency {
	return &WordFrequency{counts: make(map[string]int)}
}

// Add токенизирует текст и учитывает значимые слова.
func (wf *WordFrequency) Add(text string) {
	for _, token := range strings.FieldsFunc(strings.ToLower(text), isWordSeparator) {
		if !isMeaningful(token) {
			continue
		}
		if _, seen := wf.counts[token]; !seen {
			wf.order = append(wf.order, token)
		}
		wf.counts[token]++
	}
}

// Top возвращает не более n самых частых слов. При равной частоте сохраняется
// порядок первого появления.
func (wf *WordFrequency) Top(n int) []domain.WordCount {
	ranked := make([]domain.WordCount, 0, len(wf.order))
	for _, token := range wf.order {
		ranked = append(ranked, domain.WordCount{Text: token, Value: wf.counts[token]})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Value > ranked[j].Value
	})

	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

func isMeaningful(token string) bool {
	if utf8.RuneCountInString(token) <= 2 {
		return false
	}
	if _, stop := stopWords[token]; stop {
		return false
	}
	return !isNumeric(token)
}

func isNumeric(token string) bool {
	for _, r := range token {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isWordSeparator(r rune) bool {
	switch r {
	case ',', '.', '!', '?', ';', ':', '"', '(', ')':
		return true
	}
	return unicode.IsSpace(r)
}
