package services

import (
	"github.com/stretchr/testify/mock"
)

// MockSentimentScorer — мок-реализация SentimentScorer для тестирования агрегатов
// независимо от словаря.
type MockSentimentScorer struct {
	mock.Mock
}

// Score реализует интерфейс SentimentScorer
func (m *MockSentimentScorer) Score(text string) int {
	args := m.Called(text)
	return args.Int(0)
}
