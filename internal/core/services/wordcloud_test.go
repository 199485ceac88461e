package services

import (
	"strings"
	"testing"
	"whatsapp-chat-analyzer/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWordFrequency(t *testing.T) {
	t.Run("при равной частоте сохраняется порядок появления", func(t *testing.T) {
		wf := NewWordFrequency()
		wf.Add(strings.Repeat("alpha ", 10))
		wf.Add(strings.Repeat("bravo ", 10))
		wf.Add(strings.Repeat("charlie ", 5))

		assert.Equal(t, []domain.WordCount{
			{Text: "alpha", Value: 10},
			{Text: "bravo", Value: 10},
			{Text: "charlie", Value: 5},
		}, wf.Top(WordCloudSize))
	})

	t.Run("короткие, числовые и стоп-слова отбрасываются", func(t *testing.T) {
		wf := NewWordFrequency()
		wf.Add("ok the 2024 with pizza")
		wf.Add("<Media omitted>")

		assert.Equal(t, []domain.WordCount{{Text: "pizza", Value: 1}}, wf.Top(WordCloudSize))
	})

	t.Run("пунктуация и регистр", func(t *testing.T) {
		wf := NewWordFrequency()
		wf.Add(`Pizza! "pizza" (PIZZA), pizza?`)

		assert.Equal(t, []domain.WordCount{{Text: "pizza", Value: 4}}, wf.Top(WordCloudSize))
	})

	t.Run("размер облака ограничен", func(t *testing.T) {
		wf := NewWordFrequency()
		for i := 0; i < 100; i++ {
			wf.Add("word" + strings.Repeat("x", i+1))
		}

		top := wf.Top(WordCloudSize)
		require.Len(t, top, WordCloudSize)
		assert.Equal(t, "wordx", top[0].Text)
	})

	t.Run("пустой построитель", func(t *testing.T) {
		top := NewWordFrequency().Top(WordCloudSize)
		assert.NotNil(t, top)
		assert.Empty(t, top)
	})
}
