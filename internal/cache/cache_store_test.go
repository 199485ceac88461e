package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
	"whatsapp-chat-analyzer/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func result(total int) *domain.AnalysisResult {
	stats := domain.NewEmptySummary()
	stats.TotalMessages = total
	return &domain.AnalysisResult{
		Report: &domain.Report{SchemaVersion: domain.SchemaVersion, Stats: stats},
	}
}

func TestCacheStore(t *testing.T) {
	t.Run("Запись и чтение из кэша", func(t *testing.T) {
		cs := NewCacheStore()
		data := result(3)
		ttl := time.Minute

		cs.Put("key", data, ttl)

		item, found := cs.Get("key")
		require.True(t, found)
		assert.Same(t, data, item.Data)
		assert.WithinDuration(t, time.Now().Add(ttl), item.ExpiresAt, time.Second)
		assert.Equal(t, 1, cs.Len())
	})

	t.Run("Чтение несуществующего ключа", func(t *testing.T) {
		_, found := NewCacheStore().Get("missing")
		assert.False(t, found)
	})

	t.Run("Просроченный элемент не возвращается", func(t *testing.T) {
		cs := NewCacheStore()
		cs.Put("expired", result(1), -time.Second)

		_, found := cs.Get("expired")
		assert.False(t, found)
	})

	t.Run("Очистка просроченных ключей", func(t *testing.T) {
		cs := NewCacheStore()
		cs.Put("expired", result(1), -time.Minute)
		cs.Put("valid", result(2), time.Minute)

		assert.Equal(t, 1, cs.CleanupExpired())
		assert.Equal(t, 1, cs.Len())

		_, found := cs.Get("valid")
		assert.True(t, found)
	})
}

func TestStartCleanupTicker(t *testing.T) {
	cs := NewCacheStore()
	cs.Put("expired", result(1), 50*time.Millisecond)
	cs.Put("valid", result(2), time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cs.StartCleanupTicker(ctx, 100*time.Millisecond)
	time.Sleep(150 * time.Millisecond)

	assert.Equal(t, 1, cs.Len(), "просроченный элемент должен быть удален таймером")
	_, found := cs.Get("valid")
	assert.True(t, found)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "abc", Key("abc", ""))
	assert.Equal(t, "abc|Alice", Key("abc", "Alice"))
	assert.NotEqual(t, Key("abc", ""), Key("abc", "Alice"))
}

func TestCalculateHash(t *testing.T) {
	// SHA256 для "hello world"
	const expected = "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"

	assert.Equal(t, expected, CalculateHash([]byte("hello world")))
	assert.Equal(t, expected, CalculateHashFromString("hello world"))

	t.Run("хеш файла совпадает с хешем содержимого", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "chat.txt")
		require.NoError(t, os.WriteFile(path, []byte("hello world"), 0o644))

		hash, err := CalculateFileHash(path)
		require.NoError(t, err)
		assert.Equal(t, expected, hash)
	})

	t.Run("Файл не найден", func(t *testing.T) {
		_, err := CalculateFileHash(filepath.Join(t.TempDir(), "missing.txt"))
		assert.Error(t, err)
	})

	t.Run("Директория вместо файла", func(t *testing.T) {
		_, err := CalculateFileHash(t.TempDir())
		assert.Error(t, err)
	})
}
