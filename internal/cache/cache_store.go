package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
	"whatsapp-chat-analyzer/internal/domain"
)

// CacheItem представляет кэшированный результат анализа
type CacheItem struct {
	Data      *domain.AnalysisResult
	ExpiresAt time.Time
}

// CacheStore управляет хранением и извлечением кэшированных результатов
type CacheStore struct {
	cache map[string]*CacheItem
	mutex sync.RWMutex
}

// NewCacheStore создает новый экземпляр CacheStore
func NewCacheStore() *CacheStore {
	return &CacheStore{
		cache: make(map[string]*CacheItem),
	}
}

// Get извлекает кэшированный элемент по ключу
func (cs *CacheStore) Get(key string) (*CacheItem, bool) {
	cs.mutex.RLock()
	defer cs.mutex.RUnlock()

	item, exists := cs.cache[key]
	if !exists || time.Now().After(item.ExpiresAt) {
		return nil, false
	}

	return item, true
}

// Put сохраняет результат в кэш с указанным сроком действия
func (cs *CacheStore) Put(key string, data *domain.AnalysisResult, ttl time.Duration) {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()

	cs.cache[key] = &CacheItem{
		Data:      data,
		ExpiresAt: time.Now().Add(ttl),
	}
}

// Len возвращает число записей, включая еще не удаленные просроченные.
func (cs *CacheStore) Len() int {
	cs.mutex.RLock()
	defer cs.mutex.RUnlock()
	return len(cs.cache)
}

// CleanupExpired удаляет просроченные элементы и возвращает их количество
func (cs *CacheStore) CleanupExpired() int {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()

	removed := 0
	now := time.Now()
	for key, item := range cs.cache {
		if now.After(item.ExpiresAt) {
			delete(cs.cache, key)
			removed++
		}
	}
	return removed
}

// StartCleanupTicker запускает периодическую очистку просроченных элементов до отмены ctx
func (cs *CacheStore) StartCleanupTicker(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cs.CleanupExpired()
			}
		}
	}()
}

// Key строит ключ кэша из хеша расшифровки и фильтра по участнику.
// Отчеты по всей переписке и по одному участнику хранятся раздельно.
func Key(hash, participant string) string {
	if participant == "" {
		return hash
	}
	return hash + "|" + participant
}

// CalculateHash вычисляет SHA256 от содержимого расшифровки
func CalculateHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// CalculateHashFromString вычисляет SHA256 от строки
func CalculateHashFromString(s string) string {
	return CalculateHash([]byte(s))
}

// CalculateFileHash вычисляет хеш SHA256 содержимого файла
func CalculateFileHash(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("не удалось открыть файл: %w", err)
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", fmt.Errorf("не удалось прочитать файл: %w", err)
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}
