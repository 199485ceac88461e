package source

import (
	"fmt"
	"whatsapp-chat-analyzer/internal/ports"
)

// MemorySource реализует интерфейс DataSource для данных, уже находящихся в памяти,
// например загруженных через HTTP или полученных ботом.
type MemorySource struct {
	data []byte
}

// NewMemorySource создает новый экземпляр MemorySource.
func NewMemorySource(data []byte) ports.DataSource {
	return &MemorySource{data: data}
}

// Fetch возвращает копию данных; архив экспорта распаковывается.
func (s *MemorySource) Fetch() ([]byte, error) {
	if s.data == nil {
		return nil, fmt.Errorf("данные не установлены")
	}

	dataCopy := make([]byte, len(s.data))
	copy(dataCopy, s.data)

	return unwrap(dataCopy)
}
