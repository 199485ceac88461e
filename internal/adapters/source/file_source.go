package source

import (
	"fmt"
	"os"
	"whatsapp-chat-analyzer/internal/ports"
)

// FileSource реализует интерфейс DataSource для чтения расшифровки с диска.
// Файл может быть как текстовым экспортом, так и .zip-архивом экспорта.
type FileSource struct {
	filePath string
}

// NewFileSource создает новый экземпляр FileSource.
func NewFileSource(filePath string) ports.DataSource {
	return &FileSource{filePath: filePath}
}

// Fetch читает файл по указанному пути и возвращает текст расшифровки.
func (s *FileSource) Fetch() ([]byte, error) {
	if s.filePath == "" {
		return nil, fmt.Errorf("не указан путь к файлу")
	}

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать файл %s: %w", s.filePath, err)
	}

	return unwrap(data)
}
