package source

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
)

// ErrNoTranscript возвращается, если в архиве нет текстового файла переписки.
var ErrNoTranscript = errors.New("в архиве нет файла переписки .txt")

// maxTranscriptSize ограничивает распакованный размер расшифровки.
const maxTranscriptSize = 256 << 20

var zipMagic = []byte("PK\x03\x04")

// IsZip сообщает, похожи ли данные на zip-архив.
func IsZip(data []byte) bool {
	return bytes.HasPrefix(data, zipMagic)
}

// ExtractTranscript достает расшифровку из архива экспорта WhatsApp. Предпочитается
// _chat.txt (формат iOS), иначе берется первый по имени .txt файл. Вложения игнорируются.
func ExtractTranscript(data []byte) ([]byte, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть архив: %w", err)
	}

	var candidates []*zip.File
	for _, f := range reader.File {
		if f.FileInfo().IsDir() || !strings.EqualFold(path.Ext(f.Name), ".txt") {
			continue
		}
		if strings.HasPrefix(path.Base(f.Name), "._") {
			continue
		}
		candidates = append(candidates, f)
	}
	if len(candidates) == 0 {
		return nil, ErrNoTranscript
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		ci, cj := path.Base(candidates[i].Name) == "_chat.txt", path.Base(candidates[j].Name) == "_chat.txt"
		if ci != cj {
			return ci
		}
		return candidates[i].Name < candidates[j].Name
	})

	f := candidates[0]
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть %s в архиве: %w", f.Name, err)
	}
	defer rc.Close()

	content, err := io.ReadAll(io.LimitReader(rc, maxTranscriptSize+1))
	if err != nil {
		return nil, fmt.Errorf("не удалось распаковать %s: %w", f.Name, err)
	}
	if len(content) > maxTranscriptSize {
		return nil, fmt.Errorf("файл %s в архиве слишком большой", f.Name)
	}

	return content, nil
}

func unwrap(data []byte) ([]byte, error) {
	if !IsZip(data) {
		return data, nil
	}
	return ExtractTranscript(data)
}
