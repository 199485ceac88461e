package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"whatsapp-chat-analyzer/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const transcript = "[01/02/2024, 09:00:00] Alice: I love this, amazing!\n" +
	"[01/02/2024, 09:05:00] Bob: ok\nsee you soon\n" +
	"[02/02/2024, 23:30:00] Alice: <Media omitted>\n"

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()

	root := newRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append(args, "--config", filepath.Join(dir, "missing.yml")))

	err := root.Execute()
	return stdout.String(), err
}

func writeTranscript(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "_chat.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestAnalyzeCommand(t *testing.T) {
	path := writeTranscript(t, transcript)

	t.Run("отчет в JSON", func(t *testing.T) {
		out, err := execute(t, "analyze", path, "--format", "json")
		require.NoError(t, err)

		var report domain.Report
		require.NoError(t, json.Unmarshal([]byte(out), &report))
		assert.Equal(t, domain.SchemaVersion, report.SchemaVersion)
		assert.Equal(t, 3, report.Stats.TotalMessages)
		assert.Equal(t, []string{"Alice", "Bob"}, report.Stats.Participants)
		assert.Equal(t, 1, report.Parse.Continuations)
	})

	t.Run("фильтр по участнику", func(t *testing.T) {
		out, err := execute(t, "analyze", path, "--format", "json", "--participant", "Bob")
		require.NoError(t, err)

		var report domain.Report
		require.NoError(t, json.Unmarshal([]byte(out), &report))
		assert.Equal(t, "Bob", report.Participant)
		assert.Equal(t, 1, report.Stats.TotalMessages)
	})

	t.Run("неизвестный участник", func(t *testing.T) {
		_, err := execute(t, "analyze", path, "--format", "json", "-p", "Carol")
		assert.ErrorIs(t, err, domain.ErrUnknownParticipant)
	})

	t.Run("текстовая таблица", func(t *testing.T) {
		out, err := execute(t, "analyze", path, "--format", "table")
		require.NoError(t, err)
		assert.Contains(t, out, "Chat summary")
		assert.Contains(t, out, "Alice")
	})

	t.Run("рабочая книга xlsx", func(t *testing.T) {
		output := filepath.Join(t.TempDir(), "report.xlsx")
		_, err := execute(t, "analyze", path, "--format", "xlsx", "--output", output)
		require.NoError(t, err)

		f, err := excelize.OpenFile(output)
		require.NoError(t, err)
		defer f.Close()
		assert.Contains(t, f.GetSheetList(), "Participants")
	})

	t.Run("неизвестный формат", func(t *testing.T) {
		_, err := execute(t, "analyze", path, "--format", "csv")
		assert.ErrorContains(t, err, "unknown format")
	})

	t.Run("недопустимый порядок даты", func(t *testing.T) {
		_, err := execute(t, "analyze", path, "--format", "json", "--date-order", "ymd")
		assert.Error(t, err)
	})

	t.Run("файл без сообщений", func(t *testing.T) {
		_, err := execute(t, "analyze", writeTranscript(t, "nothing to see here\n"), "--format", "json")
		assert.ErrorIs(t, err, domain.ErrNoMessages)
	})

	t.Run("отсутствующий файл", func(t *testing.T) {
		_, err := execute(t, "analyze", filepath.Join(t.TempDir(), "nope.txt"), "--format", "json")
		assert.Error(t, err)
	})
}

func TestMessagesCommand(t *testing.T) {
	path := writeTranscript(t, transcript)

	out, err := execute(t, "messages", path, "--compact")
	require.NoError(t, err)

	var tr domain.Transcript
	require.NoError(t, json.Unmarshal([]byte(out), &tr))
	assert.Equal(t, domain.SchemaVersion, tr.SchemaVersion)
	require.Len(t, tr.Messages, 3)
	assert.Equal(t, "ok\nsee you soon", tr.Messages[1].Content)
	assert.True(t, tr.Messages[2].IsMedia)
}

func TestResolveFormat(t *testing.T) {
	format, err := resolveFormat("", "report.json")
	require.NoError(t, err)
	assert.Equal(t, formatJSON, format)

	format, err = resolveFormat("xlsx", "report.xlsx")
	require.NoError(t, err)
	assert.Equal(t, formatXLSX, format)
}
