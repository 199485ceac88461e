package apiclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"whatsapp-chat-analyzer/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_StartTask(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/process", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		content, _ := io.ReadAll(file)

		assert.Equal(t, "_chat.txt", header.Filename)
		assert.Equal(t, "hello", string(content))
		assert.Equal(t, "Alice", r.FormValue("participant"))

		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"task_id":"t-1"}`))
	}))
	defer ts.Close()

	c := New(ts.URL+"/", time.Second)
	resp, err := c.StartTask(context.Background(), DocumentFile{Name: "_chat.txt", Content: strings.NewReader("hello")}, "Alice")

	require.NoError(t, err)
	assert.Equal(t, "t-1", resp.TaskID)
}

func TestClient_StartTaskByHash(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "abc", req["hash"])
		assert.Equal(t, "", req["participant"])

		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"task_id":"t-2"}`))
	}))
	defer ts.Close()

	resp, err := New(ts.URL, 0).StartTaskByHash(context.Background(), "abc", "")
	require.NoError(t, err)
	assert.Equal(t, "t-2", resp.TaskID)
}

func TestClient_UnexpectedStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Задача не найдена", http.StatusNotFound)
	}))
	defer ts.Close()

	_, err := New(ts.URL, time.Second).GetTaskStatus(context.Background(), "missing")

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.Code)
	assert.Equal(t, "Задача не найдена", statusErr.Body)
}

func TestClient_ResultAndMessages(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/tasks/t-1/result":
			_, _ = w.Write([]byte(`{"task_id":"t-1","hash":"h","report":{"schema_version":"1","stats":{"total_messages":2}}}`))
		case "/api/v1/tasks/t-1/messages":
			assert.Equal(t, "2", r.URL.Query().Get("page"))
			assert.Equal(t, "10", r.URL.Query().Get("page_size"))
			_, _ = w.Write([]byte(`{"pagination":{"current_page":2,"page_size":10,"total_items":11,"total_pages":2},` +
				`"data":[{"timestamp":"2024-02-01T10:00:00Z","sender":"Alice","content":"hi","is_media":false}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()

	c := New(ts.URL, time.Second)

	result, err := c.GetTaskResult(context.Background(), "t-1")
	require.NoError(t, err)
	assert.Equal(t, "h", result.Hash)
	require.NotNil(t, result.Report)
	assert.Equal(t, 2, result.Report.Stats.TotalMessages)

	page, err := c.GetTaskMessages(context.Background(), "t-1", 2, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Pagination.TotalPages)
	require.Len(t, page.Data, 1)
	assert.Equal(t, domain.Message{
		Timestamp: time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC),
		Sender:    "Alice",
		Content:   "hi",
	}, page.Data[0])
}

func TestClient_WaitForTask(t *testing.T) {
	statusServer := func(final string) *httptest.Server {
		var calls atomic.Int32
		return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			status := StatusProcessing
			if calls.Add(1) >= 3 {
				status = final
			}
			_ = json.NewEncoder(w).Encode(TaskStatusResponse{TaskID: "t-1", Status: status, ErrorMessage: "boom"})
		}))
	}

	t.Run("ожидание завершения", func(t *testing.T) {
		ts := statusServer(StatusCompleted)
		defer ts.Close()

		status, err := New(ts.URL, time.Second).WaitForTask(context.Background(), "t-1", time.Millisecond)
		require.NoError(t, err)
		assert.Equal(t, StatusCompleted, status.Status)
	})

	t.Run("упавшая задача", func(t *testing.T) {
		ts := statusServer(StatusFailed)
		defer ts.Close()

		_, err := New(ts.URL, time.Second).WaitForTask(context.Background(), "t-1", time.Millisecond)
		assert.ErrorIs(t, err, ErrTaskFailed)
		assert.Contains(t, err.Error(), "boom")
	})

	t.Run("отмена контекста", func(t *testing.T) {
		ts := statusServer(StatusPending)
		defer ts.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := New(ts.URL, time.Second).WaitForTask(ctx, "t-1", time.Hour)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
