// Package apiclient — клиент HTTP API сервера анализа, общий для бота и консольного клиента.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
	"whatsapp-chat-analyzer/internal/domain"
)

// Статусы задачи на сервере.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// ErrTaskFailed возвращается WaitForTask, если сервер завершил задачу с ошибкой.
var ErrTaskFailed = errors.New("задача завершилась с ошибкой")

// StatusError описывает неожиданный HTTP-статус ответа.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status code: %d", e.Code)
	}
	return fmt.Sprintf("unexpected status code: %d: %s", e.Code, e.Body)
}

// Client — клиент для взаимодействия с API бэкенд-сервера.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New создает новый экземпляр Client. Нулевой timeout означает 30 секунд.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// API-ответы
type StartTaskResponse struct {
	TaskID string `json:"task_id"`
}

type TaskStatusResponse struct {
	TaskID       string `json:"task_id"`
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message,omitempty"`
	Hash         string `json:"hash,omitempty"`
}

// TaskResultResponse — отчет выполненной задачи.
type TaskResultResponse struct {
	TaskID string         `json:"task_id"`
	Hash   string         `json:"hash"`
	Report *domain.Report `json:"report"`
}

// PaginationDTO представляет собой объект пагинации из ответа сервера.
type PaginationDTO struct {
	CurrentPage int `json:"current_page"`
	PageSize    int `json:"page_size"`
	TotalItems  int `json:"total_items"`
	TotalPages  int `json:"total_pages"`
}

// MessagesPage — страница нормализованных сообщений задачи.
type MessagesPage struct {
	Pagination PaginationDTO    `json:"pagination"`
	Data       []domain.Message `json:"data"`
}

// DocumentFile представляет файл для загрузки.
type DocumentFile struct {
	Name    string
	Content io.Reader
}

// StartTask отправляет файл экспорта на сервер для начала обработки.
// Пустой participant означает анализ всей переписки.
func (c *Client) StartTask(ctx context.Context, file DocumentFile, participant string) (*StartTaskResponse, error) {
	var b bytes.Buffer
	w := multipart.NewWriter(&b)

	fw, err := w.CreateFormFile("file", file.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file for %s: %w", file.Name, err)
	}
	if _, err = io.Copy(fw, file.Content); err != nil {
		return nil, fmt.Errorf("failed to copy file content for %s: %w", file.Name, err)
	}
	if participant != "" {
		if err := w.WriteField("participant", participant); err != nil {
			return nil, fmt.Errorf("failed to write participant field: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize form: %w", err)
	}

	var result StartTaskResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/process", w.FormDataContentType(), &b, http.StatusAccepted, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// StartTaskByHash запрашивает ранее построенный отчет по хешу расшифровки.
func (c *Client) StartTaskByHash(ctx context.Context, hash, participant string) (*StartTaskResponse, error) {
	body, err := json.Marshal(map[string]string{"hash": hash, "participant": participant})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	var result StartTaskResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/process-by-hash", "application/json", bytes.NewReader(body), http.StatusAccepted, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetTaskStatus запрашивает статус задачи.
func (c *Client) GetTaskStatus(ctx context.Context, taskID string) (*TaskStatusResponse, error) {
	var result TaskStatusResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/tasks/"+url.PathEscape(taskID), "", nil, http.StatusOK, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetTaskResult запрашивает отчет выполненной задачи.
func (c *Client) GetTaskResult(ctx context.Context, taskID string) (*TaskResultResponse, error) {
	var result TaskResultResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/tasks/"+url.PathEscape(taskID)+"/result", "", nil, http.StatusOK, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetTaskMessages запрашивает одну страницу сообщений выполненной задачи.
func (c *Client) GetTaskMessages(ctx context.Context, taskID string, page, pageSize int) (*MessagesPage, error) {
	path := fmt.Sprintf("/api/v1/tasks/%s/messages?page=%d&page_size=%d", url.PathEscape(taskID), page, pageSize)

	var result MessagesPage
	if err := c.do(ctx, http.MethodGet, path, "", nil, http.StatusOK, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// WaitForTask опрашивает статус задачи с интервалом interval, пока она не завершится.
// Для упавшей задачи возвращается ошибка, оборачивающая ErrTaskFailed.
func (c *Client) WaitForTask(ctx context.Context, taskID string, interval time.Duration) (*TaskStatusResponse, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}

		status, err := c.GetTaskStatus(ctx, taskID)
		if err != nil {
			return nil, err
		}

		switch status.Status {
		case StatusCompleted:
			return status, nil
		case StatusFailed:
			return status, fmt.Errorf("%w: %s", ErrTaskFailed, status.ErrorMessage)
		case StatusPending, StatusProcessing:
		default:
			return status, fmt.Errorf("unknown task status: %s", status.Status)
		}
	}
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, wantStatus int, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
