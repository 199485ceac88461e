package bot

import (
	"context"
	"time"
	"whatsapp-chat-analyzer/internal/apiclient"
)

// ServerAPI — операции бэкенда, которые использует бот. Реализуется apiclient.Client.
type ServerAPI interface {
	StartTask(ctx context.Context, file apiclient.DocumentFile, participant string) (*apiclient.StartTaskResponse, error)
	WaitForTask(ctx context.Context, taskID string, interval time.Duration) (*apiclient.TaskStatusResponse, error)
	GetTaskResult(ctx context.Context, taskID string) (*apiclient.TaskResultResponse, error)
}

var _ ServerAPI = (*apiclient.Client)(nil)
