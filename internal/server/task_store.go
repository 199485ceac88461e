package server

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
	"whatsapp-chat-analyzer/internal/domain"
)

// ErrTaskNotFound возвращается, если задачи нет или срок ее хранения истек.
var ErrTaskNotFound = errors.New("задача не найдена")

// TaskStatus представляет статус задачи обработки
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// Task представляет собой одну задачу анализа
type Task struct {
	ID           string
	Status       TaskStatus
	Result       *domain.AnalysisResult
	ErrorMessage string
	CreatedAt    time.Time
	ExpiresAt    time.Time
}

// TaskStore управляет хранением и извлечением задач
type TaskStore struct {
	tasks map[string]*Task
	mutex sync.RWMutex
}

// NewTaskStore создает новый экземпляр TaskStore
func NewTaskStore() *TaskStore {
	return &TaskStore{
		tasks: make(map[string]*Task),
	}
}

// CreateTask создает новую задачу со статусом 'pending'
func (ts *TaskStore) CreateTask(taskID string, ttl time.Duration) {
	ts.mutex.Lock()
	defer ts.mutex.Unlock()

	now := time.Now()
	ts.tasks[taskID] = &Task{
		ID:        taskID,
		Status:    TaskStatusPending,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

func (ts *TaskStore) update(taskID string, apply func(*Task)) error {
	ts.mutex.Lock()
	defer ts.mutex.Unlock()

	task, exists := ts.tasks[taskID]
	if !exists {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}
	apply(task)
	return nil
}

// UpdateTaskStatus обновляет статус задачи
func (ts *TaskStore) UpdateTaskStatus(taskID string, status TaskStatus) error {
	return ts.update(taskID, func(t *Task) {
		t.Status = status
	})
}

// UpdateTaskResult сохраняет результат и переводит задачу в 'completed'
func (ts *TaskStore) UpdateTaskResult(taskID string, result *domain.AnalysisResult) error {
	return ts.update(taskID, func(t *Task) {
		t.Status = TaskStatusCompleted
		t.Result = result
	})
}

// UpdateTaskError сохраняет сообщение об ошибке и переводит задачу в 'failed'
func (ts *TaskStore) UpdateTaskError(taskID string, errorMessage string) error {
	return ts.update(taskID, func(t *Task) {
		t.Status = TaskStatusFailed
		t.ErrorMessage = errorMessage
	})
}

// GetTask возвращает снимок задачи по ее ID.
// Результат разделяется со снимком и не должен изменяться.
func (ts *TaskStore) GetTask(taskID string) (*Task, error) {
	ts.mutex.RLock()
	defer ts.mutex.RUnlock()

	task, exists := ts.tasks[taskID]
	if !exists || time.Now().After(task.ExpiresAt) {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}

	snapshot := *task
	return &snapshot, nil
}

// Len возвращает число хранимых задач
func (ts *TaskStore) Len() int {
	ts.mutex.RLock()
	defer ts.mutex.RUnlock()
	return len(ts.tasks)
}

// CleanupExpired удаляет просроченные задачи из хранилища
func (ts *TaskStore) CleanupExpired() {
	ts.mutex.Lock()
	defer ts.mutex.Unlock()

	now := time.Now()
	for taskID, task := range ts.tasks {
		if now.After(task.ExpiresAt) {
			delete(ts.tasks, taskID)
		}
	}
}

// StartCleanupTicker запускает тикер для периодической очистки просроченных задач
func (ts *TaskStore) StartCleanupTicker(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				ts.CleanupExpired()
			}
		}
	}()
}
