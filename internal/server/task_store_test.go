package server

import (
	"context"
	"testing"
	"time"
	"whatsapp-chat-analyzer/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskStore(t *testing.T) {
	t.Run("создание и получение задачи", func(t *testing.T) {
		ts := NewTaskStore()
		ttl := 5 * time.Minute

		ts.CreateTask("task-1", ttl)

		task, err := ts.GetTask("task-1")
		require.NoError(t, err)
		assert.Equal(t, "task-1", task.ID)
		assert.Equal(t, TaskStatusPending, task.Status)
		assert.WithinDuration(t, time.Now().Add(ttl), task.ExpiresAt, time.Second)
		assert.Equal(t, 1, ts.Len())
	})

	t.Run("неизвестная задача", func(t *testing.T) {
		ts := NewTaskStore()
		_, err := ts.GetTask("non-existent")
		assert.ErrorIs(t, err, ErrTaskNotFound)
	})

	t.Run("обновление статуса", func(t *testing.T) {
		ts := NewTaskStore()
		ts.CreateTask("task-1", time.Minute)

		require.NoError(t, ts.UpdateTaskStatus("task-1", TaskStatusProcessing))

		task, err := ts.GetTask("task-1")
		require.NoError(t, err)
		assert.Equal(t, TaskStatusProcessing, task.Status)

		assert.ErrorIs(t, ts.UpdateTaskStatus("non-existent", TaskStatusCompleted), ErrTaskNotFound)
	})

	t.Run("сохранение результата", func(t *testing.T) {
		ts := NewTaskStore()
		ts.CreateTask("task-1", time.Minute)

		result := &domain.AnalysisResult{Hash: "abc", Report: &domain.Report{}}
		require.NoError(t, ts.UpdateTaskResult("task-1", result))

		task, err := ts.GetTask("task-1")
		require.NoError(t, err)
		assert.Equal(t, TaskStatusCompleted, task.Status)
		assert.Same(t, result, task.Result)

		assert.Error(t, ts.UpdateTaskResult("non-existent", nil))
	})

	t.Run("сохранение ошибки", func(t *testing.T) {
		ts := NewTaskStore()
		ts.CreateTask("task-1", time.Minute)

		require.NoError(t, ts.UpdateTaskError("task-1", "something went wrong"))

		task, err := ts.GetTask("task-1")
		require.NoError(t, err)
		assert.Equal(t, TaskStatusFailed, task.Status)
		assert.Equal(t, "something went wrong", task.ErrorMessage)
	})

	t.Run("снимок не связан с хранилищем", func(t *testing.T) {
		ts := NewTaskStore()
		ts.CreateTask("task-1", time.Minute)

		task, err := ts.GetTask("task-1")
		require.NoError(t, err)
		task.Status = TaskStatusFailed

		again, err := ts.GetTask("task-1")
		require.NoError(t, err)
		assert.Equal(t, TaskStatusPending, again.Status)
	})

	t.Run("очистка просроченных", func(t *testing.T) {
		ts := NewTaskStore()
		ts.CreateTask("expired", -time.Minute)
		ts.CreateTask("valid", time.Minute)

		_, err := ts.GetTask("expired")
		assert.ErrorIs(t, err, ErrTaskNotFound, "просроченная задача не выдается даже до очистки")

		ts.CleanupExpired()

		assert.Equal(t, 1, ts.Len())
		_, err = ts.GetTask("valid")
		assert.NoError(t, err)
	})
}

func TestTaskStore_StartCleanupTicker(t *testing.T) {
	ts := NewTaskStore()
	ts.CreateTask("expired", 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ts.StartCleanupTicker(ctx, 30*time.Millisecond)

	assert.Eventually(t, func() bool {
		return ts.Len() == 0
	}, time.Second, 10*time.Millisecond)
}
