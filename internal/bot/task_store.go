package bot

import (
	"sync"
	"time"
)

// chatTask — активная задача анализа одного чата Telegram.
type chatTask struct {
	taskID     string
	reservedAt time.Time
}

// TaskStore — потокобезопасное in-memory хранилище активных задач по chatID.
// У чата может быть не больше одной задачи: место занимается до скачивания файла,
// а идентификатор задачи бэкенда привязывается после ее запуска.
type TaskStore struct {
	mu    sync.Mutex
	tasks map[int64]*chatTask
}

// NewTaskStore создает новый экземпляр TaskStore.
func NewTaskStore() *TaskStore {
	return &TaskStore{
		tasks: make(map[int64]*chatTask),
	}
}

// Reserve занимает место для новой задачи чата. Возвращает false, если у чата
// уже есть активная задача.
func (s *TaskStore) Reserve(chatID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.tasks[chatID]; busy {
		return false
	}
	s.tasks[chatID] = &chatTask{reservedAt: time.Now()}
	return true
}

// Assign привязывает идентификатор задачи бэкенда к занятому месту.
func (s *TaskStore) Assign(chatID int64, taskID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if task, ok := s.tasks[chatID]; ok {
		task.taskID = taskID
		return
	}
	s.tasks[chatID] = &chatTask{taskID: taskID, reservedAt: time.Now()}
}

// Get возвращает идентификатор задачи чата. Второе значение false, если задачи нет;
// для занятого, но еще не запущенного места возвращается пустая строка и true.
func (s *TaskStore) Get(chatID int64) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[chatID]
	if !ok {
		return "", false
	}
	return task.taskID, true
}

// Release освобождает место чата.
func (s *TaskStore) Release(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tasks, chatID)
}

// Len возвращает число чатов с активной задачей.
func (s *TaskStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}
