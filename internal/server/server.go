package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"whatsapp-chat-analyzer/internal/cache"
	"whatsapp-chat-analyzer/internal/domain"
	"whatsapp-chat-analyzer/internal/metrics"
	"whatsapp-chat-analyzer/internal/pkg/config"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	defaultPage     = 1
	defaultPageSize = 50
	maxPageSize     = 1000
)

// ChatProcessor определяет интерфейс для варианта использования, который анализирует чаты.
type ChatProcessor interface {
	AnalyzeBytes(ctx context.Context, data []byte, opts domain.AnalysisOptions) (*domain.AnalysisResult, error)
	FromCache(hash, participant string) (*domain.AnalysisResult, bool)
}

// Server представляет HTTP-сервер
type Server struct {
	HTTPServer *http.Server
	cfg        *config.Config
	taskStore  *TaskStore
	cacheStore *cache.CacheStore
	processor  ChatProcessor
	registry   *prometheus.Registry
	metrics    *metrics.Metrics
	logger     *slog.Logger

	// baseCtx отменяется при Shutdown и прерывает фоновые задачи.
	baseCtx context.Context
	stop    context.CancelFunc
}

// Option настраивает Server.
type Option func(*Server)

// WithRegistry задает реестр Prometheus, который отдается на /metrics.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) {
		s.registry = reg
	}
}

// WithMetrics подключает счетчики фоновых задач.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithLogger задает логгер сервера.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// New создает новый экземпляр Server
func New(cfg *config.Config, processor ChatProcessor, taskStore *TaskStore, cacheStore *cache.CacheStore, opts ...Option) (*Server, error) {
	if processor == nil {
		return nil, errors.New("не задан обработчик чатов")
	}
	if taskStore == nil {
		return nil, errors.New("не задано хранилище задач")
	}

	s := &Server{
		cfg:        cfg,
		taskStore:  taskStore,
		cacheStore: cacheStore,
		processor:  processor,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.baseCtx, s.stop = context.WithCancel(context.Background())

	if s.registry != nil {
		metrics.RegisterGaugeFunc(s.registry, "tasks_stored", "Number of task records held in memory.", func() float64 {
			return float64(taskStore.Len())
		})
		if cacheStore != nil {
			metrics.RegisterGaugeFunc(s.registry, "cache_entries", "Number of cached analysis results.", func() float64 {
				return float64(cacheStore.Len())
			})
		}
	}

	s.HTTPServer = &http.Server{
		Addr:         cfg.Address(),
		Handler:      s.routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return s, nil
}

// Handler возвращает маршрутизатор сервера
func (s *Server) Handler() http.Handler {
	return s.HTTPServer.Handler
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if s.registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	} else {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/process", s.handleProcess)
		r.Post("/process-by-hash", s.handleProcessByHash)
		r.Post("/analyze", s.handleAnalyze)
		r.Get("/tasks/{taskID}", s.handleTaskStatus)
		r.Get("/tasks/{taskID}/result", s.handleTaskResult)
		r.Get("/tasks/{taskID}/messages", s.handleTaskMessages)
	})

	return r
}

// StartBackground запускает периодическую очистку задач и кэша до отмены ctx.
func (s *Server) StartBackground(ctx context.Context) {
	interval := s.cfg.Processing.CleanupInterval
	s.taskStore.StartCleanupTicker(ctx, interval)
	if s.cacheStore != nil {
		s.cacheStore.StartCleanupTicker(ctx, interval)
	}
}

// ListenAndServe запускает HTTP-сервер
func (s *Server) ListenAndServe() error {
	return s.HTTPServer.ListenAndServe()
}

// Shutdown корректно завершает работу HTTP-сервера и отменяет незавершенные задачи
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Завершение работы HTTP-сервера")
	defer s.stop()
	return s.HTTPServer.Shutdown(ctx)
}

// handleProcess принимает файл экспорта в поле формы "file" и запускает фоновый анализ.
// Необязательное поле "participant" ограничивает статистику одним отправителем.
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	limit := s.cfg.MaxUploadBytes()
	if r.ContentLength > limit {
		http.Error(w, "Файл превышает допустимый размер", http.StatusRequestEntityTooLarge)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(limit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "Файл превышает допустимый размер", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "Не удалось разобрать форму", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Не удалось получить файл из формы", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "Не удалось прочитать загруженный файл", http.StatusBadRequest)
		return
	}

	opts := domain.AnalysisOptions{Participant: r.FormValue("participant")}
	taskID := uuid.NewString()
	s.logger.Info("Получен файл для анализа",
		"task_id", taskID,
		"filename", header.Filename,
		"size", len(data),
	)

	s.startTask(taskID, func(ctx context.Context) (*domain.AnalysisResult, error) {
		return s.processor.AnalyzeBytes(ctx, data, opts)
	})

	writeJSON(w, http.StatusAccepted, map[string]string{"task_id": taskID})
}

// handleProcessByHash создает задачу по ранее вычисленному хешу расшифровки.
// Файл повторно не передается, поэтому задача завершается успешно только при попадании в кэш.
func (s *Server) handleProcessByHash(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Hash        string `json:"hash"`
		Participant string `json:"participant"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Не удалось декодировать тело запроса", http.StatusBadRequest)
		return
	}
	if req.Hash == "" {
		http.Error(w, "Требуется хеш", http.StatusBadRequest)
		return
	}

	taskID := uuid.NewString()
	s.startTask(taskID, func(ctx context.Context) (*domain.AnalysisResult, error) {
		if result, found := s.processor.FromCache(req.Hash, req.Participant); found {
			s.logger.Info("Попадание в кеш для хеша", "hash", req.Hash, "task_id", taskID)
			return result, nil
		}
		s.logger.Info("Промах кеша для хеша", "hash", req.Hash, "task_id", taskID)
		return nil, errors.New("результат для данного хеша не найден в кеше")
	})

	writeJSON(w, http.StatusAccepted, map[string]string{"task_id": taskID})
}

// handleAnalyze анализирует тело запроса синхронно и сразу возвращает отчет.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes()))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "Тело запроса превышает допустимый размер", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "Не удалось прочитать тело запроса", http.StatusBadRequest)
		return
	}
	if len(data) == 0 {
		http.Error(w, "Пустое тело запроса", http.StatusBadRequest)
		return
	}

	ctx, cancel := s.taskContext(r.Context())
	defer cancel()

	opts := domain.AnalysisOptions{Participant: r.URL.Query().Get("participant")}
	result, err := s.processor.AnalyzeBytes(ctx, data, opts)
	if err != nil {
		http.Error(w, err.Error(), statusForError(err))
		return
	}

	writeJSON(w, http.StatusOK, resultResponse{Hash: result.Hash, Report: result.Report})
}

func (s *Server) handleTaskStatus(w http.ResponseWriter, r *http.Request) {
	task, ok := s.lookupTask(w, r)
	if !ok {
		return
	}

	resp := struct {
		TaskID       string     `json:"task_id"`
		Status       TaskStatus `json:"status"`
		ErrorMessage string     `json:"error_message"`
		Hash         string     `json:"hash,omitempty"`
	}{
		TaskID:       task.ID,
		Status:       task.Status,
		ErrorMessage: task.ErrorMessage,
	}
	if task.Result != nil {
		resp.Hash = task.Result.Hash
	}
	writeJSON(w, http.StatusOK, resp)
}

type resultResponse struct {
	TaskID string         `json:"task_id,omitempty"`
	Hash   string         `json:"hash"`
	Report *domain.Report `json:"report"`
}

func (s *Server) handleTaskResult(w http.ResponseWriter, r *http.Request) {
	task, ok := s.completedTask(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, resultResponse{
		TaskID: task.ID,
		Hash:   task.Result.Hash,
		Report: task.Result.Report,
	})
}

// Pagination описывает страницу списка сообщений.
type Pagination struct {
	CurrentPage int `json:"current_page"`
	PageSize    int `json:"page_size"`
	TotalItems  int `json:"total_items"`
	TotalPages  int `json:"total_pages"`
}

// handleTaskMessages отдает нормализованные сообщения задачи постранично.
func (s *Server) handleTaskMessages(w http.ResponseWriter, r *http.Request) {
	page, pageSize, err := parsePagination(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	task, ok := s.completedTask(w, r)
	if !ok {
		return
	}

	messages := task.Result.Messages
	total := len(messages)
	// page-1 сравнивается до умножения, чтобы огромный page не переполнял смещение.
	start := total
	if page-1 <= total/pageSize {
		start = min((page-1)*pageSize, total)
	}
	end := min(start+pageSize, total)

	data := messages[start:end]
	if data == nil {
		data = []domain.Message{}
	}

	writeJSON(w, http.StatusOK, struct {
		Pagination Pagination       `json:"pagination"`
		Data       []domain.Message `json:"data"`
	}{
		Pagination: Pagination{
			CurrentPage: page,
			PageSize:    pageSize,
			TotalItems:  total,
			TotalPages:  (total + pageSize - 1) / pageSize,
		},
		Data: data,
	})
}

func (s *Server) lookupTask(w http.ResponseWriter, r *http.Request) (*Task, bool) {
	task, err := s.taskStore.GetTask(chi.URLParam(r, "taskID"))
	if err != nil {
		http.Error(w, "Задача не найдена", http.StatusNotFound)
		return nil, false
	}
	return task, true
}

func (s *Server) completedTask(w http.ResponseWriter, r *http.Request) (*Task, bool) {
	task, ok := s.lookupTask(w, r)
	if !ok {
		return nil, false
	}
	if task.Status != TaskStatusCompleted || task.Result == nil {
		http.Error(w, "Задача не завершена", http.StatusBadRequest)
		return nil, false
	}
	return task, true
}

// startTask регистрирует задачу и выполняет run в отдельной горутине.
func (s *Server) startTask(taskID string, run func(ctx context.Context) (*domain.AnalysisResult, error)) {
	s.taskStore.CreateTask(taskID, s.cfg.Processing.TaskTTL)
	s.metrics.TaskStarted()

	go func() {
		defer s.metrics.TaskFinished()

		if err := s.taskStore.UpdateTaskStatus(taskID, TaskStatusProcessing); err != nil {
			s.logger.Error("Не удалось обновить статус задачи", "task_id", taskID, "error", err)
			return
		}

		ctx, cancel := s.taskContext(s.baseCtx)
		defer cancel()

		result, err := run(ctx)
		if err != nil {
			s.logger.Warn("Задача завершилась с ошибкой", "task_id", taskID, "error", err)
			_ = s.taskStore.UpdateTaskError(taskID, err.Error())
			return
		}
		_ = s.taskStore.UpdateTaskResult(taskID, result)
	}()
}

// taskContext ограничивает parent таймаутом задачи из конфигурации; 0 - без ограничения.
func (s *Server) taskContext(parent context.Context) (context.Context, context.CancelFunc) {
	if timeout := s.cfg.Processing.TaskTimeout; timeout > 0 {
		return context.WithTimeout(parent, timeout)
	}
	return context.WithCancel(parent)
}

func parsePagination(r *http.Request) (int, int, error) {
	page, err := positiveQueryInt(r, "page", defaultPage)
	if err != nil {
		return 0, 0, err
	}
	pageSize, err := positiveQueryInt(r, "page_size", defaultPageSize)
	if err != nil {
		return 0, 0, err
	}
	return page, min(pageSize, maxPageSize), nil
}

func positiveQueryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, fmt.Errorf("параметр %s должен быть положительным целым числом", name)
	}
	return v, nil
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrNoMessages):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrUnknownParticipant):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadRequest
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Не удалось закодировать ответ", "error", err)
	}
}
