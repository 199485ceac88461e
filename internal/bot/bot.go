package bot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
	"whatsapp-chat-analyzer/cmd/bot/config"
	"whatsapp-chat-analyzer/internal/adapters/exporter"
	"whatsapp-chat-analyzer/internal/apiclient"
	"whatsapp-chat-analyzer/internal/domain"
	applog "whatsapp-chat-analyzer/internal/log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	startCommand = "start"
	helpCommand  = "help"

	// maxMessageLength — предел длины текста одного сообщения Telegram.
	maxMessageLength = 4096
)

var supportedExtensions = map[string]bool{".txt": true, ".zip": true}

const helpText = "Я считаю статистику по экспорту чата WhatsApp.\n\n" +
	"Как выгрузить чат: откройте переписку → ⋮ → Ещё → Экспорт чата → Без медиафайлов.\n" +
	"Отправьте мне полученный файл _chat.txt или .zip архив.\n\n" +
	"Чтобы посчитать статистику только по одному участнику, укажите его имя в подписи к файлу " +
	"ровно так, как оно записано в чате.\n\n" +
	"Пожалуйста, обратите внимание:\n" +
	"• Я принимаю только один файл за раз.\n" +
	"• Файлы не сохраняются на сервере и обрабатываются на лету."

// Bot представляет собой основной объект Telegram-бота.
type Bot struct {
	api          *tgbotapi.BotAPI
	cfg          config.BotConfig
	serverClient ServerAPI
	taskStore    *TaskStore
	logger       *slog.Logger
	httpClient   *http.Client

	// Точки подмены для тестов.
	sendMessageFunc      func(tgbotapi.Chattable) (tgbotapi.Message, error)
	getFileDirectURLFunc func(fileID string) (string, error)

	// tasks отслеживает горутины опроса, чтобы Start дождался их при остановке.
	tasks sync.WaitGroup
}

// NewBot создает и инициализирует новый экземпляр бота.
func NewBot(cfg config.BotConfig, serverClient ServerAPI, taskStore *TaskStore, logger *slog.Logger) (*Bot, error) {
	if err := tgbotapi.SetLogger(&applog.TGBotAPIAdapter{Logger: logger.With(slog.String("component", "tgbotapi"))}); err != nil {
		return nil, fmt.Errorf("failed to set bot api logger: %w", err)
	}

	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot api: %w", err)
	}

	logger.Info("Authorized on account", slog.String("username", api.Self.UserName))

	return &Bot{
		api:                  api,
		cfg:                  cfg,
		serverClient:         serverClient,
		taskStore:            taskStore,
		logger:               logger,
		httpClient:           &http.Client{Timeout: cfg.HTTPTimeout()},
		sendMessageFunc:      api.Send,
		getFileDirectURLFunc: api.GetFileDirectURL,
	}, nil
}

// Start запускает основной цикл обработки обновлений от Telegram и блокируется до отмены ctx.
// Перед возвратом дожидается завершения уже запущенных задач.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("Context cancelled, stopping bot...")
			b.api.StopReceivingUpdates()
			b.tasks.Wait()
			return
		case update := <-updates:
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

// handleMessage обрабатывает входящее сообщение.
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.IsCommand() {
		b.handleCommand(msg)
		return
	}

	if msg.Document != nil {
		b.handleDocument(ctx, msg)
		return
	}

	b.reply(msg.Chat.ID, "Пожалуйста, отправьте мне файл экспорта чата WhatsApp (.txt или .zip).")
}

// handleCommand обрабатывает команды.
func (b *Bot) handleCommand(msg *tgbotapi.Message) {
	switch msg.Command() {
	case startCommand:
		b.reply(msg.Chat.ID, "Добро пожаловать! "+helpText)
	case helpCommand:
		b.reply(msg.Chat.ID, helpText)
	default:
		b.reply(msg.Chat.ID, "Я не знаю такой команды.")
	}
}

// handleDocument скачивает файл экспорта, запускает анализ на бэкенде и начинает опрос задачи.
// Подпись к файлу используется как фильтр по участнику.
func (b *Bot) handleDocument(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	doc := msg.Document
	logger := b.logger.With(slog.Int64("chat_id", chatID), slog.String("file_name", doc.FileName))

	if !supportedExtensions[strings.ToLower(filepath.Ext(doc.FileName))] {
		b.reply(chatID, "Поддерживаются только файлы .txt и .zip из экспорта чата WhatsApp.")
		return
	}

	limit := b.cfg.MaxFileSizeBytes()
	if doc.FileSize > limit {
		b.reply(chatID, fmt.Sprintf("Файл слишком большой. Максимальный размер: %d МБ.", b.cfg.MaxFileSizeMB))
		return
	}

	if !b.taskStore.Reserve(chatID) {
		logger.Warn("user tried to start a new task while another is active")
		b.reply(chatID, "Пожалуйста, подождите завершения предыдущей задачи, прежде чем начинать новую.")
		return
	}
	started := false
	defer func() {
		if !started {
			b.taskStore.Release(chatID)
		}
	}()

	data, err := b.downloadFile(ctx, doc.FileID, limit)
	if err != nil {
		logger.Error("failed to download file", slog.String("error", err.Error()))
		b.reply(chatID, "Не удалось скачать файл. Попробуйте отправить его еще раз.")
		return
	}

	participant := strings.TrimSpace(msg.Caption)
	startResp, err := b.serverClient.StartTask(ctx, apiclient.DocumentFile{Name: doc.FileName, Content: bytes.NewReader(data)}, participant)
	if err != nil {
		logger.Error("failed to start task on backend", slog.String("error", err.Error()))
		b.reply(chatID, "Не удалось начать обработку файла на сервере. Пожалуйста, попробуйте позже.")
		return
	}

	taskID := startResp.TaskID
	logger.Info("task started on backend", slog.String("task_id", taskID), slog.Bool("filtered", participant != ""))

	b.taskStore.Assign(chatID, taskID)
	started = true
	b.tasks.Add(1)
	go b.pollTask(ctx, chatID, taskID)

	b.reply(chatID, "✅ Файл получен и поставлен в очередь на обработку. Ожидайте результата.")
}

var errFileTooLarge = errors.New("file exceeds size limit")

func (b *Bot) downloadFile(ctx context.Context, fileID string, limit int) ([]byte, error) {
	fileURL, err := b.getFileDirectURLFunc(fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to get file direct url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, int64(limit)+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(data) > limit {
		return nil, errFileTooLarge
	}
	return data, nil
}

// pollTask дожидается завершения задачи на бэкенде и отправляет результат в чат.
func (b *Bot) pollTask(ctx context.Context, chatID int64, taskID string) {
	defer b.tasks.Done()
	defer b.taskStore.Release(chatID)

	logger := b.logger.With(slog.Int64("chat_id", chatID), slog.String("task_id", taskID))

	ctx, cancel := context.WithTimeout(ctx, b.cfg.TaskTimeout())
	defer cancel()

	status, err := b.serverClient.WaitForTask(ctx, taskID, b.cfg.PollingInterval())
	switch {
	case errors.Is(err, apiclient.ErrTaskFailed):
		reason := err.Error()
		if status != nil {
			reason = status.ErrorMessage
		}
		logger.Warn("task failed", slog.String("reason", reason))
		b.reply(chatID, fmt.Sprintf("Произошла ошибка при обработке файла: %s", reason))
		return
	case errors.Is(err, context.DeadlineExceeded):
		logger.Warn("task timed out")
		b.reply(chatID, "Обработка заняла слишком много времени. Попробуйте позже.")
		return
	case errors.Is(err, context.Canceled):
		logger.Warn("polling cancelled by context")
		return
	case err != nil:
		logger.Error("failed to get task status", slog.String("error", err.Error()))
		b.reply(chatID, "Не удалось получить статус задачи. Пожалуйста, попробуйте позже.")
		return
	}

	logger.Info("task completed")
	b.processCompletedTask(ctx, chatID, taskID)
}

// processCompletedTask получает отчет выполненной задачи и отправляет его пользователю.
func (b *Bot) processCompletedTask(ctx context.Context, chatID int64, taskID string) {
	logger := b.logger.With(slog.Int64("chat_id", chatID), slog.String("task_id", taskID))

	result, err := b.serverClient.GetTaskResult(ctx, taskID)
	if err != nil || result.Report == nil {
		logger.Error("failed to fetch result", slog.Any("error", err))
		b.reply(chatID, "Не удалось получить результаты для выполненной задачи. Пожалуйста, попробуйте позже.")
		return
	}

	b.sendSummary(chatID, result.Report)
	if b.cfg.ExcelAttachment {
		b.sendExcelReport(chatID, result.Report)
	}
}

// sendSummary отправляет текстовую сводку моноширинным блоком. Слишком длинная сводка
// уходит текстовым файлом.
func (b *Bot) sendSummary(chatID int64, report *domain.Report) {
	var buf bytes.Buffer
	if err := exporter.RenderSummary(&buf, report, exporter.TableOptions{NameWidth: b.cfg.Render.NameWidth}); err != nil {
		b.logger.Error("failed to render summary", slog.String("error", err.Error()))
		b.reply(chatID, "Не удалось сформировать сводку.")
		return
	}

	text := "<pre>" + html.EscapeString(strings.ToValidUTF8(buf.String(), "")) + "</pre>"
	if utf8.RuneCountInString(text) > maxMessageLength {
		b.logger.Warn("сгенерированный текст слишком длинный, отправка в виде файла", "length", len(text))
		doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
			Name:  reportFileName("txt"),
			Bytes: buf.Bytes(),
		})
		doc.Caption = "Анализ завершен. Сводка слишком большая для одного сообщения, поэтому она прикреплена в виде файла."
		b.send(doc)
		return
	}

	reply := tgbotapi.NewMessage(chatID, text)
	reply.ParseMode = tgbotapi.ModeHTML
	b.send(reply)
}

func (b *Bot) sendExcelReport(chatID int64, report *domain.Report) {
	f, err := exporter.BuildWorkbook(report)
	if err != nil {
		b.logger.Error("failed to build workbook", slog.String("error", err.Error()))
		b.reply(chatID, "Не удалось сгенерировать Excel-файл.")
		return
	}
	defer func() {
		if err := f.Close(); err != nil {
			b.logger.Error("failed to close excel file", slog.String("error", err.Error()))
		}
	}()

	buf, err := f.WriteToBuffer()
	if err != nil {
		b.logger.Error("failed to write excel to buffer", slog.String("error", err.Error()))
		b.reply(chatID, "Не удалось сгенерировать Excel-файл.")
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  reportFileName("xlsx"),
		Bytes: buf.Bytes(),
	})
	doc.Caption = "Подробный отчет в Excel."
	if report.Participant != "" {
		doc.Caption = fmt.Sprintf("Подробный отчет в Excel по участнику %s.", report.Participant)
	}
	b.send(doc)
}

func reportFileName(ext string) string {
	return fmt.Sprintf("chat_report_%s.%s", time.Now().Format("2006-01-02_15-04-05"), ext)
}

func (b *Bot) reply(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) send(msg tgbotapi.Chattable) {
	if _, err := b.sendMessageFunc(msg); err != nil {
		b.logger.Error("failed to send message", slog.String("error", err.Error()))
	}
}
