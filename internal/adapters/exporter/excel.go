package exporter

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"whatsapp-chat-analyzer/internal/domain"
	"whatsapp-chat-analyzer/internal/ports"

	"github.com/xuri/excelize/v2"
)

// Листы книги отчета.
const (
	sheetSummary      = "Summary"
	sheetParticipants = "Participants"
	sheetActivity     = "Activity"
	sheetHealth       = "Health"
	sheetWords        = "Words"
)

// ExcelExporter реализует интерфейс Exporter, записывая отчет в книгу .xlsx.
type ExcelExporter struct {
	w io.Writer
}

// NewExcelExporter создает новый экземпляр ExcelExporter.
func NewExcelExporter(w io.Writer) ports.Exporter {
	return &ExcelExporter{w: w}
}

// Export строит книгу и записывает ее в w.
func (e *ExcelExporter) Export(report *domain.Report) error {
	f, err := BuildWorkbook(report)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(e.w); err != nil {
		return fmt.Errorf("не удалось записать xlsx: %w", err)
	}
	return nil
}

// BuildWorkbook раскладывает отчет по листам: сводка, участники, активность по датам,
// часам и дням недели, помесячный тренд и облако слов.
func BuildWorkbook(report *domain.Report) (*excelize.File, error) {
	stats := report.Stats
	if stats == nil {
		stats = domain.NewEmptySummary()
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		f.Close()
		return nil, fmt.Errorf("не удалось переименовать лист: %w", err)
	}
	for _, name := range []string{sheetParticipants, sheetActivity, sheetHealth, sheetWords} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, fmt.Errorf("не удалось создать лист %s: %w", name, err)
		}
	}

	sw := &sheetWriter{f: f}

	summary := [][]any{
		{"Schema version", report.SchemaVersion},
		{"Participant filter", report.Participant},
		{"Total messages", stats.TotalMessages},
		{"Total words", stats.TotalWords},
		{"Participants", len(stats.Participants)},
		{"Average message length", stats.AverageMessageLength},
		{"Busiest day", stats.BusiestDay.Date},
		{"Busiest day messages", stats.BusiestDay.Count},
		{"Busiest hour", FormatHour(stats.BusiestHour)},
		{"Chat duration (days)", stats.ChatDuration},
		{"Overall sentiment", stats.Advanced.Sentiment.Overall},
		{"Average reply time (min)", stats.Advanced.ReplyTime.OverallAverage},
		{"Parsed lines", report.Parse.Lines},
		{"Unparsed lines", report.Parse.Discarded},
	}
	if stats.FirstMessage != nil {
		summary = append(summary, []any{"First message", stats.FirstMessage.Format("2006-01-02 15:04:05")})
	}
	if stats.LastMessage != nil {
		summary = append(summary, []any{"Last message", stats.LastMessage.Format("2006-01-02 15:04:05")})
	}
	sw.rows(sheetSummary, 1, summary)

	participants := [][]any{{"Participant", "Messages", "Words", "Sentiment", "Reply time (min)", "Badges"}}
	for _, p := range stats.Participants {
		labels := make([]string, 0, len(report.Behaviors[p]))
		for _, b := range report.Behaviors[p] {
			labels = append(labels, b.Label)
		}
		row := []any{p, stats.MessagesByParticipant[p], stats.WordsByParticipant[p], "", "", strings.Join(labels, ", ")}
		if v, ok := stats.Advanced.Sentiment.ByParticipant[p]; ok {
			row[3] = v
		}
		if v, ok := stats.Advanced.ReplyTime.ByParticipant[p]; ok {
			row[4] = v
		}
		participants = append(participants, row)
	}
	sw.rows(sheetParticipants, 1, participants)

	dates := make([]string, 0, len(stats.MessagesByDate))
	for d := range stats.MessagesByDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	daily := [][]any{{"Date", "Messages"}}
	for _, d := range dates {
		daily = append(daily, []any{d, stats.MessagesByDate[d]})
	}
	sw.rowsAt(sheetActivity, "A", 1, daily)

	hourly := [][]any{{"Hour", "Messages"}}
	for h, n := range stats.MessagesByHour {
		hourly = append(hourly, []any{FormatHour(h), n})
	}
	sw.rowsAt(sheetActivity, "D", 1, hourly)

	weekly := [][]any{{"Weekday", "Messages"}}
	for d, n := range stats.MessagesByDayOfWeek {
		weekly = append(weekly, []any{DayNames[d], n})
	}
	sw.rowsAt(sheetActivity, "G", 1, weekly)

	health := [][]any{{"Month", "Messages", "Sentiment", "Health", "Trend"}}
	for _, hp := range report.HealthTrend {
		health = append(health, []any{hp.MonthKey, hp.MessageVolume, hp.AvgSentiment, hp.HealthScore, string(hp.Trend)})
	}
	sw.rows(sheetHealth, 1, health)

	words := [][]any{{"Word", "Count"}}
	for _, wc := range stats.Advanced.WordCloud {
		words = append(words, []any{wc.Text, wc.Value})
	}
	sw.rows(sheetWords, 1, words)

	if sw.err != nil {
		f.Close()
		return nil, fmt.Errorf("не удалось заполнить книгу: %w", sw.err)
	}

	f.SetActiveSheet(0)
	return f, nil
}

// sheetWriter запоминает первую ошибку excelize.
type sheetWriter struct {
	f   *excelize.File
	err error
}

func (s *sheetWriter) rows(sheet string, startRow int, rows [][]any) {
	s.rowsAt(sheet, "A", startRow, rows)
}

func (s *sheetWriter) rowsAt(sheet, col string, startRow int, rows [][]any) {
	for i, row := range rows {
		if s.err != nil {
			return
		}
		cell := fmt.Sprintf("%s%d", col, startRow+i)
		r := row
		s.err = s.f.SetSheetRow(sheet, cell, &r)
	}
}
