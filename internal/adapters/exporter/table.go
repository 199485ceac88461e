package exporter

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"whatsapp-chat-analyzer/internal/domain"

	"github.com/mattn/go-runewidth"
)

// DefaultNameWidth — ширина столбца с именем участника по умолчанию.
const DefaultNameWidth = 22

const tableTopWords = 10

// TableOptions настраивает текстовую сводку.
type TableOptions struct {
	NameWidth int
}

// RenderSummary печатает текстовую сводку отчета: общие показатели, таблицу участников,
// эмодзи, частые слова и помесячный тренд.
func RenderSummary(w io.Writer, report *domain.Report, opts TableOptions) error {
	if opts.NameWidth <= 0 {
		opts.NameWidth = DefaultNameWidth
	}
	stats := report.Stats
	if stats == nil {
		stats = domain.NewEmptySummary()
	}

	tw := &tableWriter{w: w}

	title := "Chat summary"
	if report.Participant != "" {
		title += ": " + report.Participant
	}
	tw.line(title)
	tw.line(strings.Repeat("=", runewidth.StringWidth(title)))

	overview := [][2]string{
		{"Messages", FormatNumber(stats.TotalMessages)},
		{"Words", FormatNumber(stats.TotalWords)},
		{"Participants", strconv.Itoa(len(stats.Participants))},
		{"Avg words/message", strconv.FormatFloat(stats.AverageMessageLength, 'f', 1, 64)},
		{"Chat duration", fmt.Sprintf("%d days", stats.ChatDuration)},
		{"Busiest hour", FormatHour(stats.BusiestHour)},
	}
	if stats.BusiestDay.Date != "" {
		overview = append(overview, [2]string{"Busiest day", fmt.Sprintf("%s (%d)", stats.BusiestDay.Date, stats.BusiestDay.Count)})
	}
	overview = append(overview,
		[2]string{"Most active weekday", DayNames[busiestWeekday(stats.MessagesByDayOfWeek)]},
		[2]string{"Overall sentiment", strconv.FormatFloat(stats.Advanced.Sentiment.Overall, 'f', 2, 64)},
		[2]string{"Avg reply time", fmt.Sprintf("%d min", stats.Advanced.ReplyTime.OverallAverage)},
	)
	if report.Parse.Discarded > 0 {
		overview = append(overview, [2]string{"Unparsed lines", strconv.Itoa(report.Parse.Discarded)})
	}
	for _, kv := range overview {
		tw.line(pad(kv[0], 20) + " " + kv[1])
	}

	if len(stats.Participants) > 0 {
		tw.line("")
		header := []string{pad("Participant", opts.NameWidth), padLeft("Msgs", 7), padLeft("Words", 7), padLeft("Mood", 6), padLeft("Reply", 6), "Badges"}
		tw.line(strings.Join(header, " | "))
		tw.line(strings.Repeat("-", runewidth.StringWidth(strings.Join(header, " | "))))
		for _, p := range stats.Participants {
			reply := "-"
			if v, ok := stats.Advanced.ReplyTime.ByParticipant[p]; ok {
				reply = strconv.Itoa(v) + "m"
			}
			mood := "-"
			if v, ok := stats.Advanced.Sentiment.ByParticipant[p]; ok {
				mood = strconv.FormatFloat(v, 'f', 2, 64)
			}
			row := []string{
				pad(p, opts.NameWidth),
				padLeft(FormatNumber(stats.MessagesByParticipant[p]), 7),
				padLeft(FormatNumber(stats.WordsByParticipant[p]), 7),
				padLeft(mood, 6),
				padLeft(reply, 6),
				badgeIcons(report.Behaviors[p]),
			}
			tw.line(strings.TrimRight(strings.Join(row, " | "), " "))
		}
	}

	if len(stats.TopEmojis) > 0 {
		tw.line("")
		parts := make([]string, 0, len(stats.TopEmojis))
		for _, e := range stats.TopEmojis {
			parts = append(parts, fmt.Sprintf("%s %d", e.Emoji, e.Count))
		}
		tw.line("Top emojis: " + strings.Join(parts, "  "))
	}

	if words := stats.Advanced.WordCloud; len(words) > 0 {
		if len(words) > tableTopWords {
			words = words[:tableTopWords]
		}
		parts := make([]string, 0, len(words))
		for _, wc := range words {
			parts = append(parts, fmt.Sprintf("%s (%d)", wc.Text, wc.Value))
		}
		tw.line("Top words: " + strings.Join(parts, ", "))
	}

	if len(report.HealthTrend) > 0 {
		tw.line("")
		tw.line(strings.Join([]string{pad("Month", 7), padLeft("Msgs", 7), padLeft("Mood", 5), padLeft("Health", 6), "Trend"}, " | "))
		for _, hp := range report.HealthTrend {
			tw.line(strings.Join([]string{
				pad(hp.MonthKey, 7),
				padLeft(strconv.Itoa(hp.MessageVolume), 7),
				padLeft(strconv.FormatFloat(hp.AvgSentiment, 'f', 2, 64), 5),
				padLeft(strconv.Itoa(hp.HealthScore), 6),
				string(hp.Trend),
			}, " | "))
		}
	}

	return tw.err
}

func badgeIcons(badges []domain.BehaviorBadge) string {
	parts := make([]string, 0, len(badges))
	for _, b := range badges {
		parts = append(parts, b.Icon+" "+b.Label)
	}
	return strings.Join(parts, ", ")
}

func busiestWeekday(days [7]int) int {
	best, top := 0, 0
	for day, count := range days {
		if count > top {
			best, top = day, count
		}
	}
	return best
}

// tableWriter запоминает первую ошибку записи, чтобы не проверять каждую строку.
type tableWriter struct {
	w   io.Writer
	err error
}

func (t *tableWriter) line(s string) {
	if t.err != nil {
		return
	}
	_, t.err = io.WriteString(t.w, s+"\n")
}
