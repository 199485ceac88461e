package exporter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
)

// DayNames — названия дней недели в порядке гистограммы (0 = воскресенье).
var DayNames = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// FormatNumber сокращает большие числа: 1.5K, 2.3M. Меньше тысячи выводится как есть.
func FormatNumber(n int) string {
	switch {
	case n >= 1_000_000:
		return strconv.FormatFloat(float64(n)/1_000_000, 'f', 1, 64) + "M"
	case n >= 1_000:
		return strconv.FormatFloat(float64(n)/1_000, 'f', 1, 64) + "K"
	default:
		return strconv.Itoa(n)
	}
}

// FormatHour переводит час 0-23 в 12-часовую запись: 0 -> "12 AM", 13 -> "1 PM".
func FormatHour(hour int) string {
	switch {
	case hour == 0:
		return "12 AM"
	case hour == 12:
		return "12 PM"
	case hour < 12:
		return fmt.Sprintf("%d AM", hour)
	default:
		return fmt.Sprintf("%d PM", hour-12)
	}
}

// pad дополняет строку пробелами до ширины столбца с учетом широких символов и эмодзи.
// Слишком длинные значения обрезаются с многоточием.
func pad(s string, width int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if runewidth.StringWidth(s) > width {
		s = runewidth.Truncate(s, width, "…")
	}
	return runewidth.FillRight(s, width)
}

// padLeft выравнивает значение по правому краю столбца.
func padLeft(s string, width int) string {
	return runewidth.FillLeft(s, width)
}
