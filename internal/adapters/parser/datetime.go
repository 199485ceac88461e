package parser

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateOrder задает порядок дня и месяца в дате вида D/M/Y.
type DateOrder string

const (
	// DayFirst — DD/MM/YYYY, порядок по умолчанию.
	DayFirst DateOrder = "dmy"
	// MonthFirst — MM/DD/YYYY, включается только явной настройкой.
	MonthFirst DateOrder = "mdy"
)

// ParseDateOrder разбирает строковое значение порядка даты.
// Пустая строка означает порядок по умолчанию.
func ParseDateOrder(s string) (DateOrder, error) {
	switch DateOrder(strings.ToLower(strings.TrimSpace(s))) {
	case "", DayFirst:
		return DayFirst, nil
	case MonthFirst:
		return MonthFirst, nil
	default:
		return "", fmt.Errorf("unknown date order %q (expected dmy or mdy)", s)
	}
}

// NormalizeTimestamp превращает пару (дата, время) в момент времени.
//
// Дата ожидается в виде D/M/Y с двух- или четырехзначным годом, время в виде H:MM[:SS]
// с необязательным суффиксом AM/PM. Часовые пояса не учитываются: результатом будет
// "наивное" локальное время, записанное в time.UTC. Второе значение false означает,
// что пару разобрать нельзя.
func NormalizeTimestamp(date, clock string, order DateOrder) (time.Time, bool) {
	parts := strings.Split(strings.TrimSpace(date), "/")
	if len(parts) != 3 {
		return time.Time{}, false
	}

	a, errA := strconv.Atoi(parts[0])
	b, errB := strconv.Atoi(parts[1])
	year, errY := strconv.Atoi(parts[2])
	if errA != nil || errB != nil || errY != nil {
		return time.Time{}, false
	}

	day, month := a, b
	if order == MonthFirst {
		day, month = b, a
	}
	if year < 100 {
		year += 2000
	}

	hour, minute, second, ok := parseClock(clock)
	if !ok {
		return time.Time{}, false
	}

	if month < 1 || month > 12 || day < 1 || day > daysIn(time.Month(month), year) {
		return time.Time{}, false
	}

	return time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC), true
}

// parseClock разбирает H:MM[:SS] [AM|PM] в 24-часовое время.
func parseClock(clock string) (hour, minute, second int, ok bool) {
	s := strings.ToUpper(strings.TrimSpace(clock))

	meridiem := ""
	if strings.HasSuffix(s, "AM") || strings.HasSuffix(s, "PM") {
		meridiem = s[len(s)-2:]
		s = strings.TrimSpace(s[:len(s)-2])
	}

	fields := strings.Split(s, ":")
	if len(fields) < 1 || len(fields) > 3 {
		return 0, 0, 0, false
	}

	var err error
	if hour, err = strconv.Atoi(fields[0]); err != nil {
		return 0, 0, 0, false
	}
	if len(fields) > 1 && fields[1] != "" {
		if minute, err = strconv.Atoi(fields[1]); err != nil {
			return 0, 0, 0, false
		}
	}
	if len(fields) > 2 && fields[2] != "" {
		if second, err = strconv.Atoi(fields[2]); err != nil {
			return 0, 0, 0, false
		}
	}

	switch meridiem {
	case "PM", "AM":
		if hour < 1 || hour > 12 {
			return 0, 0, 0, false
		}
		if meridiem == "PM" && hour != 12 {
			hour += 12
		}
		if meridiem == "AM" && hour == 12 {
			hour = 0
		}
	}

	if hour < 0 || hour > 23 || minute < 0 || minute > 59 || second < 0 || second > 59 {
		return 0, 0, 0, false
	}
	return hour, minute, second, true
}

func daysIn(m time.Month, year int) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
