package parser

import (
	"regexp"
)

// headerFields — поля, извлеченные из строки-заголовка сообщения.
type headerFields struct {
	Date    string
	Time    string
	Sender  string
	Content string
}

// headerGrammar описывает один формат строки-заголовка экспорта.
// Каждая грамматика обязана извлекать дату, время, отправителя и текст.
type headerGrammar struct {
	name    string
	pattern *regexp.Regexp
}

// match применяет грамматику к строке.
func (g headerGrammar) match(line string) (headerFields, bool) {
	m := g.pattern.FindStringSubmatch(line)
	if m == nil {
		return headerFields{}, false
	}
	return headerFields{Date: m[1], Time: m[2], Sender: m[3], Content: m[4]}, true
}

const (
	datePattern = `(\d{1,2}/\d{1,2}/\d{2,4})`
	timePattern = `(\d{1,2}:\d{2}(?::\d{2})?(?:\s*[AaPp][Mm])?)`
	bodyPattern = `([^:]+):\s*(.*)$`
)

// defaultGrammars — упорядоченный список поддерживаемых форматов заголовков.
// Побеждает первая совпавшая грамматика; новый формат экспорта добавляется в конец списка.
var defaultGrammars = []headerGrammar{
	{
		// iOS: [DD/MM/YYYY, HH:MM:SS] Sender: Message
		name:    "bracketed",
		pattern: regexp.MustCompile(`^\[` + datePattern + `,\s*` + timePattern + `\]\s*` + bodyPattern),
	},
	{
		// Android: DD/MM/YYYY, HH:MM - Sender: Message
		name:    "dash",
		pattern: regexp.MustCompile(`^` + datePattern + `,\s*` + timePattern + `\s*-\s*` + bodyPattern),
	},
	{
		// DD/MM/YYYY HH:MM - Sender: Message
		name:    "dash-no-comma",
		pattern: regexp.MustCompile(`^` + datePattern + `\s+` + timePattern + `\s*-\s*` + bodyPattern),
	},
}
