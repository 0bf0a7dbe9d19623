package ingestion

import (
	"strings"
)

// Delimiters used by the supported export formats. Google Ads ships
// tab-separated files, Meta and TikTok comma-separated ones.
const (
	delimiterTab   = '\t'
	delimiterComma = ','
)

// splitLines breaks decoded text into non-blank lines, accepting both bare
// \n and \r\n line endings.
func splitLines(content string) []string {
	raw := strings.Split(content, "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// splitFields tokenizes one line into fields using a single delimiter and a
// simplified double-quote model: a quote toggles the in-quotes state and the
// delimiter is literal while inside quotes. The surrounding quotes and
// whitespace are stripped from each emitted field.
//
// Known limitation: escaped quotes ("") inside a quoted field are not
// handled; none of the supported platform exports produce them.
func splitFields(line string, delimiter rune) []string {
	var fields []string
	var current strings.Builder
	inQuotes := false

	for _, char := range line {
		switch {
		case char == '"':
			inQuotes = !inQuotes
		case char == delimiter && !inQuotes:
			fields = append(fields, cleanField(current.String()))
			current.Reset()
		default:
			current.WriteRune(char)
		}
	}
	fields = append(fields, cleanField(current.String()))

	return fields
}

func cleanField(field string) string {
	field = strings.TrimSpace(field)
	field = strings.TrimPrefix(field, `"`)
	field = strings.TrimSuffix(field, `"`)
	return strings.TrimSpace(field)
}

// tokenize splits decoded text into a uniform rows/fields table. Spreadsheet
// input skips this path entirely; excelize already exposes the same
// [][]string shape per sheet.
func tokenize(content string, delimiter rune) [][]string {
	lines := splitLines(content)
	rows := make([][]string, 0, len(lines))
	for _, line := range lines {
		rows = append(rows, splitFields(line, delimiter))
	}
	return rows
}
