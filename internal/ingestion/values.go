package ingestion

import (
	"strconv"
	"strings"
	"time"
)

// Export cells use "--" as an explicit "no data" placeholder.
const placeholderNoValue = "--"

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
	"02/01/2006",
	"Jan 2, 2006",
}

// excelEpoch is the day-serial epoch used by spreadsheet date cells.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// ParseNumber coerces a cell into a non-negative-by-convention number for the
// required metric fields. Missing values (empty, "--") yield 0. Thousands
// separators, currency symbols, quotes and whitespace are stripped, a decimal
// comma becomes a decimal point, and a trailing K/M suffix multiplies by a
// thousand/million. Anything that still fails to parse yields 0.
func ParseNumber(value string) float64 {
	num, ok := parseNumeric(value)
	if !ok {
		return 0
	}
	return num
}

// ParseNumberOrNull applies the same coercion as ParseNumber to fields where
// 0 is a real value and nil means "unknown" (cpc, cpm). Missing or
// unparseable values yield nil, never 0.
func ParseNumberOrNull(value string) *float64 {
	num, ok := parseNumeric(value)
	if !ok {
		return nil
	}
	return &num
}

// parseNumeric is the single coercion rule behind both numeric parsers; only
// the two treat failure differently.
func parseNumeric(value string) (float64, bool) {
	cleaned, ok := cleanNumeric(value)
	if !ok {
		return 0, false
	}

	multiplier := 1.0
	switch {
	case strings.HasSuffix(cleaned, "K"), strings.HasSuffix(cleaned, "k"):
		multiplier = 1_000
		cleaned = cleaned[:len(cleaned)-1]
	case strings.HasSuffix(cleaned, "M"), strings.HasSuffix(cleaned, "m"):
		multiplier = 1_000_000
		cleaned = cleaned[:len(cleaned)-1]
	}

	num, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return num * multiplier, true
}

// ParseCTR coerces a click-through-rate cell into a 0..1 fraction. Sources
// disagree on representation: "3.5%" and "3.5" both mean 3.5 percent while
// "0.035" is already a fraction, so parsed values above 1 are divided by 100.
// Missing or unparseable values yield nil.
func ParseCTR(value string) *float64 {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" || trimmed == placeholderNoValue {
		return nil
	}

	cleaned := strings.NewReplacer("%", "", `"`, "", " ", "", "\t", "").Replace(trimmed)
	cleaned = strings.ReplaceAll(cleaned, ",", ".")

	num, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	if num > 1 {
		num /= 100
	}
	return &num
}

// ParseDate coerces a cell into a calendar date. A purely numeric value is
// treated as a spreadsheet serial date (epoch 1899-12-30, day granularity);
// otherwise a list of common layouts is tried. The zero time signals
// "unparseable" and callers substitute their file-level default.
func ParseDate(value string) time.Time {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" || trimmed == placeholderNoValue {
		return time.Time{}
	}

	if serial, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return excelEpoch.AddDate(0, 0, int(serial))
	}

	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, trimmed); err == nil {
			return truncateToDay(ts)
		}
	}
	return time.Time{}
}

func truncateToDay(ts time.Time) time.Time {
	return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
}

// cleanNumeric strips the noise every platform sprinkles over numbers:
// thousands separators, currency symbols, quotes and whitespace. It reports
// false when the cell holds no value at all.
func cleanNumeric(value string) (string, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" || trimmed == placeholderNoValue {
		return "", false
	}

	cleaned := strings.NewReplacer("$", "", "€", "", `"`, "", " ", "", "\t", "", " ", "").Replace(trimmed)
	switch {
	case strings.Contains(cleaned, "."):
		// Dot is the decimal point, commas are thousands separators.
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	case strings.Contains(cleaned, ","):
		// No dot present. One or two digits after the last comma means a
		// decimal comma ("3,5"); three means grouping ("1,234").
		if idx := strings.LastIndex(cleaned, ","); len(cleaned)-idx-1 <= 2 {
			cleaned = cleaned[:idx] + "." + cleaned[idx+1:]
		}
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	}
	if cleaned == "" {
		return "", false
	}
	return cleaned, true
}
