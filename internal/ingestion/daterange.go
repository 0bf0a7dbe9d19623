package ingestion

import (
	"regexp"
	"strconv"
	"time"
)

// Google Ads exports state their reporting period as a free-text preamble
// line instead of a per-row date column, e.g. "1 de octubre de 2025" or
// "1 oct 2025". The extracted date becomes the default for every data row.
var dateRangePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d{1,2})\s+de\s+(\p{L}+)\s+de\s+(\d{4})`),
	regexp.MustCompile(`(?i)(\d{1,2})\s+(\p{L}+)\s+(\d{4})`),
}

// Spanish month names and common abbreviations, with English fallbacks.
// Lookup happens after diacritic stripping, so "septiembre" covers "sept."
// preambles too.
var monthNames = map[string]time.Month{
	"ene": time.January, "enero": time.January, "jan": time.January, "january": time.January,
	"feb": time.February, "febrero": time.February, "february": time.February,
	"mar": time.March, "marzo": time.March, "march": time.March,
	"abr": time.April, "abril": time.April, "apr": time.April, "april": time.April,
	"may": time.May, "mayo": time.May,
	"jun": time.June, "junio": time.June, "june": time.June,
	"jul": time.July, "julio": time.July, "july": time.July,
	"ago": time.August, "agosto": time.August, "aug": time.August, "august": time.August,
	"sep": time.September, "sept": time.September, "septiembre": time.September, "september": time.September,
	"oct": time.October, "octubre": time.October, "october": time.October,
	"nov": time.November, "noviembre": time.November, "november": time.November,
	"dic": time.December, "diciembre": time.December, "dec": time.December, "december": time.December,
}

// extractDateFromRange parses a free-text date-range line into a concrete
// calendar date. When no pattern matches it silently degrades to today;
// a slightly wrong default date is preferable to failing the whole file.
func extractDateFromRange(rangeText string) time.Time {
	for _, pattern := range dateRangePatterns {
		match := pattern.FindStringSubmatch(rangeText)
		if match == nil {
			continue
		}

		day, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}
		year, err := strconv.Atoi(match[3])
		if err != nil {
			continue
		}

		month, ok := monthNames[NormalizeHeader(match[2])]
		if !ok {
			continue
		}
		return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	}

	return truncateToDay(time.Now().UTC())
}
