package ingestion

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks removes combining diacritical marks after canonical
// decomposition, so "Campaña" and "Campana" normalize identically.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))

// NormalizeHeader canonicalizes a raw header cell into a lookup key:
// lowercase, diacritics stripped, everything outside a-z0-9 removed.
// It is total and idempotent; empty input yields the empty string.
func NormalizeHeader(header string) string {
	lowered := strings.ToLower(header)
	stripped, _, err := transform.String(stripMarks, lowered)
	if err != nil {
		stripped = lowered
	}

	var b strings.Builder
	b.Grow(len(stripped))
	for _, r := range stripped {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// normalizeHeaderRow maps each column index to its normalized header key.
func normalizeHeaderRow(row []string) map[int]string {
	headers := make(map[int]string, len(row))
	for idx, cell := range row {
		headers[idx] = NormalizeHeader(cell)
	}
	return headers
}
