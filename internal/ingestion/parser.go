package ingestion

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/richarq/admetrics/internal/domain"
)

// ParsedRow is the normalized output of parsing one source row. It is
// consumed immediately by the upsert engine and discarded.
type ParsedRow struct {
	ExternalID  string
	Name        string
	Row         int // 1-based row number in the source file
	Date        time.Time
	Impressions int64
	Clicks      int64
	Spend       float64
	Conversions float64
	CPC         *float64
	CPM         *float64
	CTR         *float64
}

// errSkipRow marks subtotal, blank and placeholder rows. They are dropped
// silently, not reported as errors.
var errSkipRow = errors.New("row skipped")

var externalIDSanitizer = regexp.MustCompile(`[^A-Za-z0-9_]`)

const externalIDMaxLen = 200

// deriveExternalID builds the stable campaign identifier from the campaign
// name and the row's position within the file. Re-ingesting the identical
// file reproduces identical ids; reordering rows between ingestions changes
// identity. The name component is deliberately not case- or accent-folded.
func deriveExternalID(name string, rowIdx int) string {
	id := externalIDSanitizer.ReplaceAllString(fmt.Sprintf("%s_row%d", name, rowIdx), "_")
	if len(id) > externalIDMaxLen {
		id = id[:externalIDMaxLen]
	}
	return id
}

// parseGoogleAdsCSV handles the special Google Ads CSV layout: tab-delimited,
// frequently UTF-16LE, report title on row 1, a free-text date range on
// row 2, headers on row 3 and data from row 4 on.
func (s *Service) parseGoogleAdsCSV(payload []byte, fileName string) ([]ParsedRow, error) {
	content, encoding := DecodeBytes(payload)
	s.logger.Debug("decoded csv", zap.String("file", fileName), zap.String("encoding", string(encoding)))

	rows := tokenize(content, delimiterTab)
	if len(rows) < 4 {
		return nil, fmt.Errorf("google ads csv %s has too few rows (%d)", fileName, len(rows))
	}

	defaultDate := extractDateFromRange(strings.Join(rows[1], " "))
	mapping := mapColumns(normalizeHeaderRow(rows[2]), domain.PlatformGoogleAds)

	return s.parseDataRows(rows, 3, mapping, defaultDate, fileName), nil
}

// parseDelimited handles the generic CSV layout used by Meta and TikTok
// exports: headers on row 1, data from row 2 on.
func (s *Service) parseDelimited(payload []byte, platform domain.Platform, fileName string) ([]ParsedRow, error) {
	content, _ := DecodeBytes(payload)

	delimiter := delimiterComma
	if platform == domain.PlatformGoogleAds {
		delimiter = delimiterTab
	}

	rows := tokenize(content, delimiter)
	if len(rows) < 2 {
		return nil, fmt.Errorf("csv %s has too few rows (%d)", fileName, len(rows))
	}

	mapping := mapColumns(normalizeHeaderRow(rows[0]), platform)

	return s.parseDataRows(rows, 1, mapping, truncateToDay(time.Now().UTC()), fileName), nil
}

// parseWorkbook handles .xlsx/.xls files through excelize, reading the first
// worksheet only and applying the same row-offset conventions as the CSV
// counterparts.
func (s *Service) parseWorkbook(payload []byte, platform domain.Platform, fileName string) ([]ParsedRow, error) {
	book, err := excelize.OpenReader(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", fileName, err)
	}
	defer func() { _ = book.Close() }()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", fileName)
	}

	rows, err := book.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from %s: %w", fileName, err)
	}

	headerIdx := 0
	defaultDate := truncateToDay(time.Now().UTC())
	if platform == domain.PlatformGoogleAds {
		headerIdx = 2
		if len(rows) < 4 {
			return nil, fmt.Errorf("google ads workbook %s has too few rows (%d)", fileName, len(rows))
		}
		defaultDate = extractDateFromRange(strings.Join(rows[1], " "))
	} else if len(rows) < 2 {
		return nil, fmt.Errorf("workbook %s has too few rows (%d)", fileName, len(rows))
	}

	mapping := mapColumns(normalizeHeaderRow(rows[headerIdx]), platform)

	return s.parseDataRows(rows, headerIdx+1, mapping, defaultDate, fileName), nil
}

// parseDataRows walks the data rows after the header offset. A failure in one
// row is logged with its number and skipped; it never aborts the file.
func (s *Service) parseDataRows(rows [][]string, start int, mapping ColumnMapping, defaultDate time.Time, fileName string) []ParsedRow {
	parsed := make([]ParsedRow, 0, len(rows)-start)
	for idx := start; idx < len(rows); idx++ {
		row, err := parseRow(rows[idx], idx, mapping, defaultDate)
		if errors.Is(err, errSkipRow) {
			continue
		}
		if err != nil {
			s.logger.Warn("skipping row",
				zap.String("file", fileName),
				zap.Int("row", idx+1),
				zap.Error(err))
			continue
		}
		parsed = append(parsed, row)
	}
	return parsed
}

func parseRow(row []string, rowIdx int, mapping ColumnMapping, defaultDate time.Time) (ParsedRow, error) {
	name := strings.TrimSpace(cell(row, mapping.CampaignName))
	if name == "" || name == placeholderNoValue || strings.Contains(strings.ToLower(name), "total") {
		return ParsedRow{}, errSkipRow
	}

	date := defaultDate
	if dateCol := firstMapped(mapping.Date, mapping.DateStart); dateCol != -1 {
		if parsed := ParseDate(cell(row, dateCol)); !parsed.IsZero() {
			date = parsed
		}
	}

	// Meta only reports a generic "results" count for some objectives; fall
	// back to it when the conversions column coerces to exactly zero.
	conversions := ParseNumber(cell(row, mapping.Conversions))
	if conversions == 0 && mapping.Results != -1 {
		conversions = ParseNumber(cell(row, mapping.Results))
	}

	return ParsedRow{
		ExternalID:  deriveExternalID(name, rowIdx),
		Name:        name,
		Row:         rowIdx + 1,
		Date:        date,
		Impressions: int64(ParseNumber(cell(row, mapping.Impressions))),
		Clicks:      int64(ParseNumber(cell(row, mapping.Clicks))),
		Spend:       ParseNumber(cell(row, mapping.Spend)),
		Conversions: conversions,
		CPC:         ParseNumberOrNull(cell(row, mapping.CPC)),
		CPM:         ParseNumberOrNull(cell(row, mapping.CPM)),
		CTR:         ParseCTR(cell(row, mapping.CTR)),
	}, nil
}

// cell reads a mapped column from a row, tolerating absent mappings (-1) and
// short rows.
func cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}

func firstMapped(cols ...int) int {
	for _, col := range cols {
		if col != -1 {
			return col
		}
	}
	return -1
}
