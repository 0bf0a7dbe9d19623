package ingestion

import (
	"reflect"
	"testing"
)

func TestSplitLinesHandlesCRLFAndBlanks(t *testing.T) {
	content := "a\tb\r\n\r\nc\td\n\n  \ne\tf"
	lines := splitLines(content)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), lines)
	}
	if lines[0] != "a\tb" || lines[1] != "c\td" || lines[2] != "e\tf" {
		t.Fatalf("unexpected lines: %q", lines)
	}
}

func TestSplitFieldsQuoting(t *testing.T) {
	cases := []struct {
		line  string
		delim rune
		want  []string
	}{
		{`a,b,c`, ',', []string{"a", "b", "c"}},
		{`"Summer, Sale",100`, ',', []string{"Summer, Sale", "100"}},
		{`"1,234.50",2`, ',', []string{"1,234.50", "2"}},
		{"x\t\"y\tz\"\tw", '\t', []string{"x", "y\tz", "w"}},
		{` padded , fields `, ',', []string{"padded", "fields"}},
		{`,`, ',', []string{"", ""}},
	}

	for _, tc := range cases {
		if got := splitFields(tc.line, tc.delim); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("splitFields(%q, %q) = %q, want %q", tc.line, tc.delim, got, tc.want)
		}
	}
}

func TestTokenize(t *testing.T) {
	rows := tokenize("h1,h2\nv1,v2\n", ',')
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[1][0] != "v1" || rows[1][1] != "v2" {
		t.Fatalf("unexpected data row: %q", rows[1])
	}
}
