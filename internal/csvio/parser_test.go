package csvio_test

import (
	"reflect"
	"testing"

	"github.com/fieldservice-timesheet-api/internal/csvio"
)

func TestDetectDelimiter(t *testing.T) {
	cases := []struct {
		header string
		want   rune
	}{
		{"date;affaire;technicien", ';'},
		{"date,affaire,technicien", ','},
		{"date\taffaire\ttechnicien", '\t'},
		{"a;b,c", ';'},                 // tie resolves to semicolon
		{"a,b\tc", ','},                // comma beats tab on a tie
		{"one-column-header", ';'},     // no separator at all defaults to semicolon
		{"a,b,c;d", ','},               // majority wins over precedence
	}

	for _, tc := range cases {
		if got := csvio.DetectDelimiter(tc.header); got != tc.want {
			t.Errorf("DetectDelimiter(%q) = %q, want %q", tc.header, got, tc.want)
		}
	}
}

func TestParseBasic(t *testing.T) {
	rows := csvio.Parse("date;affaire;heures\n01/03/2024;AB-001;7,5\n")
	want := [][]string{
		{"date", "affaire", "heures"},
		{"01/03/2024", "AB-001", "7,5"},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("Parse = %v, want %v", rows, want)
	}
}

func TestParseStripsBOM(t *testing.T) {
	rows := csvio.Parse(csvio.BOM + "date;affaire\n01/03/2024;AB-001\n")
	if rows[0][0] != "date" {
		t.Errorf("BOM not stripped, first cell = %q", rows[0][0])
	}

	// The BOM read through a Latin-1 decode appears as three mojibake runes
	rows = csvio.Parse("ï»¿date;affaire\n01/03/2024;AB-001\n")
	if rows[0][0] != "date" {
		t.Errorf("mojibake BOM not stripped, first cell = %q", rows[0][0])
	}
}

func TestParseQuotedFields(t *testing.T) {
	rows := csvio.Parse(`nom;commentaire
"Dupont; Jean";"dit ""le chef"""`)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[1][0] != "Dupont; Jean" {
		t.Errorf("quoted delimiter mishandled: %q", rows[1][0])
	}
	if rows[1][1] != `dit "le chef"` {
		t.Errorf("escaped quotes mishandled: %q", rows[1][1])
	}
}

func TestParseDropsBlankLines(t *testing.T) {
	rows := csvio.Parse("a;b\r\n\r\n1;2\n   \n3;4\n")
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[2][1] != "4" {
		t.Errorf("unexpected last row: %v", rows[2])
	}
}

func TestParseRaggedRowsPassThrough(t *testing.T) {
	rows := csvio.Parse("a;b;c\n1;2\n1;2;3;4\n")
	if len(rows[1]) != 2 || len(rows[2]) != 4 {
		t.Errorf("ragged rows altered: %v", rows)
	}
}

func TestParseEmpty(t *testing.T) {
	if rows := csvio.Parse(""); rows != nil {
		t.Errorf("empty input should parse to nil, got %v", rows)
	}
	if rows := csvio.Parse(csvio.BOM + "  \n  "); rows != nil {
		t.Errorf("whitespace input should parse to nil, got %v", rows)
	}
}

func TestParseTrimsFields(t *testing.T) {
	rows := csvio.Parse("a;b\n  1  ; \"2\" \n")
	if rows[1][0] != "1" || rows[1][1] != "2" {
		t.Errorf("fields not trimmed/unquoted: %v", rows[1])
	}
}
