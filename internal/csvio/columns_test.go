package csvio_test

import (
	"testing"

	"github.com/fieldservice-timesheet-api/internal/csvio"
)

func TestResolveColumn(t *testing.T) {
	headers := []string{"Date", "N° Affaire", "Technicien", "Heures Travail"}

	cases := []struct {
		keywords []string
		want     int
	}{
		{[]string{"date", "jour"}, 0},
		{[]string{"affaire", "dossier"}, 1},
		{[]string{"tech", "intervenant"}, 2},
		{[]string{"heurestravail", "travail"}, 3},
		{[]string{"igd"}, csvio.ColumnNotFound},
	}

	for _, tc := range cases {
		if got := csvio.ResolveColumn(headers, tc.keywords); got != tc.want {
			t.Errorf("ResolveColumn(%v) = %d, want %d", tc.keywords, got, tc.want)
		}
	}
}

func TestResolveColumnFirstHeaderWins(t *testing.T) {
	headers := []string{"Heures Travail", "Heures Route"}
	// Both headers contain "heures"; the first in header order wins.
	if got := csvio.ResolveColumn(headers, []string{"heures"}); got != 0 {
		t.Errorf("expected first matching header, got index %d", got)
	}
}

func TestResolveColumnAccentAndCaseInsensitive(t *testing.T) {
	headers := []string{"HEURES SUPPLÉMENTAIRES"}
	if got := csvio.ResolveColumn(headers, []string{"heuressup"}); got != 0 {
		t.Errorf("accented header should match, got %d", got)
	}
}

func TestResolveColumnIgnoresEmptyHeaders(t *testing.T) {
	headers := []string{"", "  ", "date"}
	if got := csvio.ResolveColumn(headers, []string{"date"}); got != 2 {
		t.Errorf("empty headers should be skipped, got %d", got)
	}
}
