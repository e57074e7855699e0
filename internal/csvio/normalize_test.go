package csvio_test

import (
	"testing"

	"github.com/fieldservice-timesheet-api/internal/csvio"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Heures Travail", "heurestravail"},
		{"  Matricule  ", "matricule"},
		{"Heures supplémentaires", "heuressupplementaires"},
		{"Chargé d'Affaires", "chargedaffaires"},
		{"N° Dossier", "ndossier"},
		{"TECHNICIEN", "technicien"},
		{"héùrés", "heures"},
		{"", ""},
		{"   ", ""},
		{"!!!", ""},
		{"Tel. 06-07", "tel0607"},
	}

	for _, tc := range cases {
		if got := csvio.Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"Heures Travail", "Matricule", "Chargé d'Affaires", "déjà-vu 42"}
	for _, in := range inputs {
		once := csvio.Normalize(in)
		twice := csvio.Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}
