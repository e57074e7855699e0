package reconcile

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fieldservice-timesheet-api/internal/csvio"
)

// Keyword tables for heuristic column detection. The mapping from semantic
// field to candidate keywords is declared data: header cells run through
// csvio.Normalize before substring matching, so entries here are spelled the
// way they normalize.
var missionKeywords = map[string][]string{
	"date":           {"date", "jour"},
	"job_code":       {"affaire", "job", "chantier", "dossier"},
	"technician_id":  {"tech", "intervenant", "salarie", "matricule"},
	"work_hours":     {"heurestravail", "travail", "heures"},
	"travel_hours":   {"route", "trajet", "deplacement", "voyage"},
	"overtime_hours": {"heuressup", "sup", "majoration"},
	"address":        {"adresse", "lieu", "ville"},
	"description":    {"description", "commentaire", "designation"},
	"igd":            {"igd"},
}

var rosterKeywords = map[string][]string{
	"id":       {"id", "login", "identifiant"},
	"name":     {"nom", "name"},
	"initials": {"initial", "trigramme"},
	"role":     {"role", "fonction", "profil"},
	"password": {"motdepasse", "password", "mdp"},
	"email":    {"email", "mail", "courriel"},
	"phone":    {"tel", "phone", "portable"},
}

var missionRequired = []string{"date", "job_code", "technician_id"}
var rosterRequired = []string{"id", "name", "initials"}

// Columns holds resolved column indices by semantic field name. A missing
// field maps to csvio.ColumnNotFound.
type Columns map[string]int

// Field returns the cell for a semantic field, tolerating short rows and
// unresolved columns by returning the empty string.
func (c Columns) Field(row []string, name string) string {
	idx, ok := c[name]
	if !ok || idx == csvio.ColumnNotFound || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// MissingColumnsError reports which mandatory semantic columns could not be
// matched in the header row. It aborts the whole import before any row is
// processed; there is no partial apply.
type MissingColumnsError struct {
	Missing []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("import file is missing required columns: %s", strings.Join(e.Missing, ", "))
}

// resolveColumns matches every keyword set against the header row and checks
// the required fields.
func resolveColumns(headers []string, keywords map[string][]string, required []string) (Columns, error) {
	cols := make(Columns, len(keywords))
	for field, kw := range keywords {
		cols[field] = csvio.ResolveColumn(headers, kw)
	}

	var missing []string
	for _, field := range required {
		if cols[field] == csvio.ColumnNotFound {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, &MissingColumnsError{Missing: missing}
	}
	return cols, nil
}

// ResolveMissionColumns locates the timesheet columns in an uploaded header
// row. Date, job code and technician are mandatory.
func ResolveMissionColumns(headers []string) (Columns, error) {
	return resolveColumns(headers, missionKeywords, missionRequired)
}

// ResolveRosterColumns locates the roster columns. Id, name and initials are
// mandatory.
func ResolveRosterColumns(headers []string) (Columns, error) {
	return resolveColumns(headers, rosterKeywords, rosterRequired)
}
