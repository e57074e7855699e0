package reconcile

import (
	"strings"
	"time"

	"github.com/fieldservice-timesheet-api/internal/models"
)

// DefaultPassword is assigned to bulk-imported accounts whose password
// column is absent or empty. Kept verbatim from the system this one
// replaces; import parity, not a recommendation.
const DefaultPassword = "1234"

// RoleFromCell infers the role by uppercase substring match. "AFFAIRE"
// covers the chargé d'affaires job title that means manager in these
// spreadsheets.
func RoleFromCell(cell string) models.Role {
	upper := strings.ToUpper(cell)
	switch {
	case strings.Contains(upper, "ADMIN"):
		return models.RoleAdmin
	case strings.Contains(upper, "MANAGER"), strings.Contains(upper, "AFFAIRE"):
		return models.RoleManager
	default:
		return models.RoleTechnician
	}
}

// RosterResult is the outcome of reconciling a roster batch.
type RosterResult struct {
	Persons []*models.Person
	Skipped []models.RowError
}

// Roster converts raw rows into person records. A row with an empty id is
// dropped; everything else is defaulted rather than rejected. Rows sharing a
// normalized id collapse to the last occurrence, matching upsert semantics,
// so the batch carries each id exactly once. The caller replaces the whole
// roster with the result, it never merges.
func Roster(rows [][]string, cols Columns) *RosterResult {
	res := &RosterResult{}
	now := time.Now()
	seen := make(map[string]int)

	for i, row := range rows {
		line := i + 2

		id := NormalizeTechnicianID(cols.Field(row, "id"))
		if id == "" {
			res.Skipped = append(res.Skipped, models.RowError{
				Line: line, Field: "id", Message: "empty id",
			})
			continue
		}

		name := cols.Field(row, "name")
		if name == "" {
			name = id
		}

		initials := strings.ToUpper(cols.Field(row, "initials"))
		if r := []rune(initials); len(r) > 3 {
			initials = string(r[:3])
		}

		password := cols.Field(row, "password")
		if password == "" {
			password = DefaultPassword
		}

		p := &models.Person{
			ID:          id,
			DisplayName: name,
			Initials:    initials,
			Role:        RoleFromCell(cols.Field(row, "role")),
			Password:    password,
			Email:       cols.Field(row, "email"),
			Phone:       cols.Field(row, "phone"),
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		if at, ok := seen[id]; ok {
			res.Persons[at] = p
			continue
		}
		seen[id] = len(res.Persons)
		res.Persons = append(res.Persons, p)
	}
	return res
}
