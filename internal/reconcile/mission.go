package reconcile

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/fieldservice-timesheet-api/internal/models"
)

// dayMonthYear matches DD/MM/YYYY and DD/MM/YY, the only shapes the source
// spreadsheets use on purpose.
var dayMonthYear = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{2}|\d{4})$`)

// fallbackLayouts are tried for anything else before giving up on a row.
var fallbackLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05Z07:00",
	"02.01.2006",
	"02-01-2006",
}

// ParseDate parses a spreadsheet date cell. Two-digit years are coerced to
// 20YY. The boolean is false when the cell is empty or no shape matched;
// such rows are dropped, never errored.
func ParseDate(cell string) (time.Time, bool) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return time.Time{}, false
	}

	if m := dayMonthYear.FindStringSubmatch(cell); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if len(m[3]) == 2 {
			year += 2000
		}
		t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		// Reject roll-over like 31/02: Date normalizes it into March.
		if t.Day() != day || int(t.Month()) != month {
			return time.Time{}, false
		}
		return t, true
	}

	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, cell); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// ParseHours coerces a numeric cell to hours: decimal comma accepted,
// anything unparseable is 0. Never fails.
func ParseHours(cell string) float64 {
	cell = strings.ReplaceAll(strings.TrimSpace(cell), ",", ".")
	if cell == "" {
		return 0
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0
	}
	return v
}

// NormalizeTechnicianID lowercases a login handle and strips all whitespace.
func NormalizeTechnicianID(cell string) string {
	return strings.ToLower(strings.Join(strings.Fields(cell), ""))
}

func parseFlag(cell string) bool {
	switch strings.ToLower(strings.TrimSpace(cell)) {
	case "1", "true", "oui", "x", "yes":
		return true
	}
	return false
}

// MissionResult is the outcome of reconciling one batch of rows.
type MissionResult struct {
	Missions []*models.Mission
	Skipped  []models.RowError
}

// Missions converts raw string rows into mission records using the resolved
// columns. Rows lacking a usable date or technician id are skipped silently;
// the skip reasons are returned for the job's error report but never abort
// the batch. Fresh records start submitted (bulk imports are assumed
// pre-approved) and get ids embedding the batch timestamp plus the row
// ordinal, so a coarse clock cannot collide inside one batch.
func Missions(rows [][]string, cols Columns) *MissionResult {
	res := &MissionResult{}
	batch := time.Now()

	for i, row := range rows {
		line := i + 2 // 1-based, after the header

		date, ok := ParseDate(cols.Field(row, "date"))
		if !ok {
			res.Skipped = append(res.Skipped, models.RowError{
				Line: line, Field: "date", Message: "empty or unparseable date",
				Value: cols.Field(row, "date"),
			})
			continue
		}

		techID := NormalizeTechnicianID(cols.Field(row, "technician_id"))
		if techID == "" {
			res.Skipped = append(res.Skipped, models.RowError{
				Line: line, Field: "technician_id", Message: "empty technician id",
			})
			continue
		}

		jobCode := strings.ToUpper(cols.Field(row, "job_code"))
		m := &models.Mission{
			ID:            fmt.Sprintf("m-%d-%d", batch.UnixMilli(), i),
			Date:          date,
			JobCode:       jobCode,
			WorkHours:     ParseHours(cols.Field(row, "work_hours")),
			TravelHours:   ParseHours(cols.Field(row, "travel_hours")),
			OvertimeHours: ParseHours(cols.Field(row, "overtime_hours")),
			Category:      models.CategoryFromJobCode(jobCode),
			Status:        models.StatusSubmitted,
			TechnicianID:  techID,
			Address:       cols.Field(row, "address"),
			Description:   cols.Field(row, "description"),
			IGD:           parseFlag(cols.Field(row, "igd")),
			CreatedAt:     batch,
			UpdatedAt:     batch,
		}
		res.Missions = append(res.Missions, m)
	}
	return res
}
