// Package timesheet buckets mission records into ISO-8601 weeks and computes
// the per-day and per-week hour totals shown on a technician's timesheet.
package timesheet

import (
	"time"

	"github.com/fieldservice-timesheet-api/internal/models"
)

// Totals sums the three hour kinds across a set of missions.
type Totals struct {
	Work     float64 `json:"work"`
	Travel   float64 `json:"travel"`
	Overtime float64 `json:"overtime"`
}

// Week is a bucketed 7-day view for one technician.
type Week struct {
	Year  int                  `json:"year"`
	Week  int                  `json:"week"`
	Start time.Time            `json:"start"`
	Days  [7][]*models.Mission `json:"days"`
}

// WeekStart returns the Monday starting the given ISO week. Week 1's Monday
// is on or before Jan 4 of the ISO year; every other week is 7 days apart.
// Week numbers outside 1..52 are accepted and roll over arithmetically into
// adjacent years, there is no range guard.
func WeekStart(isoYear, week int) time.Time {
	jan4 := time.Date(isoYear, time.January, 4, 0, 0, 0, 0, time.UTC)
	sinceMonday := (int(jan4.Weekday()) + 6) % 7
	week1Monday := jan4.AddDate(0, 0, -sinceMonday)
	return week1Monday.AddDate(0, 0, (week-1)*7)
}

// WeekOf returns the ISO year and week number holding the given date. It is
// the inverse used for "which week is this record in" queries and must agree
// with WeekStart on boundary dates.
func WeekOf(date time.Time) (isoYear, week int) {
	return date.ISOWeek()
}

// BucketWeek distributes a technician's missions into the 7 ordered day
// buckets of one ISO week. Placeholder slots are filtered out; Sunday is a
// bucket like any other, whatever lands there is summed.
func BucketWeek(missions []*models.Mission, technicianID string, isoYear, week int) Week {
	start := WeekStart(isoYear, week)
	w := Week{Year: isoYear, Week: week, Start: start}

	for _, m := range missions {
		if m.TechnicianID != technicianID || m.IsPlaceholder() {
			continue
		}
		day := daysBetween(start, m.Date)
		if day < 0 || day > 6 {
			continue
		}
		w.Days[day] = append(w.Days[day], m)
	}
	return w
}

// DailyTotal sums work, travel and overtime hours across one day bucket.
func DailyTotal(bucket []*models.Mission) float64 {
	var total float64
	for _, m := range bucket {
		total += m.WorkHours + m.TravelHours + m.OvertimeHours
	}
	return total
}

// WeeklyTotal sums the three hour kinds across a full record set.
func WeeklyTotal(missions []*models.Mission) Totals {
	var t Totals
	for _, m := range missions {
		if m.IsPlaceholder() {
			continue
		}
		t.Work += m.WorkHours
		t.Travel += m.TravelHours
		t.Overtime += m.OvertimeHours
	}
	return t
}

// daysBetween counts whole calendar days from a to b, ignoring the time
// component of either.
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	ua := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	ub := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}
