package models_test

import (
	"testing"

	"github.com/fieldservice-timesheet-api/internal/models"
)

func TestIsLocked(t *testing.T) {
	cases := []struct {
		status models.MissionStatus
		want   bool
	}{
		{models.StatusPending, false},
		{models.StatusSubmitted, false},
		{models.StatusValidated, true},
		{models.StatusRejected, true},
	}
	for _, tc := range cases {
		if got := models.IsLocked(tc.status); got != tc.want {
			t.Errorf("IsLocked(%q) = %v, want %v", tc.status, got, tc.want)
		}
	}
}

func TestIsPlaceholder(t *testing.T) {
	ph := &models.Mission{TechnicianID: "jdupont"}
	if !ph.IsPlaceholder() {
		t.Error("empty job code and zero hours should be a placeholder")
	}

	withHours := &models.Mission{TravelHours: 1}
	if withHours.IsPlaceholder() {
		t.Error("any nonzero hours disqualify a placeholder")
	}

	withCode := &models.Mission{JobCode: "AB-001"}
	if withCode.IsPlaceholder() {
		t.Error("a job code disqualifies a placeholder")
	}

	whitespaceCode := &models.Mission{JobCode: "   "}
	if !whitespaceCode.IsPlaceholder() {
		t.Error("a whitespace-only job code still counts as empty")
	}
}

func TestCategoryFromJobCode(t *testing.T) {
	cases := []struct {
		jobCode string
		want    models.MissionCategory
	}{
		{"AG A25-0110", models.CategoryWork},
		{"CONGE-ETE", models.CategoryLeave},
		{"MALADIE", models.CategorySick},
		{"FORMATION SECU", models.CategoryTraining},
		{"", models.CategoryWork},
	}
	for _, tc := range cases {
		if got := models.CategoryFromJobCode(tc.jobCode); got != tc.want {
			t.Errorf("CategoryFromJobCode(%q) = %q, want %q", tc.jobCode, got, tc.want)
		}
	}
}
