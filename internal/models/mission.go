package models

import (
	"strings"
	"time"
)

// MissionStatus represents the lifecycle state of a mission entry
type MissionStatus string

const (
	StatusPending   MissionStatus = "pending"
	StatusSubmitted MissionStatus = "submitted"
	StatusValidated MissionStatus = "validated"
	StatusRejected  MissionStatus = "rejected"
)

// MissionCategory classifies a mission by its job code
type MissionCategory string

const (
	CategoryWork     MissionCategory = "work"
	CategoryLeave    MissionCategory = "leave"
	CategorySick     MissionCategory = "sick"
	CategoryTraining MissionCategory = "training"
)

// Mission is one day-technician-job entry of logged hours
type Mission struct {
	ID            string          `json:"id" db:"id"`
	Date          time.Time       `json:"date" db:"date"`
	JobCode       string          `json:"job_code" db:"job_code"`
	WorkHours     float64         `json:"work_hours" db:"work_hours"`
	TravelHours   float64         `json:"travel_hours" db:"travel_hours"`
	OvertimeHours float64         `json:"overtime_hours" db:"overtime_hours"`
	Category      MissionCategory `json:"category" db:"category"`
	Status        MissionStatus   `json:"status" db:"status"`
	TechnicianID  string          `json:"technician_id" db:"technician_id"`
	Address       string          `json:"address,omitempty" db:"address"`
	Description   string          `json:"description,omitempty" db:"description"`
	IGD           bool            `json:"igd" db:"igd"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

// IsLocked reports whether a mission in the given status is closed to edits.
// Only a manager decision produces a locked state; edits never unlock.
func IsLocked(status MissionStatus) bool {
	return status == StatusValidated || status == StatusRejected
}

// IsPlaceholder reports whether the mission is an empty UI slot rather than a
// real entry: no job code and no hours logged. Placeholders are kept in the
// store but excluded from aggregation and export.
func (m *Mission) IsPlaceholder() bool {
	return strings.TrimSpace(m.JobCode) == "" &&
		m.WorkHours == 0 && m.TravelHours == 0 && m.OvertimeHours == 0
}

// NormalizeJobCode uppercases and trims a job code the way ingestion does
func NormalizeJobCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// CategoryFromJobCode infers the mission category from an already-uppercased
// job code. Keyword matching runs on the final code, not the raw cell.
func CategoryFromJobCode(jobCode string) MissionCategory {
	switch {
	case strings.Contains(jobCode, "CONGE"):
		return CategoryLeave
	case strings.Contains(jobCode, "MALADIE"):
		return CategorySick
	case strings.Contains(jobCode, "FORMATION"):
		return CategoryTraining
	default:
		return CategoryWork
	}
}
