package models

import (
	"time"
)

// JobStatus represents the status of an import job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Import resources
const (
	ResourceMissions = "missions"
	ResourceRoster   = "roster"
)

// ImportJob tracks one CSV import from upload to completion
type ImportJob struct {
	ID             string     `json:"job_id" db:"id"`
	Resource       string     `json:"resource" db:"resource"`
	Status         JobStatus  `json:"status" db:"status"`
	IdempotencyKey string     `json:"idempotency_key,omitempty" db:"idempotency_key"`
	TotalRows      int        `json:"total_rows" db:"total_rows"`
	ImportedCount  int        `json:"imported" db:"imported_count"`
	SkippedCount   int        `json:"skipped" db:"skipped_count"`
	Error          string     `json:"error,omitempty" db:"error"`
	DurationMs     int64      `json:"duration_ms,omitempty" db:"duration_ms"`
	RowsPerSec     float64    `json:"rows_per_sec,omitempty" db:"rows_per_sec"`
	FilePath       string     `json:"-" db:"file_path"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	StartedAt      *time.Time `json:"started_at,omitempty" db:"started_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}

// RowError records why a single row was skipped during import. Skips never
// abort the batch; they are kept only for the job's error report.
type RowError struct {
	Line    int    `json:"line"`
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

// JobResponse is the API response for job status
type JobResponse struct {
	ImportJob
	Errors      []RowError `json:"errors,omitempty"`
	ErrorCount  int        `json:"error_count,omitempty"`
	ErrorReport string     `json:"error_report_url,omitempty"`
}

// Setting is one key/value application setting
type Setting struct {
	Key       string    `json:"key" db:"key"`
	Value     string    `json:"value" db:"value"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
