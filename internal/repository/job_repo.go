package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/fieldservice-timesheet-api/internal/database"
	"github.com/fieldservice-timesheet-api/internal/models"
)

const jobColumns = `id, resource, status, idempotency_key, total_rows, imported_count,
	skipped_count, error, duration_ms, rows_per_sec, file_path, created_at, started_at, completed_at`

// jobRepo is the concrete implementation of JobRepository
type jobRepo struct {
	db *database.DB
}

// NewJobRepo creates a new job repository
func NewJobRepo(db *database.DB) JobRepository {
	return &jobRepo{db: db}
}

// Create inserts a new import job
func (r *jobRepo) Create(ctx context.Context, job *models.ImportJob) error {
	query := `
		INSERT INTO import_jobs (` + jobColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := r.db.ExecContext(ctx, query,
		job.ID, job.Resource, job.Status, job.IdempotencyKey, job.TotalRows,
		job.ImportedCount, job.SkippedCount, job.Error, job.DurationMs, job.RowsPerSec,
		job.FilePath, job.CreatedAt, job.StartedAt, job.CompletedAt,
	)
	return err
}

// Update stores the current state of a job
func (r *jobRepo) Update(ctx context.Context, job *models.ImportJob) error {
	query := `
		UPDATE import_jobs SET
			status = $2, total_rows = $3, imported_count = $4, skipped_count = $5,
			error = $6, duration_ms = $7, rows_per_sec = $8,
			started_at = $9, completed_at = $10
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query,
		job.ID, job.Status, job.TotalRows, job.ImportedCount, job.SkippedCount,
		job.Error, job.DurationMs, job.RowsPerSec, job.StartedAt, job.CompletedAt,
	)
	return err
}

// GetByID retrieves a job by ID
func (r *jobRepo) GetByID(ctx context.Context, id string) (*models.ImportJob, error) {
	return r.get(ctx, `SELECT `+jobColumns+` FROM import_jobs WHERE id = $1`, id)
}

// GetByIdempotencyKey retrieves a job by idempotency key
func (r *jobRepo) GetByIdempotencyKey(ctx context.Context, key string) (*models.ImportJob, error) {
	return r.get(ctx, `SELECT `+jobColumns+` FROM import_jobs WHERE idempotency_key = $1`, key)
}

func (r *jobRepo) get(ctx context.Context, query string, arg any) (*models.ImportJob, error) {
	var job models.ImportJob
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&job.ID, &job.Resource, &job.Status, &job.IdempotencyKey, &job.TotalRows,
		&job.ImportedCount, &job.SkippedCount, &job.Error, &job.DurationMs, &job.RowsPerSec,
		&job.FilePath, &job.CreatedAt, &job.StartedAt, &job.CompletedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// GetPendingJobs returns jobs awaiting processing, oldest first
func (r *jobRepo) GetPendingJobs(ctx context.Context) ([]*models.ImportJob, error) {
	query := `SELECT ` + jobColumns + ` FROM import_jobs WHERE status = $1 ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, models.JobStatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*models.ImportJob
	for rows.Next() {
		var job models.ImportJob
		if err := rows.Scan(
			&job.ID, &job.Resource, &job.Status, &job.IdempotencyKey, &job.TotalRows,
			&job.ImportedCount, &job.SkippedCount, &job.Error, &job.DurationMs, &job.RowsPerSec,
			&job.FilePath, &job.CreatedAt, &job.StartedAt, &job.CompletedAt,
		); err != nil {
			return nil, err
		}
		jobs = append(jobs, &job)
	}
	return jobs, rows.Err()
}

// MarkJobAsProcessing atomically claims a pending job. Returns false when
// another worker already picked it up.
func (r *jobRepo) MarkJobAsProcessing(ctx context.Context, jobID string) (bool, error) {
	now := time.Now()
	res, err := r.db.ExecContext(ctx, `
		UPDATE import_jobs SET status = $2, started_at = $3
		WHERE id = $1 AND status = $4
	`, jobID, models.JobStatusProcessing, now, models.JobStatusPending)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

// AddErrors stores row-skip reasons for a job's error report
func (r *jobRepo) AddErrors(ctx context.Context, jobID string, rowErrors []models.RowError) error {
	if len(rowErrors) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO import_job_errors (job_id, line, field, message, value)
		VALUES ($1, $2, $3, $4, $5)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range rowErrors {
		if _, err := stmt.ExecContext(ctx, jobID, e.Line, e.Field, e.Message, e.Value); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetErrors returns a job's row-skip reasons; limit 0 means all
func (r *jobRepo) GetErrors(ctx context.Context, jobID string, limit int) ([]models.RowError, error) {
	query := `SELECT line, field, message, value FROM import_job_errors WHERE job_id = $1 ORDER BY line`
	args := []any{jobID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var errors []models.RowError
	for rows.Next() {
		var e models.RowError
		if err := rows.Scan(&e.Line, &e.Field, &e.Message, &e.Value); err != nil {
			return nil, err
		}
		errors = append(errors, e)
	}
	return errors, rows.Err()
}
