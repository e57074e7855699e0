package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/fieldservice-timesheet-api/internal/database"
	"github.com/fieldservice-timesheet-api/internal/models"
)

const missionColumns = `id, date, job_code, work_hours, travel_hours, overtime_hours,
	category, status, technician_id, address, description, igd, created_at, updated_at`

// missionRepo is the concrete implementation of MissionRepository
type missionRepo struct {
	db *database.DB
}

// NewMissionRepo creates a new mission repository
func NewMissionRepo(db *database.DB) MissionRepository {
	return &missionRepo{db: db}
}

// Upsert inserts or overwrites a mission by id (last write wins)
func (r *missionRepo) Upsert(ctx context.Context, m *models.Mission) error {
	query := `
		INSERT INTO missions (` + missionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO UPDATE SET
			date = EXCLUDED.date,
			job_code = EXCLUDED.job_code,
			work_hours = EXCLUDED.work_hours,
			travel_hours = EXCLUDED.travel_hours,
			overtime_hours = EXCLUDED.overtime_hours,
			category = EXCLUDED.category,
			status = EXCLUDED.status,
			technician_id = EXCLUDED.technician_id,
			address = EXCLUDED.address,
			description = EXCLUDED.description,
			igd = EXCLUDED.igd,
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.db.ExecContext(ctx, query,
		m.ID, m.Date, m.JobCode, m.WorkHours, m.TravelHours, m.OvertimeHours,
		m.Category, m.Status, m.TechnicianID, m.Address, m.Description, m.IGD,
		m.CreatedAt, time.Now(),
	)
	return err
}

// UpsertBatch upserts a reconciled import batch inside one transaction. The
// batch is atomic: a row failure aborts the transaction and fails the whole
// batch. Row-level skipping happens earlier, at reconciliation.
func (r *missionRepo) UpsertBatch(ctx context.Context, missions []*models.Mission) (int, error) {
	if len(missions) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO missions (`+missionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO UPDATE SET
			date = EXCLUDED.date,
			job_code = EXCLUDED.job_code,
			work_hours = EXCLUDED.work_hours,
			travel_hours = EXCLUDED.travel_hours,
			overtime_hours = EXCLUDED.overtime_hours,
			category = EXCLUDED.category,
			status = EXCLUDED.status,
			technician_id = EXCLUDED.technician_id,
			address = EXCLUDED.address,
			description = EXCLUDED.description,
			igd = EXCLUDED.igd,
			updated_at = EXCLUDED.updated_at
	`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	now := time.Now()
	for _, m := range missions {
		if _, err := stmt.ExecContext(ctx,
			m.ID, m.Date, m.JobCode, m.WorkHours, m.TravelHours, m.OvertimeHours,
			m.Category, m.Status, m.TechnicianID, m.Address, m.Description, m.IGD,
			m.CreatedAt, now,
		); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(missions), nil
}

// GetByID retrieves a mission by ID
func (r *missionRepo) GetByID(ctx context.Context, id string) (*models.Mission, error) {
	query := `SELECT ` + missionColumns + ` FROM missions WHERE id = $1`

	var m models.Mission
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&m.ID, &m.Date, &m.JobCode, &m.WorkHours, &m.TravelHours, &m.OvertimeHours,
		&m.Category, &m.Status, &m.TechnicianID, &m.Address, &m.Description, &m.IGD,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Delete removes a mission by ID
func (r *missionRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM missions WHERE id = $1", id)
	return err
}

// ListAll returns every mission ordered by date
func (r *missionRepo) ListAll(ctx context.Context) ([]*models.Mission, error) {
	return r.list(ctx, `SELECT `+missionColumns+` FROM missions ORDER BY date, id`)
}

// ListByTechnicianBetween returns one technician's missions with dates in
// [from, to). Week queries pass the Monday and the following Monday.
func (r *missionRepo) ListByTechnicianBetween(ctx context.Context, technicianID string, from, to time.Time) ([]*models.Mission, error) {
	return r.list(ctx,
		`SELECT `+missionColumns+` FROM missions
		 WHERE technician_id = $1 AND date >= $2 AND date < $3
		 ORDER BY date, id`,
		technicianID, from, to)
}

func (r *missionRepo) list(ctx context.Context, query string, args ...any) ([]*models.Mission, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var missions []*models.Mission
	for rows.Next() {
		var m models.Mission
		if err := rows.Scan(
			&m.ID, &m.Date, &m.JobCode, &m.WorkHours, &m.TravelHours, &m.OvertimeHours,
			&m.Category, &m.Status, &m.TechnicianID, &m.Address, &m.Description, &m.IGD,
			&m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, err
		}
		missions = append(missions, &m)
	}
	return missions, rows.Err()
}

// Count returns the total number of missions
func (r *missionRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM missions").Scan(&count)
	return count, err
}

// StreamAll streams all missions for export (memory efficient)
func (r *missionRepo) StreamAll(ctx context.Context, callback func(*models.Mission) error) error {
	query := `SELECT ` + missionColumns + ` FROM missions ORDER BY date, id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var m models.Mission
		if err := rows.Scan(
			&m.ID, &m.Date, &m.JobCode, &m.WorkHours, &m.TravelHours, &m.OvertimeHours,
			&m.Category, &m.Status, &m.TechnicianID, &m.Address, &m.Description, &m.IGD,
			&m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return err
		}
		if err := callback(&m); err != nil {
			return err
		}
	}
	return rows.Err()
}
