package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/fieldservice-timesheet-api/internal/database"
	"github.com/fieldservice-timesheet-api/internal/models"
	"github.com/lib/pq"
)

const personColumns = `id, display_name, initials, role, password, email, phone, created_at, updated_at`

// personRepo is the concrete implementation of PersonRepository
type personRepo struct {
	db *database.DB
}

// NewPersonRepo creates a new person repository
func NewPersonRepo(db *database.DB) PersonRepository {
	return &personRepo{db: db}
}

// Upsert inserts or overwrites a person by id. Same id overwrites; that is
// how id uniqueness is enforced.
func (r *personRepo) Upsert(ctx context.Context, p *models.Person) error {
	query := `
		INSERT INTO users (` + personColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			initials = EXCLUDED.initials,
			role = EXCLUDED.role,
			password = EXCLUDED.password,
			email = EXCLUDED.email,
			phone = EXCLUDED.phone,
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.DisplayName, p.Initials, p.Role, p.Password, p.Email, p.Phone,
		p.CreatedAt, time.Now(),
	)
	return err
}

// GetByID retrieves a person by ID
func (r *personRepo) GetByID(ctx context.Context, id string) (*models.Person, error) {
	query := `SELECT ` + personColumns + ` FROM users WHERE id = $1`

	var p models.Person
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.DisplayName, &p.Initials, &p.Role, &p.Password, &p.Email, &p.Phone,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Delete removes a person by ID
func (r *personRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM users WHERE id = $1", id)
	return err
}

// ListAll returns the whole roster ordered by id
func (r *personRepo) ListAll(ctx context.Context) ([]*models.Person, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+personColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var persons []*models.Person
	for rows.Next() {
		var p models.Person
		if err := rows.Scan(
			&p.ID, &p.DisplayName, &p.Initials, &p.Role, &p.Password, &p.Email, &p.Phone,
			&p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		persons = append(persons, &p)
	}
	return persons, rows.Err()
}

// ReplaceAll swaps the entire roster for the given set using PostgreSQL COPY.
// Roster import is replace, not merge, and the swap is atomic: a COPY failure
// rolls everything back. Callers hand over one record per id; the reconciler
// collapses duplicates before the batch reaches the store.
func (r *personRepo) ReplaceAll(ctx context.Context, persons []*models.Person) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM users"); err != nil {
		return 0, err
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("users",
		"id", "display_name", "initials", "role", "password", "email", "phone",
		"created_at", "updated_at",
	))
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	now := time.Now()
	for _, p := range persons {
		if _, err := stmt.ExecContext(ctx,
			p.ID, p.DisplayName, p.Initials, p.Role, p.Password, p.Email, p.Phone,
			p.CreatedAt, now,
		); err != nil {
			return 0, err
		}
	}

	// Execute the COPY
	if _, err := stmt.ExecContext(ctx); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(persons), nil
}

// Count returns the roster size
func (r *personRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count)
	return count, err
}
