package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/fieldservice-timesheet-api/internal/database"
	"github.com/fieldservice-timesheet-api/internal/models"
)

// formRepo stores templates and responses; the nested field definitions and
// response data live in JSONB columns.
type formRepo struct {
	db *database.DB
}

// NewFormRepo creates a new form repository
func NewFormRepo(db *database.DB) FormRepository {
	return &formRepo{db: db}
}

// UpsertTemplate inserts or fully replaces a template. Templates are
// versioned by replacement only.
func (r *formRepo) UpsertTemplate(ctx context.Context, t *models.FormTemplate) error {
	fields, err := json.Marshal(t.Fields)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO form_templates (id, name, fields, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			fields = EXCLUDED.fields,
			updated_at = EXCLUDED.updated_at
	`
	_, err = r.db.ExecContext(ctx, query, t.ID, t.Name, fields, t.CreatedAt, time.Now())
	return err
}

// GetTemplate retrieves a template by ID
func (r *formRepo) GetTemplate(ctx context.Context, id string) (*models.FormTemplate, error) {
	query := `SELECT id, name, fields, created_at, updated_at FROM form_templates WHERE id = $1`

	var t models.FormTemplate
	var fields []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(&t.ID, &t.Name, &fields, &t.CreatedAt, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(fields, &t.Fields); err != nil {
		return nil, err
	}
	return &t, nil
}

// ListTemplates returns all templates ordered by name
func (r *formRepo) ListTemplates(ctx context.Context) ([]*models.FormTemplate, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, fields, created_at, updated_at FROM form_templates ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []*models.FormTemplate
	for rows.Next() {
		var t models.FormTemplate
		var fields []byte
		if err := rows.Scan(&t.ID, &t.Name, &fields, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(fields, &t.Fields); err != nil {
			return nil, err
		}
		templates = append(templates, &t)
	}
	return templates, rows.Err()
}

// DeleteTemplate removes a template by ID
func (r *formRepo) DeleteTemplate(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM form_templates WHERE id = $1", id)
	return err
}

// UpsertResponse inserts or overwrites a form response
func (r *formRepo) UpsertResponse(ctx context.Context, resp *models.FormResponse) error {
	data, err := json.Marshal(resp.Data)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO form_responses (id, template_id, technician_id, mission_id, submitted_at, data)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			template_id = EXCLUDED.template_id,
			technician_id = EXCLUDED.technician_id,
			mission_id = EXCLUDED.mission_id,
			submitted_at = EXCLUDED.submitted_at,
			data = EXCLUDED.data
	`
	_, err = r.db.ExecContext(ctx, query,
		resp.ID, resp.TemplateID, resp.TechnicianID, nullable(resp.MissionID),
		resp.SubmittedAt, data,
	)
	return err
}

// GetResponse retrieves a response by ID
func (r *formRepo) GetResponse(ctx context.Context, id string) (*models.FormResponse, error) {
	query := `SELECT id, template_id, technician_id, COALESCE(mission_id, ''), submitted_at, data
		FROM form_responses WHERE id = $1`

	var resp models.FormResponse
	var data []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&resp.ID, &resp.TemplateID, &resp.TechnicianID, &resp.MissionID,
		&resp.SubmittedAt, &data,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &resp.Data); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListResponses returns responses filtered by template and/or mission; empty
// filters match everything.
func (r *formRepo) ListResponses(ctx context.Context, templateID, missionID string) ([]*models.FormResponse, error) {
	query := `SELECT id, template_id, technician_id, COALESCE(mission_id, ''), submitted_at, data
		FROM form_responses
		WHERE ($1 = '' OR template_id = $1) AND ($2 = '' OR mission_id = $2)
		ORDER BY submitted_at DESC`

	rows, err := r.db.QueryContext(ctx, query, templateID, missionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var responses []*models.FormResponse
	for rows.Next() {
		var resp models.FormResponse
		var data []byte
		if err := rows.Scan(
			&resp.ID, &resp.TemplateID, &resp.TechnicianID, &resp.MissionID,
			&resp.SubmittedAt, &data,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, &resp.Data); err != nil {
			return nil, err
		}
		responses = append(responses, &resp)
	}
	return responses, rows.Err()
}

// DeleteResponse removes a response by ID
func (r *formRepo) DeleteResponse(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM form_responses WHERE id = $1", id)
	return err
}

// nullable maps an empty string to SQL NULL for optional foreign keys
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
