package repository

import (
	"context"
	"time"

	"github.com/fieldservice-timesheet-api/internal/database"
	"github.com/fieldservice-timesheet-api/internal/models"
)

// MissionRepository defines the interface for mission data operations.
// Writes are last-write-wins object upserts; there is no merge.
type MissionRepository interface {
	Upsert(ctx context.Context, m *models.Mission) error
	UpsertBatch(ctx context.Context, missions []*models.Mission) (int, error)
	GetByID(ctx context.Context, id string) (*models.Mission, error)
	Delete(ctx context.Context, id string) error
	ListAll(ctx context.Context) ([]*models.Mission, error)
	ListByTechnicianBetween(ctx context.Context, technicianID string, from, to time.Time) ([]*models.Mission, error)
	Count(ctx context.Context) (int, error)
	StreamAll(ctx context.Context, callback func(*models.Mission) error) error
}

// PersonRepository defines the interface for roster data operations.
// ReplaceAll swaps the entire roster; bulk import never merges.
type PersonRepository interface {
	Upsert(ctx context.Context, p *models.Person) error
	GetByID(ctx context.Context, id string) (*models.Person, error)
	Delete(ctx context.Context, id string) error
	ListAll(ctx context.Context) ([]*models.Person, error)
	ReplaceAll(ctx context.Context, persons []*models.Person) (int, error)
	Count(ctx context.Context) (int, error)
}

// FormRepository covers templates and their responses
type FormRepository interface {
	UpsertTemplate(ctx context.Context, t *models.FormTemplate) error
	GetTemplate(ctx context.Context, id string) (*models.FormTemplate, error)
	ListTemplates(ctx context.Context) ([]*models.FormTemplate, error)
	DeleteTemplate(ctx context.Context, id string) error
	UpsertResponse(ctx context.Context, r *models.FormResponse) error
	GetResponse(ctx context.Context, id string) (*models.FormResponse, error)
	ListResponses(ctx context.Context, templateID, missionID string) ([]*models.FormResponse, error)
	DeleteResponse(ctx context.Context, id string) error
}

// SettingRepository holds the key/value application settings
type SettingRepository interface {
	Get(ctx context.Context, key string) (*models.Setting, error)
	Set(ctx context.Context, key, value string) error
	All(ctx context.Context) ([]*models.Setting, error)
}

// JobRepository defines the interface for import job data operations
type JobRepository interface {
	Create(ctx context.Context, job *models.ImportJob) error
	Update(ctx context.Context, job *models.ImportJob) error
	GetByID(ctx context.Context, id string) (*models.ImportJob, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*models.ImportJob, error)
	GetPendingJobs(ctx context.Context) ([]*models.ImportJob, error)
	MarkJobAsProcessing(ctx context.Context, jobID string) (bool, error)
	AddErrors(ctx context.Context, jobID string, errors []models.RowError) error
	GetErrors(ctx context.Context, jobID string, limit int) ([]models.RowError, error)
}

// Repositories holds all repository interfaces
type Repositories struct {
	Mission MissionRepository
	Person  PersonRepository
	Form    FormRepository
	Setting SettingRepository
	Job     JobRepository
}

// New creates all repositories backed by the relational store
func New(db *database.DB) *Repositories {
	return &Repositories{
		Mission: NewMissionRepo(db),
		Person:  NewPersonRepo(db),
		Form:    NewFormRepo(db),
		Setting: NewSettingRepo(db),
		Job:     NewJobRepo(db),
	}
}
