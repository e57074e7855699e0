package service

import (
	"context"
	"time"

	"github.com/fieldservice-timesheet-api/internal/config"
	"github.com/fieldservice-timesheet-api/internal/models"
	"github.com/fieldservice-timesheet-api/internal/repository"
	"github.com/fieldservice-timesheet-api/internal/store"
	"github.com/fieldservice-timesheet-api/internal/timesheet"
	"github.com/rs/zerolog"
)

// ImportService defines the interface for CSV import operations
type ImportService interface {
	CreateImportJob(ctx context.Context, resource, idempotencyKey, filePath string) (*models.ImportJob, error)
	ProcessImport(ctx context.Context, job *models.ImportJob) error
}

// ExportService defines the interface for CSV export operations
type ExportService interface {
	ExportMissions(ctx context.Context, technicianID string) (string, error)
	ExportRoster(ctx context.Context) (string, error)
	GetCount(ctx context.Context, resource string) (int, error)
}

// JobService defines the interface for import job management
type JobService interface {
	StartProcessor(ctx context.Context)
	StopProcessor()
	GetJob(ctx context.Context, id string) (*models.JobResponse, error)
	GetJobByIdempotencyKey(ctx context.Context, key string) (*models.ImportJob, error)
	GetJobErrors(ctx context.Context, id string) ([]models.RowError, error)
	SetImportService(importService ImportService)
}

// TimesheetService covers mission CRUD, the status lifecycle and the weekly
// aggregation view
type TimesheetService interface {
	WeekView(ctx context.Context, technicianID string, isoYear, week int) (*WeekView, error)
	CreateMission(ctx context.Context, m *models.Mission) error
	UpdateMission(ctx context.Context, m *models.Mission) (*models.Mission, error)
	SetStatus(ctx context.Context, id string, status models.MissionStatus) (*models.Mission, error)
	GetMission(ctx context.Context, id string) (*models.Mission, error)
	ListMissions(ctx context.Context) ([]*models.Mission, error)
	DeleteMission(ctx context.Context, id string) error
}

// RosterService covers person CRUD and credential checks
type RosterService interface {
	Authenticate(ctx context.Context, id, password string) (*models.Person, error)
	Upsert(ctx context.Context, p *models.Person) error
	Get(ctx context.Context, id string) (*models.Person, error)
	List(ctx context.Context) ([]*models.Person, error)
	Delete(ctx context.Context, id string) error
}

// FormService covers template and response CRUD
type FormService interface {
	SaveTemplate(ctx context.Context, t *models.FormTemplate) error
	GetTemplate(ctx context.Context, id string) (*models.FormTemplate, error)
	ListTemplates(ctx context.Context) ([]*models.FormTemplate, error)
	DeleteTemplate(ctx context.Context, id string) error
	SaveResponse(ctx context.Context, r *models.FormResponse) error
	GetResponse(ctx context.Context, id string) (*models.FormResponse, error)
	ListResponses(ctx context.Context, templateID, missionID string) ([]*models.FormResponse, error)
	DeleteResponse(ctx context.Context, id string) error
}

// SettingService is the key/value settings facade
type SettingService interface {
	Get(ctx context.Context, key string) (*models.Setting, error)
	Set(ctx context.Context, key, value string) error
	All(ctx context.Context) ([]*models.Setting, error)
}

// WeekView is the aggregated payload handed to the presentation collaborator
type WeekView struct {
	TechnicianID string           `json:"technician_id"`
	Year         int              `json:"year"`
	Week         int              `json:"week"`
	Start        time.Time        `json:"start"`
	Days         [7]DayView       `json:"days"`
	Totals       timesheet.Totals `json:"totals"`
}

// DayView is one bucketed day with its total
type DayView struct {
	Date     time.Time         `json:"date"`
	Missions []*models.Mission `json:"missions"`
	Total    float64           `json:"total"`
}

// Services holds all service interfaces
type Services struct {
	Import    ImportService
	Export    ExportService
	Job       JobService
	Timesheet TimesheetService
	Roster    RosterService
	Form      FormService
	Setting   SettingService
}

// NewServices creates all services
func NewServices(repos *repository.Repositories, hub *store.Hub, cfg *config.Config, log zerolog.Logger) *Services {
	jobSvc := newJobService(repos.Job, log)
	importSvc := newImportService(repos, hub, cfg, log)
	exportSvc := newExportService(repos, log)
	timesheetSvc := newTimesheetService(repos.Mission, hub, log)
	rosterSvc := newRosterService(repos.Person, hub, log)
	formSvc := newFormService(repos.Form, hub, log)
	settingSvc := newSettingService(repos.Setting, hub)

	// Wire up job processor to import service
	jobSvc.SetImportService(importSvc)

	return &Services{
		Import:    importSvc,
		Export:    exportSvc,
		Job:       jobSvc,
		Timesheet: timesheetSvc,
		Roster:    rosterSvc,
		Form:      formSvc,
		Setting:   settingSvc,
	}
}
