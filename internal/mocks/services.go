package mocks

import (
	"context"

	"github.com/fieldservice-timesheet-api/internal/csvio"
	"github.com/fieldservice-timesheet-api/internal/models"
	"github.com/fieldservice-timesheet-api/internal/service"
)

// MockImportService is a mock implementation of ImportService
type MockImportService struct {
	CreateJobFunc func(ctx context.Context, resource, idempotencyKey, filePath string) (*models.ImportJob, error)
	ProcessFunc   func(ctx context.Context, job *models.ImportJob) error
	CreatedJobs   []*models.ImportJob
	ProcessedJobs []*models.ImportJob
}

var _ service.ImportService = (*MockImportService)(nil)

func NewMockImportService() *MockImportService {
	return &MockImportService{}
}

func (m *MockImportService) CreateImportJob(ctx context.Context, resource, idempotencyKey, filePath string) (*models.ImportJob, error) {
	if m.CreateJobFunc != nil {
		return m.CreateJobFunc(ctx, resource, idempotencyKey, filePath)
	}
	job := &models.ImportJob{
		ID:             "test-job-id",
		Resource:       resource,
		IdempotencyKey: idempotencyKey,
		FilePath:       filePath,
		Status:         models.JobStatusPending,
	}
	m.CreatedJobs = append(m.CreatedJobs, job)
	return job, nil
}

func (m *MockImportService) ProcessImport(ctx context.Context, job *models.ImportJob) error {
	if m.ProcessFunc != nil {
		return m.ProcessFunc(ctx, job)
	}
	m.ProcessedJobs = append(m.ProcessedJobs, job)
	job.Status = models.JobStatusCompleted
	return nil
}

// MockExportService is a mock implementation of ExportService
type MockExportService struct {
	MissionsCSV string
	RosterCSV   string
	ExportError error
	Counts      map[string]int
}

var _ service.ExportService = (*MockExportService)(nil)

func NewMockExportService() *MockExportService {
	return &MockExportService{Counts: make(map[string]int)}
}

func (m *MockExportService) ExportMissions(ctx context.Context, technicianID string) (string, error) {
	if m.ExportError != nil {
		return "", m.ExportError
	}
	if m.MissionsCSV == "" {
		return "", csvio.ErrNothingToExport
	}
	return m.MissionsCSV, nil
}

func (m *MockExportService) ExportRoster(ctx context.Context) (string, error) {
	if m.ExportError != nil {
		return "", m.ExportError
	}
	if m.RosterCSV == "" {
		return "", csvio.ErrNothingToExport
	}
	return m.RosterCSV, nil
}

func (m *MockExportService) GetCount(ctx context.Context, resource string) (int, error) {
	return m.Counts[resource], nil
}

// MockJobService is a mock implementation of JobService
type MockJobService struct {
	Jobs      map[string]*models.JobResponse
	ByKey     map[string]*models.ImportJob
	RowErrors map[string][]models.RowError
}

var _ service.JobService = (*MockJobService)(nil)

func NewMockJobService() *MockJobService {
	return &MockJobService{
		Jobs:      make(map[string]*models.JobResponse),
		ByKey:     make(map[string]*models.ImportJob),
		RowErrors: make(map[string][]models.RowError),
	}
}

func (m *MockJobService) StartProcessor(ctx context.Context) {}

func (m *MockJobService) StopProcessor() {}

func (m *MockJobService) GetJob(ctx context.Context, id string) (*models.JobResponse, error) {
	return m.Jobs[id], nil
}

func (m *MockJobService) GetJobByIdempotencyKey(ctx context.Context, key string) (*models.ImportJob, error) {
	return m.ByKey[key], nil
}

func (m *MockJobService) GetJobErrors(ctx context.Context, id string) ([]models.RowError, error) {
	return m.RowErrors[id], nil
}

func (m *MockJobService) SetImportService(importService service.ImportService) {}
