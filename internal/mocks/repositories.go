package mocks

import (
	"context"
	"sort"
	"time"

	"github.com/fieldservice-timesheet-api/internal/models"
	"github.com/fieldservice-timesheet-api/internal/repository"
)

// MockMissionRepository is a mock implementation of MissionRepository
type MockMissionRepository struct {
	Missions        map[string]*models.Mission
	UpsertError     error
	UpsertBatchFunc func(ctx context.Context, missions []*models.Mission) (int, error)
	UpsertCalls     int
	BatchCalls      int
}

var _ repository.MissionRepository = (*MockMissionRepository)(nil)

func NewMockMissionRepository() *MockMissionRepository {
	return &MockMissionRepository{Missions: make(map[string]*models.Mission)}
}

func (m *MockMissionRepository) Upsert(ctx context.Context, mission *models.Mission) error {
	m.UpsertCalls++
	if m.UpsertError != nil {
		return m.UpsertError
	}
	m.Missions[mission.ID] = mission
	return nil
}

func (m *MockMissionRepository) UpsertBatch(ctx context.Context, missions []*models.Mission) (int, error) {
	m.BatchCalls++
	if m.UpsertBatchFunc != nil {
		return m.UpsertBatchFunc(ctx, missions)
	}
	if m.UpsertError != nil {
		return 0, m.UpsertError
	}
	for _, mission := range missions {
		m.Missions[mission.ID] = mission
	}
	return len(missions), nil
}

func (m *MockMissionRepository) GetByID(ctx context.Context, id string) (*models.Mission, error) {
	return m.Missions[id], nil
}

func (m *MockMissionRepository) Delete(ctx context.Context, id string) error {
	delete(m.Missions, id)
	return nil
}

func (m *MockMissionRepository) ListAll(ctx context.Context) ([]*models.Mission, error) {
	missions := make([]*models.Mission, 0, len(m.Missions))
	for _, mission := range m.Missions {
		missions = append(missions, mission)
	}
	sortMissions(missions)
	return missions, nil
}

func (m *MockMissionRepository) ListByTechnicianBetween(ctx context.Context, technicianID string, from, to time.Time) ([]*models.Mission, error) {
	var missions []*models.Mission
	for _, mission := range m.Missions {
		if mission.TechnicianID != technicianID {
			continue
		}
		if mission.Date.Before(from) || !mission.Date.Before(to) {
			continue
		}
		missions = append(missions, mission)
	}
	sortMissions(missions)
	return missions, nil
}

func (m *MockMissionRepository) Count(ctx context.Context) (int, error) {
	return len(m.Missions), nil
}

func (m *MockMissionRepository) StreamAll(ctx context.Context, callback func(*models.Mission) error) error {
	missions, _ := m.ListAll(ctx)
	for _, mission := range missions {
		if err := callback(mission); err != nil {
			return err
		}
	}
	return nil
}

func sortMissions(missions []*models.Mission) {
	sort.Slice(missions, func(i, j int) bool {
		if missions[i].Date.Equal(missions[j].Date) {
			return missions[i].ID < missions[j].ID
		}
		return missions[i].Date.Before(missions[j].Date)
	})
}

// MockPersonRepository is a mock implementation of PersonRepository
type MockPersonRepository struct {
	Persons        map[string]*models.Person
	UpsertError    error
	ReplaceAllFunc func(ctx context.Context, persons []*models.Person) (int, error)
	ReplaceCalls   int
}

var _ repository.PersonRepository = (*MockPersonRepository)(nil)

func NewMockPersonRepository() *MockPersonRepository {
	return &MockPersonRepository{Persons: make(map[string]*models.Person)}
}

func (m *MockPersonRepository) Upsert(ctx context.Context, p *models.Person) error {
	if m.UpsertError != nil {
		return m.UpsertError
	}
	m.Persons[p.ID] = p
	return nil
}

func (m *MockPersonRepository) GetByID(ctx context.Context, id string) (*models.Person, error) {
	return m.Persons[id], nil
}

func (m *MockPersonRepository) Delete(ctx context.Context, id string) error {
	delete(m.Persons, id)
	return nil
}

func (m *MockPersonRepository) ListAll(ctx context.Context) ([]*models.Person, error) {
	persons := make([]*models.Person, 0, len(m.Persons))
	for _, p := range m.Persons {
		persons = append(persons, p)
	}
	sort.Slice(persons, func(i, j int) bool { return persons[i].ID < persons[j].ID })
	return persons, nil
}

func (m *MockPersonRepository) ReplaceAll(ctx context.Context, persons []*models.Person) (int, error) {
	m.ReplaceCalls++
	if m.ReplaceAllFunc != nil {
		return m.ReplaceAllFunc(ctx, persons)
	}
	m.Persons = make(map[string]*models.Person)
	for _, p := range persons {
		m.Persons[p.ID] = p
	}
	return len(persons), nil
}

func (m *MockPersonRepository) Count(ctx context.Context) (int, error) {
	return len(m.Persons), nil
}

// MockFormRepository is a mock implementation of FormRepository
type MockFormRepository struct {
	Templates map[string]*models.FormTemplate
	Responses map[string]*models.FormResponse
}

var _ repository.FormRepository = (*MockFormRepository)(nil)

func NewMockFormRepository() *MockFormRepository {
	return &MockFormRepository{
		Templates: make(map[string]*models.FormTemplate),
		Responses: make(map[string]*models.FormResponse),
	}
}

func (m *MockFormRepository) UpsertTemplate(ctx context.Context, t *models.FormTemplate) error {
	m.Templates[t.ID] = t
	return nil
}

func (m *MockFormRepository) GetTemplate(ctx context.Context, id string) (*models.FormTemplate, error) {
	return m.Templates[id], nil
}

func (m *MockFormRepository) ListTemplates(ctx context.Context) ([]*models.FormTemplate, error) {
	templates := make([]*models.FormTemplate, 0, len(m.Templates))
	for _, t := range m.Templates {
		templates = append(templates, t)
	}
	sort.Slice(templates, func(i, j int) bool { return templates[i].Name < templates[j].Name })
	return templates, nil
}

func (m *MockFormRepository) DeleteTemplate(ctx context.Context, id string) error {
	delete(m.Templates, id)
	return nil
}

func (m *MockFormRepository) UpsertResponse(ctx context.Context, r *models.FormResponse) error {
	m.Responses[r.ID] = r
	return nil
}

func (m *MockFormRepository) GetResponse(ctx context.Context, id string) (*models.FormResponse, error) {
	return m.Responses[id], nil
}

func (m *MockFormRepository) ListResponses(ctx context.Context, templateID, missionID string) ([]*models.FormResponse, error) {
	var responses []*models.FormResponse
	for _, r := range m.Responses {
		if templateID != "" && r.TemplateID != templateID {
			continue
		}
		if missionID != "" && r.MissionID != missionID {
			continue
		}
		responses = append(responses, r)
	}
	sort.Slice(responses, func(i, j int) bool {
		return responses[i].SubmittedAt.After(responses[j].SubmittedAt)
	})
	return responses, nil
}

func (m *MockFormRepository) DeleteResponse(ctx context.Context, id string) error {
	delete(m.Responses, id)
	return nil
}

// MockSettingRepository is a mock implementation of SettingRepository
type MockSettingRepository struct {
	Settings map[string]*models.Setting
}

var _ repository.SettingRepository = (*MockSettingRepository)(nil)

func NewMockSettingRepository() *MockSettingRepository {
	return &MockSettingRepository{Settings: make(map[string]*models.Setting)}
}

func (m *MockSettingRepository) Get(ctx context.Context, key string) (*models.Setting, error) {
	return m.Settings[key], nil
}

func (m *MockSettingRepository) Set(ctx context.Context, key, value string) error {
	m.Settings[key] = &models.Setting{Key: key, Value: value, UpdatedAt: time.Now()}
	return nil
}

func (m *MockSettingRepository) All(ctx context.Context) ([]*models.Setting, error) {
	settings := make([]*models.Setting, 0, len(m.Settings))
	for _, s := range m.Settings {
		settings = append(settings, s)
	}
	sort.Slice(settings, func(i, j int) bool { return settings[i].Key < settings[j].Key })
	return settings, nil
}

// MockJobRepository is a mock implementation of JobRepository
type MockJobRepository struct {
	Jobs        map[string]*models.ImportJob
	Errors      map[string][]models.RowError
	CreateError error
}

var _ repository.JobRepository = (*MockJobRepository)(nil)

func NewMockJobRepository() *MockJobRepository {
	return &MockJobRepository{
		Jobs:   make(map[string]*models.ImportJob),
		Errors: make(map[string][]models.RowError),
	}
}

func (m *MockJobRepository) Create(ctx context.Context, job *models.ImportJob) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.Jobs[job.ID] = job
	return nil
}

func (m *MockJobRepository) Update(ctx context.Context, job *models.ImportJob) error {
	m.Jobs[job.ID] = job
	return nil
}

func (m *MockJobRepository) GetByID(ctx context.Context, id string) (*models.ImportJob, error) {
	return m.Jobs[id], nil
}

func (m *MockJobRepository) GetByIdempotencyKey(ctx context.Context, key string) (*models.ImportJob, error) {
	if key == "" {
		return nil, nil
	}
	for _, job := range m.Jobs {
		if job.IdempotencyKey == key {
			return job, nil
		}
	}
	return nil, nil
}

func (m *MockJobRepository) GetPendingJobs(ctx context.Context) ([]*models.ImportJob, error) {
	var jobs []*models.ImportJob
	for _, job := range m.Jobs {
		if job.Status == models.JobStatusPending {
			jobs = append(jobs, job)
		}
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].CreatedAt.Before(jobs[j].CreatedAt) })
	return jobs, nil
}

func (m *MockJobRepository) MarkJobAsProcessing(ctx context.Context, jobID string) (bool, error) {
	job, ok := m.Jobs[jobID]
	if !ok || job.Status != models.JobStatusPending {
		return false, nil
	}
	job.Status = models.JobStatusProcessing
	now := time.Now()
	job.StartedAt = &now
	return true, nil
}

func (m *MockJobRepository) AddErrors(ctx context.Context, jobID string, rowErrors []models.RowError) error {
	m.Errors[jobID] = append(m.Errors[jobID], rowErrors...)
	return nil
}

func (m *MockJobRepository) GetErrors(ctx context.Context, jobID string, limit int) ([]models.RowError, error) {
	rowErrors := m.Errors[jobID]
	if limit > 0 && len(rowErrors) > limit {
		rowErrors = rowErrors[:limit]
	}
	return rowErrors, nil
}

// NewMockRepositories builds a full repository set backed by the mocks
func NewMockRepositories() *repository.Repositories {
	return &repository.Repositories{
		Mission: NewMockMissionRepository(),
		Person:  NewMockPersonRepository(),
		Form:    NewMockFormRepository(),
		Setting: NewMockSettingRepository(),
		Job:     NewMockJobRepository(),
	}
}
