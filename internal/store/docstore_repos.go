package store

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/fieldservice-timesheet-api/internal/models"
	"github.com/fieldservice-timesheet-api/internal/repository"
)

// Internal collections used only by the job machinery
const (
	collectionJobs      = "import_jobs"
	collectionJobErrors = "import_job_errors"
)

// NewRepositories exposes the document store through the same repository
// interfaces the relational backend implements, so services never know which
// variant they run on.
func NewRepositories(s *DocStore) *repository.Repositories {
	return &repository.Repositories{
		Mission: &missionDocs{s: s},
		Person:  &personDocs{s: s},
		Form:    &formDocs{s: s},
		Setting: &settingDocs{s: s},
		Job:     &jobDocs{s: s},
	}
}

// missionDocs implements repository.MissionRepository over the doc store

type missionDocs struct {
	s *DocStore
}

func (r *missionDocs) Upsert(ctx context.Context, m *models.Mission) error {
	m.UpdatedAt = time.Now()
	return r.s.put(ctx, CollectionMissions, m.ID, m)
}

func (r *missionDocs) UpsertBatch(ctx context.Context, missions []*models.Mission) (int, error) {
	inserted := 0
	for _, m := range missions {
		if err := r.Upsert(ctx, m); err != nil {
			continue
		}
		inserted++
	}
	return inserted, nil
}

func (r *missionDocs) GetByID(ctx context.Context, id string) (*models.Mission, error) {
	var m models.Mission
	found, err := r.s.get(ctx, CollectionMissions, id, &m)
	if err != nil || !found {
		return nil, err
	}
	return &m, nil
}

func (r *missionDocs) Delete(ctx context.Context, id string) error {
	return r.s.delete(ctx, CollectionMissions, id)
}

func (r *missionDocs) ListAll(ctx context.Context) ([]*models.Mission, error) {
	var missions []*models.Mission
	err := r.s.each(ctx, CollectionMissions, func(doc []byte) error {
		var m models.Mission
		if err := json.Unmarshal(doc, &m); err != nil {
			return err
		}
		missions = append(missions, &m)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortMissions(missions)
	return missions, nil
}

func (r *missionDocs) ListByTechnicianBetween(ctx context.Context, technicianID string, from, to time.Time) ([]*models.Mission, error) {
	all, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	var missions []*models.Mission
	for _, m := range all {
		if m.TechnicianID != technicianID {
			continue
		}
		if m.Date.Before(from) || !m.Date.Before(to) {
			continue
		}
		missions = append(missions, m)
	}
	return missions, nil
}

func (r *missionDocs) Count(ctx context.Context) (int, error) {
	return r.s.count(ctx, CollectionMissions)
}

func (r *missionDocs) StreamAll(ctx context.Context, callback func(*models.Mission) error) error {
	missions, err := r.ListAll(ctx)
	if err != nil {
		return err
	}
	for _, m := range missions {
		if err := callback(m); err != nil {
			return err
		}
	}
	return nil
}

func sortMissions(missions []*models.Mission) {
	sort.Slice(missions, func(i, j int) bool {
		if !missions[i].Date.Equal(missions[j].Date) {
			return missions[i].Date.Before(missions[j].Date)
		}
		return missions[i].ID < missions[j].ID
	})
}

// personDocs implements repository.PersonRepository over the doc store

type personDocs struct {
	s *DocStore
}

func (r *personDocs) Upsert(ctx context.Context, p *models.Person) error {
	p.UpdatedAt = time.Now()
	return r.s.put(ctx, CollectionUsers, p.ID, p)
}

func (r *personDocs) GetByID(ctx context.Context, id string) (*models.Person, error) {
	var p models.Person
	found, err := r.s.get(ctx, CollectionUsers, id, &p)
	if err != nil || !found {
		return nil, err
	}
	return &p, nil
}

func (r *personDocs) Delete(ctx context.Context, id string) error {
	return r.s.delete(ctx, CollectionUsers, id)
}

func (r *personDocs) ListAll(ctx context.Context) ([]*models.Person, error) {
	var persons []*models.Person
	err := r.s.each(ctx, CollectionUsers, func(doc []byte) error {
		var p models.Person
		if err := json.Unmarshal(doc, &p); err != nil {
			return err
		}
		persons = append(persons, &p)
		return nil
	})
	return persons, err
}

func (r *personDocs) ReplaceAll(ctx context.Context, persons []*models.Person) (int, error) {
	if err := r.s.clear(ctx, CollectionUsers); err != nil {
		return 0, err
	}
	inserted := 0
	for _, p := range persons {
		if err := r.Upsert(ctx, p); err != nil {
			continue
		}
		inserted++
	}
	return inserted, nil
}

func (r *personDocs) Count(ctx context.Context) (int, error) {
	return r.s.count(ctx, CollectionUsers)
}

// formDocs implements repository.FormRepository over the doc store

type formDocs struct {
	s *DocStore
}

func (r *formDocs) UpsertTemplate(ctx context.Context, t *models.FormTemplate) error {
	t.UpdatedAt = time.Now()
	return r.s.put(ctx, CollectionTemplates, t.ID, t)
}

func (r *formDocs) GetTemplate(ctx context.Context, id string) (*models.FormTemplate, error) {
	var t models.FormTemplate
	found, err := r.s.get(ctx, CollectionTemplates, id, &t)
	if err != nil || !found {
		return nil, err
	}
	return &t, nil
}

func (r *formDocs) ListTemplates(ctx context.Context) ([]*models.FormTemplate, error) {
	var templates []*models.FormTemplate
	err := r.s.each(ctx, CollectionTemplates, func(doc []byte) error {
		var t models.FormTemplate
		if err := json.Unmarshal(doc, &t); err != nil {
			return err
		}
		templates = append(templates, &t)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(templates, func(i, j int) bool { return templates[i].Name < templates[j].Name })
	return templates, nil
}

func (r *formDocs) DeleteTemplate(ctx context.Context, id string) error {
	return r.s.delete(ctx, CollectionTemplates, id)
}

func (r *formDocs) UpsertResponse(ctx context.Context, resp *models.FormResponse) error {
	return r.s.put(ctx, CollectionResponses, resp.ID, resp)
}

func (r *formDocs) GetResponse(ctx context.Context, id string) (*models.FormResponse, error) {
	var resp models.FormResponse
	found, err := r.s.get(ctx, CollectionResponses, id, &resp)
	if err != nil || !found {
		return nil, err
	}
	return &resp, nil
}

func (r *formDocs) ListResponses(ctx context.Context, templateID, missionID string) ([]*models.FormResponse, error) {
	var responses []*models.FormResponse
	err := r.s.each(ctx, CollectionResponses, func(doc []byte) error {
		var resp models.FormResponse
		if err := json.Unmarshal(doc, &resp); err != nil {
			return err
		}
		if templateID != "" && resp.TemplateID != templateID {
			return nil
		}
		if missionID != "" && resp.MissionID != missionID {
			return nil
		}
		responses = append(responses, &resp)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(responses, func(i, j int) bool {
		return responses[i].SubmittedAt.After(responses[j].SubmittedAt)
	})
	return responses, nil
}

func (r *formDocs) DeleteResponse(ctx context.Context, id string) error {
	return r.s.delete(ctx, CollectionResponses, id)
}

// settingDocs implements repository.SettingRepository over the doc store

type settingDocs struct {
	s *DocStore
}

func (r *settingDocs) Get(ctx context.Context, key string) (*models.Setting, error) {
	var setting models.Setting
	found, err := r.s.get(ctx, CollectionSettings, key, &setting)
	if err != nil || !found {
		return nil, err
	}
	return &setting, nil
}

func (r *settingDocs) Set(ctx context.Context, key, value string) error {
	return r.s.put(ctx, CollectionSettings, key, &models.Setting{
		Key: key, Value: value, UpdatedAt: time.Now(),
	})
}

func (r *settingDocs) All(ctx context.Context) ([]*models.Setting, error) {
	var settings []*models.Setting
	err := r.s.each(ctx, CollectionSettings, func(doc []byte) error {
		var s models.Setting
		if err := json.Unmarshal(doc, &s); err != nil {
			return err
		}
		settings = append(settings, &s)
		return nil
	})
	return settings, err
}

// jobDocs implements repository.JobRepository over the doc store. The claim
// in MarkJobAsProcessing is guarded by a process-local mutex; the local
// variant runs a single process by construction.

type jobDocs struct {
	s  *DocStore
	mu sync.Mutex
}

// jobDoc re-adds the file path the API model hides from JSON; the document
// store needs it persisted for the background processor.
type jobDoc struct {
	models.ImportJob
	FilePath string `json:"file_path"`
}

func (r *jobDocs) Create(ctx context.Context, job *models.ImportJob) error {
	return r.s.put(ctx, collectionJobs, job.ID, jobDoc{ImportJob: *job, FilePath: job.FilePath})
}

func (r *jobDocs) Update(ctx context.Context, job *models.ImportJob) error {
	return r.s.put(ctx, collectionJobs, job.ID, jobDoc{ImportJob: *job, FilePath: job.FilePath})
}

func (r *jobDocs) GetByID(ctx context.Context, id string) (*models.ImportJob, error) {
	var doc jobDoc
	found, err := r.s.get(ctx, collectionJobs, id, &doc)
	if err != nil || !found {
		return nil, err
	}
	job := doc.ImportJob
	job.FilePath = doc.FilePath
	return &job, nil
}

func (r *jobDocs) GetByIdempotencyKey(ctx context.Context, key string) (*models.ImportJob, error) {
	if key == "" {
		return nil, nil
	}
	jobs, err := r.all(ctx)
	if err != nil {
		return nil, err
	}
	for _, job := range jobs {
		if job.IdempotencyKey == key {
			return job, nil
		}
	}
	return nil, nil
}

func (r *jobDocs) GetPendingJobs(ctx context.Context) ([]*models.ImportJob, error) {
	jobs, err := r.all(ctx)
	if err != nil {
		return nil, err
	}
	var pending []*models.ImportJob
	for _, job := range jobs {
		if job.Status == models.JobStatusPending {
			pending = append(pending, job)
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].CreatedAt.Before(pending[j].CreatedAt) })
	return pending, nil
}

func (r *jobDocs) MarkJobAsProcessing(ctx context.Context, jobID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, err := r.GetByID(ctx, jobID)
	if err != nil || job == nil {
		return false, err
	}
	if job.Status != models.JobStatusPending {
		return false, nil
	}
	now := time.Now()
	job.Status = models.JobStatusProcessing
	job.StartedAt = &now
	return true, r.Update(ctx, job)
}

func (r *jobDocs) AddErrors(ctx context.Context, jobID string, rowErrors []models.RowError) error {
	if len(rowErrors) == 0 {
		return nil
	}
	var existing []models.RowError
	if _, err := r.s.get(ctx, collectionJobErrors, jobID, &existing); err != nil {
		return err
	}
	return r.s.put(ctx, collectionJobErrors, jobID, append(existing, rowErrors...))
}

func (r *jobDocs) GetErrors(ctx context.Context, jobID string, limit int) ([]models.RowError, error) {
	var errors []models.RowError
	if _, err := r.s.get(ctx, collectionJobErrors, jobID, &errors); err != nil {
		return nil, err
	}
	if limit > 0 && len(errors) > limit {
		errors = errors[:limit]
	}
	return errors, nil
}

func (r *jobDocs) all(ctx context.Context) ([]*models.ImportJob, error) {
	var jobs []*models.ImportJob
	err := r.s.each(ctx, collectionJobs, func(raw []byte) error {
		var doc jobDoc
		if err := json.Unmarshal(raw, &doc); err != nil {
			return err
		}
		job := doc.ImportJob
		job.FilePath = doc.FilePath
		jobs = append(jobs, &job)
		return nil
	})
	return jobs, err
}
