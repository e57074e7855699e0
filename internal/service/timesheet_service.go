package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/fieldservice-timesheet-api/internal/models"
	"github.com/fieldservice-timesheet-api/internal/repository"
	"github.com/fieldservice-timesheet-api/internal/store"
	"github.com/fieldservice-timesheet-api/internal/timesheet"
	"github.com/rs/zerolog"
)

// ErrMissionLocked rejects edits to validated or rejected records
var ErrMissionLocked = errors.New("mission is validated or rejected and can no longer be edited")

// ErrNotFound is returned for lookups of absent records
var ErrNotFound = errors.New("record not found")

// timesheetService is the concrete implementation of TimesheetService
type timesheetService struct {
	missions repository.MissionRepository
	hub      *store.Hub
	log      zerolog.Logger
}

// newTimesheetService creates a new TimesheetService
func newTimesheetService(missions repository.MissionRepository, hub *store.Hub, log zerolog.Logger) *timesheetService {
	return &timesheetService{
		missions: missions,
		hub:      hub,
		log:      log.With().Str("service", "timesheet").Logger(),
	}
}

// WeekView buckets one technician's records into the requested ISO week and
// computes daily and weekly totals. Week numbers outside 1..52 roll over
// into adjacent years.
func (s *timesheetService) WeekView(ctx context.Context, technicianID string, isoYear, week int) (*WeekView, error) {
	start := timesheet.WeekStart(isoYear, week)
	end := start.AddDate(0, 0, 7)

	missions, err := s.missions.ListByTechnicianBetween(ctx, technicianID, start, end)
	if err != nil {
		return nil, err
	}

	bucketed := timesheet.BucketWeek(missions, technicianID, isoYear, week)
	view := &WeekView{
		TechnicianID: technicianID,
		Year:         isoYear,
		Week:         week,
		Start:        start,
	}
	var all []*models.Mission
	for i := 0; i < 7; i++ {
		bucket := bucketed.Days[i]
		view.Days[i] = DayView{
			Date:     start.AddDate(0, 0, i),
			Missions: bucket,
			Total:    timesheet.DailyTotal(bucket),
		}
		all = append(all, bucket...)
	}
	view.Totals = timesheet.WeeklyTotal(all)
	return view, nil
}

// CreateMission stores a new mission record
func (s *timesheetService) CreateMission(ctx context.Context, m *models.Mission) error {
	if m.Status == "" {
		m.Status = models.StatusPending
	}
	if m.Category == "" {
		m.Category = models.CategoryFromJobCode(m.JobCode)
	}
	if err := s.missions.Upsert(ctx, m); err != nil {
		return err
	}
	s.hub.Publish(store.Event{Collection: store.CollectionMissions, ID: m.ID, Op: "upsert"})
	return nil
}

// UpdateMission applies a technician edit. Locked records refuse the edit; a
// pending record whose job code and work hours are now both filled promotes
// to submitted. Promotion is one-directional: an edit never demotes.
func (s *timesheetService) UpdateMission(ctx context.Context, m *models.Mission) (*models.Mission, error) {
	current, err := s.missions.GetByID(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, ErrNotFound
	}
	if models.IsLocked(current.Status) {
		return nil, ErrMissionLocked
	}

	m.Status = current.Status
	m.CreatedAt = current.CreatedAt
	m.JobCode = models.NormalizeJobCode(m.JobCode)
	m.Category = models.CategoryFromJobCode(m.JobCode)
	if m.Status == models.StatusPending && m.JobCode != "" && m.WorkHours > 0 {
		m.Status = models.StatusSubmitted
	}

	if err := s.missions.Upsert(ctx, m); err != nil {
		return nil, err
	}
	s.hub.Publish(store.Event{Collection: store.CollectionMissions, ID: m.ID, Op: "upsert"})
	return m, nil
}

// SetStatus applies a manager decision. Only a submitted record can be
// validated or rejected; nothing transitions automatically.
func (s *timesheetService) SetStatus(ctx context.Context, id string, status models.MissionStatus) (*models.Mission, error) {
	if status != models.StatusValidated && status != models.StatusRejected {
		return nil, fmt.Errorf("status must be %q or %q", models.StatusValidated, models.StatusRejected)
	}

	m, err := s.missions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrNotFound
	}
	if m.Status != models.StatusSubmitted {
		return nil, fmt.Errorf("only a %s mission can be %s", models.StatusSubmitted, status)
	}

	m.Status = status
	if err := s.missions.Upsert(ctx, m); err != nil {
		return nil, err
	}
	s.log.Info().Str("mission_id", id).Str("status", string(status)).Msg("Mission status decided")
	s.hub.Publish(store.Event{Collection: store.CollectionMissions, ID: id, Op: "upsert"})
	return m, nil
}

// GetMission retrieves one mission
func (s *timesheetService) GetMission(ctx context.Context, id string) (*models.Mission, error) {
	return s.missions.GetByID(ctx, id)
}

// ListMissions returns every mission
func (s *timesheetService) ListMissions(ctx context.Context) ([]*models.Mission, error) {
	return s.missions.ListAll(ctx)
}

// DeleteMission removes a mission
func (s *timesheetService) DeleteMission(ctx context.Context, id string) error {
	if err := s.missions.Delete(ctx, id); err != nil {
		return err
	}
	s.hub.Publish(store.Event{Collection: store.CollectionMissions, ID: id, Op: "delete"})
	return nil
}
