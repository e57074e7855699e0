package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/fieldservice-timesheet-api/internal/config"
	"github.com/fieldservice-timesheet-api/internal/csvio"
	"github.com/fieldservice-timesheet-api/internal/models"
	"github.com/fieldservice-timesheet-api/internal/reconcile"
	"github.com/fieldservice-timesheet-api/internal/repository"
	"github.com/fieldservice-timesheet-api/internal/store"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// importService is the concrete implementation of ImportService
type importService struct {
	repos *repository.Repositories
	hub   *store.Hub
	cfg   *config.Config
	log   zerolog.Logger
}

// newImportService creates a new ImportService
func newImportService(repos *repository.Repositories, hub *store.Hub, cfg *config.Config, log zerolog.Logger) *importService {
	return &importService{
		repos: repos,
		hub:   hub,
		cfg:   cfg,
		log:   log.With().Str("service", "import").Logger(),
	}
}

// CreateImportJob queues a new import job for the background processor
func (s *importService) CreateImportJob(ctx context.Context, resource, idempotencyKey, filePath string) (*models.ImportJob, error) {
	job := &models.ImportJob{
		ID:             uuid.New().String(),
		Resource:       resource,
		Status:         models.JobStatusPending,
		IdempotencyKey: idempotencyKey,
		FilePath:       filePath,
		CreatedAt:      time.Now(),
	}

	if err := s.repos.Job.Create(ctx, job); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("job_id", job.ID).
		Str("resource", job.Resource).
		Str("file", filePath).
		Msg("Import job created")

	return job, nil
}

// ProcessImport runs one import job to completion. Column-resolution and
// file-read failures are fatal to the job; row-level failures are recorded
// and skipped, never aborting the batch. Nothing is retried automatically.
func (s *importService) ProcessImport(ctx context.Context, job *models.ImportJob) error {
	startTime := time.Now()

	s.log.Info().
		Str("job_id", job.ID).
		Str("resource", job.Resource).
		Msg("Starting import processing")

	var err error
	switch job.Resource {
	case models.ResourceMissions:
		err = s.importMissions(ctx, job)
	case models.ResourceRoster:
		err = s.importRoster(ctx, job)
	default:
		err = fmt.Errorf("unknown resource type: %s", job.Resource)
	}

	// Calculate metrics
	duration := time.Since(startTime)
	job.DurationMs = duration.Milliseconds()
	if job.TotalRows > 0 && duration.Seconds() > 0 {
		job.RowsPerSec = float64(job.TotalRows) / duration.Seconds()
	}
	completedAt := time.Now()
	job.CompletedAt = &completedAt

	if err != nil {
		job.Status = models.JobStatusFailed
		job.Error = err.Error()
		s.log.Error().Err(err).Str("job_id", job.ID).Msg("Import failed")
	} else {
		job.Status = models.JobStatusCompleted
		s.log.Info().
			Str("job_id", job.ID).
			Int("total_rows", job.TotalRows).
			Int("imported", job.ImportedCount).
			Int("skipped", job.SkippedCount).
			Int64("duration_ms", job.DurationMs).
			Float64("rows_per_sec", job.RowsPerSec).
			Msg("Import completed")
	}

	if updateErr := s.repos.Job.Update(ctx, job); updateErr != nil {
		s.log.Error().Err(updateErr).Str("job_id", job.ID).Msg("Failed to persist job state")
	}
	return err
}

// readRows loads and tokenizes the uploaded file, applying the two-encoding
// heuristic, and splits off the header row.
func (s *importService) readRows(job *models.ImportJob) (headers []string, rows [][]string, err error) {
	data, err := os.ReadFile(job.FilePath)
	if err != nil {
		return nil, nil, err
	}

	text, err := csvio.DecodeUpload(data)
	if err != nil {
		return nil, nil, err
	}

	parsed := csvio.Parse(text)
	if len(parsed) < 2 {
		return nil, nil, csvio.ErrUnreadableFile
	}
	return parsed[0], parsed[1:], nil
}

// importMissions reconciles and upserts a mission batch
func (s *importService) importMissions(ctx context.Context, job *models.ImportJob) error {
	headers, rows, err := s.readRows(job)
	if err != nil {
		return err
	}
	job.TotalRows = len(rows)

	cols, err := reconcile.ResolveMissionColumns(headers)
	if err != nil {
		var missing *reconcile.MissingColumnsError
		if errors.As(err, &missing) {
			s.log.Warn().
				Str("job_id", job.ID).
				Strs("missing_columns", missing.Missing).
				Msg("Import batch rejected")
		}
		return err
	}

	result := reconcile.Missions(rows, cols)
	job.SkippedCount = len(result.Skipped)
	if len(result.Skipped) > 0 {
		if err := s.repos.Job.AddErrors(ctx, job.ID, result.Skipped); err != nil {
			s.log.Error().Err(err).Str("job_id", job.ID).Msg("Failed to record skipped rows")
		}
	}

	batchSize := s.cfg.Import.BatchSize
	for start := 0; start < len(result.Missions); start += batchSize {
		end := start + batchSize
		if end > len(result.Missions) {
			end = len(result.Missions)
		}
		inserted, err := s.repos.Mission.UpsertBatch(ctx, result.Missions[start:end])
		if err != nil {
			return err
		}
		job.ImportedCount += inserted

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}

	s.hub.Publish(store.Event{Collection: store.CollectionMissions, Op: "bulk"})
	return nil
}

// importRoster reconciles a roster batch and replaces the whole collection
func (s *importService) importRoster(ctx context.Context, job *models.ImportJob) error {
	headers, rows, err := s.readRows(job)
	if err != nil {
		return err
	}
	job.TotalRows = len(rows)

	cols, err := reconcile.ResolveRosterColumns(headers)
	if err != nil {
		return err
	}

	result := reconcile.Roster(rows, cols)
	job.SkippedCount = len(result.Skipped)
	if len(result.Skipped) > 0 {
		if err := s.repos.Job.AddErrors(ctx, job.ID, result.Skipped); err != nil {
			s.log.Error().Err(err).Str("job_id", job.ID).Msg("Failed to record skipped rows")
		}
	}

	inserted, err := s.repos.Person.ReplaceAll(ctx, result.Persons)
	if err != nil {
		return err
	}
	job.ImportedCount = inserted

	s.hub.Publish(store.Event{Collection: store.CollectionUsers, Op: "bulk"})
	return nil
}
