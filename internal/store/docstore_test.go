package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/fieldservice-timesheet-api/internal/models"
	"github.com/fieldservice-timesheet-api/internal/store"
	"github.com/rs/zerolog"
)

func openTestStore(t *testing.T) *store.DocStore {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"), zerolog.Nop())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestDocStoreMissionCRUD(t *testing.T) {
	repos := store.NewRepositories(openTestStore(t))
	ctx := context.Background()

	m := &models.Mission{
		ID:           "m-1",
		Date:         time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		JobCode:      "AB-001",
		WorkHours:    7.5,
		Status:       models.StatusSubmitted,
		TechnicianID: "jdupont",
	}
	if err := repos.Mission.Upsert(ctx, m); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	got, err := repos.Mission.GetByID(ctx, "m-1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got == nil || got.JobCode != "AB-001" || got.WorkHours != 7.5 {
		t.Fatalf("unexpected mission: %+v", got)
	}

	// Same id overwrites: last write wins
	m.WorkHours = 8
	if err := repos.Mission.Upsert(ctx, m); err != nil {
		t.Fatalf("second Upsert failed: %v", err)
	}
	got, _ = repos.Mission.GetByID(ctx, "m-1")
	if got.WorkHours != 8 {
		t.Errorf("overwrite lost: hours = %v", got.WorkHours)
	}
	if count, _ := repos.Mission.Count(ctx); count != 1 {
		t.Errorf("overwrite should not duplicate, count = %d", count)
	}

	if err := repos.Mission.Delete(ctx, "m-1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if got, _ := repos.Mission.GetByID(ctx, "m-1"); got != nil {
		t.Errorf("mission should be gone, got %+v", got)
	}
}

func TestDocStoreListByTechnicianBetween(t *testing.T) {
	repos := store.NewRepositories(openTestStore(t))
	ctx := context.Background()

	monday := time.Date(2024, 2, 26, 0, 0, 0, 0, time.UTC)
	dates := []time.Time{
		monday,                 // inside
		monday.AddDate(0, 0, 6), // Sunday, inside
		monday.AddDate(0, 0, 7), // next Monday, excluded
		monday.AddDate(0, 0, -1), // before, excluded
	}
	for i, d := range dates {
		repos.Mission.Upsert(ctx, &models.Mission{
			ID: "m-" + string(rune('a'+i)), Date: d, JobCode: "X", TechnicianID: "jdupont",
		})
	}
	repos.Mission.Upsert(ctx, &models.Mission{
		ID: "m-other", Date: monday, JobCode: "X", TechnicianID: "other",
	})

	missions, err := repos.Mission.ListByTechnicianBetween(ctx, "jdupont", monday, monday.AddDate(0, 0, 7))
	if err != nil {
		t.Fatalf("ListByTechnicianBetween failed: %v", err)
	}
	if len(missions) != 2 {
		t.Fatalf("expected 2 missions in [from, to), got %d", len(missions))
	}
}

func TestDocStoreRosterReplaceAll(t *testing.T) {
	repos := store.NewRepositories(openTestStore(t))
	ctx := context.Background()

	repos.Person.Upsert(ctx, &models.Person{ID: "old", DisplayName: "Old Hand"})

	inserted, err := repos.Person.ReplaceAll(ctx, []*models.Person{
		{ID: "jdupont", DisplayName: "Jean Dupont"},
		{ID: "mmartin", DisplayName: "Marie Martin"},
	})
	if err != nil {
		t.Fatalf("ReplaceAll failed: %v", err)
	}
	if inserted != 2 {
		t.Errorf("expected 2 inserted, got %d", inserted)
	}

	if old, _ := repos.Person.GetByID(ctx, "old"); old != nil {
		t.Error("ReplaceAll should drop prior roster entries")
	}
	if count, _ := repos.Person.Count(ctx); count != 2 {
		t.Errorf("expected roster of 2, got %d", count)
	}
}

func TestDocStoreJobClaim(t *testing.T) {
	repos := store.NewRepositories(openTestStore(t))
	ctx := context.Background()

	job := &models.ImportJob{
		ID:        "job-1",
		Resource:  models.ResourceMissions,
		Status:    models.JobStatusPending,
		FilePath:  "/tmp/upload.csv",
		CreatedAt: time.Now(),
	}
	if err := repos.Job.Create(ctx, job); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	pending, _ := repos.Job.GetPendingJobs(ctx)
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending job, got %d", len(pending))
	}
	if pending[0].FilePath != "/tmp/upload.csv" {
		t.Errorf("file path should survive persistence, got %q", pending[0].FilePath)
	}

	claimed, err := repos.Job.MarkJobAsProcessing(ctx, "job-1")
	if err != nil || !claimed {
		t.Fatalf("first claim should succeed: claimed=%v err=%v", claimed, err)
	}
	claimed, err = repos.Job.MarkJobAsProcessing(ctx, "job-1")
	if err != nil || claimed {
		t.Fatalf("second claim should fail: claimed=%v err=%v", claimed, err)
	}

	repos.Job.AddErrors(ctx, "job-1", []models.RowError{
		{Line: 2, Field: "date", Message: "empty or unparseable date"},
		{Line: 5, Field: "technician_id", Message: "empty technician id"},
	})
	rowErrors, _ := repos.Job.GetErrors(ctx, "job-1", 1)
	if len(rowErrors) != 1 {
		t.Errorf("limit should cap the error list, got %d", len(rowErrors))
	}
	rowErrors, _ = repos.Job.GetErrors(ctx, "job-1", 0)
	if len(rowErrors) != 2 {
		t.Errorf("limit 0 should return all errors, got %d", len(rowErrors))
	}
}

func TestDocStoreSettings(t *testing.T) {
	repos := store.NewRepositories(openTestStore(t))
	ctx := context.Background()

	if err := repos.Setting.Set(ctx, "company_name", "ACME Maintenance"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := repos.Setting.Set(ctx, "company_name", "ACME Services"); err != nil {
		t.Fatalf("second Set failed: %v", err)
	}

	setting, err := repos.Setting.Get(ctx, "company_name")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if setting == nil || setting.Value != "ACME Services" {
		t.Errorf("unexpected setting: %+v", setting)
	}
}

func TestDocStoreFormResponsesFilter(t *testing.T) {
	repos := store.NewRepositories(openTestStore(t))
	ctx := context.Background()

	repos.Form.UpsertTemplate(ctx, &models.FormTemplate{ID: "t1", Name: "Rapport"})
	repos.Form.UpsertResponse(ctx, &models.FormResponse{
		ID: "r1", TemplateID: "t1", MissionID: "m-1", SubmittedAt: time.Now(),
	})
	repos.Form.UpsertResponse(ctx, &models.FormResponse{
		ID: "r2", TemplateID: "t1", SubmittedAt: time.Now(),
	})

	byMission, err := repos.Form.ListResponses(ctx, "", "m-1")
	if err != nil {
		t.Fatalf("ListResponses failed: %v", err)
	}
	if len(byMission) != 1 || byMission[0].ID != "r1" {
		t.Errorf("mission filter wrong: %+v", byMission)
	}

	byTemplate, _ := repos.Form.ListResponses(ctx, "t1", "")
	if len(byTemplate) != 2 {
		t.Errorf("template filter wrong, got %d responses", len(byTemplate))
	}
}
