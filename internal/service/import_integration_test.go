package service_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fieldservice-timesheet-api/internal/mocks"
	"github.com/fieldservice-timesheet-api/internal/models"
)

func writeUpload(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("writing upload: %v", err)
	}
	return path
}

func TestImportMissionsEndToEnd(t *testing.T) {
	repos := mocks.NewMockRepositories()
	services := newTestServices(repos)
	ctx := context.Background()

	csv := strings.Join([]string{
		"Date;Affaire;Technicien;Heures Travail",
		"01/03/2024;AB-001;JDupont;7,5",
		";AB-002;jdupont;8",
		"02/03/2024;AB-003;;4",
		"03/03/2024;CONGE;jdupont;7",
	}, "\n")
	path := writeUpload(t, "missions.csv", []byte(csv))

	job, err := services.Import.CreateImportJob(ctx, models.ResourceMissions, "", path)
	if err != nil {
		t.Fatalf("CreateImportJob failed: %v", err)
	}
	if job.Status != models.JobStatusPending {
		t.Errorf("new job should be pending, got %q", job.Status)
	}

	if err := services.Import.ProcessImport(ctx, job); err != nil {
		t.Fatalf("ProcessImport failed: %v", err)
	}

	if job.Status != models.JobStatusCompleted {
		t.Errorf("expected completed, got %q", job.Status)
	}
	if job.TotalRows != 4 || job.ImportedCount != 2 || job.SkippedCount != 2 {
		t.Errorf("unexpected counts: total=%d imported=%d skipped=%d",
			job.TotalRows, job.ImportedCount, job.SkippedCount)
	}

	missions, _ := repos.Mission.ListAll(ctx)
	if len(missions) != 2 {
		t.Fatalf("expected 2 stored missions, got %d", len(missions))
	}
	first := missions[0]
	if first.TechnicianID != "jdupont" || first.WorkHours != 7.5 {
		t.Errorf("unexpected first mission: %+v", first)
	}
	if first.Status != models.StatusSubmitted {
		t.Errorf("imported rows should arrive submitted, got %q", first.Status)
	}
	if missions[1].Category != models.CategoryLeave {
		t.Errorf("CONGE row should be categorized leave, got %q", missions[1].Category)
	}

	// Skipped rows carry their 1-based file line
	rowErrors, _ := repos.Job.GetErrors(ctx, job.ID, 0)
	if len(rowErrors) != 2 {
		t.Fatalf("expected 2 row errors, got %d", len(rowErrors))
	}
	if rowErrors[0].Line != 3 || rowErrors[0].Field != "date" {
		t.Errorf("unexpected first row error: %+v", rowErrors[0])
	}
	if rowErrors[1].Line != 4 || rowErrors[1].Field != "technician_id" {
		t.Errorf("unexpected second row error: %+v", rowErrors[1])
	}
}

func TestImportMissionsLatin1Upload(t *testing.T) {
	repos := mocks.NewMockRepositories()
	services := newTestServices(repos)
	ctx := context.Background()

	// "Début" with a Latin-1 é (0xE9), as older spreadsheet exports produce
	csv := []byte("Date;Affaire;Technicien;Heures Travail;Description\n" +
		"01/03/2024;AB-001;jdupont;7,5;D\xe9but chantier\n")
	path := writeUpload(t, "latin1.csv", csv)

	job, _ := services.Import.CreateImportJob(ctx, models.ResourceMissions, "", path)
	if err := services.Import.ProcessImport(ctx, job); err != nil {
		t.Fatalf("ProcessImport failed: %v", err)
	}

	missions, _ := repos.Mission.ListAll(ctx)
	if len(missions) != 1 {
		t.Fatalf("expected 1 mission, got %d", len(missions))
	}
	if missions[0].Description != "Début chantier" {
		t.Errorf("Latin-1 text not recovered: %q", missions[0].Description)
	}
}

func TestImportMissionsMissingColumnFailsJob(t *testing.T) {
	repos := mocks.NewMockRepositories()
	services := newTestServices(repos)
	ctx := context.Background()

	path := writeUpload(t, "bad.csv", []byte("Heures;Adresse\n7,5;Lyon\n"))

	job, _ := services.Import.CreateImportJob(ctx, models.ResourceMissions, "", path)
	if err := services.Import.ProcessImport(ctx, job); err == nil {
		t.Fatal("unresolvable columns should fail the whole job")
	}

	if job.Status != models.JobStatusFailed {
		t.Errorf("expected failed, got %q", job.Status)
	}
	if job.Error == "" {
		t.Error("failed job should carry the error message")
	}
	if count, _ := repos.Mission.Count(ctx); count != 0 {
		t.Errorf("nothing should be stored on a failed batch, got %d", count)
	}
}

func TestImportMissionsBatchWriteFailureFailsJob(t *testing.T) {
	repos := mocks.NewMockRepositories()
	services := newTestServices(repos)
	ctx := context.Background()

	// The batch write is atomic: when it errors nothing is partially applied
	// and the job fails as a whole
	mission := repos.Mission.(*mocks.MockMissionRepository)
	mission.UpsertBatchFunc = func(ctx context.Context, missions []*models.Mission) (int, error) {
		return 0, errors.New("connection reset")
	}

	csv := "Date;Affaire;Technicien;Heures Travail\n01/03/2024;AB-001;jdupont;7,5\n"
	path := writeUpload(t, "missions.csv", []byte(csv))

	job, _ := services.Import.CreateImportJob(ctx, models.ResourceMissions, "", path)
	if err := services.Import.ProcessImport(ctx, job); err == nil {
		t.Fatal("a failed batch write should fail the job")
	}

	if job.Status != models.JobStatusFailed {
		t.Errorf("expected failed, got %q", job.Status)
	}
	if job.ImportedCount != 0 {
		t.Errorf("nothing should count as imported, got %d", job.ImportedCount)
	}
}

func TestImportRosterReplacesCollection(t *testing.T) {
	repos := mocks.NewMockRepositories()
	services := newTestServices(repos)
	ctx := context.Background()

	repos.Person.Upsert(ctx, &models.Person{ID: "stale", DisplayName: "Stale Entry"})

	csv := strings.Join([]string{
		"ID;Nom;Initiales;Role",
		"JDupont;Jean Dupont;JD;Technicien",
		"mmartin;Marie Martin;MM;Chargé d'affaires",
		"jdupont;Jean Dupont Bis;JDB;Technicien",
	}, "\n")
	path := writeUpload(t, "roster.csv", []byte(csv))

	job, _ := services.Import.CreateImportJob(ctx, models.ResourceRoster, "", path)
	if err := services.Import.ProcessImport(ctx, job); err != nil {
		t.Fatalf("ProcessImport failed: %v", err)
	}

	// The duplicated login collapses: the reported count matches what is stored
	if job.ImportedCount != 2 {
		t.Errorf("expected 2 imported, got %d", job.ImportedCount)
	}
	if count, _ := repos.Person.Count(ctx); count != job.ImportedCount {
		t.Errorf("imported count should match stored count, got %d stored", count)
	}
	if stale, _ := repos.Person.GetByID(ctx, "stale"); stale != nil {
		t.Error("a roster import should replace the whole collection")
	}

	jd, _ := repos.Person.GetByID(ctx, "jdupont")
	if jd == nil || jd.DisplayName != "Jean Dupont Bis" {
		t.Errorf("later duplicate row should win: %+v", jd)
	}
	manager, _ := repos.Person.GetByID(ctx, "mmartin")
	if manager == nil || manager.Role != models.RoleManager {
		t.Errorf("unexpected manager entry: %+v", manager)
	}
}

func TestJobServiceGetJob(t *testing.T) {
	repos := mocks.NewMockRepositories()
	services := newTestServices(repos)
	ctx := context.Background()

	csv := "Date;Affaire;Technicien;Heures Travail\n01/03/2024;AB-001;jdupont;7,5\n;;;\n"
	path := writeUpload(t, "missions.csv", []byte(csv))

	job, _ := services.Import.CreateImportJob(ctx, models.ResourceMissions, "key-123", path)
	services.Import.ProcessImport(ctx, job)

	resp, err := services.Job.GetJob(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetJob failed: %v", err)
	}
	if resp.ErrorCount != resp.SkippedCount || resp.ErrorCount != 1 {
		t.Errorf("error count should mirror skips: %d vs %d", resp.ErrorCount, resp.SkippedCount)
	}
	if want := "/v1/imports/" + job.ID + "/errors"; resp.ErrorReport != want {
		t.Errorf("error report url = %q, want %q", resp.ErrorReport, want)
	}
	if len(resp.Errors) != 1 {
		t.Errorf("expected 1 inline error, got %d", len(resp.Errors))
	}

	byKey, err := services.Job.GetJobByIdempotencyKey(ctx, "key-123")
	if err != nil {
		t.Fatalf("GetJobByIdempotencyKey failed: %v", err)
	}
	if byKey == nil || byKey.ID != job.ID {
		t.Errorf("idempotency lookup returned %+v", byKey)
	}
}
