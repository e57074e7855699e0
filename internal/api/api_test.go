package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fieldservice-timesheet-api/internal/api"
	"github.com/fieldservice-timesheet-api/internal/config"
	"github.com/fieldservice-timesheet-api/internal/csvio"
	"github.com/fieldservice-timesheet-api/internal/mocks"
	"github.com/fieldservice-timesheet-api/internal/models"
	"github.com/fieldservice-timesheet-api/internal/repository"
	"github.com/fieldservice-timesheet-api/internal/service"
	"github.com/fieldservice-timesheet-api/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const testSecret = "test-secret"

func newTestRouter(t *testing.T, repos *repository.Repositories) *gin.Engine {
	t.Helper()
	cfg := &config.Config{
		Auth: config.AuthConfig{JWTSecret: testSecret, TokenTTL: time.Hour},
		Import: config.ImportConfig{
			BatchSize:     1000,
			MaxUploadSize: 1 << 20,
			UploadDir:     t.TempDir(),
		},
	}
	hub := store.NewHub()
	services := service.NewServices(repos, hub, cfg, zerolog.Nop())
	return api.NewRouter(services, hub, cfg, zerolog.Nop())
}

func tokenFor(t *testing.T, id string, role models.Role) string {
	t.Helper()
	mgr := api.NewJWTManager(testSecret, time.Hour)
	token, err := mgr.GenerateToken(&models.Person{ID: id, DisplayName: "Test Person", Role: role})
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	return token
}

func doJSON(router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// newMockRouter wires mock services straight into the router, for endpoints
// whose job state is easier to stage than to produce.
func newMockRouter(t *testing.T) (*gin.Engine, *mocks.MockJobService, *mocks.MockExportService) {
	t.Helper()
	mockJob := mocks.NewMockJobService()
	mockExport := mocks.NewMockExportService()
	services := &service.Services{
		Import: mocks.NewMockImportService(),
		Export: mockExport,
		Job:    mockJob,
	}
	cfg := &config.Config{
		Auth:   config.AuthConfig{JWTSecret: testSecret, TokenTTL: time.Hour},
		Import: config.ImportConfig{BatchSize: 1000, MaxUploadSize: 1 << 20, UploadDir: t.TempDir()},
	}
	return api.NewRouter(services, store.NewHub(), cfg, zerolog.Nop()), mockJob, mockExport
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t, mocks.NewMockRepositories())

	w := doJSON(router, http.MethodGet, "/health", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "healthy") {
		t.Errorf("unexpected health body: %s", w.Body.String())
	}
}

func TestLogin(t *testing.T) {
	repos := mocks.NewMockRepositories()
	repos.Person.Upsert(context.Background(), &models.Person{
		ID: "jdupont", DisplayName: "Jean Dupont", Role: models.RoleTechnician, Password: "secret",
	})
	router := newTestRouter(t, repos)

	w := doJSON(router, http.MethodPost, "/v1/auth/login", "", gin.H{"id": "JDupont", "password": "secret"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Token  string         `json:"token"`
		Person *models.Person `json:"person"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Token == "" || resp.Person == nil || resp.Person.ID != "jdupont" {
		t.Errorf("unexpected login response: %s", w.Body.String())
	}
	if strings.Contains(w.Body.String(), "secret") {
		t.Error("login response must not carry the password")
	}

	w = doJSON(router, http.MethodPost, "/v1/auth/login", "", gin.H{"id": "jdupont", "password": "wrong"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for a wrong password, got %d", w.Code)
	}

	w = doJSON(router, http.MethodPost, "/v1/auth/login", "", gin.H{"id": "jdupont"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for a missing password, got %d", w.Code)
	}
}

func TestAuthRequired(t *testing.T) {
	router := newTestRouter(t, mocks.NewMockRepositories())

	w := doJSON(router, http.MethodGet, "/v1/missions", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without a token, got %d", w.Code)
	}

	w = doJSON(router, http.MethodGet, "/v1/missions", "not-a-token", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for a garbage token, got %d", w.Code)
	}
}

func TestStatusDecisionRequiresManager(t *testing.T) {
	repos := mocks.NewMockRepositories()
	repos.Mission.Upsert(context.Background(), &models.Mission{
		ID: "m-1", Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		JobCode: "AB-001", WorkHours: 7.5,
		Status: models.StatusSubmitted, TechnicianID: "jdupont",
	})
	router := newTestRouter(t, repos)

	body := gin.H{"status": "validated"}

	w := doJSON(router, http.MethodPut, "/v1/missions/m-1/status",
		tokenFor(t, "jdupont", models.RoleTechnician), body)
	if w.Code != http.StatusForbidden {
		t.Errorf("technician decision should be 403, got %d", w.Code)
	}

	manager := tokenFor(t, "mmartin", models.RoleManager)
	w = doJSON(router, http.MethodPut, "/v1/missions/m-1/status", manager, body)
	if w.Code != http.StatusOK {
		t.Fatalf("manager decision should be 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"validated"`) {
		t.Errorf("decision not reflected: %s", w.Body.String())
	}

	// A decided mission refuses a second decision
	w = doJSON(router, http.MethodPut, "/v1/missions/m-1/status", manager, gin.H{"status": "rejected"})
	if w.Code != http.StatusConflict {
		t.Errorf("second decision should be 409, got %d", w.Code)
	}

	w = doJSON(router, http.MethodPut, "/v1/missions/missing/status", manager, body)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown mission should be 404, got %d", w.Code)
	}
}

func TestUpdateLockedMission(t *testing.T) {
	repos := mocks.NewMockRepositories()
	repos.Mission.Upsert(context.Background(), &models.Mission{
		ID: "m-1", Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		JobCode: "AB-001", WorkHours: 7.5,
		Status: models.StatusValidated, TechnicianID: "jdupont",
	})
	router := newTestRouter(t, repos)
	token := tokenFor(t, "jdupont", models.RoleTechnician)

	w := doJSON(router, http.MethodPut, "/v1/missions/m-1", token, gin.H{
		"date": "2024-03-01T00:00:00Z", "job_code": "AB-002", "technician_id": "jdupont",
	})
	if w.Code != http.StatusConflict {
		t.Errorf("editing a locked mission should be 409, got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(router, http.MethodPut, "/v1/missions/missing", token, gin.H{
		"date": "2024-03-01T00:00:00Z", "technician_id": "jdupont",
	})
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown mission should be 404, got %d", w.Code)
	}
}

func TestExportEndpoint(t *testing.T) {
	repos := mocks.NewMockRepositories()
	router := newTestRouter(t, repos)
	manager := tokenFor(t, "mmartin", models.RoleManager)

	w := doJSON(router, http.MethodGet, "/v1/exports?resource=missions", manager, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("empty export should be 404, got %d", w.Code)
	}

	w = doJSON(router, http.MethodGet, "/v1/exports?resource=planets", manager, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown resource should be 400, got %d", w.Code)
	}

	repos.Mission.Upsert(context.Background(), &models.Mission{
		ID: "m-1", Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		JobCode: "AB-001", WorkHours: 7.5,
		Status: models.StatusSubmitted, TechnicianID: "jdupont",
	})

	w = doJSON(router, http.MethodGet, "/v1/exports?resource=missions", manager, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("unexpected content type %q", ct)
	}
	if !strings.HasPrefix(w.Body.String(), csvio.BOM) {
		t.Error("export should start with a byte order mark")
	}
	if !strings.Contains(w.Body.String(), `"01/03/2024"`) {
		t.Errorf("unexpected export body: %s", w.Body.String())
	}
}

func TestImportEndpoint(t *testing.T) {
	repos := mocks.NewMockRepositories()
	router := newTestRouter(t, repos)
	manager := tokenFor(t, "mmartin", models.RoleManager)

	upload := func(resource, filename, key string) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		mw.WriteField("resource", resource)
		part, _ := mw.CreateFormFile("file", filename)
		part.Write([]byte("Date;Affaire;Technicien;Heures Travail\n01/03/2024;AB-001;jdupont;7,5\n"))
		mw.Close()

		req := httptest.NewRequest(http.MethodPost, "/v1/imports", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+manager)
		if key != "" {
			req.Header.Set("Idempotency-Key", key)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	w := upload("planets", "data.csv", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown resource should be 400, got %d", w.Code)
	}

	w = upload("missions", "data.xlsx", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("non-CSV upload should be 400, got %d", w.Code)
	}

	w = upload("missions", "data.csv", "key-1")
	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", w.Code, w.Body.String())
	}
	var created struct {
		JobID  string `json:"job_id"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if created.JobID == "" || created.Status != string(models.JobStatusPending) {
		t.Errorf("unexpected create response: %s", w.Body.String())
	}

	// Replaying the key returns the original job instead of queueing again
	w = upload("missions", "data.csv", "key-1")
	if w.Code != http.StatusOK {
		t.Fatalf("replay should be 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), created.JobID) {
		t.Errorf("replay should return the original job: %s", w.Body.String())
	}

	// Technicians cannot reach the import surface at all
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.Close()
	req := httptest.NewRequest(http.MethodPost, "/v1/imports", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, "jdupont", models.RoleTechnician))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("technician import should be 403, got %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router, _, mockExport := newMockRouter(t)
	mockExport.Counts[models.ResourceMissions] = 1200
	mockExport.Counts[models.ResourceRoster] = 40

	w := doJSON(router, http.MethodGet, "/metrics", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		Database map[string]int `json:"database"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Database["missions"] != 1200 || resp.Database["roster"] != 40 {
		t.Errorf("unexpected counts: %v", resp.Database)
	}
}

func TestGetImportStatus(t *testing.T) {
	router, mockJob, _ := newMockRouter(t)
	manager := tokenFor(t, "mmartin", models.RoleManager)

	mockJob.Jobs["job-1"] = &models.JobResponse{
		ImportJob: models.ImportJob{
			ID: "job-1", Resource: models.ResourceMissions,
			Status: models.JobStatusCompleted, TotalRows: 10,
			ImportedCount: 8, SkippedCount: 2,
		},
		ErrorCount:  2,
		ErrorReport: "/v1/imports/job-1/errors",
	}

	w := doJSON(router, http.MethodGet, "/v1/imports/job-1", manager, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "/v1/imports/job-1/errors") {
		t.Errorf("error report url missing: %s", w.Body.String())
	}

	w = doJSON(router, http.MethodGet, "/v1/imports/missing", manager, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown job should be 404, got %d", w.Code)
	}
}

func TestGetImportErrorsCSV(t *testing.T) {
	router, mockJob, _ := newMockRouter(t)
	manager := tokenFor(t, "mmartin", models.RoleManager)

	mockJob.RowErrors["job-1"] = []models.RowError{
		{Line: 3, Field: "date", Message: "empty or unparseable date", Value: "31/02/2024"},
		{Line: 7, Field: "technician_id", Message: "empty technician id"},
	}

	w := doJSON(router, http.MethodGet, "/v1/imports/job-1/errors?format=csv", manager, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("unexpected content type %q", ct)
	}
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d lines", len(lines))
	}
	if lines[0] != "line,field,message,value" {
		t.Errorf("unexpected header: %q", lines[0])
	}
	if !strings.Contains(lines[1], "31/02/2024") {
		t.Errorf("unexpected first row: %q", lines[1])
	}

	// JSON is the default shape
	w = doJSON(router, http.MethodGet, "/v1/imports/job-1/errors", manager, nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"error_count":2`) {
		t.Errorf("unexpected json errors response: %d %s", w.Code, w.Body.String())
	}
}

func TestUserWritesRequireAdmin(t *testing.T) {
	repos := mocks.NewMockRepositories()
	router := newTestRouter(t, repos)

	payload := gin.H{"id": "NewTech", "display_name": "New Tech", "password": "pw123"}

	w := doJSON(router, http.MethodPost, "/v1/users", tokenFor(t, "mmartin", models.RoleManager), payload)
	if w.Code != http.StatusForbidden {
		t.Errorf("manager user write should be 403, got %d", w.Code)
	}

	w = doJSON(router, http.MethodPost, "/v1/users", tokenFor(t, "admin", models.RoleAdmin), payload)
	if w.Code != http.StatusOK {
		t.Fatalf("admin user write should be 200, got %d: %s", w.Code, w.Body.String())
	}
	if strings.Contains(w.Body.String(), "pw123") {
		t.Error("password must never be echoed")
	}

	// The handle is normalized and the password stored for login
	p, _ := repos.Person.GetByID(context.Background(), "newtech")
	if p == nil || p.Password != "pw123" {
		t.Fatalf("user not stored as expected: %+v", p)
	}

	w = doJSON(router, http.MethodDelete, "/v1/users/"+models.AdminAccountID,
		tokenFor(t, "admin", models.RoleAdmin), nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("deleting the admin account should be 403, got %d", w.Code)
	}
}
