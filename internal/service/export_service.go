package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/fieldservice-timesheet-api/internal/csvio"
	"github.com/fieldservice-timesheet-api/internal/models"
	"github.com/fieldservice-timesheet-api/internal/repository"
	"github.com/rs/zerolog"
)

// Export column orders. The header line is part of the round-trip contract
// with the parser keyword tables, so the names stay importable.
var missionExportHeaders = []string{
	"date", "affaire", "technicien", "heures", "route", "heures_sup",
	"categorie", "statut", "adresse", "description", "igd",
}

var rosterExportHeaders = []string{
	"id", "nom", "initiales", "role", "email", "telephone",
}

// exportService is the concrete implementation of ExportService
type exportService struct {
	repos *repository.Repositories
	log   zerolog.Logger
}

// newExportService creates a new ExportService
func newExportService(repos *repository.Repositories, log zerolog.Logger) *exportService {
	return &exportService{
		repos: repos,
		log:   log.With().Str("service", "export").Logger(),
	}
}

// ExportMissions flattens mission records to delimited text, optionally for
// a single technician. Placeholder slots never reach the output; an empty
// selection returns csvio.ErrNothingToExport instead of an empty file.
func (s *exportService) ExportMissions(ctx context.Context, technicianID string) (string, error) {
	var rows []map[string]string
	err := s.repos.Mission.StreamAll(ctx, func(m *models.Mission) error {
		if m.IsPlaceholder() {
			return nil
		}
		if technicianID != "" && m.TechnicianID != technicianID {
			return nil
		}
		rows = append(rows, map[string]string{
			"date":        m.Date.Format("02/01/2006"),
			"affaire":     m.JobCode,
			"technicien":  m.TechnicianID,
			"heures":      formatHours(m.WorkHours),
			"route":       formatHours(m.TravelHours),
			"heures_sup":  formatHours(m.OvertimeHours),
			"categorie":   string(m.Category),
			"statut":      string(m.Status),
			"adresse":     m.Address,
			"description": m.Description,
			"igd":         formatFlag(m.IGD),
		})
		return nil
	})
	if err != nil {
		return "", err
	}

	text, err := csvio.Serialize(missionExportHeaders, rows)
	if err != nil {
		return "", err
	}
	s.log.Info().Int("count", len(rows)).Str("technician_id", technicianID).Msg("Missions export completed")
	return text, nil
}

// ExportRoster flattens the person collection. Passwords never leave the
// store through an export.
func (s *exportService) ExportRoster(ctx context.Context) (string, error) {
	persons, err := s.repos.Person.ListAll(ctx)
	if err != nil {
		return "", err
	}

	rows := make([]map[string]string, 0, len(persons))
	for _, p := range persons {
		rows = append(rows, map[string]string{
			"id":        p.ID,
			"nom":       p.DisplayName,
			"initiales": p.Initials,
			"role":      string(p.Role),
			"email":     p.Email,
			"telephone": p.Phone,
		})
	}

	text, err := csvio.Serialize(rosterExportHeaders, rows)
	if err != nil {
		return "", err
	}
	s.log.Info().Int("count", len(rows)).Msg("Roster export completed")
	return text, nil
}

// GetCount returns count for a resource
func (s *exportService) GetCount(ctx context.Context, resource string) (int, error) {
	switch resource {
	case models.ResourceMissions:
		return s.repos.Mission.Count(ctx)
	case models.ResourceRoster:
		return s.repos.Person.Count(ctx)
	default:
		return 0, fmt.Errorf("unknown resource: %s", resource)
	}
}

// formatHours renders hours with a decimal comma, the way the source
// spreadsheets carry them.
func formatHours(v float64) string {
	return strings.ReplaceAll(strconv.FormatFloat(v, 'f', -1, 64), ".", ",")
}

func formatFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
