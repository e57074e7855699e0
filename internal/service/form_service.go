package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fieldservice-timesheet-api/internal/models"
	"github.com/fieldservice-timesheet-api/internal/repository"
	"github.com/fieldservice-timesheet-api/internal/store"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// formService is the concrete implementation of FormService
type formService struct {
	forms repository.FormRepository
	hub   *store.Hub
	log   zerolog.Logger
}

// newFormService creates a new FormService
func newFormService(forms repository.FormRepository, hub *store.Hub, log zerolog.Logger) *formService {
	return &formService{
		forms: forms,
		hub:   hub,
		log:   log.With().Str("service", "form").Logger(),
	}
}

// SaveTemplate validates field types and fully replaces the template
func (s *formService) SaveTemplate(ctx context.Context, t *models.FormTemplate) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
		t.CreatedAt = time.Now()
	}
	if t.Name == "" {
		return errors.New("template name is required")
	}
	for _, f := range t.Fields {
		if f.ID == "" {
			return errors.New("every field needs an id")
		}
		if !models.ValidFieldTypes[f.Type] {
			return fmt.Errorf("unknown field type %q on field %s", f.Type, f.ID)
		}
	}

	if err := s.forms.UpsertTemplate(ctx, t); err != nil {
		return err
	}
	s.hub.Publish(store.Event{Collection: store.CollectionTemplates, ID: t.ID, Op: "upsert"})
	return nil
}

// GetTemplate retrieves one template
func (s *formService) GetTemplate(ctx context.Context, id string) (*models.FormTemplate, error) {
	return s.forms.GetTemplate(ctx, id)
}

// ListTemplates returns all templates
func (s *formService) ListTemplates(ctx context.Context) ([]*models.FormTemplate, error) {
	return s.forms.ListTemplates(ctx)
}

// DeleteTemplate removes a template
func (s *formService) DeleteTemplate(ctx context.Context, id string) error {
	if err := s.forms.DeleteTemplate(ctx, id); err != nil {
		return err
	}
	s.hub.Publish(store.Event{Collection: store.CollectionTemplates, ID: id, Op: "delete"})
	return nil
}

// SaveResponse stores a submission. The template must exist; the optional
// mission reference is kept as-is, orphans are tolerated and shown raw.
func (s *formService) SaveResponse(ctx context.Context, r *models.FormResponse) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.SubmittedAt.IsZero() {
		r.SubmittedAt = time.Now()
	}
	t, err := s.forms.GetTemplate(ctx, r.TemplateID)
	if err != nil {
		return err
	}
	if t == nil {
		return fmt.Errorf("template %s does not exist", r.TemplateID)
	}

	if err := s.forms.UpsertResponse(ctx, r); err != nil {
		return err
	}
	s.hub.Publish(store.Event{Collection: store.CollectionResponses, ID: r.ID, Op: "upsert"})
	return nil
}

// GetResponse retrieves one response
func (s *formService) GetResponse(ctx context.Context, id string) (*models.FormResponse, error) {
	return s.forms.GetResponse(ctx, id)
}

// ListResponses returns responses filtered by template and/or mission
func (s *formService) ListResponses(ctx context.Context, templateID, missionID string) ([]*models.FormResponse, error) {
	return s.forms.ListResponses(ctx, templateID, missionID)
}

// DeleteResponse removes a response
func (s *formService) DeleteResponse(ctx context.Context, id string) error {
	if err := s.forms.DeleteResponse(ctx, id); err != nil {
		return err
	}
	s.hub.Publish(store.Event{Collection: store.CollectionResponses, ID: id, Op: "delete"})
	return nil
}
