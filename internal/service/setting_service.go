package service

import (
	"context"

	"github.com/fieldservice-timesheet-api/internal/models"
	"github.com/fieldservice-timesheet-api/internal/repository"
	"github.com/fieldservice-timesheet-api/internal/store"
)

// settingService is a thin facade over the settings repository that keeps
// the change feed informed.
type settingService struct {
	settings repository.SettingRepository
	hub      *store.Hub
}

func newSettingService(settings repository.SettingRepository, hub *store.Hub) *settingService {
	return &settingService{settings: settings, hub: hub}
}

func (s *settingService) Get(ctx context.Context, key string) (*models.Setting, error) {
	return s.settings.Get(ctx, key)
}

func (s *settingService) Set(ctx context.Context, key, value string) error {
	if err := s.settings.Set(ctx, key, value); err != nil {
		return err
	}
	s.hub.Publish(store.Event{Collection: store.CollectionSettings, ID: key, Op: "upsert"})
	return nil
}

func (s *settingService) All(ctx context.Context) ([]*models.Setting, error) {
	return s.settings.All(ctx)
}
