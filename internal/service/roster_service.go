package service

import (
	"context"
	"errors"
	"strings"

	"github.com/fieldservice-timesheet-api/internal/models"
	"github.com/fieldservice-timesheet-api/internal/reconcile"
	"github.com/fieldservice-timesheet-api/internal/repository"
	"github.com/fieldservice-timesheet-api/internal/store"
	"github.com/rs/zerolog"
)

// ErrBadCredentials hides whether the account or the password was wrong
var ErrBadCredentials = errors.New("unknown account or wrong password")

// ErrAdminProtected refuses deletion of the seed admin account
var ErrAdminProtected = errors.New("the admin account cannot be deleted")

// rosterService is the concrete implementation of RosterService
type rosterService struct {
	persons repository.PersonRepository
	hub     *store.Hub
	log     zerolog.Logger
}

// newRosterService creates a new RosterService
func newRosterService(persons repository.PersonRepository, hub *store.Hub, log zerolog.Logger) *rosterService {
	return &rosterService{
		persons: persons,
		hub:     hub,
		log:     log.With().Str("service", "roster").Logger(),
	}
}

// Authenticate checks a login against the stored credential. Credentials are
// compared as stored; the plaintext scheme is inherited behavior, kept for
// parity with the data this system imports.
func (s *rosterService) Authenticate(ctx context.Context, id, password string) (*models.Person, error) {
	p, err := s.persons.GetByID(ctx, reconcile.NormalizeTechnicianID(id))
	if err != nil {
		return nil, err
	}
	if p == nil || p.Password != password {
		return nil, ErrBadCredentials
	}
	return p, nil
}

// Upsert stores a person; the same id overwrites
func (s *rosterService) Upsert(ctx context.Context, p *models.Person) error {
	p.ID = reconcile.NormalizeTechnicianID(p.ID)
	if p.ID == "" {
		return errors.New("person id is required")
	}
	p.Initials = strings.ToUpper(p.Initials)
	if r := []rune(p.Initials); len(r) > 3 {
		p.Initials = string(r[:3])
	}
	if p.Role == "" {
		p.Role = models.RoleTechnician
	}
	if p.Password == "" {
		p.Password = reconcile.DefaultPassword
	}

	if err := s.persons.Upsert(ctx, p); err != nil {
		return err
	}
	s.hub.Publish(store.Event{Collection: store.CollectionUsers, ID: p.ID, Op: "upsert"})
	return nil
}

// Get retrieves one person
func (s *rosterService) Get(ctx context.Context, id string) (*models.Person, error) {
	return s.persons.GetByID(ctx, id)
}

// List returns the whole roster
func (s *rosterService) List(ctx context.Context) ([]*models.Person, error) {
	return s.persons.ListAll(ctx)
}

// Delete removes a person. The seed admin account is protected.
func (s *rosterService) Delete(ctx context.Context, id string) error {
	if id == models.AdminAccountID {
		return ErrAdminProtected
	}
	if err := s.persons.Delete(ctx, id); err != nil {
		return err
	}
	s.hub.Publish(store.Event{Collection: store.CollectionUsers, ID: id, Op: "delete"})
	return nil
}
