package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-crm/internal/model"
	"github.com/jwalitptl/clinic-crm/internal/repository"
	"github.com/jwalitptl/clinic-crm/pkg/clock"
	apperrors "github.com/jwalitptl/clinic-crm/pkg/errors"
	"github.com/jwalitptl/clinic-crm/pkg/event"
	"github.com/jwalitptl/clinic-crm/pkg/validator"
)

type Service struct {
	repo      repository.ClientRepository
	events    event.Emitter
	clock     clock.Clock
	validator validator.Validator
}

func NewService(repo repository.ClientRepository, events event.Emitter, clk clock.Clock) *Service {
	if events == nil {
		events = event.Nop()
	}
	if clk == nil {
		clk = clock.System(nil)
	}
	return &Service{
		repo:      repo,
		events:    events,
		clock:     clk,
		validator: validator.New(),
	}
}

// CreateClient stores a new active client created today. The email must not
// be in use by another client.
func (s *Service) CreateClient(ctx context.Context, req *model.CreateClientRequest) (*model.Client, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	c := req.Client(s.clock.Now().Format(model.DateLayout))
	if err := s.repo.Create(ctx, &c); err != nil {
		return nil, s.translate(err, c.Email)
	}

	s.emit(ctx, event.ClientCreated, c.ID, c)
	return &c, nil
}

func (s *Service) GetClient(ctx context.Context, id int64) (*model.Client, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, s.translate(err, "")
	}
	return c, nil
}

func (s *Service) ListClients(ctx context.Context) ([]*model.Client, error) {
	clients, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to list clients: %w", err))
	}
	return clients, nil
}

// UpdateClient merges the provided fields. Changing the email re-checks
// uniqueness against every other client.
func (s *Service) UpdateClient(ctx context.Context, id int64, req *model.UpdateClientRequest) (*model.Client, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	c, err := s.repo.Update(ctx, id, func(c *model.Client) error {
		req.Apply(c)
		return nil
	})
	if err != nil {
		email := ""
		if req.Email != nil {
			email = *req.Email
		}
		return nil, s.translate(err, email)
	}

	s.emit(ctx, event.ClientUpdated, c.ID, c)
	return c, nil
}

func (s *Service) DeleteClient(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.translate(err, "")
	}
	s.emit(ctx, event.ClientDeleted, id, nil)
	return nil
}

// SearchClients filters by a free-text query and an optional status. Both
// filters must match; empty values match everything.
func (s *Service) SearchClients(ctx context.Context, query string, status model.ClientStatus) ([]*model.Client, error) {
	if status != "" && !status.Valid() {
		return nil, apperrors.Validation(fmt.Sprintf("status must be one of: %s, %s",
			model.ClientStatusActive, model.ClientStatusInactive), nil)
	}

	clients, err := s.repo.Search(ctx, model.ClientFilter{Query: query, Status: status})
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to search clients: %w", err))
	}
	return clients, nil
}

func (s *Service) emit(ctx context.Context, t event.EventType, id int64, payload interface{}) {
	if err := s.events.Emit(ctx, t, id, payload); err != nil {
		log.Warn().Err(err).Str("event_type", string(t)).Int64("entity_id", id).Msg("failed to emit change event")
	}
}

func (s *Service) translate(err error, email string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NotFound("client", err)
	case errors.Is(err, repository.ErrDuplicateEmail):
		return apperrors.DuplicateEmail(email, err)
	case apperrors.KindOf(err) != apperrors.KindInternal:
		return err
	default:
		return apperrors.Internal(err)
	}
}
