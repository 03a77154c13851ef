package appointment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-crm/internal/email"
	"github.com/jwalitptl/clinic-crm/internal/model"
	"github.com/jwalitptl/clinic-crm/internal/repository"
	apperrors "github.com/jwalitptl/clinic-crm/pkg/errors"
	"github.com/jwalitptl/clinic-crm/pkg/event"
	"github.com/jwalitptl/clinic-crm/pkg/validator"
)

const mailTimeout = 30 * time.Second

type Service struct {
	repo      repository.AppointmentRepository
	events    event.Emitter
	mailer    email.Service
	validator validator.Validator
	mail      sync.WaitGroup
}

func NewService(repo repository.AppointmentRepository, events event.Emitter, mailer email.Service) *Service {
	if events == nil {
		events = event.Nop()
	}
	if mailer == nil {
		mailer = email.Nop()
	}
	return &Service{
		repo:      repo,
		events:    events,
		mailer:    mailer,
		validator: validator.New(),
	}
}

// CreateAppointment stores a new appointment with status scheduled. The
// confirmation mail and change event are best-effort.
func (s *Service) CreateAppointment(ctx context.Context, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	apt := req.Appointment()
	if err := s.repo.Create(ctx, &apt); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to create appointment: %w", err))
	}

	s.emit(ctx, event.AppointmentCreated, apt.ID, apt)
	s.sendConfirmation(ctx, apt)
	return &apt, nil
}

// sendConfirmation mails in the background so a slow SMTP server never
// holds up the request. The send outlives the request context.
func (s *Service) sendConfirmation(ctx context.Context, apt model.Appointment) {
	s.mail.Add(1)
	go func() {
		defer s.mail.Done()
		mailCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), mailTimeout)
		defer cancel()
		if err := s.mailer.SendAppointmentConfirmation(mailCtx, &apt); err != nil {
			log.Warn().Err(err).Int64("appointment_id", apt.ID).Msg("failed to send appointment confirmation")
		}
	}()
}

// Wait blocks until queued confirmation mails have been attempted.
func (s *Service) Wait() {
	s.mail.Wait()
}

func (s *Service) GetAppointment(ctx context.Context, id int64) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	return apt, nil
}

func (s *Service) ListAppointments(ctx context.Context) ([]*model.Appointment, error) {
	apts, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to list appointments: %w", err))
	}
	return apts, nil
}

// UpdateAppointment merges the provided fields. Unknown status values are
// rejected before the store is touched.
func (s *Service) UpdateAppointment(ctx context.Context, id int64, req *model.UpdateAppointmentRequest) (*model.Appointment, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	apt, err := s.repo.Update(ctx, id, func(a *model.Appointment) error {
		req.Apply(a)
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}

	s.emit(ctx, event.AppointmentUpdated, apt.ID, apt)
	return apt, nil
}

func (s *Service) DeleteAppointment(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return translate(err)
	}
	s.emit(ctx, event.AppointmentDeleted, id, nil)
	return nil
}

// GetAppointmentsByDateRange returns appointments dated within [start, end].
// An inverted range is not an error, it simply matches nothing.
func (s *Service) GetAppointmentsByDateRange(ctx context.Context, start, end string) ([]*model.Appointment, error) {
	dr := model.DateRange{Start: start, End: end}
	if err := s.validator.Validate(dr); err != nil {
		return nil, err
	}

	apts, err := s.repo.ListByDateRange(ctx, dr)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to list appointments by date: %w", err))
	}
	return apts, nil
}

func (s *Service) emit(ctx context.Context, t event.EventType, id int64, payload interface{}) {
	if err := s.events.Emit(ctx, t, id, payload); err != nil {
		log.Warn().Err(err).Str("event_type", string(t)).Int64("entity_id", id).Msg("failed to emit change event")
	}
}

func translate(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NotFound("appointment", err)
	case apperrors.KindOf(err) != apperrors.KindInternal:
		return err
	default:
		return apperrors.Internal(err)
	}
}
