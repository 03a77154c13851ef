package repository

import (
	"context"
	"errors"

	"github.com/jwalitptl/clinic-crm/internal/model"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

// All repository interfaces in one file
type (
	AppointmentRepository interface {
		// Create assigns a.ID.
		Create(ctx context.Context, a *model.Appointment) error
		Get(ctx context.Context, id int64) (*model.Appointment, error)
		// Update loads the record, lets mutate change it and stores the result
		// atomically. The identifier is preserved whatever mutate does.
		Update(ctx context.Context, id int64, mutate func(*model.Appointment) error) (*model.Appointment, error)
		Delete(ctx context.Context, id int64) error
		List(ctx context.Context) ([]*model.Appointment, error)
		ListByDateRange(ctx context.Context, r model.DateRange) ([]*model.Appointment, error)
		Count(ctx context.Context) (int, error)
	}

	// ClientRepository enforces email uniqueness and reports violations as
	// ErrDuplicateEmail from Create and Update.
	ClientRepository interface {
		Create(ctx context.Context, c *model.Client) error
		Get(ctx context.Context, id int64) (*model.Client, error)
		Update(ctx context.Context, id int64, mutate func(*model.Client) error) (*model.Client, error)
		Delete(ctx context.Context, id int64) error
		List(ctx context.Context) ([]*model.Client, error)
		Search(ctx context.Context, f model.ClientFilter) ([]*model.Client, error)
		Count(ctx context.Context) (int, error)
	}

	UserRepository interface {
		Create(ctx context.Context, u *model.User) error
		GetByEmail(ctx context.Context, email string) (*model.User, error)
	}
)
