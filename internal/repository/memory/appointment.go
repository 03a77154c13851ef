package memory

import (
	"context"

	"github.com/jwalitptl/clinic-crm/internal/model"
	"github.com/jwalitptl/clinic-crm/internal/repository"
)

type appointmentRepository struct {
	store *Store[model.Appointment]
}

func NewAppointmentRepository() repository.AppointmentRepository {
	return &appointmentRepository{
		store: NewStore(func(a *model.Appointment) *int64 { return &a.ID }),
	}
}

func (r *appointmentRepository) Create(_ context.Context, a *model.Appointment) error {
	created, err := r.store.Insert(*a, nil)
	if err != nil {
		return err
	}
	*a = created
	return nil
}

func (r *appointmentRepository) Get(_ context.Context, id int64) (*model.Appointment, error) {
	a, err := r.store.Get(id)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *appointmentRepository) Update(_ context.Context, id int64, mutate func(*model.Appointment) error) (*model.Appointment, error) {
	a, err := r.store.Update(id, func(cur *model.Appointment, _ []model.Appointment) error {
		return mutate(cur)
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *appointmentRepository) Delete(_ context.Context, id int64) error {
	return r.store.Delete(id)
}

func (r *appointmentRepository) List(_ context.Context) ([]*model.Appointment, error) {
	return pointers(r.store.List()), nil
}

func (r *appointmentRepository) ListByDateRange(_ context.Context, dr model.DateRange) ([]*model.Appointment, error) {
	return pointers(r.store.Filter(func(a model.Appointment) bool {
		return dr.Contains(a.Date)
	})), nil
}

func (r *appointmentRepository) Count(_ context.Context) (int, error) {
	return r.store.Len(), nil
}

func pointers[T any](items []T) []*T {
	out := make([]*T, len(items))
	for i := range items {
		out[i] = &items[i]
	}
	return out
}
