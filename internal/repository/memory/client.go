package memory

import (
	"context"

	"github.com/jwalitptl/clinic-crm/internal/model"
	"github.com/jwalitptl/clinic-crm/internal/repository"
)

type clientRepository struct {
	store *Store[model.Client]
}

func NewClientRepository() repository.ClientRepository {
	return &clientRepository{
		store: NewStore(func(c *model.Client) *int64 { return &c.ID }),
	}
}

func (r *clientRepository) Create(_ context.Context, c *model.Client) error {
	created, err := r.store.Insert(*c, func(existing []model.Client) error {
		return checkEmail(existing, c.Email)
	})
	if err != nil {
		return err
	}
	*c = created
	return nil
}

func (r *clientRepository) Get(_ context.Context, id int64) (*model.Client, error) {
	c, err := r.store.Get(id)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *clientRepository) Update(_ context.Context, id int64, mutate func(*model.Client) error) (*model.Client, error) {
	c, err := r.store.Update(id, func(cur *model.Client, others []model.Client) error {
		prev := cur.Email
		if err := mutate(cur); err != nil {
			return err
		}
		if cur.Email == prev {
			return nil
		}
		return checkEmail(others, cur.Email)
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *clientRepository) Delete(_ context.Context, id int64) error {
	return r.store.Delete(id)
}

func (r *clientRepository) List(_ context.Context) ([]*model.Client, error) {
	return pointers(r.store.List()), nil
}

func (r *clientRepository) Search(_ context.Context, f model.ClientFilter) ([]*model.Client, error) {
	return pointers(r.store.Filter(f.Match)), nil
}

func (r *clientRepository) Count(_ context.Context) (int, error) {
	return r.store.Len(), nil
}

// Emails are compared exactly, case included.
func checkEmail(clients []model.Client, email string) error {
	for _, c := range clients {
		if c.Email == email {
			return repository.ErrDuplicateEmail
		}
	}
	return nil
}
