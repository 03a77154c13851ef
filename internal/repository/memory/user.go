package memory

import (
	"context"

	"github.com/jwalitptl/clinic-crm/internal/model"
	"github.com/jwalitptl/clinic-crm/internal/repository"
)

type userRepository struct {
	store *Store[model.User]
}

func NewUserRepository() repository.UserRepository {
	return &userRepository{
		store: NewStore(func(u *model.User) *int64 { return &u.ID }),
	}
}

func (r *userRepository) Create(_ context.Context, u *model.User) error {
	created, err := r.store.Insert(*u, func(existing []model.User) error {
		for _, e := range existing {
			if e.Email == u.Email {
				return repository.ErrDuplicateEmail
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	*u = created
	return nil
}

func (r *userRepository) GetByEmail(_ context.Context, email string) (*model.User, error) {
	matches := r.store.Filter(func(u model.User) bool { return u.Email == email })
	if len(matches) == 0 {
		return nil, repository.ErrNotFound
	}
	return &matches[0], nil
}
