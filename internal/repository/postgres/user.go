package postgres

import (
	"context"
	"fmt"

	"github.com/jwalitptl/clinic-crm/internal/model"
)

func (r *userRepository) Create(ctx context.Context, u *model.User) error {
	query := `
		INSERT INTO users (email, name, role, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := r.db.QueryRowxContext(ctx, query, u.Email, u.Name, u.Role, u.PasswordHash).Scan(&u.ID)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", translate(err))
	}
	return nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	query := `SELECT id, email, name, role, password_hash FROM users WHERE email = $1`
	if err := r.db.GetContext(ctx, &u, query, email); err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", translate(err))
	}
	return &u, nil
}
