package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/clinic-crm/internal/model"
)

const clientColumns = `id, name, email, phone, date_of_birth, address, medical_history, status,
	last_visit, last_visit_type, created_at`

func (r *clientRepository) Create(ctx context.Context, c *model.Client) error {
	query := `
		INSERT INTO clients (
			name, email, phone, date_of_birth, address, medical_history, status,
			last_visit, last_visit_type, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	err := r.db.QueryRowxContext(ctx, query,
		c.Name, c.Email, c.Phone, c.DateOfBirth, c.Address, c.MedicalHistory, c.Status,
		c.LastVisit, c.LastVisitType, c.CreatedAt,
	).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", translate(err))
	}
	return nil
}

func (r *clientRepository) Get(ctx context.Context, id int64) (*model.Client, error) {
	var c model.Client
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = $1`
	if err := r.db.GetContext(ctx, &c, query, id); err != nil {
		return nil, fmt.Errorf("failed to get client: %w", translate(err))
	}
	return &c, nil
}

// Update relies on the unique index on email; a collision surfaces as
// ErrDuplicateEmail and rolls the transaction back.
func (r *clientRepository) Update(ctx context.Context, id int64, mutate func(*model.Client) error) (*model.Client, error) {
	var c model.Client
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `SELECT ` + clientColumns + ` FROM clients WHERE id = $1 FOR UPDATE`
		if err := tx.GetContext(ctx, &c, query, id); err != nil {
			return translate(err)
		}
		if err := mutate(&c); err != nil {
			return err
		}
		c.ID = id

		query = `
			UPDATE clients
			SET name = $1, email = $2, phone = $3, date_of_birth = $4, address = $5,
				medical_history = $6, status = $7, last_visit = $8, last_visit_type = $9
			WHERE id = $10
		`
		_, err := tx.ExecContext(ctx, query,
			c.Name, c.Email, c.Phone, c.DateOfBirth, c.Address,
			c.MedicalHistory, c.Status, c.LastVisit, c.LastVisitType, c.ID,
		)
		return translate(err)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update client: %w", err)
	}
	return &c, nil
}

func (r *clientRepository) Delete(ctx context.Context, id int64) error {
	if err := deleteByID(ctx, r.db, `DELETE FROM clients WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}
	return nil
}

func (r *clientRepository) List(ctx context.Context) ([]*model.Client, error) {
	clients := make([]*model.Client, 0)
	query := `SELECT ` + clientColumns + ` FROM clients ORDER BY id`
	if err := r.db.SelectContext(ctx, &clients, query); err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	return clients, nil
}

// Search uses strpos rather than LIKE so the query is matched literally.
func (r *clientRepository) Search(ctx context.Context, f model.ClientFilter) ([]*model.Client, error) {
	clients := make([]*model.Client, 0)
	query := `
		SELECT ` + clientColumns + `
		FROM clients
		WHERE ($1 = '' OR status = $1)
		  AND ($2 = ''
		       OR strpos(lower(name), lower($2)) > 0
		       OR strpos(lower(email), lower($2)) > 0
		       OR strpos(phone, $2) > 0)
		ORDER BY id
	`
	if err := r.db.SelectContext(ctx, &clients, query, string(f.Status), f.Query); err != nil {
		return nil, fmt.Errorf("failed to search clients: %w", err)
	}
	return clients, nil
}

func (r *clientRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM clients`); err != nil {
		return 0, fmt.Errorf("failed to count clients: %w", err)
	}
	return n, nil
}
