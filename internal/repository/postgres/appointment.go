package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/clinic-crm/internal/model"
)

const appointmentColumns = `id, client_id, client_name, client_email, staff_id, staff_name, staff_role,
	date, time, status, notes`

func (r *appointmentRepository) Create(ctx context.Context, a *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			client_id, client_name, client_email, staff_id, staff_name, staff_role,
			date, time, status, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	err := r.db.QueryRowxContext(ctx, query,
		a.ClientID, a.ClientName, a.ClientEmail,
		a.StaffID, a.StaffName, a.StaffRole,
		a.Date, a.Time, a.Status, a.Notes,
	).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", translate(err))
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id int64) (*model.Appointment, error) {
	var a model.Appointment
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`
	if err := r.db.GetContext(ctx, &a, query, id); err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", translate(err))
	}
	return &a, nil
}

func (r *appointmentRepository) Update(ctx context.Context, id int64, mutate func(*model.Appointment) error) (*model.Appointment, error) {
	var a model.Appointment
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1 FOR UPDATE`
		if err := tx.GetContext(ctx, &a, query, id); err != nil {
			return translate(err)
		}
		if err := mutate(&a); err != nil {
			return err
		}
		a.ID = id

		query = `
			UPDATE appointments
			SET client_id = $1, client_name = $2, client_email = $3, staff_id = $4, staff_name = $5,
				staff_role = $6, date = $7, time = $8, status = $9, notes = $10
			WHERE id = $11
		`
		_, err := tx.ExecContext(ctx, query,
			a.ClientID, a.ClientName, a.ClientEmail,
			a.StaffID, a.StaffName, a.StaffRole,
			a.Date, a.Time, a.Status, a.Notes, a.ID,
		)
		return translate(err)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update appointment: %w", err)
	}
	return &a, nil
}

func (r *appointmentRepository) Delete(ctx context.Context, id int64) error {
	if err := deleteByID(ctx, r.db, `DELETE FROM appointments WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) List(ctx context.Context) ([]*model.Appointment, error) {
	appointments := make([]*model.Appointment, 0)
	query := `SELECT ` + appointmentColumns + ` FROM appointments ORDER BY id`
	if err := r.db.SelectContext(ctx, &appointments, query); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

// Dates are stored as ISO text, so string comparison is calendar order.
func (r *appointmentRepository) ListByDateRange(ctx context.Context, dr model.DateRange) ([]*model.Appointment, error) {
	appointments := make([]*model.Appointment, 0)
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE date >= $1 AND date <= $2 ORDER BY id`
	if err := r.db.SelectContext(ctx, &appointments, query, dr.Start, dr.End); err != nil {
		return nil, fmt.Errorf("failed to list appointments by date: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM appointments`); err != nil {
		return 0, fmt.Errorf("failed to count appointments: %w", err)
	}
	return n, nil
}
