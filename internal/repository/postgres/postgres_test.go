package postgres

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-crm/internal/model"
	"github.com/jwalitptl/clinic-crm/internal/repository"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "postgres"), mock
}

var appointmentCols = []string{
	"id", "client_id", "client_name", "client_email", "staff_id", "staff_name", "staff_role",
	"date", "time", "status", "notes",
}

var clientCols = []string{
	"id", "name", "email", "phone", "date_of_birth", "address", "medical_history", "status",
	"last_visit", "last_visit_type", "created_at",
}

func TestAppointmentCreateReturnsID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAppointmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO appointments")).
		WithArgs(int64(1), "John Smith", "john@example.com", int64(2), "Dr. Sarah Johnson", "Cardiologist",
			"2023-10-25", "10:00", model.AppointmentStatusScheduled, "Regular checkup").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	a := &model.Appointment{
		ClientID: 1, ClientName: "John Smith", ClientEmail: "john@example.com",
		StaffID: 2, StaffName: "Dr. Sarah Johnson", StaffRole: "Cardiologist",
		Date: "2023-10-25", Time: "10:00", Status: model.AppointmentStatusScheduled, Notes: "Regular checkup",
	}
	require.NoError(t, repo.Create(context.Background(), a))
	assert.Equal(t, int64(7), a.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentGetNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAppointmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM appointments WHERE id = $1")).
		WithArgs(int64(9999)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), 9999)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestAppointmentListByDateRange(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAppointmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE date >= $1 AND date <= $2")).
		WithArgs("2023-10-01", "2023-10-31").
		WillReturnRows(sqlmock.NewRows(appointmentCols).
			AddRow(1, 1, "John Smith", "", 1, "", "", "2023-10-31", "09:00", "scheduled", ""))

	got, err := repo.ListByDateRange(context.Background(), model.DateRange{Start: "2023-10-01", End: "2023-10-31"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "2023-10-31", got[0].Date)
	assert.Equal(t, model.AppointmentStatusScheduled, got[0].Status)
}

func TestAppointmentDeleteMissing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAppointmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM appointments WHERE id = $1")).
		WithArgs(int64(9999)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), 9999)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestAppointmentUpdateKeepsID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAppointmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(appointmentCols).
			AddRow(3, 1, "John Smith", "", 1, "", "", "2023-10-25", "10:00", "scheduled", ""))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE appointments")).
		WithArgs(int64(1), "John Smith", "", int64(1), "", "", "2023-10-25", "10:00",
			model.AppointmentStatusCompleted, "", int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	got, err := repo.Update(context.Background(), 3, func(a *model.Appointment) error {
		a.ID = 99
		a.Status = model.AppointmentStatusCompleted
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClientCreateDuplicateEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewClientRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO clients")).
		WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Create(context.Background(), &model.Client{Name: "John", Email: "john@example.com", Phone: "1"})
	assert.ErrorIs(t, err, repository.ErrDuplicateEmail)
}

func TestClientUpdateRollsBackOnDuplicate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewClientRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows(clientCols).
			AddRow(2, "Jane", "jane@example.com", "555", "", "", "", "active", nil, nil, "2023-01-01"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE clients")).
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()

	_, err := repo.Update(context.Background(), 2, func(c *model.Client) error {
		c.Email = "john@example.com"
		return nil
	})
	assert.ErrorIs(t, err, repository.ErrDuplicateEmail)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClientSearchPassesFilter(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewClientRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("strpos(lower(name), lower($2))")).
		WithArgs("inactive", "john").
		WillReturnRows(sqlmock.NewRows(clientCols))

	got, err := repo.Search(context.Background(), model.ClientFilter{Query: "john", Status: model.ClientStatusInactive})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestUserGetByEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email = $1")).
		WithArgs("admin@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "role", "password_hash"}).
			AddRow(1, "admin@example.com", "Admin User", "admin", "$2a$10$hash"))

	u, err := repo.GetByEmail(context.Background(), "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Admin User", u.Name)
	assert.Equal(t, "$2a$10$hash", u.PasswordHash)
}
