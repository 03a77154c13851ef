package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-crm/internal/model"
	"github.com/jwalitptl/clinic-crm/internal/repository/memory"
	"github.com/jwalitptl/clinic-crm/internal/service/appointment"
	"github.com/jwalitptl/clinic-crm/internal/service/client"
	"github.com/jwalitptl/clinic-crm/pkg/clock"
	apperrors "github.com/jwalitptl/clinic-crm/pkg/errors"
)

var now = time.Date(2023, 10, 25, 14, 0, 0, 0, time.UTC)

type fixture struct {
	ctx          context.Context
	appointments *appointment.Service
	clients      *client.Service
	dashboard    *Service
}

func newFixture() *fixture {
	clk := clock.Fixed(now)
	apts := appointment.NewService(memory.NewAppointmentRepository(), nil, nil)
	clients := client.NewService(memory.NewClientRepository(), nil, clk)
	return &fixture{
		ctx:          context.Background(),
		appointments: apts,
		clients:      clients,
		dashboard:    NewService(apts, clients, 5, clk),
	}
}

func (f *fixture) addAppointment(t *testing.T, date, notes string) *model.Appointment {
	t.Helper()
	a, err := f.appointments.CreateAppointment(f.ctx, &model.CreateAppointmentRequest{
		ClientID: 1, StaffID: 1, Date: date, Time: "09:00", Notes: notes,
	})
	require.NoError(t, err)
	return a
}

func (f *fixture) setStatus(t *testing.T, id int64, status model.AppointmentStatus) {
	t.Helper()
	_, err := f.appointments.UpdateAppointment(f.ctx, id, &model.UpdateAppointmentRequest{Status: &status})
	require.NoError(t, err)
}

func TestGetStatsEmpty(t *testing.T) {
	f := newFixture()

	stats, err := f.dashboard.GetStats(f.ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Stats.TodayAppointments)
	assert.Zero(t, stats.Stats.PendingAppointments)
	assert.Zero(t, stats.Stats.TotalClients)
	assert.Equal(t, 5, stats.Stats.ActiveStaff)
	assert.NotNil(t, stats.RecentAppointments)
	assert.Empty(t, stats.RecentAppointments)
}

func TestGetStatsCounts(t *testing.T) {
	f := newFixture()

	f.addAppointment(t, "2023-10-25", "today 1")
	done := f.addAppointment(t, "2023-10-25", "today 2")
	f.setStatus(t, done.ID, model.AppointmentStatusCompleted)
	f.addAppointment(t, "2023-10-26", "tomorrow")

	_, err := f.clients.CreateClient(f.ctx, &model.CreateClientRequest{Name: "John Smith", Email: "john@example.com", Phone: "1"})
	require.NoError(t, err)

	stats, err := f.dashboard.GetStats(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Stats.TodayAppointments)
	assert.Equal(t, 2, stats.Stats.PendingAppointments)
	assert.Equal(t, 1, stats.Stats.TotalClients)
}

func TestGetStatsRecentIsStableAndLimited(t *testing.T) {
	f := newFixture()

	f.addAppointment(t, "2023-10-01", "a")
	f.addAppointment(t, "2023-10-20", "b")
	f.addAppointment(t, "2023-10-05", "c")
	f.addAppointment(t, "2023-10-20", "d")
	f.addAppointment(t, "2023-09-15", "e")
	f.addAppointment(t, "2023-10-30", "f")
	f.addAppointment(t, "2023-10-20", "g")

	stats, err := f.dashboard.GetStats(f.ctx)
	require.NoError(t, err)

	var notes []string
	for _, a := range stats.RecentAppointments {
		notes = append(notes, a.Notes)
	}
	assert.Equal(t, []string{"f", "b", "d", "g", "c"}, notes)
}

func TestGetAppointmentsOverview(t *testing.T) {
	f := newFixture()

	a := f.addAppointment(t, "2023-10-01", "")
	b := f.addAppointment(t, "2023-10-01", "")
	f.addAppointment(t, "2023-10-31", "")
	f.addAppointment(t, "2023-11-01", "")
	f.setStatus(t, a.ID, model.AppointmentStatusCompleted)
	f.setStatus(t, b.ID, model.AppointmentStatusCancelled)

	overview, err := f.dashboard.GetAppointmentsOverview(f.ctx, "2023-10-01", "2023-10-31")
	require.NoError(t, err)
	assert.Equal(t, model.StatusBuckets{Scheduled: 1, Completed: 1, Cancelled: 1}, overview.AppointmentsByStatus)
	assert.Equal(t, map[string]int{"2023-10-01": 2, "2023-10-31": 1}, overview.AppointmentsByDate)
	assert.Equal(t, 3, overview.TotalAppointments)
}

func TestGetAppointmentsOverviewRequiresBounds(t *testing.T) {
	f := newFixture()
	_, err := f.dashboard.GetAppointmentsOverview(f.ctx, "2023-10-01", "")
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

type stubAppointments struct {
	mock.Mock
}

func (s *stubAppointments) ListAppointments(ctx context.Context) ([]*model.Appointment, error) {
	args := s.Called()
	return args.Get(0).([]*model.Appointment), args.Error(1)
}

func (s *stubAppointments) GetAppointmentsByDateRange(ctx context.Context, start, end string) ([]*model.Appointment, error) {
	args := s.Called(start, end)
	return args.Get(0).([]*model.Appointment), args.Error(1)
}

type stubClients struct {
	mock.Mock
}

func (s *stubClients) ListClients(ctx context.Context) ([]*model.Client, error) {
	args := s.Called()
	return args.Get(0).([]*model.Client), args.Error(1)
}

func TestGetAppointmentsOverviewCountsUnknownStatus(t *testing.T) {
	apts := new(stubAppointments)
	apts.On("GetAppointmentsByDateRange", "2023-10-01", "2023-10-31").Return([]*model.Appointment{
		{ID: 1, Date: "2023-10-02", Status: model.AppointmentStatusScheduled},
		{ID: 2, Date: "2023-10-02", Status: "no-show"},
	}, nil)

	svc := NewService(apts, new(stubClients), 5, clock.Fixed(now))
	overview, err := svc.GetAppointmentsOverview(context.Background(), "2023-10-01", "2023-10-31")
	require.NoError(t, err)
	assert.Equal(t, 1, overview.AppointmentsByStatus.Other)
	assert.Equal(t, 2, overview.TotalAppointments)
}

func TestGetClientStats(t *testing.T) {
	clients := new(stubClients)
	clients.On("ListClients").Return([]*model.Client{
		{ID: 1, Status: model.ClientStatusActive, CreatedAt: "2023-01-01"},
		{ID: 2, Status: model.ClientStatusActive, CreatedAt: "2023-10-03"},
		{ID: 3, Status: model.ClientStatusInactive, CreatedAt: "2023-10-25"},
		{ID: 4, Status: model.ClientStatusInactive, CreatedAt: "2022-10-25"},
	}, nil)

	svc := NewService(new(stubAppointments), clients, 5, clock.Fixed(now))
	stats, err := svc.GetClientStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.ClientStatusCounts{Active: 2, Inactive: 2}, stats.ClientsByStatus)
	assert.Equal(t, 2, stats.NewClientsThisMonth)
	assert.Equal(t, 4, stats.TotalClients)
}

func TestGetStatsPropagatesErrors(t *testing.T) {
	apts := new(stubAppointments)
	apts.On("ListAppointments").Return([]*model.Appointment(nil), apperrors.Internal(errors.New("db down")))

	svc := NewService(apts, new(stubClients), 5, clock.Fixed(now))
	_, err := svc.GetStats(context.Background())
	assert.Equal(t, apperrors.KindInternal, apperrors.KindOf(err))
}

func TestGetStatsUsesClockLocation(t *testing.T) {
	f := newFixture()
	f.addAppointment(t, "2023-10-26", "")

	// 14:00 UTC on the 25th is already the 26th in UTC+12.
	late := now.In(time.FixedZone("UTC+12", 12*60*60))
	svc := NewService(f.appointments, f.clients, 5, clock.Fixed(late))
	stats, err := svc.GetStats(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Stats.TodayAppointments)
}
