package dashboard

import (
	"context"
	"sort"
	"strings"

	"github.com/jwalitptl/clinic-crm/internal/model"
	"github.com/jwalitptl/clinic-crm/pkg/clock"
)

const recentLimit = 5

type AppointmentReader interface {
	ListAppointments(ctx context.Context) ([]*model.Appointment, error)
	GetAppointmentsByDateRange(ctx context.Context, start, end string) ([]*model.Appointment, error)
}

type ClientReader interface {
	ListClients(ctx context.Context) ([]*model.Client, error)
}

// Service computes read-only snapshots over the appointment and client
// services. Nothing is cached; every call recomputes from current data.
type Service struct {
	appointments AppointmentReader
	clients      ClientReader
	activeStaff  int
	clock        clock.Clock
}

func NewService(appointments AppointmentReader, clients ClientReader, activeStaff int, clk clock.Clock) *Service {
	if clk == nil {
		clk = clock.System(nil)
	}
	return &Service{
		appointments: appointments,
		clients:      clients,
		activeStaff:  activeStaff,
		clock:        clk,
	}
}

func (s *Service) GetStats(ctx context.Context) (*model.DashboardStats, error) {
	apts, err := s.appointments.ListAppointments(ctx)
	if err != nil {
		return nil, err
	}
	clients, err := s.clients.ListClients(ctx)
	if err != nil {
		return nil, err
	}

	today := s.clock.Now().Format(model.DateLayout)
	stats := &model.DashboardStats{
		Stats: model.DashboardCounts{
			TotalClients: len(clients),
			ActiveStaff:  s.activeStaff,
		},
		RecentAppointments: recent(apts, recentLimit),
	}
	for _, a := range apts {
		if a.Date == today {
			stats.Stats.TodayAppointments++
		}
		if a.Status == model.AppointmentStatusScheduled {
			stats.Stats.PendingAppointments++
		}
	}
	return stats, nil
}

// GetAppointmentsOverview groups the appointments in [start, end] by status
// and by date.
func (s *Service) GetAppointmentsOverview(ctx context.Context, start, end string) (*model.AppointmentsOverview, error) {
	apts, err := s.appointments.GetAppointmentsByDateRange(ctx, start, end)
	if err != nil {
		return nil, err
	}

	overview := &model.AppointmentsOverview{
		AppointmentsByDate: make(map[string]int),
		TotalAppointments:  len(apts),
	}
	for _, a := range apts {
		switch a.Status {
		case model.AppointmentStatusScheduled:
			overview.AppointmentsByStatus.Scheduled++
		case model.AppointmentStatusCompleted:
			overview.AppointmentsByStatus.Completed++
		case model.AppointmentStatusCancelled:
			overview.AppointmentsByStatus.Cancelled++
		default:
			overview.AppointmentsByStatus.Other++
		}
		overview.AppointmentsByDate[a.Date]++
	}
	return overview, nil
}

func (s *Service) GetClientStats(ctx context.Context) (*model.ClientStats, error) {
	clients, err := s.clients.ListClients(ctx)
	if err != nil {
		return nil, err
	}

	month := s.clock.Now().Format(model.MonthLayout)
	stats := &model.ClientStats{TotalClients: len(clients)}
	for _, c := range clients {
		switch c.Status {
		case model.ClientStatusActive:
			stats.ClientsByStatus.Active++
		case model.ClientStatusInactive:
			stats.ClientsByStatus.Inactive++
		}
		if strings.HasPrefix(c.CreatedAt, month) {
			stats.NewClientsThisMonth++
		}
	}
	return stats, nil
}

// recent returns up to n appointments ordered by date, newest first. Equal
// dates keep their list order.
func recent(apts []*model.Appointment, n int) []model.Appointment {
	sorted := make([]model.Appointment, len(apts))
	for i, a := range apts {
		sorted[i] = *a
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date > sorted[j].Date
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
