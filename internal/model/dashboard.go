package model

// Calendar layouts shared by the stores and the dashboard.
const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"
)

type DashboardCounts struct {
	TodayAppointments   int `json:"today_appointments"`
	TotalClients        int `json:"total_clients"`
	PendingAppointments int `json:"pending_appointments"`
	ActiveStaff         int `json:"active_staff"`
}

type DashboardStats struct {
	Stats              DashboardCounts `json:"stats"`
	RecentAppointments []Appointment   `json:"recent_appointments"`
}

// StatusBuckets counts appointments per status. Other collects values
// outside the known set so the buckets always add up to the total.
type StatusBuckets struct {
	Scheduled int `json:"scheduled"`
	Completed int `json:"completed"`
	Cancelled int `json:"cancelled"`
	Other     int `json:"other"`
}

type AppointmentsOverview struct {
	AppointmentsByStatus StatusBuckets  `json:"appointments_by_status"`
	AppointmentsByDate   map[string]int `json:"appointments_by_date"`
	TotalAppointments    int            `json:"total_appointments"`
}

type ClientStatusCounts struct {
	Active   int `json:"active"`
	Inactive int `json:"inactive"`
}

type ClientStats struct {
	ClientsByStatus     ClientStatusCounts `json:"clients_by_status"`
	NewClientsThisMonth int                `json:"new_clients_this_month"`
	TotalClients        int                `json:"total_clients"`
}
