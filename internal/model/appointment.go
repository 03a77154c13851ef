package model

type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusScheduled, AppointmentStatusCompleted, AppointmentStatusCancelled:
		return true
	}
	return false
}

type Appointment struct {
	ID          int64             `db:"id" json:"id"`
	ClientID    int64             `db:"client_id" json:"client_id"`
	ClientName  string            `db:"client_name" json:"client_name"`
	ClientEmail string            `db:"client_email" json:"client_email"`
	StaffID     int64             `db:"staff_id" json:"staff_id"`
	StaffName   string            `db:"staff_name" json:"staff_name"`
	StaffRole   string            `db:"staff_role" json:"staff_role"`
	Date        string            `db:"date" json:"date"`
	Time        string            `db:"time" json:"time"`
	Status      AppointmentStatus `db:"status" json:"status"`
	Notes       string            `db:"notes" json:"notes"`
}

type CreateAppointmentRequest struct {
	ClientID    int64  `json:"client_id" validate:"required,gt=0"`
	ClientName  string `json:"client_name" validate:"max=200"`
	ClientEmail string `json:"client_email" validate:"omitempty,email"`
	StaffID     int64  `json:"staff_id" validate:"required,gt=0"`
	StaffName   string `json:"staff_name" validate:"max=200"`
	StaffRole   string `json:"staff_role" validate:"max=100"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Time        string `json:"time" validate:"required,len=5,datetime=15:04"`
	Notes       string `json:"notes" validate:"max=1000"`
}

// UpdateAppointmentRequest carries a partial update. Nil fields keep their
// stored value.
type UpdateAppointmentRequest struct {
	ClientID    *int64             `json:"client_id" validate:"omitempty,gt=0"`
	ClientName  *string            `json:"client_name" validate:"omitempty,max=200"`
	ClientEmail *string            `json:"client_email" validate:"omitempty,email"`
	StaffID     *int64             `json:"staff_id" validate:"omitempty,gt=0"`
	StaffName   *string            `json:"staff_name" validate:"omitempty,max=200"`
	StaffRole   *string            `json:"staff_role" validate:"omitempty,max=100"`
	Date        *string            `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Time        *string            `json:"time" validate:"omitempty,len=5,datetime=15:04"`
	Status      *AppointmentStatus `json:"status" validate:"omitempty,oneof=scheduled completed cancelled"`
	Notes       *string            `json:"notes" validate:"omitempty,max=1000"`
}

func (r CreateAppointmentRequest) Appointment() Appointment {
	return Appointment{
		ClientID:    r.ClientID,
		ClientName:  r.ClientName,
		ClientEmail: r.ClientEmail,
		StaffID:     r.StaffID,
		StaffName:   r.StaffName,
		StaffRole:   r.StaffRole,
		Date:        r.Date,
		Time:        r.Time,
		Status:      AppointmentStatusScheduled,
		Notes:       r.Notes,
	}
}

// Apply merges the provided fields into a. The identifier is never touched.
func (r UpdateAppointmentRequest) Apply(a *Appointment) {
	if r.ClientID != nil {
		a.ClientID = *r.ClientID
	}
	if r.ClientName != nil {
		a.ClientName = *r.ClientName
	}
	if r.ClientEmail != nil {
		a.ClientEmail = *r.ClientEmail
	}
	if r.StaffID != nil {
		a.StaffID = *r.StaffID
	}
	if r.StaffName != nil {
		a.StaffName = *r.StaffName
	}
	if r.StaffRole != nil {
		a.StaffRole = *r.StaffRole
	}
	if r.Date != nil {
		a.Date = *r.Date
	}
	if r.Time != nil {
		a.Time = *r.Time
	}
	if r.Status != nil {
		a.Status = *r.Status
	}
	if r.Notes != nil {
		a.Notes = *r.Notes
	}
}

// DateRange is an inclusive range of ISO dates.
type DateRange struct {
	Start string `form:"start_date" validate:"required,datetime=2006-01-02"`
	End   string `form:"end_date" validate:"required,datetime=2006-01-02"`
}

// Contains compares ISO dates lexicographically, which matches calendar order.
func (r DateRange) Contains(date string) bool {
	return date >= r.Start && date <= r.End
}
