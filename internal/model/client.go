package model

import "strings"

type ClientStatus string

const (
	ClientStatusActive   ClientStatus = "active"
	ClientStatusInactive ClientStatus = "inactive"
)

func (s ClientStatus) Valid() bool {
	return s == ClientStatusActive || s == ClientStatusInactive
}

type Client struct {
	ID             int64        `db:"id" json:"id"`
	Name           string       `db:"name" json:"name"`
	Email          string       `db:"email" json:"email"`
	Phone          string       `db:"phone" json:"phone"`
	DateOfBirth    string       `db:"date_of_birth" json:"date_of_birth"`
	Address        string       `db:"address" json:"address"`
	MedicalHistory string       `db:"medical_history" json:"medical_history"`
	Status         ClientStatus `db:"status" json:"status"`
	LastVisit      *string      `db:"last_visit" json:"last_visit"`
	LastVisitType  *string      `db:"last_visit_type" json:"last_visit_type"`
	CreatedAt      string       `db:"created_at" json:"created_at"`
}

type CreateClientRequest struct {
	Name           string `json:"name" validate:"required,max=200"`
	Email          string `json:"email" validate:"required,email"`
	Phone          string `json:"phone" validate:"required,max=50"`
	DateOfBirth    string `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
	Address        string `json:"address" validate:"max=500"`
	MedicalHistory string `json:"medical_history" validate:"max=5000"`
}

type UpdateClientRequest struct {
	Name           *string       `json:"name" validate:"omitempty,min=1,max=200"`
	Email          *string       `json:"email" validate:"omitempty,email"`
	Phone          *string       `json:"phone" validate:"omitempty,min=1,max=50"`
	DateOfBirth    *string       `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
	Address        *string       `json:"address" validate:"omitempty,max=500"`
	MedicalHistory *string       `json:"medical_history" validate:"omitempty,max=5000"`
	Status         *ClientStatus `json:"status" validate:"omitempty,oneof=active inactive"`
	LastVisit      *string       `json:"last_visit" validate:"omitempty,datetime=2006-01-02"`
	LastVisitType  *string       `json:"last_visit_type" validate:"omitempty,max=100"`
}

func (r CreateClientRequest) Client(createdAt string) Client {
	return Client{
		Name:           r.Name,
		Email:          r.Email,
		Phone:          r.Phone,
		DateOfBirth:    r.DateOfBirth,
		Address:        r.Address,
		MedicalHistory: r.MedicalHistory,
		Status:         ClientStatusActive,
		CreatedAt:      createdAt,
	}
}

// Apply merges the provided fields into c. The identifier and creation date
// are never touched.
func (r UpdateClientRequest) Apply(c *Client) {
	if r.Name != nil {
		c.Name = *r.Name
	}
	if r.Email != nil {
		c.Email = *r.Email
	}
	if r.Phone != nil {
		c.Phone = *r.Phone
	}
	if r.DateOfBirth != nil {
		c.DateOfBirth = *r.DateOfBirth
	}
	if r.Address != nil {
		c.Address = *r.Address
	}
	if r.MedicalHistory != nil {
		c.MedicalHistory = *r.MedicalHistory
	}
	if r.Status != nil {
		c.Status = *r.Status
	}
	if r.LastVisit != nil {
		v := *r.LastVisit
		c.LastVisit = &v
	}
	if r.LastVisitType != nil {
		v := *r.LastVisitType
		c.LastVisitType = &v
	}
}

// ClientFilter narrows a client search. Empty fields match everything.
type ClientFilter struct {
	Query  string       `form:"query"`
	Status ClientStatus `form:"status"`
}

// Match reports whether c satisfies both the text query and the status
// filter. Name and email are compared case-insensitively, phone as typed.
func (f ClientFilter) Match(c Client) bool {
	if f.Status != "" && c.Status != f.Status {
		return false
	}
	if f.Query == "" {
		return true
	}
	q := strings.ToLower(f.Query)
	return strings.Contains(strings.ToLower(c.Name), q) ||
		strings.Contains(strings.ToLower(c.Email), q) ||
		strings.Contains(c.Phone, f.Query)
}
