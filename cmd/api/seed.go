package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-crm/internal/config"
	"github.com/jwalitptl/clinic-crm/internal/model"
	"github.com/jwalitptl/clinic-crm/internal/repository"
	"github.com/jwalitptl/clinic-crm/internal/service/auth"
	apperrors "github.com/jwalitptl/clinic-crm/pkg/errors"
	"github.com/jwalitptl/clinic-crm/pkg/security"
)

// seedUsers creates the configured operators. Users that already exist are
// left alone so restarts against PostgreSQL are harmless.
func seedUsers(ctx context.Context, svc *auth.Service, users []config.SeedUser, production bool) error {
	for _, u := range users {
		if production && !security.IsHash(u.Password) {
			return fmt.Errorf("user %s: plain-text passwords are not allowed in production", u.Email)
		}
		_, err := svc.CreateUser(ctx, u.Email, u.Name, u.Role, u.Password)
		if apperrors.KindOf(err) == apperrors.KindDuplicateEmail {
			continue
		}
		if err != nil {
			return fmt.Errorf("user %s: %w", u.Email, err)
		}
		log.Info().Str("email", u.Email).Str("role", u.Role).Msg("seeded user")
	}
	return nil
}

func strPtr(s string) *string { return &s }

// seedSampleData loads one sample client and appointment into empty stores.
func seedSampleData(ctx context.Context, clients repository.ClientRepository, appointments repository.AppointmentRepository) error {
	n, err := clients.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	client := &model.Client{
		Name:           "John Smith",
		Email:          "john@example.com",
		Phone:          "+1 234 567 8900",
		DateOfBirth:    "1980-05-15",
		Address:        "123 Main St, City, Country",
		MedicalHistory: "No major health issues",
		Status:         model.ClientStatusActive,
		LastVisit:      strPtr("2023-10-20"),
		LastVisitType:  strPtr("Regular Checkup"),
		CreatedAt:      "2023-01-01",
	}
	if err := clients.Create(ctx, client); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil
		}
		return fmt.Errorf("failed to seed client: %w", err)
	}

	apt := &model.Appointment{
		ClientID:    client.ID,
		ClientName:  client.Name,
		ClientEmail: client.Email,
		StaffID:     1,
		StaffName:   "Dr. Sarah Johnson",
		StaffRole:   "Cardiologist",
		Date:        "2023-10-25",
		Time:        "10:00",
		Status:      model.AppointmentStatusScheduled,
		Notes:       "Regular checkup",
	}
	if err := appointments.Create(ctx, apt); err != nil {
		return fmt.Errorf("failed to seed appointment: %w", err)
	}

	log.Info().Msg("seeded sample client and appointment")
	return nil
}
