package postgres

import (
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/clinic-crm/internal/repository"
)

type appointmentRepository struct {
	BaseRepository
}

type clientRepository struct {
	BaseRepository
}

type userRepository struct {
	BaseRepository
}

func NewAppointmentRepository(db *sqlx.DB) repository.AppointmentRepository {
	return &appointmentRepository{BaseRepository{db: db}}
}

func NewClientRepository(db *sqlx.DB) repository.ClientRepository {
	return &clientRepository{BaseRepository{db: db}}
}

func NewUserRepository(db *sqlx.DB) repository.UserRepository {
	return &userRepository{BaseRepository{db: db}}
}
