package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/jwalitptl/clinic-crm/internal/config"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            BIGSERIAL PRIMARY KEY,
	email         TEXT NOT NULL UNIQUE,
	name          TEXT NOT NULL,
	role          TEXT NOT NULL,
	password_hash TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS clients (
	id              BIGSERIAL PRIMARY KEY,
	name            TEXT NOT NULL,
	email           TEXT NOT NULL UNIQUE,
	phone           TEXT NOT NULL,
	date_of_birth   TEXT NOT NULL DEFAULT '',
	address         TEXT NOT NULL DEFAULT '',
	medical_history TEXT NOT NULL DEFAULT '',
	status          TEXT NOT NULL,
	last_visit      TEXT,
	last_visit_type TEXT,
	created_at      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS appointments (
	id           BIGSERIAL PRIMARY KEY,
	client_id    BIGINT NOT NULL,
	client_name  TEXT NOT NULL DEFAULT '',
	client_email TEXT NOT NULL DEFAULT '',
	staff_id     BIGINT NOT NULL,
	staff_name   TEXT NOT NULL DEFAULT '',
	staff_role   TEXT NOT NULL DEFAULT '',
	date         TEXT NOT NULL,
	time         TEXT NOT NULL,
	status       TEXT NOT NULL,
	notes        TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS appointments_date_idx ON appointments (date);
`

func NewDB(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(cfg.MaxConns)
		db.SetMaxIdleConns(cfg.MaxConns)
	}
	return db, nil
}

// Migrate creates the tables when they do not exist yet.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
