package database

import (
	"database/sql"
	"fmt"
)

// migrations run in order inside a single transaction each. Statements must
// stay idempotent (IF NOT EXISTS) so restarting against an existing database
// is safe.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id         TEXT PRIMARY KEY,
		email      TEXT NOT NULL,
		first_name TEXT NOT NULL DEFAULT '',
		last_name  TEXT NOT NULL DEFAULT '',
		image_url  TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS trips (
		id              TEXT PRIMARY KEY,
		name            TEXT NOT NULL,
		destination     TEXT NOT NULL DEFAULT '',
		created_by      TEXT NOT NULL,
		budget_total    DOUBLE PRECISION,
		budget_currency TEXT,
		start_date      TIMESTAMPTZ,
		end_date        TIMESTAMPTZ,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS trip_members (
		trip_id   TEXT NOT NULL REFERENCES trips(id) ON DELETE CASCADE,
		user_id   TEXT NOT NULL,
		joined_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (trip_id, user_id)
	)`,

	`CREATE TABLE IF NOT EXISTS expenses (
		id             TEXT PRIMARY KEY,
		trip_id        TEXT NOT NULL REFERENCES trips(id) ON DELETE CASCADE,
		title          TEXT NOT NULL,
		description    TEXT NOT NULL DEFAULT '',
		notes          TEXT NOT NULL DEFAULT '',
		amount         DOUBLE PRECISION NOT NULL,
		currency       TEXT NOT NULL,
		category       TEXT NOT NULL,
		paid_by        TEXT NOT NULL,
		bill_image_url TEXT NOT NULL DEFAULT '',
		expense_date   TIMESTAMPTZ NOT NULL,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_expenses_trip_id ON expenses(trip_id)`,

	`CREATE TABLE IF NOT EXISTS expense_splits (
		expense_id TEXT NOT NULL REFERENCES expenses(id) ON DELETE CASCADE,
		position   INT NOT NULL,
		user_id    TEXT NOT NULL,
		percentage DOUBLE PRECISION NOT NULL,
		amount     DOUBLE PRECISION NOT NULL,
		is_paid    BOOLEAN NOT NULL DEFAULT FALSE,
		paid_at    TIMESTAMPTZ,
		PRIMARY KEY (expense_id, user_id)
	)`,

	`CREATE TABLE IF NOT EXISTS proposals (
		id                   TEXT PRIMARY KEY,
		trip_id              TEXT NOT NULL REFERENCES trips(id) ON DELETE CASCADE,
		title                TEXT NOT NULL,
		description          TEXT NOT NULL DEFAULT '',
		type                 TEXT NOT NULL,
		created_by           TEXT NOT NULL,
		links                TEXT[] NOT NULL DEFAULT '{}',
		allow_multiple_votes BOOLEAN NOT NULL DEFAULT FALSE,
		poll_ends_at         TIMESTAMPTZ,
		is_poll_active       BOOLEAN NOT NULL DEFAULT FALSE,
		total_votes          INT NOT NULL DEFAULT 0,
		created_at           TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_proposals_trip_id ON proposals(trip_id)`,

	`CREATE TABLE IF NOT EXISTS proposal_options (
		id          TEXT PRIMARY KEY,
		proposal_id TEXT NOT NULL REFERENCES proposals(id) ON DELETE CASCADE,
		position    INT NOT NULL,
		option_text TEXT NOT NULL,
		vote_count  INT NOT NULL DEFAULT 0
	)`,

	`CREATE TABLE IF NOT EXISTS proposal_votes (
		option_id TEXT NOT NULL REFERENCES proposal_options(id) ON DELETE CASCADE,
		user_id   TEXT NOT NULL,
		voted_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (option_id, user_id)
	)`,

	`CREATE TABLE IF NOT EXISTS proposal_images (
		id          TEXT PRIMARY KEY,
		proposal_id TEXT NOT NULL REFERENCES proposals(id) ON DELETE CASCADE,
		file_name   TEXT NOT NULL,
		file_url    TEXT NOT NULL,
		uploaded_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS payment_settings (
		user_id      TEXT PRIMARY KEY,
		upi_id       TEXT NOT NULL DEFAULT '',
		phone_number TEXT NOT NULL DEFAULT '',
		bank_name    TEXT NOT NULL DEFAULT '',
		qr_code_url  TEXT NOT NULL DEFAULT '',
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS captures (
		id          TEXT PRIMARY KEY,
		trip_id     TEXT NOT NULL REFERENCES trips(id) ON DELETE CASCADE,
		uploaded_by TEXT NOT NULL,
		file_name   TEXT NOT NULL,
		file_url    TEXT NOT NULL,
		caption     TEXT NOT NULL DEFAULT '',
		uploaded_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_captures_trip_id ON captures(trip_id)`,
}

// Migrate applies the schema.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d failed: %w", i, err)
		}
	}
	return nil
}
