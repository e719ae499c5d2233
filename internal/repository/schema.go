package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// No unique index on (room, start): exclusivity depends on booking age and is
// enforced by the service at write time.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS rooms (
		id       SERIAL PRIMARY KEY,
		name     TEXT NOT NULL,
		capacity INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id               SERIAL PRIMARY KEY,
		status           TEXT NOT NULL,
		reservation_name TEXT,
		start_sec        BIGINT NOT NULL,
		end_sec          BIGINT NOT NULL,
		created_at       BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
		updated_at       BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT
	)`,
	`CREATE TABLE IF NOT EXISTS room_bookings (
		room_id    INTEGER NOT NULL REFERENCES rooms(id),
		booking_id INTEGER NOT NULL REFERENCES bookings(id),
		PRIMARY KEY (room_id, booking_id)
	)`,
	`CREATE INDEX IF NOT EXISTS bookings_start_status_idx ON bookings (start_sec, status)`,
	`CREATE INDEX IF NOT EXISTS bookings_status_updated_idx ON bookings (status, updated_at)`,
}

// Migrate creates the tables when they do not exist yet.
func Migrate(ctx context.Context, conn *sql.DB) error {
	for _, stmt := range schema {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("error applying schema: %w", err)
		}
	}
	return nil
}
