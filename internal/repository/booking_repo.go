package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/lib/pq"

	"roombooking/internal/db"
)

const selectBooking = `
	SELECT
		b.id, rb.room_id, b.start_sec, b.end_sec, b.status,
		b.reservation_name, b.created_at, b.updated_at
	FROM bookings b
	JOIN room_bookings rb ON rb.booking_id = b.id`

func (r *pgQueries) lockClause() string {
	if r.inTx {
		return " FOR UPDATE OF b"
	}
	return ""
}

func (r *pgQueries) LockRoom(ctx context.Context, roomID int) error {
	var id int
	err := r.q.QueryRowContext(ctx, `SELECT id FROM rooms WHERE id = $1 FOR UPDATE`, roomID).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("room %d: %w", roomID, ErrRoomNotFound)
		}
		return fmt.Errorf("error locking room %d: %w", roomID, err)
	}
	return nil
}

func (r *pgQueries) GetBooking(ctx context.Context, id int) (*db.Booking, error) {
	query := selectBooking + ` WHERE b.id = $1` + r.lockClause()

	b, err := scanBooking(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("booking %d: %w", id, ErrBookingNotFound)
		}
		return nil, fmt.Errorf("error querying booking %d: %w", id, err)
	}
	return b, nil
}

func (r *pgQueries) ActiveBookingsForSlot(ctx context.Context, roomID int, startSec int64) ([]db.Booking, error) {
	query := selectBooking + `
	WHERE rb.room_id = $1
		AND b.start_sec = $2
		AND b.status <> 'cancelled'
	ORDER BY b.id` + r.lockClause()

	rows, err := r.q.QueryContext(ctx, query, roomID, startSec)
	if err != nil {
		return nil, fmt.Errorf("error querying bookings for slot: %w", err)
	}
	return collectBookings(rows)
}

func (r *pgQueries) ActiveBookingsInFrame(ctx context.Context, roomIDs []int, from, to int64) ([]db.Booking, error) {
	query := selectBooking + `
	WHERE rb.room_id = ANY($1)
		AND b.status <> 'cancelled'
		AND (
			(b.start_sec >= $2 AND b.start_sec <= $3)
			OR (b.end_sec >= $2 AND b.end_sec <= $3)
			OR (b.start_sec <= $2 AND b.end_sec >= $3)
		)
	ORDER BY b.id` + r.lockClause()

	rows, err := r.q.QueryContext(ctx, query, pq.Array(roomIDs), from, to)
	if err != nil {
		return nil, fmt.Errorf("error querying bookings in frame: %w", err)
	}
	return collectBookings(rows)
}

func (r *pgQueries) InsertBooking(ctx context.Context, b *db.Booking) error {
	if !r.inTx {
		return ErrNoTransaction
	}
	err := r.q.QueryRowContext(ctx, `
		INSERT INTO bookings (status, reservation_name, start_sec, end_sec, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		string(b.Status),
		b.ReservationName,
		b.StartSec,
		b.EndSec,
		b.CreatedAt,
		b.UpdatedAt,
	).Scan(&b.ID)
	if err != nil {
		return fmt.Errorf("error inserting booking: %w", err)
	}

	_, err = r.q.ExecContext(ctx, `INSERT INTO room_bookings (room_id, booking_id) VALUES ($1, $2)`, b.RoomID, b.ID)
	if err != nil {
		return fmt.Errorf("error linking booking %d to room %d: %w", b.ID, b.RoomID, err)
	}
	return nil
}

func (r *pgQueries) UpdateBooking(ctx context.Context, id int, u BookingUpdate) error {
	query := `UPDATE bookings SET updated_at = $1`
	args := []any{u.UpdatedAt}
	idx := 2

	if u.Status != nil {
		query += ", status = $" + strconv.Itoa(idx)
		args = append(args, string(*u.Status))
		idx++
	}
	if u.ReservationName != nil {
		query += ", reservation_name = $" + strconv.Itoa(idx)
		args = append(args, *u.ReservationName)
		idx++
	}
	query += " WHERE id = $" + strconv.Itoa(idx)
	args = append(args, id)

	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("error updating booking %d: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("booking %d: %w", id, ErrBookingNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*db.Booking, error) {
	var (
		b      db.Booking
		status string
		name   sql.NullString
	)
	err := row.Scan(&b.ID, &b.RoomID, &b.StartSec, &b.EndSec, &status, &name, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	b.Status = db.BookingStatus(status)
	if name.Valid {
		b.ReservationName = &name.String
	}
	return &b, nil
}

func collectBookings(rows *sql.Rows) ([]db.Booking, error) {
	defer rows.Close()

	var bookings []db.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning booking: %w", err)
		}
		bookings = append(bookings, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating bookings: %w", err)
	}
	return bookings, nil
}
