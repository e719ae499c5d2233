package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"roombooking/internal/db"
)

var (
	ErrBookingNotFound = errors.New("booking not found")
	ErrRoomNotFound    = errors.New("room not found")
	ErrNoTransaction   = errors.New("operation requires a transaction")
)

// BookingUpdate carries the fields an update may change. Nil fields are left
// as stored; UpdatedAt is always written.
type BookingUpdate struct {
	Status          *db.BookingStatus
	ReservationName *string
	UpdatedAt       int64
}

// BookingQueries are the booking reads and writes. Inside InTx they share one
// transaction and reads take row locks.
type BookingQueries interface {
	// LockRoom blocks other writers for roomID until the transaction ends.
	LockRoom(ctx context.Context, roomID int) error
	GetBooking(ctx context.Context, id int) (*db.Booking, error)
	// ActiveBookingsForSlot returns non-cancelled bookings on (roomID, startSec)
	// ordered by id.
	ActiveBookingsForSlot(ctx context.Context, roomID int, startSec int64) ([]db.Booking, error)
	// ActiveBookingsInFrame returns non-cancelled bookings for roomIDs that
	// start inside, end inside or span across [from, to], ordered by id.
	ActiveBookingsInFrame(ctx context.Context, roomIDs []int, from, to int64) ([]db.Booking, error)
	// InsertBooking writes the booking and its room link; it fails with
	// ErrNoTransaction outside InTx.
	InsertBooking(ctx context.Context, b *db.Booking) error
	UpdateBooking(ctx context.Context, id int, u BookingUpdate) error
	// CancelBookings cancels each booking in seen whose stored status and
	// updated_at still match the copy in seen. Rows changed since they were
	// read are left alone.
	CancelBookings(ctx context.Context, seen []db.Booking, at int64) (int64, error)
	CancelStaleReservations(ctx context.Context, before, at int64) (int64, error)
}

type BookingStore interface {
	BookingQueries
	// InTx runs fn in one transaction, committing when fn returns nil and
	// rolling back otherwise.
	InTx(ctx context.Context, fn func(q BookingQueries) error) error
	Ping(ctx context.Context) error
}

// RoomCatalog is the read-only room reference data.
type RoomCatalog interface {
	ListRooms(ctx context.Context) ([]db.Room, error)
	GetRoom(ctx context.Context, id int) (*db.Room, error)
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// BookingRepository is the PostgreSQL BookingStore.
type BookingRepository struct {
	DB *sql.DB
	pgQueries
}

func NewBookingRepository(conn *sql.DB) *BookingRepository {
	return &BookingRepository{DB: conn, pgQueries: pgQueries{q: conn}}
}

func (r *BookingRepository) InTx(ctx context.Context, fn func(q BookingQueries) error) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(&pgQueries{q: tx, inTx: true}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}
	return nil
}

func (r *BookingRepository) Ping(ctx context.Context) error {
	return r.DB.PingContext(ctx)
}

type pgQueries struct {
	q    querier
	inTx bool
}
