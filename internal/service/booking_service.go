package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"roombooking/internal/db"
	"roombooking/internal/entities"
	"roombooking/internal/repository"
	"roombooking/internal/timeslot"
)

// BookingChanges are the optional fields of an update request.
type BookingChanges struct {
	Status          *db.BookingStatus
	ReservationName *string
}

// BookingService implements create, update and get on top of a BookingStore.
type BookingService struct {
	Repo     repository.BookingStore
	Arbiter  *SlotArbiter
	Location *time.Location
	logger   *zap.Logger
}

func NewBookingService(repo repository.BookingStore, arbiter *SlotArbiter, loc *time.Location, logger *zap.Logger) *BookingService {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookingService{Repo: repo, Arbiter: arbiter, Location: loc, logger: logger}
}

// CreateBooking holds the hour containing start for roomID and returns the new
// booking id. Stale holds on the slot are cancelled even when the create is
// rejected with ErrSlotConflict.
func (s *BookingService) CreateBooking(ctx context.Context, roomID int, start int64, reservationName *string) (int, error) {
	slot := timeslot.New(roomID, start, s.Location).WithReservationName(reservationName)
	if !slot.InWorkingHours() {
		s.logger.Info("booking outside working hours", zap.Stringer("slot", slot))
	}

	now := s.Arbiter.Clock.Now().Unix()
	var bookingID int
	conflict := false

	err := s.Repo.InTx(ctx, func(q repository.BookingQueries) error {
		if err := q.LockRoom(ctx, roomID); err != nil {
			if errors.Is(err, repository.ErrRoomNotFound) {
				return ErrRoomNotFound
			}
			return err
		}

		existing, err := q.ActiveBookingsForSlot(ctx, roomID, slot.StartSec())
		if err != nil {
			return err
		}
		taken, err := s.Arbiter.Evaluate(ctx, q, existing, 0)
		if err != nil {
			return err
		}
		if taken {
			// commit the cancellations, reject after
			conflict = true
			return nil
		}

		b := &db.Booking{
			RoomID:          roomID,
			StartSec:        slot.StartSec(),
			EndSec:          slot.EndSec(),
			Status:          db.StatusReserved,
			ReservationName: slot.ReservationName(),
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := q.InsertBooking(ctx, b); err != nil {
			return err
		}
		bookingID = b.ID
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrRoomNotFound) {
			return 0, err
		}
		return 0, fmt.Errorf("error creating booking: %w", err)
	}
	if conflict {
		s.logger.Debug("slot taken", zap.Int("roomId", roomID), zap.Int64("start", slot.StartSec()))
		return 0, ErrSlotConflict
	}

	s.logger.Info("booking created", zap.Int("bookingId", bookingID), zap.Stringer("slot", slot))
	return bookingID, nil
}

// UpdateBooking applies the supplied changes and refreshes the booking's
// updated time. The slot is not re-checked.
func (s *BookingService) UpdateBooking(ctx context.Context, id int, changes BookingChanges) error {
	now := s.Arbiter.Clock.Now().Unix()

	err := s.Repo.InTx(ctx, func(q repository.BookingQueries) error {
		current, err := q.GetBooking(ctx, id)
		if err != nil {
			return err
		}
		if changes.Status != nil && !current.Status.CanTransition(*changes.Status) {
			return ErrInvalidTransition
		}
		return q.UpdateBooking(ctx, id, repository.BookingUpdate{
			Status:          changes.Status,
			ReservationName: changes.ReservationName,
			UpdatedAt:       now,
		})
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrBookingNotFound):
		return ErrBookingNotFound
	case errors.Is(err, ErrInvalidTransition):
		return err
	}
	return fmt.Errorf("error updating booking %d: %w", id, err)
}

// GetBooking resolves the booking's slot and returns the booking as it stands
// afterwards.
func (s *BookingService) GetBooking(ctx context.Context, id int) (*entities.BookingView, error) {
	var booking *db.Booking

	err := s.Repo.InTx(ctx, func(q repository.BookingQueries) error {
		b, err := q.GetBooking(ctx, id)
		if err != nil {
			return err
		}
		if b.Status.Active() {
			existing, err := q.ActiveBookingsForSlot(ctx, b.RoomID, b.StartSec)
			if err != nil {
				return err
			}
			d, err := s.Arbiter.Resolve(ctx, q, existing)
			if err != nil {
				return err
			}
			if d.Lost(b.ID) {
				b.Status = db.StatusCancelled
			}
		}
		booking = b
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("error getting booking %d: %w", id, err)
	}

	slot, err := timeslot.FromBooking(*booking, s.Location)
	if err != nil {
		return nil, fmt.Errorf("booking %d: %w", id, err)
	}
	view := slot.View()
	return &view, nil
}
