package db

import "fmt"

type BookingStatus string

const (
	StatusReserved  BookingStatus = "reserved"  // slot selected, awaiting a name
	StatusConfirmed BookingStatus = "confirmed" // booked
	StatusCancelled BookingStatus = "cancelled" // expired or released

	// StatusProcessing is a pre-reservation state ("selecting, not yet slot
	// checked"). It is declared so rows written by a four-state deployment can
	// be recognised, but ParseStatus does not accept it.
	StatusProcessing BookingStatus = "processing"
)

// ParseStatus validates a wire value against the three supported statuses.
func ParseStatus(s string) (BookingStatus, error) {
	st := BookingStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("invalid booking status: %q", s)
	}
	return st, nil
}

func (s BookingStatus) Valid() bool {
	switch s {
	case StatusReserved, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

// Active reports whether a booking in this status occupies its slot.
func (s BookingStatus) Active() bool {
	return s == StatusReserved || s == StatusConfirmed || s == StatusProcessing
}

// CanTransition reports whether a booking may move from s to next.
// Cancelled is terminal; confirmed can only be released.
func (s BookingStatus) CanTransition(next BookingStatus) bool {
	if s == next {
		return true
	}
	switch s {
	case StatusProcessing:
		return next == StatusReserved || next == StatusCancelled
	case StatusReserved:
		return next == StatusConfirmed || next == StatusCancelled
	case StatusConfirmed:
		return next == StatusCancelled
	}
	return false
}

type Room struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
}

// Booking is one row of the bookings table joined with its room link.
// All timestamps are unix seconds.
type Booking struct {
	ID              int
	RoomID          int
	StartSec        int64
	EndSec          int64
	Status          BookingStatus
	ReservationName *string
	CreatedAt       int64
	UpdatedAt       int64
}

// SlotKey identifies the (room, hour) pair a booking occupies.
type SlotKey struct {
	RoomID   int
	StartSec int64
}

func (b Booking) Slot() SlotKey {
	return SlotKey{RoomID: b.RoomID, StartSec: b.StartSec}
}
