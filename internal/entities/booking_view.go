package entities

import "roombooking/internal/db"

// BookingView is the wire shape of a single booked time slot.
type BookingView struct {
	RoomID          int              `json:"roomId"`
	Start           int64            `json:"start"`
	End             int64            `json:"end"`
	BookingID       int              `json:"bookingId,omitempty"`
	Status          db.BookingStatus `json:"status,omitempty"`
	ReservationName *string          `json:"reservationName,omitempty"`
}
