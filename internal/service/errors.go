package service

import apperrors "roombooking/internal/errors"

// Client-facing failures of the booking operations. Anything else a service
// returns is an internal error.
var (
	ErrSlotConflict      = apperrors.ErrUnauthorized("Time is reserved by an ongoing booking.")
	ErrBookingNotFound   = apperrors.ErrNotFound("Booking not found")
	ErrRoomNotFound      = apperrors.ErrBadRequest("Invalid room ID")
	ErrInvalidTransition = apperrors.ErrBadRequest("Invalid booking status transition")
	ErrInvalidRange      = apperrors.ErrBadRequest("Invalid range")
	ErrNoRooms           = apperrors.ErrBadRequest("No room IDs provided")
)
