package api

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Number accepts a JSON number or a numeric string. Anything else leaves it
// unset rather than failing the whole body.
type Number struct {
	value float64
	ok    bool
}

func (n *Number) UnmarshalJSON(b []byte) error {
	n.value, n.ok = 0, false

	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		n.value, n.ok = f, true
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			n.value, n.ok = f, true
		}
	}
	return nil
}

// ID returns the value when it is a positive integer.
func (n Number) ID() (int, bool) {
	if !n.ok || n.value <= 0 || n.value > math.MaxInt32 || n.value != math.Trunc(n.value) {
		return 0, false
	}
	return int(n.value), true
}

// Epoch returns the value truncated to a whole epoch when it is positive.
func (n Number) Epoch() (int64, bool) {
	if !n.ok || math.IsNaN(n.value) || n.value <= 0 || n.value > 1e15 {
		return 0, false
	}
	return int64(n.value), true
}

// OptionalString is a field that is ignored when absent or falsy and must be
// a string otherwise.
type OptionalString struct {
	value   *string
	invalid bool
}

func (o *OptionalString) UnmarshalJSON(b []byte) error {
	o.value, o.invalid = nil, false

	b = bytes.TrimSpace(b)
	switch string(b) {
	case "null", "false", "0", `""`:
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		o.invalid = true
		return nil
	}
	o.value = &s
	return nil
}

// Get returns the string, or nil when the field was absent or falsy.
func (o OptionalString) Get() (*string, bool) {
	return o.value, !o.invalid
}

// Booking
type CreateBookingRequest struct {
	RoomID          Number         `json:"roomId"`
	Start           Number         `json:"start"`
	ReservationName OptionalString `json:"reservationName"`
}

type CreateBookingResponse struct {
	BookingID int `json:"bookingId"`
}

type UpdateBookingRequest struct {
	BookingID       Number         `json:"bookingId"`
	Status          OptionalString `json:"status"`
	ReservationName OptionalString `json:"reservationName"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
