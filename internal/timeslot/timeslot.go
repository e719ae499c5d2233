// Package timeslot models a single one-hour booking window for a room.
//
// A TimeSlot is an immutable value: calendar transitions return a new slot
// and the only way to attach a booking to it is the one-shot Book call.
package timeslot

import (
	"errors"
	"fmt"
	"time"

	"roombooking/internal/db"
	"roombooking/internal/entities"
)

const (
	// Epochs above this are millisecond precision (more than ten digits).
	msThreshold = 9_999_999_999

	// Span is the distance from the first to the last second of a slot.
	Span = 59*time.Minute + 59*time.Second

	FirstWorkingHour = 7
	LastWorkingHour  = 17
)

var (
	ErrInvalidStatus    = errors.New("invalid booking status")
	ErrInvalidBookingID = errors.New("invalid booking id")
	ErrAlreadyBooked    = errors.New("time slot already booked")
)

type TimeSlot struct {
	roomID          int
	start           time.Time
	bookingID       int
	status          db.BookingStatus
	reservationName *string
}

// NormalizeEpoch returns epoch in seconds, treating values above the
// ten-digit threshold as milliseconds.
func NormalizeEpoch(epoch int64) int64 {
	if epoch > msThreshold {
		return epoch / 1000
	}
	return epoch
}

// New builds the slot containing epoch (seconds or milliseconds) for roomID.
// The hour boundary is taken in loc; a nil loc means time.Local.
func New(roomID int, epoch int64, loc *time.Location) TimeSlot {
	if loc == nil {
		loc = time.Local
	}
	t := time.Unix(NormalizeEpoch(epoch), 0).In(loc)
	return TimeSlot{roomID: roomID, start: hourStart(t)}
}

// FromBooking rebuilds the booked slot a stored booking occupies.
func FromBooking(b db.Booking, loc *time.Location) (TimeSlot, error) {
	ts, err := New(b.RoomID, b.StartSec, loc).Book(b.ID, b.Status)
	if err != nil {
		return TimeSlot{}, err
	}
	return ts.WithReservationName(b.ReservationName), nil
}

// Book promotes an unbooked slot to a booked one. It may only be called once
// per slot value lineage; a booked slot returns ErrAlreadyBooked.
func (ts TimeSlot) Book(bookingID int, status db.BookingStatus) (TimeSlot, error) {
	if ts.IsBooked() {
		return TimeSlot{}, fmt.Errorf("%w: may not reset booking %d to %d", ErrAlreadyBooked, ts.bookingID, bookingID)
	}
	if bookingID <= 0 {
		return TimeSlot{}, fmt.Errorf("%w: %d", ErrInvalidBookingID, bookingID)
	}
	if !status.Valid() && status != db.StatusProcessing {
		return TimeSlot{}, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	ts.bookingID = bookingID
	ts.status = status
	return ts, nil
}

func (ts TimeSlot) WithReservationName(name *string) TimeSlot {
	if name != nil {
		n := *name
		name = &n
	}
	ts.reservationName = name
	return ts
}

func (ts TimeSlot) RoomID() int { return ts.roomID }
func (ts TimeSlot) Start() time.Time { return ts.start }
func (ts TimeSlot) End() time.Time { return ts.start.Add(Span) }
func (ts TimeSlot) StartSec() int64 { return ts.start.Unix() }
func (ts TimeSlot) EndSec() int64 { return ts.End().Unix() }
func (ts TimeSlot) StartMs() int64 { return ts.start.UnixMilli() }
func (ts TimeSlot) EndMs() int64 { return ts.End().UnixMilli() }
func (ts TimeSlot) IsBooked() bool { return ts.bookingID != 0 }
func (ts TimeSlot) Key() db.SlotKey { return db.SlotKey{RoomID: ts.roomID, StartSec: ts.StartSec()} }
func (ts TimeSlot) ReservationName() *string { return ts.reservationName }

// BookingID returns the attached booking id, if any.
func (ts TimeSlot) BookingID() (int, bool) {
	return ts.bookingID, ts.IsBooked()
}

// Status returns the attached booking status, if any.
func (ts TimeSlot) Status() (db.BookingStatus, bool) {
	return ts.status, ts.IsBooked()
}

func (ts TimeSlot) Hour() int { return ts.start.Hour() }
func (ts TimeSlot) Day() int { return ts.start.Day() }
func (ts TimeSlot) Month() int { return int(ts.start.Month()) }
func (ts TimeSlot) Year() int { return ts.start.Year() }

// MonthDayKey buckets slots per calendar day, e.g. "11/14".
func (ts TimeSlot) MonthDayKey() string {
	return fmt.Sprintf("%d/%d", ts.Month(), ts.Day())
}

// InWorkingHours reports whether the slot starts between 07:00 and 17:00.
func (ts TimeSlot) InWorkingHours() bool {
	h := ts.Hour()
	return h >= FirstWorkingHour && h <= LastWorkingHour
}

// WithHour moves the slot to hour (clamped to 0..23) of the same day.
func (ts TimeSlot) WithHour(hour int) TimeSlot {
	hour = clamp(hour, 0, 23)
	y, m, d := ts.start.Date()
	ts.start = time.Date(y, m, d, hour, 0, 0, 0, ts.start.Location())
	return ts
}

// WithDay moves the slot to day of the same month, clamped to the month's
// valid range.
func (ts TimeSlot) WithDay(day int) TimeSlot {
	y, m, _ := ts.start.Date()
	day = clamp(day, 1, lastDay(y, m))
	ts.start = time.Date(y, m, day, ts.start.Hour(), 0, 0, 0, ts.start.Location())
	return ts
}

// WithMonth moves the slot to month (1..12) of the same year, keeping the
// day when it exists and clamping to the month's last day otherwise.
func (ts TimeSlot) WithMonth(month int) TimeSlot {
	y, _, d := ts.start.Date()
	m := time.Month(clamp(month, 1, 12))
	d = clamp(d, 1, lastDay(y, m))
	ts.start = time.Date(y, m, d, ts.start.Hour(), 0, 0, 0, ts.start.Location())
	return ts
}

// AddDays shifts the slot by whole civil days, keeping the clock hour.
func (ts TimeSlot) AddDays(days int) TimeSlot {
	y, m, d := ts.start.Date()
	ts.start = time.Date(y, m, d+days, ts.start.Hour(), 0, 0, 0, ts.start.Location())
	return ts
}

// View renders the slot for the HTTP layer.
func (ts TimeSlot) View() entities.BookingView {
	return entities.BookingView{
		RoomID:          ts.roomID,
		Start:           ts.StartSec(),
		End:             ts.EndSec(),
		BookingID:       ts.bookingID,
		Status:          ts.status,
		ReservationName: ts.reservationName,
	}
}

func (ts TimeSlot) String() string {
	return fmt.Sprintf("room %d at %d/%s %02d:00", ts.roomID, ts.Year(), ts.MonthDayKey(), ts.Hour())
}

// hourStart drops minutes and seconds without going through time.Date, so
// half-hour zones and DST folds keep the wall-clock hour of t.
func hourStart(t time.Time) time.Time {
	return t.Add(-time.Duration(t.Minute())*time.Minute -
		time.Duration(t.Second())*time.Second -
		time.Duration(t.Nanosecond()))
}

func lastDay(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
