package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"roombooking/internal/db"
	"roombooking/internal/repository"
)

// DefaultGraceWindow is how long an unconfirmed hold protects its slot after
// its last update.
const DefaultGraceWindow = 15 * time.Minute

// SlotArbiter decides which of the bookings sharing one (room, hour) may hold
// it. A confirmed booking always wins; otherwise the lowest-id hold updated
// within the grace window wins. Everyone else, before or after the winner,
// loses and is cancelled.
type SlotArbiter struct {
	Grace time.Duration
	Clock Clock
}

func NewSlotArbiter(grace time.Duration, clock Clock) *SlotArbiter {
	if grace <= 0 {
		grace = DefaultGraceWindow
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &SlotArbiter{Grace: grace, Clock: clock}
}

// Decision is the outcome for one slot. A nil Winner means the slot is free.
// Losers are the bookings as they were read, so they can only be cancelled
// while unchanged.
type Decision struct {
	Winner *db.Booking
	Losers []db.Booking
}

func (d Decision) Free() bool { return d.Winner == nil }

func (d Decision) LoserIDs() []int {
	var ids []int
	for _, l := range d.Losers {
		ids = append(ids, l.ID)
	}
	return ids
}

func (d Decision) Lost(id int) bool {
	for _, l := range d.Losers {
		if l.ID == id {
			return true
		}
	}
	return false
}

// StaleBefore returns the unix second below which a hold is stale at now.
func (a *SlotArbiter) StaleBefore(now time.Time) int64 {
	return now.Add(-a.Grace).Unix() + 1
}

// Decide is the pure arbitration rule. Cancelled bookings are ignored.
func (a *SlotArbiter) Decide(bookings []db.Booking, now time.Time) Decision {
	candidates := make([]db.Booking, 0, len(bookings))
	for _, b := range bookings {
		if b.Status.Active() {
			candidates = append(candidates, b)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].ID < candidates[j].ID })

	winner := -1
	for i, b := range candidates {
		if b.Status == db.StatusConfirmed {
			winner = i
			break
		}
	}
	if winner < 0 {
		staleBefore := a.StaleBefore(now)
		for i, b := range candidates {
			if b.UpdatedAt >= staleBefore {
				winner = i
				break
			}
		}
	}

	var d Decision
	for i := range candidates {
		if i == winner {
			w := candidates[i]
			d.Winner = &w
			continue
		}
		d.Losers = append(d.Losers, candidates[i])
	}
	return d
}

// Resolve decides the slot and cancels the losers in one statement.
func (a *SlotArbiter) Resolve(ctx context.Context, q repository.BookingQueries, bookings []db.Booking) (Decision, error) {
	now := a.Clock.Now()
	d := a.Decide(bookings, now)
	if len(d.Losers) == 0 {
		return d, nil
	}
	if _, err := q.CancelBookings(ctx, d.Losers, now.Unix()); err != nil {
		return Decision{}, fmt.Errorf("error cancelling contenders %v: %w", d.LoserIDs(), err)
	}
	return d, nil
}

// Evaluate resolves the slot and reports whether someone other than
// candidateID holds it. Pass 0 when the caller has no booking yet.
func (a *SlotArbiter) Evaluate(ctx context.Context, q repository.BookingQueries, bookings []db.Booking, candidateID int) (bool, error) {
	d, err := a.Resolve(ctx, q, bookings)
	if err != nil {
		return false, err
	}
	if d.Free() {
		return false, nil
	}
	return d.Winner.ID != candidateID, nil
}
