package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"roombooking/internal/db"
	"roombooking/internal/entities"
	"roombooking/internal/repository"
	"roombooking/internal/timeslot"
)

const DefaultLoopLimit = 10000

type AvailabilityService struct {
	Repo      repository.BookingStore
	Arbiter   *SlotArbiter
	Location  *time.Location
	LoopLimit int
	logger    *zap.Logger
}

func NewAvailabilityService(repo repository.BookingStore, arbiter *SlotArbiter, loc *time.Location, loopLimit int, logger *zap.Logger) *AvailabilityService {
	if loc == nil {
		loc = time.Local
	}
	if loopLimit <= 0 {
		loopLimit = DefaultLoopLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AvailabilityService{Repo: repo, Arbiter: arbiter, Location: loc, LoopLimit: loopLimit, logger: logger}
}

// DefaultWindow is the frame used when the caller gives none: from the first
// working hour today to the end of the last working hour two days from now.
func (s *AvailabilityService) DefaultWindow() (int64, int64) {
	now := s.Arbiter.Clock.Now().In(s.Location)
	y, m, d := now.Date()
	from := time.Date(y, m, d, timeslot.FirstWorkingHour, 0, 0, 0, s.Location)
	to := time.Date(y, m, d+2, timeslot.LastWorkingHour, 0, 0, 0, s.Location).Add(timeslot.Span)
	return from.Unix(), to.Unix()
}

// ListAvailable returns, per requested room, the free working-hour slots that
// overlap [from, to]. Stale or shadowed bookings found in the frame are
// cancelled first.
func (s *AvailabilityService) ListAvailable(ctx context.Context, roomIDs []int, from, to int64) (entities.AvailableTimes, error) {
	roomIDs = uniqueIDs(roomIDs)
	if len(roomIDs) == 0 {
		return nil, ErrNoRooms
	}
	from, to = timeslot.NormalizeEpoch(from), timeslot.NormalizeEpoch(to)
	if from > to {
		return nil, ErrInvalidRange
	}

	var occupied map[db.SlotKey]bool
	err := s.Repo.InTx(ctx, func(q repository.BookingQueries) error {
		var err error
		occupied, err = s.occupiedSlots(ctx, q, roomIDs, from, to)
		return err
	})
	if err != nil {
		return nil, err
	}

	result := make(entities.AvailableTimes, len(roomIDs))
	for _, id := range roomIDs {
		result[id] = []int64{}
	}

	first := time.Unix(from, 0).In(s.Location)
	last := time.Unix(to, 0).In(s.Location)
	firstDay := time.Date(first.Year(), first.Month(), first.Day(), 0, 0, 0, 0, s.Location)
	iterations := 0

walk:
	for _, roomID := range roomIDs {
		for day := firstDay; !day.After(last); day = day.AddDate(0, 0, 1) {
			for hour := timeslot.FirstWorkingHour; hour <= timeslot.LastWorkingHour; hour++ {
				iterations++
				if iterations > s.LoopLimit {
					s.logger.Warn("availability walk hit the iteration limit, returning partial results",
						zap.Int("limit", s.LoopLimit),
						zap.Ints("roomIds", roomIDs),
						zap.Int64("from", from),
						zap.Int64("to", to))
					break walk
				}

				start := time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, s.Location)
				startSec := start.Unix()
				endSec := start.Add(timeslot.Span).Unix()
				if endSec < from || startSec > to {
					continue
				}
				if occupied[db.SlotKey{RoomID: roomID, StartSec: startSec}] {
					continue
				}
				result[roomID] = append(result[roomID], startSec)
			}
		}
	}

	return result, nil
}

// occupiedSlots arbitrates every slot group in the frame, cancels all losers
// in one statement and returns the slots that still have a winner. The read
// and the cancel share q's transaction.
func (s *AvailabilityService) occupiedSlots(ctx context.Context, q repository.BookingQueries, roomIDs []int, from, to int64) (map[db.SlotKey]bool, error) {
	bookings, err := q.ActiveBookingsInFrame(ctx, roomIDs, from, to)
	if err != nil {
		return nil, fmt.Errorf("error loading bookings in frame: %w", err)
	}

	groups := make(map[db.SlotKey][]db.Booking)
	for _, b := range bookings {
		groups[b.Slot()] = append(groups[b.Slot()], b)
	}

	now := s.Arbiter.Clock.Now()
	occupied := make(map[db.SlotKey]bool, len(groups))
	var losers []db.Booking
	for key, group := range groups {
		d := s.Arbiter.Decide(group, now)
		if !d.Free() {
			occupied[key] = true
		}
		losers = append(losers, d.Losers...)
	}

	if len(losers) > 0 {
		n, err := q.CancelBookings(ctx, losers, now.Unix())
		if err != nil {
			return nil, fmt.Errorf("error cancelling stale bookings: %w", err)
		}
		s.logger.Debug("cancelled contenders in frame", zap.Int64("count", n))
	}
	return occupied, nil
}

func uniqueIDs(ids []int) []int {
	seen := make(map[int]bool, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
