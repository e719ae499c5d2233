package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"roombooking/internal/db"
	"roombooking/internal/entities"
	"roombooking/internal/repository"
)

var march1 = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func at(hour, minute int) int64 {
	return march1.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute).Unix()
}

func workingHours(from, to int) []int64 {
	var out []int64
	for h := from; h <= to; h++ {
		out = append(out, at(h, 0))
	}
	return out
}

func TestListAvailable_EmptyDay(t *testing.T) {
	f := newFixture(t, march1.Add(6*time.Hour))

	got, err := f.availability.ListAvailable(context.Background(), []int{1}, at(7, 0), at(17, 59))
	require.NoError(t, err)
	assert.Equal(t, workingHours(7, 17), got[1])
	assert.Len(t, got[1], 11)
}

func TestListAvailable_OccupiedAndStaleSlots(t *testing.T) {
	ctx := context.Background()
	now := march1.Add(6 * time.Hour)
	f := newFixture(t, now)

	f.seed(t, db.Booking{RoomID: 1, StartSec: at(9, 0), Status: db.StatusConfirmed, UpdatedAt: now.Add(-48 * time.Hour).Unix()})
	f.seed(t, db.Booking{RoomID: 1, StartSec: at(10, 0), Status: db.StatusReserved, UpdatedAt: now.Unix()})
	stale := f.seed(t, db.Booking{RoomID: 2, StartSec: at(11, 0), Status: db.StatusReserved, UpdatedAt: now.Add(-time.Hour).Unix()})

	got, err := f.availability.ListAvailable(ctx, []int{1, 2, 3}, at(7, 0), at(17, 59))
	require.NoError(t, err)

	var room1 []int64
	for _, s := range workingHours(7, 17) {
		if s != at(9, 0) && s != at(10, 0) {
			room1 = append(room1, s)
		}
	}
	assert.Equal(t, room1, got[1])
	assert.Equal(t, workingHours(7, 17), got[2], "stale hold does not occupy")
	assert.Equal(t, workingHours(7, 17), got[3])
	assert.Equal(t, db.StatusCancelled, f.status(t, stale))
}

func TestListAvailable_FullyBookedRoomIsPresent(t *testing.T) {
	now := march1.Add(6 * time.Hour)
	f := newFixture(t, now)
	for h := 7; h <= 17; h++ {
		f.seed(t, db.Booking{RoomID: 4, StartSec: at(h, 0), Status: db.StatusConfirmed, UpdatedAt: now.Unix()})
	}

	got, err := f.availability.ListAvailable(context.Background(), []int{4}, at(7, 0), at(17, 59))
	require.NoError(t, err)
	room, ok := got[4]
	require.True(t, ok)
	assert.NotNil(t, room)
	assert.Empty(t, room)
}

func TestListAvailable_Idempotent(t *testing.T) {
	ctx := context.Background()
	now := march1.Add(6 * time.Hour)
	f := newFixture(t, now)
	f.seed(t, db.Booking{RoomID: 1, StartSec: at(8, 0), Status: db.StatusReserved, UpdatedAt: now.Unix()})
	f.seed(t, db.Booking{RoomID: 1, StartSec: at(8, 0), Status: db.StatusReserved, UpdatedAt: now.Unix()})
	f.seed(t, db.Booking{RoomID: 1, StartSec: at(12, 0), Status: db.StatusReserved, UpdatedAt: now.Add(-time.Hour).Unix()})

	first, err := f.availability.ListAvailable(ctx, []int{1, 2}, at(7, 0), at(17, 59))
	require.NoError(t, err)
	second, err := f.availability.ListAvailable(ctx, []int{1, 2}, at(7, 0), at(17, 59))
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.NotContains(t, first[1], at(8, 0))
	assert.Contains(t, first[1], at(12, 0))
}

func TestListAvailable_PartialHoursAndMilliseconds(t *testing.T) {
	f := newFixture(t, march1)

	got, err := f.availability.ListAvailable(context.Background(), []int{1}, at(9, 30)*1000, at(10, 10)*1000)
	require.NoError(t, err)
	assert.Equal(t, []int64{at(9, 0), at(10, 0)}, got[1])
}

func TestListAvailable_SpansDays(t *testing.T) {
	f := newFixture(t, march1)

	got, err := f.availability.ListAvailable(context.Background(), []int{1}, at(16, 0), at(24+8, 0))
	require.NoError(t, err)
	assert.Equal(t, []int64{at(16, 0), at(17, 0), at(24+7, 0), at(24+8, 0)}, got[1])
}

func TestListAvailable_InvalidInput(t *testing.T) {
	f := newFixture(t, march1)

	_, err := f.availability.ListAvailable(context.Background(), []int{1}, at(12, 0), at(8, 0))
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = f.availability.ListAvailable(context.Background(), nil, at(8, 0), at(12, 0))
	assert.ErrorIs(t, err, ErrNoRooms)
}

func TestListAvailable_LoopGuard(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	f := newFixture(t, march1)
	svc := NewAvailabilityService(f.store, f.arbiter, time.UTC, 5, zap.New(core))

	got, err := svc.ListAvailable(context.Background(), []int{1, 2}, at(7, 0), at(17, 59))
	require.NoError(t, err)
	assert.Equal(t, workingHours(7, 11), got[1])
	assert.Equal(t, []int64{}, got[2])
	assert.Equal(t, 1, logs.Len())
}

func TestDefaultWindow(t *testing.T) {
	f := newFixture(t, march1.Add(12*time.Hour+34*time.Minute))

	from, to := f.availability.DefaultWindow()
	assert.Equal(t, at(7, 0), from)
	assert.Equal(t, at(48+17, 59)+59, to)

	got, err := f.availability.ListAvailable(context.Background(), []int{1}, from, to)
	require.NoError(t, err)
	assert.Len(t, got[1], 33)
	assert.IsType(t, entities.AvailableTimes{}, got)
}

// confirmingStore confirms a booking right after the frame read, before the
// losers are cancelled.
type confirmingStore struct {
	*repository.MemoryStore
	clock *fakeClock
	id    int
}

func (s *confirmingStore) InTx(ctx context.Context, fn func(q repository.BookingQueries) error) error {
	return s.MemoryStore.InTx(ctx, func(q repository.BookingQueries) error {
		return fn(&confirmingQueries{BookingQueries: q, store: s})
	})
}

type confirmingQueries struct {
	repository.BookingQueries
	store *confirmingStore
}

func (q *confirmingQueries) ActiveBookingsInFrame(ctx context.Context, roomIDs []int, from, to int64) ([]db.Booking, error) {
	got, err := q.BookingQueries.ActiveBookingsInFrame(ctx, roomIDs, from, to)
	if err != nil {
		return nil, err
	}
	confirmed := db.StatusConfirmed
	err = q.BookingQueries.UpdateBooking(ctx, q.store.id, repository.BookingUpdate{
		Status:    &confirmed,
		UpdatedAt: q.store.clock.Now().Unix(),
	})
	return got, err
}

func TestListAvailable_KeepsBookingConfirmedDuringArbitration(t *testing.T) {
	ctx := context.Background()
	now := march1.Add(6 * time.Hour)
	f := newFixture(t, now)

	id := f.seed(t, db.Booking{RoomID: 5, StartSec: at(10, 0), Status: db.StatusReserved, UpdatedAt: now.Unix()})
	f.clock.Advance(16 * time.Minute)

	store := &confirmingStore{MemoryStore: f.store, clock: f.clock, id: id}
	svc := NewAvailabilityService(store, f.arbiter, time.UTC, 0, zaptest.NewLogger(t))

	_, err := svc.ListAvailable(ctx, []int{5}, at(7, 0), at(17, 59))
	require.NoError(t, err)
	assert.Equal(t, db.StatusConfirmed, f.status(t, id), "confirmation is never undone")

	got, err := f.availability.ListAvailable(ctx, []int{5}, at(7, 0), at(17, 59))
	require.NoError(t, err)
	assert.NotContains(t, got[5], at(10, 0))
	assert.Equal(t, db.StatusConfirmed, f.status(t, id))
}
