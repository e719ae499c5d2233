package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"roombooking/internal/db"
	"roombooking/internal/repository"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(t time.Time) *fakeClock { return &fakeClock{now: t} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	clock        *fakeClock
	store        *repository.MemoryStore
	arbiter      *SlotArbiter
	bookings     *BookingService
	availability *AvailabilityService
}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()
	logger := zaptest.NewLogger(t)
	clock := newFakeClock(now)
	store := repository.NewMemoryStore(repository.DefaultRooms(10)...)
	arbiter := NewSlotArbiter(DefaultGraceWindow, clock)
	return &fixture{
		clock:        clock,
		store:        store,
		arbiter:      arbiter,
		bookings:     NewBookingService(store, arbiter, time.UTC, logger),
		availability: NewAvailabilityService(store, arbiter, time.UTC, 0, logger),
	}
}

// seed writes a booking as-is, bypassing arbitration.
func (f *fixture) seed(t *testing.T, b db.Booking) int {
	t.Helper()
	if b.EndSec == 0 {
		b.EndSec = b.StartSec + 3599
	}
	err := f.store.InTx(context.Background(), func(q repository.BookingQueries) error {
		return q.InsertBooking(context.Background(), &b)
	})
	require.NoError(t, err)
	return b.ID
}

func (f *fixture) status(t *testing.T, id int) db.BookingStatus {
	t.Helper()
	b, err := f.store.GetBooking(context.Background(), id)
	require.NoError(t, err)
	return b.Status
}

func strPtr(s string) *string { return &s }

func statusPtr(s db.BookingStatus) *db.BookingStatus { return &s }
