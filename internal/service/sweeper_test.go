package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"roombooking/internal/db"
	"roombooking/internal/sweepgate"
)

type failingGate struct{}

func (failingGate) Acquire(context.Context, time.Time) (bool, error) {
	return false, errors.New("gate down")
}

func TestSweeper_MaybeSweep(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(sampleEpoch, 0)
	f := newFixture(t, now)

	schedule, err := sweepgate.ParseSchedule("@every 10m")
	require.NoError(t, err)
	sweeper := NewSweeper(f.store, sweepgate.NewLocal(schedule, now), f.arbiter, zaptest.NewLogger(t))

	reserved := f.seed(t, db.Booking{RoomID: 1, StartSec: 3600, Status: db.StatusReserved, UpdatedAt: now.Unix()})
	confirmed := f.seed(t, db.Booking{RoomID: 1, StartSec: 7200, Status: db.StatusConfirmed, UpdatedAt: now.Unix()})

	ran, err := sweeper.MaybeSweep(ctx)
	require.NoError(t, err)
	assert.False(t, ran, "first sweep waits one interval")

	f.clock.Advance(16 * time.Minute)
	ran, err = sweeper.MaybeSweep(ctx)
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, db.StatusCancelled, f.status(t, reserved))
	assert.Equal(t, db.StatusConfirmed, f.status(t, confirmed))

	f.clock.Advance(time.Minute)
	ran, err = sweeper.MaybeSweep(ctx)
	require.NoError(t, err)
	assert.False(t, ran, "gate records every run")
}

func TestSweeper_KeepsFreshHolds(t *testing.T) {
	now := time.Unix(sampleEpoch, 0)
	f := newFixture(t, now)
	sweeper := NewSweeper(f.store, failingGate{}, f.arbiter, nil)

	fresh := f.seed(t, db.Booking{RoomID: 1, StartSec: 3600, Status: db.StatusReserved, UpdatedAt: now.Add(-14 * time.Minute).Unix()})
	stale := f.seed(t, db.Booking{RoomID: 2, StartSec: 3600, Status: db.StatusReserved, UpdatedAt: now.Add(-15 * time.Minute).Unix()})

	n, err := sweeper.Sweep(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, db.StatusReserved, f.status(t, fresh))
	assert.Equal(t, db.StatusCancelled, f.status(t, stale))

	_, err = sweeper.MaybeSweep(context.Background())
	assert.ErrorContains(t, err, "gate down")
}
