// Package sweepgate decides when the consistency sweep is due.
package sweepgate

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

const DefaultSchedule = "@every 10m"

// Gate reports whether a sweep is due at now. A true result records now as
// the last run, so concurrent callers see at most one acquisition per
// interval.
type Gate interface {
	Acquire(ctx context.Context, now time.Time) (bool, error)
}

// ParseSchedule accepts a standard five-field cron spec or a descriptor such
// as "@every 10m" or "@hourly".
func ParseSchedule(spec string) (cron.Schedule, error) {
	if spec == "" {
		spec = DefaultSchedule
	}
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", spec, err)
	}
	return schedule, nil
}

// Local is an in-process gate. The first sweep is due one schedule step
// after the gate is created.
type Local struct {
	mu       sync.Mutex
	schedule cron.Schedule
	lastRun  time.Time
}

func NewLocal(schedule cron.Schedule, started time.Time) *Local {
	return &Local{schedule: schedule, lastRun: started}
}

func (g *Local) Acquire(_ context.Context, now time.Time) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if now.Before(g.schedule.Next(g.lastRun)) {
		return false, nil
	}
	g.lastRun = now
	return true, nil
}

func (g *Local) LastRun() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastRun
}
