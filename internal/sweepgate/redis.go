package sweepgate

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
)

const DefaultKey = "roombooking:sweep"

// Redis shares the gate between replicas. The key lives until the next
// scheduled run, so only one replica acquires per interval.
type Redis struct {
	rdb      redis.Cmdable
	key      string
	schedule cron.Schedule
}

type RedisOption func(*Redis)

func WithKey(key string) RedisOption {
	return func(g *Redis) {
		if key != "" {
			g.key = key
		}
	}
}

func NewRedis(rdb redis.Cmdable, schedule cron.Schedule, opts ...RedisOption) *Redis {
	g := &Redis{rdb: rdb, key: DefaultKey, schedule: schedule}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Redis) Acquire(ctx context.Context, now time.Time) (bool, error) {
	ttl := g.schedule.Next(now).Sub(now)
	if ttl < time.Second {
		ttl = time.Second
	}
	ok, err := g.rdb.SetNX(ctx, g.key, now.Unix(), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx %s: %w", g.key, err)
	}
	return ok, nil
}
