// Package cache keeps short-lived copies of the public schedule reads in Redis.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"mikvah-scheduler/internal/pkg/config"
	"mikvah-scheduler/internal/pkg/errs"
	"mikvah-scheduler/internal/usecase/commands"
	"mikvah-scheduler/internal/usecase/queries"

	"github.com/redis/go-redis/v9"
)

const (
	keyAvailableTimes = "mikvah:available-times"
	keyWeekHours      = "mikvah:week-hours"
)

func NewClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
}

// ScheduleQueries serves AvailableTimes and CurrentWeekHours from Redis when
// a fresh copy exists. Redis failures fall through to the wrapped queries.
type ScheduleQueries struct {
	queries.ScheduleQueries
	redis redis.Cmdable
	ttl   time.Duration
}

func NewScheduleQueries(inner queries.ScheduleQueries, client redis.Cmdable, ttl time.Duration) *ScheduleQueries {
	return &ScheduleQueries{ScheduleQueries: inner, redis: client, ttl: ttl}
}

func (c *ScheduleQueries) AvailableTimes(ctx context.Context) ([]*queries.AvailableTime, error) {
	var cached []*queries.AvailableTime
	if c.readCache(ctx, keyAvailableTimes, &cached) {
		return cached, nil
	}
	result, err := c.ScheduleQueries.AvailableTimes(ctx)
	if err != nil {
		return nil, err
	}
	c.writeCache(ctx, keyAvailableTimes, result)
	return result, nil
}

func (c *ScheduleQueries) CurrentWeekHours(ctx context.Context) ([]*queries.DayHoursView, error) {
	var cached []*queries.DayHoursView
	if c.readCache(ctx, keyWeekHours, &cached) {
		return cached, nil
	}
	result, err := c.ScheduleQueries.CurrentWeekHours(ctx)
	if err != nil {
		return nil, err
	}
	c.writeCache(ctx, keyWeekHours, result)
	return result, nil
}

func (c *ScheduleQueries) readCache(ctx context.Context, key string, out any) bool {
	if c.ttl <= 0 {
		return false
	}
	val, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if !errs.Is(err, redis.Nil) {
			slog.Warn("cache read failed", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(val, out); err != nil {
		slog.Warn("cache entry is corrupt", "key", key, "error", err)
		return false
	}
	return true
}

func (c *ScheduleQueries) writeCache(ctx context.Context, key string, val any) {
	if c.ttl <= 0 {
		return
	}
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		slog.Warn("cache write failed", "key", key, "error", err)
	}
}

// Invalidator drops the cached schedule after a booking change.
type Invalidator struct {
	redis redis.Cmdable
}

func NewInvalidator(client redis.Cmdable) *Invalidator {
	return &Invalidator{redis: client}
}

var _ commands.AvailabilityInvalidator = (*Invalidator)(nil)

func (i *Invalidator) Invalidate(ctx context.Context) error {
	if err := i.redis.Del(ctx, keyAvailableTimes, keyWeekHours).Err(); err != nil {
		return errs.Wrap(err, "failed to invalidate schedule cache")
	}
	return nil
}
