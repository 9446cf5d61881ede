// Package cache adds a Redis read-through layer in front of the hottest
// query, the day timeline. Entries are short-lived and additionally evicted
// by after-commit hooks on every scheduling write, so staff screens refresh
// promptly without hammering postgres.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"tablebook/internal/domain/schedule"
	"tablebook/internal/pkg/config"
	"tablebook/internal/usecase/queries"
	"tablebook/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

func NewRedisClient(cfg config.RedisConfig) (*redis.Client, func(), error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	cleanup := func() {
		_ = client.Close()
	}
	return client, cleanup, nil
}

func timelineKey(restaurantID uuid.UUID, day string) string {
	return "timeline:" + restaurantID.String() + ":" + day
}

// TimelineCache decorates ReservationQueries with a read-through cache on
// Timeline. Cache failures degrade to the underlying store, never to errors.
type TimelineCache struct {
	inner  queries.ReservationQueries
	client *redis.Client
	grid   schedule.Grid
	ttl    time.Duration
	group  singleflight.Group
	log    *slog.Logger
}

func NewTimelineCache(
	inner queries.ReservationQueries,
	client *redis.Client,
	cfg config.Config,
	log *slog.Logger,
) (*TimelineCache, error) {
	grid, err := schedule.NewGrid(cfg.Schedule.DayStartHour, cfg.Schedule.SlotMinutes)
	if err != nil {
		return nil, err
	}
	return &TimelineCache{
		inner:  inner,
		client: client,
		grid:   grid,
		ttl:    cfg.Redis.TimelineTTL,
		log:    log,
	}, nil
}

var (
	_ queries.ReservationQueries = (*TimelineCache)(nil)
	_ shared.TimelineInvalidator = (*TimelineCache)(nil)
)

func (c *TimelineCache) Timeline(ctx context.Context, restaurantID uuid.UUID, date time.Time) (*queries.TimelineView, error) {
	day := c.grid.ServiceDay(date).Format("2006-01-02")
	key := timelineKey(restaurantID, day)

	if raw, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var view queries.TimelineView
		if err := json.Unmarshal(raw, &view); err == nil {
			return &view, nil
		}
		// poisoned entry, drop it and fall through
		c.client.Del(ctx, key)
	}

	// singleflight collapses a stampede of grid loads for the same day
	// into one database round trip.
	v, err, _ := c.group.Do(key, func() (any, error) {
		view, err := c.inner.Timeline(ctx, restaurantID, date)
		if err != nil {
			return nil, err
		}
		if raw, err := json.Marshal(view); err == nil {
			if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
				c.log.Warn("failed to cache timeline", "key", key, "error", err)
			}
		}
		return view, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*queries.TimelineView), nil
}

func (c *TimelineCache) Get(ctx context.Context, restaurantID, id uuid.UUID) (*queries.ReservationView, error) {
	return c.inner.Get(ctx, restaurantID, id)
}

func (c *TimelineCache) ListByCustomer(ctx context.Context, restaurantID, customerID uuid.UUID, limit int) ([]queries.ReservationView, error) {
	return c.inner.ListByCustomer(ctx, restaurantID, customerID, limit)
}

// InvalidateTimeline evicts the cached grid for the service day containing at.
func (c *TimelineCache) InvalidateTimeline(ctx context.Context, restaurantID uuid.UUID, at time.Time) {
	day := c.grid.ServiceDay(at).Format("2006-01-02")
	key := timelineKey(restaurantID, day)
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.log.Warn("failed to invalidate timeline cache", "key", key, "error", err)
	}
}
