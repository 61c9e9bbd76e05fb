package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"venuebooking/internal/domain"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL bounds how stale a cached list can get if an invalidation is lost.
const DefaultTTL = 5 * time.Minute

const (
	generationKey  = "views:generation"
	bookingsPrefix = "bookings:status:"
	eventsPrefix   = "events:status:"
	allStatuses    = "all"
)

type viewCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewViewCache returns a ViewCache storing JSON-encoded lists in Redis.
func NewViewCache(client redis.Cmdable, ttl time.Duration) domain.ViewCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &viewCache{
		client: client,
		ttl:    ttl,
	}
}

func bookingsKey(gen int64, status domain.BookingStatus) string {
	return bookingsPrefix + string(status) + genSuffix(gen)
}

func eventsKey(gen int64, status domain.EventStatus) string {
	name := string(status)
	if status == "" {
		name = allStatuses
	}
	return eventsPrefix + name + genSuffix(gen)
}

func genSuffix(gen int64) string {
	return ":g" + strconv.FormatInt(gen, 10)
}

// Generation reads the counter Invalidate advances. A missing counter is generation 0.
func (c *viewCache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *viewCache) GetBookings(ctx context.Context, gen int64, status domain.BookingStatus) ([]*domain.Booking, bool, error) {
	var bookings []*domain.Booking
	ok, err := c.get(ctx, bookingsKey(gen, status), &bookings)
	return bookings, ok, err
}

func (c *viewCache) SetBookings(ctx context.Context, gen int64, status domain.BookingStatus, bookings []*domain.Booking) error {
	return c.set(ctx, bookingsKey(gen, status), bookings)
}

func (c *viewCache) GetEvents(ctx context.Context, gen int64, status domain.EventStatus) ([]*domain.Event, bool, error) {
	var events []*domain.Event
	ok, err := c.get(ctx, eventsKey(gen, status), &events)
	return events, ok, err
}

func (c *viewCache) SetEvents(ctx context.Context, gen int64, status domain.EventStatus, events []*domain.Event) error {
	return c.set(ctx, eventsKey(gen, status), events)
}

// Invalidate advances the generation. Lists filed under older generations are
// unreachable and expire with the TTL.
func (c *viewCache) Invalidate(ctx context.Context) error {
	return c.client.Incr(ctx, generationKey).Err()
}

func (c *viewCache) get(ctx context.Context, key string, dest any) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *viewCache) set(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}

type noopCache struct{}

// NewNoopCache returns a ViewCache that never hits. Used when Redis is not configured.
func NewNoopCache() domain.ViewCache {
	return noopCache{}
}

func (noopCache) Generation(context.Context) (int64, error) {
	return 0, nil
}

func (noopCache) GetBookings(context.Context, int64, domain.BookingStatus) ([]*domain.Booking, bool, error) {
	return nil, false, nil
}

func (noopCache) SetBookings(context.Context, int64, domain.BookingStatus, []*domain.Booking) error {
	return nil
}

func (noopCache) GetEvents(context.Context, int64, domain.EventStatus) ([]*domain.Event, bool, error) {
	return nil, false, nil
}

func (noopCache) SetEvents(context.Context, int64, domain.EventStatus, []*domain.Event) error {
	return nil
}

func (noopCache) Invalidate(context.Context) error {
	return nil
}
