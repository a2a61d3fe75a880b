package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/airticketing/config"
	"github.com/Domenick1991/airticketing/internal/domain"
	"github.com/Domenick1991/airticketing/internal/repository"
	"github.com/redis/go-redis/v9"
)

const flightsPrefix = "cache:flights:"

// RedisCache keeps read-side copies of flight listings and seat maps. It is
// never consulted for booking decisions.
type RedisCache struct {
	client     redis.UniversalClient
	flightsTTL time.Duration
	seatsTTL   time.Duration
}

func NewRedisCache(cfg config.RedisConfig) *RedisCache {
	return &RedisCache{
		client:     redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		flightsTTL: time.Duration(cfg.FlightsTTLSeconds) * time.Second,
		seatsTTL:   time.Duration(cfg.SeatsTTLSeconds) * time.Second,
	}
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// GetFlights returns nil, nil on a cache miss.
func (c *RedisCache) GetFlights(ctx context.Context, filter repository.FlightFilter) ([]domain.Flight, error) {
	var flights []domain.Flight
	if err := c.get(ctx, flightsKey(filter), &flights); err != nil {
		return nil, err
	}
	return flights, nil
}

func (c *RedisCache) SetFlights(ctx context.Context, filter repository.FlightFilter, flights []domain.Flight) error {
	return c.set(ctx, flightsKey(filter), flights, c.flightsTTL)
}

// InvalidateFlights drops every cached flight listing.
func (c *RedisCache) InvalidateFlights(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, flightsPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan flight keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// GetSeats returns nil, nil on a cache miss.
func (c *RedisCache) GetSeats(ctx context.Context, aircraftID int64) ([]domain.Seat, error) {
	var seats []domain.Seat
	if err := c.get(ctx, seatsKey(aircraftID), &seats); err != nil {
		return nil, err
	}
	return seats, nil
}

func (c *RedisCache) SetSeats(ctx context.Context, aircraftID int64, seats []domain.Seat) error {
	return c.set(ctx, seatsKey(aircraftID), seats, c.seatsTTL)
}

func (c *RedisCache) InvalidateSeats(ctx context.Context, aircraftID int64) error {
	return c.client.Del(ctx, seatsKey(aircraftID)).Err()
}

func (c *RedisCache) get(ctx context.Context, key string, dst any) error {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return err
	}
	return json.Unmarshal(data, dst)
}

func (c *RedisCache) set(ctx context.Context, key string, value any, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, ttl).Err()
}

func flightsKey(filter repository.FlightFilter) string {
	date := "*"
	if filter.Date != nil {
		date = filter.Date.UTC().Format(time.DateOnly)
	}
	return flightsPrefix + orAny(strings.ToUpper(filter.Origin)) + ":" + orAny(strings.ToUpper(filter.Destination)) + ":" + date
}

func seatsKey(aircraftID int64) string {
	return fmt.Sprintf("cache:aircraft:%d:seats", aircraftID)
}

func orAny(s string) string {
	if s == "" {
		return "*"
	}
	return s
}
