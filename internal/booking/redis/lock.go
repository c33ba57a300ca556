package redis

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// Redis holds a short-lived lock per flight_id so two bookings for the same
// flight never race through the availability check together. The lock value
// is a caller token; only the holder can release it.
type Redis struct {
	Client *redis.Client
	Logger *log.Logger
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{Client: client, Logger: log.Default()}
}

// getFlightLockDuration returns the lock TTL from the environment or the
// default of 5 seconds. Booking is a short store round-trip; the TTL only
// bounds how long a crashed holder keeps a flight blocked.
func (r *Redis) getFlightLockDuration() time.Duration {
	defaultDuration := 5 * time.Second

	ttlStr := os.Getenv("FLIGHT_LOCK_TTL_SECONDS")
	if ttlStr == "" {
		return defaultDuration
	}

	ttlSec, err := strconv.Atoi(ttlStr)
	if err != nil {
		r.Logger.Println("REDIS: Invalid FLIGHT_LOCK_TTL_SECONDS value '" + ttlStr + "', using default 5 seconds")
		return defaultDuration
	}
	return time.Duration(ttlSec) * time.Second
}

func flightLockKey(flightID int64) string {
	return fmt.Sprintf("flight_lock:%d", flightID)
}

// LockFlight acquires the booking lock for a flight. Returns false when
// another booking currently holds it.
func (r *Redis) LockFlight(flightID int64, token string) (bool, error) {
	key := flightLockKey(flightID)
	return r.Client.SetNX(context.Background(), key, token, r.getFlightLockDuration()).Result()
}

// UnlockFlight releases the lock, but only when the stored token matches the
// caller's. A lock that expired and was re-acquired by someone else stays.
func (r *Redis) UnlockFlight(flightID int64, token string) error {
	ctx := context.Background()
	key := flightLockKey(flightID)

	val, err := r.Client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil // already released or expired
	}
	if err != nil {
		return err
	}
	if val == token {
		_, err := r.Client.Del(ctx, key).Result()
		return err
	}
	return nil
}
