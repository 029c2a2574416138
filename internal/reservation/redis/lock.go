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

// Redis holds short-lived table holds so two users cannot book the same
// table slot while one of them is mid-reservation. The database stays the
// source of truth; the hold only bridges the booking window.
type Redis struct {
	Client *redis.Client
	Logger *log.Logger
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{
		Client: client,
		Logger: log.Default(),
	}
}

// getHoldDuration returns the table hold duration from environment variables or the default value
func (r *Redis) getHoldDuration() time.Duration {
	defaultDuration := 15 * time.Minute

	ttlStr := os.Getenv("TABLE_HOLD_TTL_MINUTES")
	if ttlStr == "" {
		return defaultDuration
	}

	ttlMin, err := strconv.Atoi(ttlStr)
	if err != nil {
		r.Logger.Println("REDIS: Invalid TABLE_HOLD_TTL_MINUTES value '" + ttlStr + "', using default 15 minutes")
		return defaultDuration
	}
	return time.Duration(ttlMin) * time.Minute
}

func holdKey(tableID string, slot time.Time) string {
	return fmt.Sprintf("table_hold:%s:%s", tableID, slot.UTC().Truncate(time.Hour).Format(time.RFC3339))
}

// CheckTableAvailability reports whether a table slot is free without holding it.
func (r *Redis) CheckTableAvailability(tableID string, slot time.Time) (bool, error) {
	_, err := r.Client.Get(context.Background(), holdKey(tableID, slot)).Result()
	if err == redis.Nil {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return false, nil
}

// HoldTable claims a table slot for a reservation. Returns false when
// another reservation already holds it.
func (r *Redis) HoldTable(tableID string, slot time.Time, reservationID string) (bool, error) {
	ok, err := r.Client.SetNX(context.Background(), holdKey(tableID, slot), reservationID, r.getHoldDuration()).Result()
	return ok, err
}

// ReleaseTable drops the hold, but only if this reservation owns it.
func (r *Redis) ReleaseTable(tableID string, slot time.Time, reservationID string) error {
	ctx := context.Background()
	key := holdKey(tableID, slot)
	val, err := r.Client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil // already released
	}
	if err != nil {
		return err
	}
	if val == reservationID {
		_, err := r.Client.Del(ctx, key).Result()
		return err
	}
	return nil
}
