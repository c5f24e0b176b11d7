package redisx

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

func New(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

// Dedup claims event ids for one consumer with SET NX.
type Dedup struct {
	Redis    redis.Cmdable
	Consumer string
}

func (d *Dedup) key(eventID string) string {
	return fmt.Sprintf(KeyDedup, d.Consumer, eventID)
}

func (d *Dedup) Claim(ctx context.Context, eventID string) (bool, error) {
	ok, err := d.Redis.SetNX(ctx, d.key(eventID), "1", TTLDedup).Result()
	if err != nil {
		return false, fmt.Errorf("claim %s: %w", eventID, err)
	}
	return ok, nil
}

func (d *Dedup) Release(ctx context.Context, eventID string) error {
	return d.Redis.Del(ctx, d.key(eventID)).Err()
}

// Idempotency maps client-supplied Idempotency-Key values to order ids.
type Idempotency struct {
	Redis redis.Cmdable
}

// Lookup returns the order id stored for key, or "" when there is none.
func (i *Idempotency) Lookup(ctx context.Context, key string) (string, error) {
	id, err := i.Redis.Get(ctx, fmt.Sprintf(KeyIdemOrderCreate, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return id, err
}

func (i *Idempotency) Remember(ctx context.Context, key, orderID string) error {
	return i.Redis.Set(ctx, fmt.Sprintf(KeyIdemOrderCreate, key), orderID, TTLIdempotency).Err()
}
