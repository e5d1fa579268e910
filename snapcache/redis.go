package snapcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/meenmo/bondrv/curve"
)

// Redis is a Cache backed by a Redis instance. Curves are stored as JSON
// under a fixed key prefix.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis connects to Redis and verifies the connection.
func NewRedis(ctx context.Context, addr, password string, db int) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("NewRedis: ping %s: %w", addr, err)
	}
	return &Redis{client: client, prefix: "bondrv:curve:"}, nil
}

func (r *Redis) Put(ctx context.Context, key string, c *curve.YieldCurve, ttl time.Duration) error {
	payload, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("Put: marshal %q: %w", key, err)
	}
	if err := r.client.Set(ctx, r.prefix+key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("Put: %q: %w", key, err)
	}
	return nil
}

func (r *Redis) Get(ctx context.Context, key string) (*curve.YieldCurve, error) {
	payload, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %q: %w", key, err)
	}
	var c curve.YieldCurve
	if err := json.Unmarshal(payload, &c); err != nil {
		return nil, fmt.Errorf("Get: unmarshal %q: %w", key, err)
	}
	return &c, nil
}

func (r *Redis) Close() error { return r.client.Close() }
