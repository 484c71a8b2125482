package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"storefront/internal/cart"
)

// RedisSnapshots keeps cart snapshots in redis. Every write refreshes the
// key's TTL, so abandoned snapshots expire without a sweep.
type RedisSnapshots struct {
	client  *redis.Client
	ttl     time.Duration
	timeout time.Duration
}

func NewRedisSnapshots(client *redis.Client, ttl time.Duration) *RedisSnapshots {
	return &RedisSnapshots{
		client:  client,
		ttl:     ttl,
		timeout: 2 * time.Second,
	}
}

func (r *RedisSnapshots) Namespace(name string) cart.Storage {
	return redisNamespace{r: r, name: name}
}

func (r *RedisSnapshots) get(key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, cart.ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	return data, nil
}

func (r *RedisSnapshots) set(key string, data []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

type redisNamespace struct {
	r    *RedisSnapshots
	name string
}

func (n redisNamespace) Load(key string) ([]byte, error) {
	return n.r.get(snapshotKey(n.name, key))
}

func (n redisNamespace) Save(key string, data []byte) error {
	return n.r.set(snapshotKey(n.name, key), data)
}

func snapshotKey(namespace, key string) string {
	return fmt.Sprintf("browser:%s:%s", namespace, key)
}
