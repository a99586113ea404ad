package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jhoicas/stock-engine/internal/application/inventory"
)

var _ inventory.CacheClient = (*RedisClient)(nil)

// RedisClient implementa el puerto de caché de las rutas de lectura sobre Redis.
type RedisClient struct {
	rdb *redis.Client
}

// NewRedisClient construye el cliente y verifica la conexión con un PING.
func NewRedisClient(ctx context.Context, addr string) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return &RedisClient{rdb: rdb}, nil
}

// Get recupera el valor de una clave. Clave inexistente ->
// inventory.ErrCacheMiss (traducción de redis.Nil al error del puerto).
func (c *RedisClient) Get(ctx context.Context, key string) (string, error) {
	val, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", inventory.ErrCacheMiss
		}
		return "", err
	}
	return val, nil
}

// Set escribe una clave con expiración.
func (c *RedisClient) Set(ctx context.Context, key, value string, expiration time.Duration) error {
	return c.rdb.Set(ctx, key, value, expiration).Err()
}

// Delete elimina una clave (no falla si no existe).
func (c *RedisClient) Delete(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, key).Err()
}

// Close cierra la conexión con Redis.
func (c *RedisClient) Close() error {
	return c.rdb.Close()
}
