package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/andreddluiz/Dash-AOS/internal/config"
	"github.com/andreddluiz/Dash-AOS/internal/logger"

	"github.com/go-redis/redis/v8"
)

const (
	dialTimeout = 5 * time.Second
	pingTimeout = 2 * time.Second
)

// RedisClient is shared by the import queue and the session revocation store.
type RedisClient struct {
	client *redis.Client
}

// NewRedisClient connects and pings once; an unreachable server is an error
// so callers can decide to run without Redis.
func NewRedisClient(cfg *config.Config) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        cfg.RedisAddr(),
		Password:    cfg.Redis.Password,
		DB:          cfg.Redis.DB,
		PoolSize:    cfg.Redis.PoolSize,
		DialTimeout: dialTimeout,
	})

	rc := &RedisClient{client: rdb}
	if err := rc.Ping(context.Background()); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to ping Redis at %s: %w", cfg.RedisAddr(), err)
	}

	log := logger.Component("queue")
	log.Info().Str("addr", cfg.RedisAddr()).Int("db", cfg.Redis.DB).Msg("Connected to Redis")
	return rc, nil
}

// Ping checks the connection with a short deadline. It doubles as the Redis
// health check.
func (r *RedisClient) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return r.client.Ping(ctx).Err()
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}

func (r *RedisClient) Client() *redis.Client {
	return r.client
}
