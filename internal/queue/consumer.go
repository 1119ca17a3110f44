package queue

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/andreddluiz/Dash-AOS/internal/config"
	"github.com/andreddluiz/Dash-AOS/internal/logger"
	"github.com/andreddluiz/Dash-AOS/pkg/errors"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
)

const (
	pollTimeout  = 5 * time.Second
	errorBackoff = time.Second
)

type MessageHandler func(ctx context.Context, data []byte) error

// listClient is the subset of *redis.Client the consumer needs.
type listClient interface {
	BRPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd
	LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	RPopLPush(ctx context.Context, source, destination string) *redis.StringCmd
}

// Consumer pops import jobs with BRPOP. Retryable handler failures are
// parked on <queue><dlq_suffix>; everything else is dropped after logging.
type Consumer struct {
	client listClient
	queue  string
	dlq    string
	log    zerolog.Logger
}

func NewConsumer(redisClient *RedisClient, cfg *config.Config) *Consumer {
	return newConsumer(redisClient.Client(), cfg.Redis.ImportQueue, cfg.Redis.ImportQueue+cfg.Redis.DLQSuffix)
}

func newConsumer(client listClient, queue, dlq string) *Consumer {
	return &Consumer{
		client: client,
		queue:  queue,
		dlq:    dlq,
		log:    logger.Component("queue").With().Str("queue", queue).Logger(),
	}
}

// ConsumeImportQueue blocks until ctx is cancelled and returns ctx.Err().
func (c *Consumer) ConsumeImportQueue(ctx context.Context, handler MessageHandler) error {
	for {
		message, err := c.next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.log.Error().Err(err).Msg("Failed to consume message")
			sleep(ctx, errorBackoff)
			continue
		}
		if message == nil {
			continue
		}

		c.handle(ctx, handler, message)
	}
}

// next returns nil without error when the poll timed out.
func (c *Consumer) next(ctx context.Context) ([]byte, error) {
	result, err := c.client.BRPop(ctx, pollTimeout, c.queue).Result()
	if stderrors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(result) < 2 {
		return nil, nil
	}
	return []byte(result[1]), nil
}

func (c *Consumer) handle(ctx context.Context, handler MessageHandler, message []byte) {
	err := handler(ctx, message)
	if err == nil {
		return
	}

	c.log.Error().Err(err).Bool("retryable", errors.IsRetryable(err)).Msg("Failed to process message")
	if !errors.IsRetryable(err) {
		return
	}
	if dlqErr := c.DeadLetter(ctx, message); dlqErr != nil {
		c.log.Error().Err(dlqErr).Str("dlq", c.dlq).Msg("Failed to move message to DLQ")
	}
}

// DeadLetter parks a message on the import dead-letter queue.
func (c *Consumer) DeadLetter(ctx context.Context, message []byte) error {
	return c.client.LPush(ctx, c.dlq, message).Err()
}

// ReplayDeadLetters moves up to limit parked messages back onto the import
// queue, oldest first, and reports how many were moved.
func (c *Consumer) ReplayDeadLetters(ctx context.Context, limit int) (int, error) {
	moved := 0
	for moved < limit {
		err := c.client.RPopLPush(ctx, c.dlq, c.queue).Err()
		if stderrors.Is(err, redis.Nil) {
			break
		}
		if err != nil {
			return moved, err
		}
		moved++
	}
	if moved > 0 {
		c.log.Info().Int("moved", moved).Str("dlq", c.dlq).Msg("Replayed parked import jobs")
	}
	return moved, nil
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
