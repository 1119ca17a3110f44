package queue

import (
	"context"
	"encoding/json"

	"github.com/andreddluiz/Dash-AOS/internal/config"
	"github.com/andreddluiz/Dash-AOS/internal/model"

	"github.com/go-redis/redis/v8"
)

type Producer struct {
	client *redis.Client
	queue  string
}

func NewProducer(redisClient *RedisClient, cfg *config.Config) *Producer {
	return &Producer{
		client: redisClient.Client(),
		queue:  cfg.Redis.ImportQueue,
	}
}

func (p *Producer) EnqueueImportJob(ctx context.Context, job model.ImportJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}

	return p.client.LPush(ctx, p.queue, data).Err()
}

// Pending reports how many import jobs wait in the queue.
func (p *Producer) Pending(ctx context.Context) (int64, error) {
	return p.client.LLen(ctx, p.queue).Result()
}
