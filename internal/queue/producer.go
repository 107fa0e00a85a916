package queue

import (
	"context"
	"encoding/json"

	"gradepulse/internal/config"
	"gradepulse/internal/model"

	"github.com/go-redis/redis/v8"
)

type Producer struct {
	client *redis.Client
	cfg    *config.Config
}

func NewProducer(redisClient *RedisClient, cfg *config.Config) *Producer {
	return &Producer{
		client: redisClient.Client(),
		cfg:    cfg,
	}
}

func (p *Producer) EnqueueNotification(ctx context.Context, job model.NotificationJob) error {
	return p.push(ctx, p.cfg.Redis.NotificationQueue, job)
}

// DeadLetter parks a job that will not be retried.
func (p *Producer) DeadLetter(ctx context.Context, job model.NotificationJob) error {
	return p.push(ctx, p.cfg.Redis.NotificationQueue+p.cfg.Redis.DLQSuffix, job)
}

func (p *Producer) push(ctx context.Context, queueName string, job model.NotificationJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}

	return p.client.LPush(ctx, queueName, data).Err()
}
