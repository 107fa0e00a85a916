package queue

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"gradepulse/internal/config"
	"gradepulse/internal/logger"
	"gradepulse/internal/model"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
)

const pollTimeout = 5 * time.Second

type Consumer struct {
	client *redis.Client
	cfg    *config.Config
	log    zerolog.Logger
}

type NotificationHandler func(ctx context.Context, job model.NotificationJob) error

func NewConsumer(redisClient *RedisClient, cfg *config.Config) *Consumer {
	return &Consumer{
		client: redisClient.Client(),
		cfg:    cfg,
		log:    logger.Component("queue"),
	}
}

// ConsumeNotifications blocks until ctx is done. Messages that cannot be decoded,
// or whose handler fails, are moved to the dead-letter list untouched.
func (c *Consumer) ConsumeNotifications(ctx context.Context, handler NotificationHandler) error {
	queueName := c.cfg.Redis.NotificationQueue
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		result, err := c.client.BRPop(ctx, pollTimeout, queueName).Result()
		if err != nil {
			if stderrors.Is(err, redis.Nil) {
				continue // poll timeout
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.log.Error().Err(err).Str("queue", queueName).Msg("Failed to consume message")
			time.Sleep(time.Second)
			continue
		}

		if len(result) < 2 {
			continue
		}

		message := result[1]
		var job model.NotificationJob
		if err := json.Unmarshal([]byte(message), &job); err != nil {
			c.log.Error().Err(err).Str("queue", queueName).Msg("Undecodable message")
			c.deadLetter(ctx, queueName, message)
			continue
		}
		if err := handler(ctx, job); err != nil {
			c.log.Error().Err(err).Str("queue", queueName).Msg("Failed to process message")
			c.deadLetter(ctx, queueName, message)
		}
	}
}

func (c *Consumer) deadLetter(ctx context.Context, queueName, message string) {
	dlqName := queueName + c.cfg.Redis.DLQSuffix
	if err := c.client.LPush(ctx, dlqName, message).Err(); err != nil {
		c.log.Error().Err(err).Str("dlq", dlqName).Msg("Failed to move message to DLQ")
	}
}
