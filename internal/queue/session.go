package queue

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"gradepulse/internal/config"
	"gradepulse/internal/model"
	"gradepulse/pkg/errors"

	"github.com/go-redis/redis/v8"
)

// SessionStore keeps upload sessions in Redis under <prefix><id> until they expire.
type SessionStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewSessionStore(redisClient *RedisClient, cfg *config.Config) *SessionStore {
	return &SessionStore{
		client: redisClient.Client(),
		prefix: cfg.Redis.SessionPrefix,
		ttl:    cfg.Redis.SessionTTL,
	}
}

func (s *SessionStore) Save(ctx context.Context, session model.UploadSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.prefix+session.ID, data, s.ttl).Err()
}

func (s *SessionStore) Get(ctx context.Context, id string) (*model.UploadSession, error) {
	data, err := s.client.Get(ctx, s.prefix+id).Bytes()
	if err != nil {
		if stderrors.Is(err, redis.Nil) {
			return nil, errors.ErrSessionExpired
		}
		return nil, fmt.Errorf("failed to load upload session: %w", err)
	}

	var session model.UploadSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("corrupt upload session %s: %w", id, err)
	}
	return &session, nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, s.prefix+id).Err()
}
