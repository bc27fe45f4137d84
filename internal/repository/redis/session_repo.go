package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"BlackByte_Forum/internal/model"

	"github.com/redis/go-redis/v9"
)

const SessionKeyPrefix = "forum:session"

var ErrRedisUnavailable = errors.New("redis unavailable")

// SessionRepository 会话存 Redis，过期由 key TTL 控制
type SessionRepository struct {
	RDB *redis.Client
}

func sessionKey(id string) string {
	return fmt.Sprintf("%s:%s", SessionKeyPrefix, id)
}

func (r *SessionRepository) Save(ctx context.Context, s *model.Session) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return model.ErrSessionExpired
	}
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	if err := r.RDB.Set(ctx, sessionKey(s.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

func (r *SessionRepository) Get(ctx context.Context, id string) (*model.Session, error) {
	data, err := r.RDB.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, model.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	var s model.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	if err := r.RDB.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}
