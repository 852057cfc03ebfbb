package convo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "session:"

// RedisSessionStore keeps sessions in Redis with a TTL, so abandoned flows
// expire instead of lingering forever.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSessionStore creates a Redis-backed session store.
func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{client: client, ttl: ttl}
}

func sessionKey(chatID int64) string {
	return fmt.Sprintf("%s%d", sessionKeyPrefix, chatID)
}

// Get returns the chat's session.
func (r *RedisSessionStore) Get(ctx context.Context, chatID int64) (*Session, error) {
	raw, err := r.client.Get(ctx, sessionKey(chatID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("session get failed: %w", err)
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("session decode failed: %w", err)
	}
	return &s, nil
}

// Put stores the session and refreshes its TTL.
func (r *RedisSessionStore) Put(ctx context.Context, s *Session) error {
	s.UpdatedAt = time.Now()
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("session encode failed: %w", err)
	}
	if err := r.client.Set(ctx, sessionKey(s.ChatID), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("session put failed: %w", err)
	}
	return nil
}

// Delete discards the chat's session.
func (r *RedisSessionStore) Delete(ctx context.Context, chatID int64) error {
	if err := r.client.Del(ctx, sessionKey(chatID)).Err(); err != nil {
		return fmt.Errorf("session delete failed: %w", err)
	}
	return nil
}
