package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"

	"customer_insight_chatbot/pkg"
)

// RedisSessionManager stores each session as a JSON value under
// session:<conversation id>. Reads refresh the TTL with GETEX.
type RedisSessionManager struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSessionManager connects to redisURL and checks the connection
func NewRedisSessionManager(ctx context.Context, redisURL string, ttl time.Duration) (*RedisSessionManager, error) {
	if redisURL == "" {
		return nil, fmt.Errorf("redis URL is required")
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisSessionManagerFromClient(client, ttl), nil
}

// NewRedisSessionManagerFromClient wraps an existing client
func NewRedisSessionManagerFromClient(client *redis.Client, ttl time.Duration) *RedisSessionManager {
	if ttl <= 0 {
		ttl = SessionTTL
	}
	return &RedisSessionManager{client: client, ttl: ttl}
}

// key generates a Redis key for the given conversation ID
func (r *RedisSessionManager) key(conversationID string) string {
	return fmt.Sprintf("session:%s", conversationID)
}

// GetSession loads a session and extends its TTL
func (r *RedisSessionManager) GetSession(ctx context.Context, conversationID string) (*pkg.Session, error) {
	data, err := r.client.GetEx(ctx, r.key(conversationID), r.ttl).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("conversation %s: %w", conversationID, ErrSessionNotFound)
		}
		return nil, fmt.Errorf("failed to get session data: %w", err)
	}

	var session pkg.Session
	if err := sonic.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session data: %w", err)
	}
	return &session, nil
}

// SaveSession stores a session with the configured TTL
func (r *RedisSessionManager) SaveSession(ctx context.Context, session *pkg.Session) error {
	if err := ValidateSession(session); err != nil {
		return err
	}
	touch(session, time.Now())

	data, err := sonic.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session data: %w", err)
	}
	if err := r.client.Set(ctx, r.key(session.ConversationID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set session data: %w", err)
	}
	return nil
}

// DeleteSession removes session from Redis
func (r *RedisSessionManager) DeleteSession(ctx context.Context, conversationID string) error {
	if err := r.client.Del(ctx, r.key(conversationID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// TTL gets the remaining lifetime of a session
func (r *RedisSessionManager) TTL(ctx context.Context, conversationID string) (time.Duration, error) {
	ttl, err := r.client.TTL(ctx, r.key(conversationID)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get TTL: %w", err)
	}
	return ttl, nil
}

// Ping tests the Redis connection
func (r *RedisSessionManager) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (r *RedisSessionManager) Close() error {
	return r.client.Close()
}
