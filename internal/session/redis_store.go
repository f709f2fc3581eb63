package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a Redis-backed session store. The session record
// lives at session:<id> and its values in the hash session:<id>:data,
// both expiring together.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "session:",
	}
}

func (r *RedisStore) key(sessionID string) string {
	return r.prefix + sessionID
}

func (r *RedisStore) dataKey(sessionID string) string {
	return r.prefix + sessionID + ":data"
}

func (r *RedisStore) Create(ctx context.Context, s Session) error {
	if s.SessionID == "" {
		return fmt.Errorf("session: missing session_id")
	}

	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session: expires_at must be in the future")
	}

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("session: failed to marshal: %w", err)
	}

	return r.client.Set(ctx, r.key(s.SessionID), data, ttl).Err()
}

func (r *RedisStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	val, err := r.client.Get(ctx, r.key(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil // not found
	}
	if err != nil {
		return nil, err
	}

	var s Session
	if err := json.Unmarshal([]byte(val), &s); err != nil {
		return nil, fmt.Errorf("session: failed to unmarshal: %w", err)
	}

	return &s, nil
}

func (r *RedisStore) Delete(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, r.key(sessionID), r.dataKey(sessionID)).Err()
}

func (r *RedisStore) Update(ctx context.Context, s Session) error {
	if s.SessionID == "" {
		return fmt.Errorf("session: missing session_id")
	}

	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		// If expired, delete session instead of extending
		return r.Delete(ctx, s.SessionID)
	}

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("session: failed to marshal: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.key(s.SessionID), data, ttl)
		pipe.PExpire(ctx, r.dataKey(s.SessionID), ttl)
		return nil
	})
	return err
}

func (r *RedisStore) Put(ctx context.Context, sessionID, key, value string) error {
	ttl, err := r.client.PTTL(ctx, r.key(sessionID)).Result()
	if err != nil {
		return err
	}
	// -2: key missing, -1: no expiry (never written by this store)
	if ttl <= 0 {
		return ErrNotFound
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, r.dataKey(sessionID), key, value)
		pipe.PExpire(ctx, r.dataKey(sessionID), ttl)
		return nil
	})
	return err
}

// Pull runs HGET and HDEL in one MULTI/EXEC so concurrent callers cannot
// both observe the value.
func (r *RedisStore) Pull(ctx context.Context, sessionID, key string) (string, error) {
	var get *redis.StringCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		get = pipe.HGet(ctx, r.dataKey(sessionID), key)
		pipe.HDel(ctx, r.dataKey(sessionID), key)
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", err
	}

	val, err := get.Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return val, err
}
