package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	redisSessionPrefix = "calculator:session:"
	redisMaxTxRetries  = 10
)

// RedisSessionStore shares sessions between replicas. Updates use
// WATCH/MULTI so two replicas cannot both start a submission.
type RedisSessionStore struct {
	client  *redis.Client
	timeout time.Duration
}

func NewRedisSessionStore(client *redis.Client, timeout time.Duration) *RedisSessionStore {
	return &RedisSessionStore{client: client, timeout: timeout}
}

func sessionKey(id string) string {
	return redisSessionPrefix + id
}

func (r *RedisSessionStore) Create(ctx context.Context) (*Session, error) {
	s := newSession(uuid.New().String(), r.timeout)
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session: %w", err)
	}
	if err := r.client.Set(ctx, sessionKey(s.ID), data, r.timeout).Err(); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	return s, nil
}

func (r *RedisSessionStore) Get(ctx context.Context, id string) (*Session, error) {
	return r.load(ctx, r.client, id)
}

type redisGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (r *RedisSessionStore) load(ctx context.Context, c redisGetter, id string) (*Session, error) {
	data, err := c.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &s, nil
}

func (r *RedisSessionStore) Update(ctx context.Context, id string, fn func(*Session) error) (*Session, error) {
	key := sessionKey(id)

	for attempt := 0; attempt < redisMaxTxRetries; attempt++ {
		var result *Session
		var fnErr error

		err := r.client.Watch(ctx, func(tx *redis.Tx) error {
			s, err := r.load(ctx, tx, id)
			if err != nil {
				return err
			}
			if fnErr = fn(s); fnErr != nil {
				result = s
				return nil
			}
			s.ExpiresAt = time.Now().Add(r.timeout)
			data, err := json.Marshal(s)
			if err != nil {
				return fmt.Errorf("failed to encode session: %w", err)
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, data, r.timeout)
				return nil
			})
			if err == nil {
				result = s
			}
			return err
		}, key)

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return result, fnErr
	}
	return nil, fmt.Errorf("session %s: too much contention", id)
}
