package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/roadready/permitprep-backend/internal/config"
	"github.com/roadready/permitprep-backend/internal/model"
)

// RedisSessionStore keeps sessions as JSON values with a sliding TTL:
// every Put resets the clock, so an active exam never expires under the
// test-taker.
type RedisSessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisSessionStore creates a session store backed by Redis.
func NewRedisSessionStore(rdb *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{rdb: rdb, ttl: ttl}
}

func (s *RedisSessionStore) Get(ctx context.Context, id string) (*SessionState, error) {
	raw, err := s.rdb.Get(ctx, config.CacheKey.SessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}

	var state SessionState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &state, nil
}

func (s *RedisSessionStore) Put(ctx context.Context, id string, state *SessionState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", id, err)
	}
	if err := s.rdb.Set(ctx, config.CacheKey.SessionKey(id), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("put session %s: %w", id, err)
	}
	return nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, config.CacheKey.SessionKey(id)).Err()
}

// RedisPoolStore keeps generated question pools as JSON values with a
// fixed TTL. A pool is written exactly once, when a generation run
// succeeds in full.
type RedisPoolStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisPoolStore creates a pool store backed by Redis.
func NewRedisPoolStore(rdb *redis.Client, ttl time.Duration) *RedisPoolStore {
	return &RedisPoolStore{rdb: rdb, ttl: ttl}
}

func (s *RedisPoolStore) Get(ctx context.Context, id string) ([]model.Question, error) {
	raw, err := s.rdb.Get(ctx, config.CacheKey.PoolKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get pool %s: %w", id, err)
	}

	var questions []model.Question
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, fmt.Errorf("decode pool %s: %w", id, err)
	}
	return questions, nil
}

func (s *RedisPoolStore) Put(ctx context.Context, id string, questions []model.Question) error {
	raw, err := json.Marshal(questions)
	if err != nil {
		return fmt.Errorf("encode pool %s: %w", id, err)
	}
	if err := s.rdb.Set(ctx, config.CacheKey.PoolKey(id), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("put pool %s: %w", id, err)
	}
	return nil
}

func (s *RedisPoolStore) Delete(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, config.CacheKey.PoolKey(id)).Err()
}
