package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gdg-garage/mosaic-visa/internal/application"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "visa:session:"

// RedisStore keeps pending submissions as JSON values with a TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient connects to redis with short timeouts.
func NewRedisClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  1 * time.Second,
		WriteTimeout: 1 * time.Second,
	})
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Put(ctx context.Context, key string, sub application.Submission) error {
	payload, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("encode pending submission: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+key, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("store pending submission: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (application.Submission, error) {
	payload, err := s.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return application.Submission{}, ErrNotFound
	}
	if err != nil {
		return application.Submission{}, fmt.Errorf("load pending submission: %w", err)
	}

	var sub application.Submission
	if err := json.Unmarshal(payload, &sub); err != nil {
		return application.Submission{}, fmt.Errorf("decode pending submission: %w", err)
	}
	return sub, nil
}

func (s *RedisStore) Clear(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("clear pending submission: %w", err)
	}
	return nil
}

// Healthy verifies redis connectivity.
func (s *RedisStore) Healthy(ctx context.Context) bool {
	return s.client.Ping(ctx).Err() == nil
}
