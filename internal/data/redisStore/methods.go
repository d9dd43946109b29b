package redisStore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

func (s *Store) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return s.client.Set(ctx, key, value, expiration).Err()
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	return s.client.Get(ctx, key).Result()
}

func (s *Store) Del(ctx context.Context, keys ...string) error {
	return s.client.Del(ctx, keys...).Err()
}

func (s *Store) IsNil(err error) bool {
	return errors.Is(err, redis.Nil)
}

func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	count, err := s.client.Exists(ctx, key).Result()
	return count > 0, err
}

func (s *Store) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return s.client.Expire(ctx, key, ttl).Err()
}

// list ops - the conversation store appends turns, the queue moves job payloads

func (s *Store) ListAppend(ctx context.Context, key string, value interface{}) error {
	return s.client.RPush(ctx, key, value).Err()
}

func (s *Store) ListPrepend(ctx context.Context, key string, value interface{}) error {
	return s.client.LPush(ctx, key, value).Err()
}

func (s *Store) ListLen(ctx context.Context, key string) (int64, error) {
	return s.client.LLen(ctx, key).Result()
}

// ListTail returns the last n entries in list order (oldest of the n first).
func (s *Store) ListTail(ctx context.Context, key string, n int64) ([]string, error) {
	return s.client.LRange(ctx, key, -n, -1).Result()
}

// BlockingMoveTail pops from the tail of source and pushes onto the head of
// destination, waiting up to timeout. Returns redis.Nil on timeout.
func (s *Store) BlockingMoveTail(ctx context.Context, source string, destination string, timeout time.Duration) (string, error) {
	return s.client.BRPopLPush(ctx, source, destination, timeout).Result()
}

// MoveTail is the non-blocking variant, used to reap stale in-flight entries.
func (s *Store) MoveTail(ctx context.Context, source string, destination string) (string, error) {
	return s.client.RPopLPush(ctx, source, destination).Result()
}

// ListRemove deletes the first occurrence of value from the list.
func (s *Store) ListRemove(ctx context.Context, key string, value interface{}) error {
	return s.client.LRem(ctx, key, 1, value).Err()
}
