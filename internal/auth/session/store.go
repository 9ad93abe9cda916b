// Package session keeps the per-user allowlist of live refresh tokens in
// Redis. A refresh token is usable only while its jti is a member of
// {prefix}{user_id}.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultKeyPrefix = "user_sessions:"

var ErrUnavailable = errors.New("session: redis unavailable")

// rotateScript swaps the old jti for the new one only if the old one was
// still a member, so two concurrent refreshes with the same token cannot
// both succeed.
var rotateScript = redis.NewScript(`
if redis.call("SREM", KEYS[1], ARGV[1]) == 1 then
  redis.call("SADD", KEYS[1], ARGV[2])
  redis.call("PEXPIRE", KEYS[1], ARGV[3])
  return 1
end
return 0
`)

type RedisStore struct {
	rdb    redis.UniversalClient
	prefix string
}

func NewRedisStore(rdb redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisStore{rdb: rdb, prefix: prefix}
}

func (s *RedisStore) key(userID string) string { return s.prefix + userID }

func unavailable(err error) error {
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

// Add registers jti and pushes the set expiry out to ttl.
func (s *RedisStore) Add(ctx context.Context, userID, jti string, ttl time.Duration) error {
	key := s.key(userID)
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SAdd(ctx, key, jti)
		pipe.PExpire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return unavailable(err)
	}
	return nil
}

// Remove drops jti and reports whether it was present.
func (s *RedisStore) Remove(ctx context.Context, userID, jti string) (bool, error) {
	n, err := s.rdb.SRem(ctx, s.key(userID), jti).Result()
	if err != nil {
		return false, unavailable(err)
	}
	return n == 1, nil
}

func (s *RedisStore) IsValid(ctx context.Context, userID, jti string) (bool, error) {
	ok, err := s.rdb.SIsMember(ctx, s.key(userID), jti).Result()
	if err != nil {
		return false, unavailable(err)
	}
	return ok, nil
}

// ClearAll revokes every session of the user.
func (s *RedisStore) ClearAll(ctx context.Context, userID string) error {
	if err := s.rdb.Del(ctx, s.key(userID)).Err(); err != nil {
		return unavailable(err)
	}
	return nil
}

func (s *RedisStore) Count(ctx context.Context, userID string) (int64, error) {
	n, err := s.rdb.SCard(ctx, s.key(userID)).Result()
	if err != nil {
		return 0, unavailable(err)
	}
	return n, nil
}

// Rotate atomically replaces oldJTI with newJTI. It returns false, and writes
// nothing, when oldJTI was no longer registered.
func (s *RedisStore) Rotate(ctx context.Context, userID, oldJTI, newJTI string, ttl time.Duration) (bool, error) {
	n, err := rotateScript.Run(ctx, s.rdb, []string{s.key(userID)}, oldJTI, newJTI, ttl.Milliseconds()).Int64()
	if err != nil {
		return false, unavailable(err)
	}
	return n == 1, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		return unavailable(err)
	}
	return nil
}
