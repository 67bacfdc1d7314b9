package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mnkvreels/vreels-backend/internal/domain"
)

const (
	countsKeyPrefix = "social:counts:"
	hotKeyScoresKey = "social:hotkey:scores"

	fieldFollowers = "followers"
	fieldFollowing = "following"
)

// CountStore caches follower/following counters and tracks which users'
// counters are read most.
type CountStore interface {
	GetCounts(ctx context.Context, userID string) (domain.Counts, bool, error)
	SetCounts(ctx context.Context, c domain.Counts) error
	// AdjustFollow applies delta to the cached counters of an edge's two
	// endpoints, but only where a cache entry already exists.
	AdjustFollow(ctx context.Context, followerID, followingID string, delta int64) error
	Invalidate(ctx context.Context, userIDs ...string) error
	RecordAccess(ctx context.Context, userID string) error
	GetTopHotKeys(ctx context.Context, n int64) ([]string, error)
	ResetHotKeyScores(ctx context.Context) error
	Close() error
}

// RedisCountStore implements CountStore backed by a Redis hash per user.
type RedisCountStore struct {
	client *redis.Client
	ttl    time.Duration
	owned  bool
}

// NewRedisCountStore dials Redis and verifies the connection.
func NewRedisCountStore(address, password string, db int, ttl time.Duration) (*RedisCountStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisCountStore{client: client, ttl: ttl, owned: true}, nil
}

// NewRedisCountStoreFromClient wraps an existing client. Close leaves it open.
func NewRedisCountStoreFromClient(client *redis.Client, ttl time.Duration) *RedisCountStore {
	return &RedisCountStore{client: client, ttl: ttl}
}

// Client exposes the underlying client so other components can share it.
func (s *RedisCountStore) Client() *redis.Client {
	return s.client
}

func countsKey(userID string) string {
	return countsKeyPrefix + userID
}

// GetCounts returns (counts, true, nil) on hit and (zero, false, nil) on miss.
func (s *RedisCountStore) GetCounts(ctx context.Context, userID string) (domain.Counts, bool, error) {
	vals, err := s.client.HMGet(ctx, countsKey(userID), fieldFollowers, fieldFollowing).Result()
	if err != nil {
		return domain.Counts{}, false, fmt.Errorf("redis get counts: %w", err)
	}
	if len(vals) != 2 || vals[0] == nil || vals[1] == nil {
		return domain.Counts{}, false, nil
	}

	followers, err := strconv.ParseInt(fmt.Sprint(vals[0]), 10, 64)
	if err != nil {
		return domain.Counts{}, false, fmt.Errorf("parse followers count: %w", err)
	}
	following, err := strconv.ParseInt(fmt.Sprint(vals[1]), 10, 64)
	if err != nil {
		return domain.Counts{}, false, fmt.Errorf("parse following count: %w", err)
	}
	return domain.Counts{UserID: userID, FollowersCount: followers, FollowingCount: following}, true, nil
}

// SetCounts overwrites the cached counters for c.UserID.
func (s *RedisCountStore) SetCounts(ctx context.Context, c domain.Counts) error {
	key := countsKey(c.UserID)
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, key, fieldFollowers, c.FollowersCount, fieldFollowing, c.FollowingCount)
		if s.ttl > 0 {
			p.Expire(ctx, key, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis set counts: %w", err)
	}
	return nil
}

// condHIncrScript increments a hash field only if the hash exists and never
// lets it drop below zero. Returns the new value, or -1 on a miss.
var condHIncrScript = redis.NewScript(`
local key = KEYS[1]
if redis.call("EXISTS", key) == 0 then
  return -1
end
local cur = tonumber(redis.call("HGET", key, ARGV[1]) or "0")
local nxt = cur + tonumber(ARGV[2])
if nxt < 0 then
  nxt = 0
end
redis.call("HSET", key, ARGV[1], nxt)
return nxt
`)

func (s *RedisCountStore) condHIncr(ctx context.Context, userID, field string, delta int64) error {
	err := condHIncrScript.Run(ctx, s.client, []string{countsKey(userID)}, field, delta).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("redis cond incr %s: %w", field, err)
	}
	return nil
}

func (s *RedisCountStore) AdjustFollow(ctx context.Context, followerID, followingID string, delta int64) error {
	if err := s.condHIncr(ctx, followerID, fieldFollowing, delta); err != nil {
		return err
	}
	return s.condHIncr(ctx, followingID, fieldFollowers, delta)
}

func (s *RedisCountStore) Invalidate(ctx context.Context, userIDs ...string) error {
	if len(userIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, countsKey(id))
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis invalidate counts: %w", err)
	}
	return nil
}

// RecordAccess increments the access score for a user in the hot key sorted set.
func (s *RedisCountStore) RecordAccess(ctx context.Context, userID string) error {
	if err := s.client.ZIncrBy(ctx, hotKeyScoresKey, 1, userID).Err(); err != nil {
		return fmt.Errorf("redis record access: %w", err)
	}
	return nil
}

// GetTopHotKeys returns the top-n most accessed user IDs.
func (s *RedisCountStore) GetTopHotKeys(ctx context.Context, n int64) ([]string, error) {
	keys, err := s.client.ZRevRange(ctx, hotKeyScoresKey, 0, n-1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis get top hot keys: %w", err)
	}
	return keys, nil
}

// ResetHotKeyScores deletes the hot key scores sorted set.
func (s *RedisCountStore) ResetHotKeyScores(ctx context.Context) error {
	if err := s.client.Del(ctx, hotKeyScoresKey).Err(); err != nil {
		return fmt.Errorf("redis reset hot key scores: %w", err)
	}
	return nil
}

// Close closes the Redis client if this store created it.
func (s *RedisCountStore) Close() error {
	if !s.owned {
		return nil
	}
	return s.client.Close()
}

var _ CountStore = (*RedisCountStore)(nil)
