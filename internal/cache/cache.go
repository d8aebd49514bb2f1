// Package cache is the derived, invalidation-only view of per-user chat and
// folder listings. It is never a source of truth: readers fall back to the
// ledger on a miss and repopulate with a TTL.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const searchHistorySize = 10

// Store is the key-value contract the services depend on.
type Store interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	Invalidate(ctx context.Context, keys ...string) error
	PushSearchHistory(ctx context.Context, userUUID, query string) error
	SearchHistory(ctx context.Context, userUUID string) ([]string, error)
}

// ChatsKey scopes a folder's chat listing to one user.
func ChatsKey(folderUUID, userUUID string) string {
	return fmt.Sprintf("chats:%s:%s", folderUUID, userUUID)
}

// FoldersKey scopes a user's folder listing.
func FoldersKey(userUUID string) string {
	return fmt.Sprintf("folders:%s", userUUID)
}

func searchHistoryKey(userUUID string) string {
	return fmt.Sprintf("search_history:%s", userUUID)
}

// RedisStore is a go-redis implementation of Store.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore constructs a RedisStore with the given entry TTL.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Get unmarshals the cached value into dest. The bool reports a hit.
func (s *RedisStore) Get(ctx context.Context, key string, dest any) (bool, error) {
	payload, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		return false, err
	}
	return true, nil
}

// Set stores the value with the configured TTL.
func (s *RedisStore) Set(ctx context.Context, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, payload, s.ttl).Err()
}

// Invalidate deletes the keys. Best effort: the caller logs failures and
// moves on, TTL expiry is the backstop.
func (s *RedisStore) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}

// PushSearchHistory records a query at the head of the user's history,
// deduplicated and capped.
func (s *RedisStore) PushSearchHistory(ctx context.Context, userUUID, query string) error {
	key := searchHistoryKey(userUUID)
	pipe := s.client.Pipeline()
	pipe.LRem(ctx, key, 0, query)
	pipe.LPush(ctx, key, query)
	pipe.LTrim(ctx, key, 0, searchHistorySize-1)
	_, err := pipe.Exec(ctx)
	return err
}

// SearchHistory returns the user's recent queries, newest first.
func (s *RedisStore) SearchHistory(ctx context.Context, userUUID string) ([]string, error) {
	return s.client.LRange(ctx, searchHistoryKey(userUUID), 0, searchHistorySize-1).Result()
}
