package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenStore keeps per-tab session tokens in Redis so any instance can
// validate a tab's session URL. Keys expire after ttl.
type TokenStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewTokenStore(client *redis.Client, ttl time.Duration) *TokenStore {
	return &TokenStore{client: client, ttl: ttl}
}

func (s *TokenStore) Get(ctx context.Context, tabID string) (string, bool, error) {
	token, err := s.client.Get(ctx, s.key(tabID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return token, true, nil
}

func (s *TokenStore) Set(ctx context.Context, tabID, token string) error {
	return s.client.Set(ctx, s.key(tabID), token, s.ttl).Err()
}

func (s *TokenStore) Clear(ctx context.Context, tabID string) error {
	return s.client.Del(ctx, s.key(tabID)).Err()
}

func (s *TokenStore) key(tabID string) string {
	return "quiz:tab:" + tabID + ":token"
}
