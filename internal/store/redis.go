package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kwabenadarko/navicare/internal/providers"
)

const (
	savedKeyPrefix        = "navicare:saved:"
	subscriptionKeyPrefix = "navicare:subscription:"
	defaultRecordTTL      = 90 * 24 * time.Hour
)

// RedisStore persists user records as JSON blobs with a sliding TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = defaultRecordTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) SavedProviders(ctx context.Context, userID string) ([]providers.Record, error) {
	key := savedKeyPrefix + userID
	val, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get saved providers: %w", err)
	}

	var list []providers.Record
	if err := json.Unmarshal([]byte(val), &list); err != nil {
		return nil, fmt.Errorf("decode saved providers: %w", err)
	}
	return list, nil
}

func (s *RedisStore) ToggleSaved(ctx context.Context, userID string, rec providers.Record) (bool, error) {
	key := savedKeyPrefix + userID

	var saved bool
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		var list []providers.Record
		val, err := tx.Get(ctx, key).Result()
		if err != nil && err != redis.Nil {
			return err
		}
		if err == nil {
			if err := json.Unmarshal([]byte(val), &list); err != nil {
				return fmt.Errorf("decode saved providers: %w", err)
			}
		}

		list, saved = toggle(list, rec)
		payload, err := json.Marshal(list)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, s.ttl)
			return nil
		})
		return err
	}, key)
	if err != nil {
		return false, fmt.Errorf("toggle saved provider: %w", err)
	}
	return saved, nil
}

func (s *RedisStore) Subscription(ctx context.Context, userID string) (*Subscription, error) {
	val, err := s.client.Get(ctx, subscriptionKeyPrefix+userID).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get subscription: %w", err)
	}

	var sub Subscription
	if err := json.Unmarshal([]byte(val), &sub); err != nil {
		return nil, fmt.Errorf("decode subscription: %w", err)
	}
	return &sub, nil
}

func (s *RedisStore) SaveSubscription(ctx context.Context, userID string, sub Subscription) error {
	payload, err := json.Marshal(sub)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, subscriptionKeyPrefix+userID, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("save subscription: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
