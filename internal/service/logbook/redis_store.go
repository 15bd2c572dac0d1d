package logbook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/zhouzirui/crystal-voice/backend/internal/model/turnlog"
)

// DefaultLogKey is the list key turn records are pushed to.
const DefaultLogKey = "conversationLogs"

// RedisStore keeps the turn log in a single Redis list of JSON documents.
type RedisStore struct {
	redis *redis.Client
	key   string
}

// NewRedisClient parses a redis:// URL.
func NewRedisClient(rawURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("logbook: parse redis url: %w", err)
	}
	return redis.NewClient(opts), nil
}

func NewRedisStore(client *redis.Client, key string) *RedisStore {
	if key == "" {
		key = DefaultLogKey
	}
	return &RedisStore{redis: client, key: key}
}

func (s *RedisStore) Append(ctx context.Context, rec turnlog.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("logbook: marshal turn record: %w", err)
	}
	if err := s.redis.RPush(ctx, s.key, data).Err(); err != nil {
		return fmt.Errorf("logbook: append turn record: %w", err)
	}
	return nil
}

// List skips entries that no longer decode.
func (s *RedisStore) List(ctx context.Context) ([]turnlog.Record, error) {
	raw, err := s.redis.LRange(ctx, s.key, 0, -1).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []turnlog.Record{}, nil
		}
		return nil, fmt.Errorf("logbook: list turn records: %w", err)
	}

	out := make([]turnlog.Record, 0, len(raw))
	for _, item := range raw {
		var rec turnlog.Record
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.redis.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("logbook: clear turn records: %w", err)
	}
	return nil
}
