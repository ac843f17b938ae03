package usagelog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	defaultListKey = "rotation:usage"
	defaultMaxLen  = 10000
)

// RedisSink appends usage records to a capped Redis list, newest first.
type RedisSink struct {
	client  *redis.Client
	listKey string
	maxLen  int64
}

// NewRedisSink creates a Redis-backed usage log.
func NewRedisSink(addr, password string, db int, listKey string, maxLen int64) *RedisSink {
	if listKey == "" {
		listKey = defaultListKey
	}
	if maxLen <= 0 {
		maxLen = defaultMaxLen
	}
	return &RedisSink{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
		listKey: listKey,
		maxLen:  maxLen,
	}
}

// Write pushes one record and trims the list to its cap.
func (s *RedisSink) Write(ctx context.Context, rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("usagelog: marshal: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, s.listKey, data)
	pipe.LTrim(ctx, s.listKey, 0, s.maxLen-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("usagelog: push: %w", err)
	}
	return nil
}

// Ping checks the Redis connection.
func (s *RedisSink) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (s *RedisSink) Close() error {
	return s.client.Close()
}
