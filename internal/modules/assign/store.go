// README: Proposal-run cache backed by Redis.
package assign

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const runKeyPrefix = "dispatch:run:%s"

type RedisStore struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{redis: client, ttl: ttl}
}

func (s *RedisStore) SaveRun(ctx context.Context, runID string, proposals []Proposal) error {
	payload, err := json.Marshal(proposals)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, runKey(runID), payload, s.ttl).Err()
}

func (s *RedisStore) GetRun(ctx context.Context, runID string) ([]Proposal, error) {
	val, err := s.redis.Get(ctx, runKey(runID)).Bytes()
	if err == redis.Nil {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}
	var proposals []Proposal
	if err := json.Unmarshal(val, &proposals); err != nil {
		return nil, err
	}
	return proposals, nil
}

func (s *RedisStore) DeleteRun(ctx context.Context, runID string) error {
	return s.redis.Del(ctx, runKey(runID)).Err()
}

func runKey(runID string) string {
	return fmt.Sprintf(runKeyPrefix, runID)
}
