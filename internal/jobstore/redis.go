package jobstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/jchen-labs/media-summary/internal/models"
)

// RedisStore keeps job records as JSON values under job:<id>, with a
// sorted set "jobs" (scored by creation time) for recency listing.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func jobKey(jobID string) string {
	return fmt.Sprintf("job:%s", jobID)
}

func (s *RedisStore) Save(ctx context.Context, rec *models.PipelineResult) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal job record: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, jobKey(rec.JobID), data, 0)
	pipe.ZAdd(ctx, "jobs", redis.Z{Score: float64(rec.CreatedAt.Unix()), Member: rec.JobID})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save job record: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, jobID string) (*models.PipelineResult, error) {
	data, err := s.client.Get(ctx, jobKey(jobID)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job record: %w", err)
	}

	var rec models.PipelineResult
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parse job record: %w", err)
	}
	return &rec, nil
}

func (s *RedisStore) List(ctx context.Context, limit int) ([]*models.PipelineResult, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}

	ids, err := s.client.ZRevRange(ctx, "jobs", 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("list job ids: %w", err)
	}

	out := make([]*models.PipelineResult, 0, len(ids))
	for _, id := range ids {
		rec, err := s.Get(ctx, id)
		if err != nil {
			// A record expired or deleted between ZRevRange and Get.
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *RedisStore) Delete(ctx context.Context, jobID string) error {
	exists, err := s.client.Exists(ctx, jobKey(jobID)).Result()
	if err != nil {
		return fmt.Errorf("delete job record: %w", err)
	}
	if exists == 0 {
		return ErrNotFound
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, jobKey(jobID))
	pipe.ZRem(ctx, "jobs", jobID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete job record: %w", err)
	}
	return nil
}

func (s *RedisStore) CheckQuota(ctx context.Context, userID string) (Quota, error) {
	all, err := s.List(ctx, 0)
	if err != nil {
		return Quota{}, err
	}

	consumed := 0
	for _, rec := range all {
		if rec.UserID == userID {
			consumed += rec.CreditsConsumed
		}
	}
	return quotaFor(userID, consumed), nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
