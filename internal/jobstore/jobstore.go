// Package jobstore persists pipeline job records. Three backends share
// one interface: in-memory for tests and single-process runs, SQLite for
// durable local storage, Redis for multi-process deployments.
package jobstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/jchen-labs/media-summary/internal/config"
	"github.com/jchen-labs/media-summary/internal/models"
)

// ErrNotFound is returned by Get for unknown job ids.
var ErrNotFound = errors.New("job not found")

// defaultCreditAllowance is the per-user credit budget quota checks
// count against.
const defaultCreditAllowance = 100

// Quota reports a user's remaining credit budget.
type Quota struct {
	UserID    string `json:"user_id"`
	Consumed  int    `json:"consumed"`
	Remaining int    `json:"remaining"`
	Allowed   bool   `json:"allowed"`
}

func quotaFor(userID string, consumed int) Quota {
	remaining := defaultCreditAllowance - consumed
	if remaining < 0 {
		remaining = 0
	}
	return Quota{
		UserID:    userID,
		Consumed:  consumed,
		Remaining: remaining,
		Allowed:   remaining > 0,
	}
}

// Store is the job record backend. Save upserts: it is called once when
// a job is accepted and again after every status transition.
type Store interface {
	Save(ctx context.Context, rec *models.PipelineResult) error
	Get(ctx context.Context, jobID string) (*models.PipelineResult, error)
	List(ctx context.Context, limit int) ([]*models.PipelineResult, error)
	Delete(ctx context.Context, jobID string) error
	CheckQuota(ctx context.Context, userID string) (Quota, error)
	Close() error
}

// Open builds the Store selected by job_store.backend.
func Open(cfg config.JobStoreConfig, dbPath string) (Store, error) {
	switch cfg.Backend {
	case "memory", "":
		return NewMemoryStore(), nil
	case "sqlite":
		return NewSQLiteStore(dbPath)
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		return NewRedisStore(client), nil
	}
	return nil, fmt.Errorf("unknown job store backend %q", cfg.Backend)
}
