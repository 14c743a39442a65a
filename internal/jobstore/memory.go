package jobstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/jchen-labs/media-summary/internal/models"
)

// MemoryStore keeps job records in a map. Reads return deep copies so
// callers can never mutate stored state through a returned pointer.
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]*models.PipelineResult
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: make(map[string]*models.PipelineResult)}
}

func copyRecord(rec *models.PipelineResult) (*models.PipelineResult, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("copy job record: %w", err)
	}
	var out models.PipelineResult
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("copy job record: %w", err)
	}
	return &out, nil
}

func (s *MemoryStore) Save(ctx context.Context, rec *models.PipelineResult) error {
	stored, err := copyRecord(rec)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[rec.JobID] = stored
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, jobID string) (*models.PipelineResult, error) {
	s.mu.RLock()
	rec, ok := s.jobs[jobID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return copyRecord(rec)
}

func (s *MemoryStore) List(ctx context.Context, limit int) ([]*models.PipelineResult, error) {
	s.mu.RLock()
	all := make([]*models.PipelineResult, 0, len(s.jobs))
	for _, rec := range s.jobs {
		all = append(all, rec)
	}
	s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}

	out := make([]*models.PipelineResult, 0, len(all))
	for _, rec := range all {
		cp, err := copyRecord(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, cp)
	}
	return out, nil
}

func (s *MemoryStore) Delete(ctx context.Context, jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[jobID]; !ok {
		return ErrNotFound
	}
	delete(s.jobs, jobID)
	return nil
}

func (s *MemoryStore) CheckQuota(ctx context.Context, userID string) (Quota, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	consumed := 0
	for _, rec := range s.jobs {
		if rec.UserID == userID {
			consumed += rec.CreditsConsumed
		}
	}
	return quotaFor(userID, consumed), nil
}

func (s *MemoryStore) Close() error {
	return nil
}
