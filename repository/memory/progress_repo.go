package memory

import (
	"context"
	"sync"

	"github.com/budokan/backend/domain"
	"github.com/budokan/backend/repository"
)

// ProgressRepository is a process-local ProgressRepository. It backs tests
// and degraded deployments; the postgres implementation is the durable one.
type ProgressRepository struct {
	mu      sync.RWMutex
	records map[repository.ProgressKey]domain.WatchProgress
}

func NewProgressRepository() *ProgressRepository {
	return &ProgressRepository{
		records: make(map[repository.ProgressKey]domain.WatchProgress),
	}
}

func (r *ProgressRepository) Get(ctx context.Context, key repository.ProgressKey) (*domain.WatchProgress, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.records[key]
	if !ok {
		return nil, nil
	}
	copied := record
	return &copied, nil
}

func (r *ProgressRepository) Put(ctx context.Context, record *domain.WatchProgress) error {
	if record == nil || record.SessionID == "" || record.UserID == "" {
		return domain.ErrInvalidPayload
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	key := repository.ProgressKey{SessionID: record.SessionID, UserID: record.UserID}
	r.records[key] = *record
	return nil
}

func (r *ProgressRepository) ListBySession(ctx context.Context, sessionID string, limit int) ([]domain.WatchProgress, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.WatchProgress
	for key, record := range r.records {
		if key.SessionID != sessionID {
			continue
		}
		out = append(out, record)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

var _ repository.ProgressRepository = (*ProgressRepository)(nil)
