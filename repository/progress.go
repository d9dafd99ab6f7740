package repository

import (
	"context"

	"github.com/budokan/backend/domain"
)

// ProgressKey identifies one viewer's progress on one session.
type ProgressKey struct {
	SessionID string
	UserID    string
}

// ProgressRepository stores watch-progress records. A missing key is a
// normal state, so Get returns (nil, nil) when nothing has been written yet.
// Put overwrites the whole record; the monotonic merge happens above this
// interface.
type ProgressRepository interface {
	Get(ctx context.Context, key ProgressKey) (*domain.WatchProgress, error)
	Put(ctx context.Context, record *domain.WatchProgress) error
	ListBySession(ctx context.Context, sessionID string, limit int) ([]domain.WatchProgress, error)
}
