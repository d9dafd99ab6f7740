package usecase

import (
	"context"

	"github.com/budokan/backend/domain"
)

// SessionGateway reads session metadata from the core API.
type SessionGateway interface {
	GetSession(ctx context.Context, sessionID string) (*domain.TrainingSession, error)
	RelatedSessions(ctx context.Context, query domain.RelatedQuery) ([]domain.TrainingSession, error)
}

// AccessGateway reads per-event access facts from the core API.
type AccessGateway interface {
	CheckLiveAccess(ctx context.Context, sessionID, userID string) (*domain.EventAccess, error)
	CheckVODAccess(ctx context.Context, sessionID, userID string) (*domain.EventAccess, error)
}

// StreamResolver obtains signed playback URLs from the core API.
type StreamResolver interface {
	ResolveStreamURL(ctx context.Context, recordingID, sessionID string) (string, error)
}
