package repository

import (
	"context"

	"github.com/budokan/backend/domain"
)

// AttendanceRepository persists session attendance. RecordJoin is an upsert:
// a repeated join keeps the original joined_at. AddWatchTime adds the
// increment to the stored total.
type AttendanceRepository interface {
	Get(ctx context.Context, sessionID, userID string) (*domain.Attendance, error)
	RecordJoin(ctx context.Context, join domain.AttendanceJoin) error
	AddWatchTime(ctx context.Context, inc domain.AttendanceIncrement) error
}

// PresenceRepository tracks which viewers are currently on a live session.
// Entries expire on their own; Touch refreshes the viewer's TTL.
type PresenceRepository interface {
	Touch(ctx context.Context, sessionID, userID string) error
	Leave(ctx context.Context, sessionID, userID string) error
	Count(ctx context.Context, sessionID string) (int, error)
}
