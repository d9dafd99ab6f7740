package usecase

import (
	"context"

	"github.com/budokan/backend/domain"
)

// OperationBuffer abstracts the write-behind buffer so use cases stay
// storage-agnostic.
type OperationBuffer interface {
	BufferProgress(ctx context.Context, record *domain.WatchProgress) error
	BufferAttendanceJoin(ctx context.Context, join domain.AttendanceJoin) error
	BufferAttendanceIncrement(ctx context.Context, inc domain.AttendanceIncrement) error
}
