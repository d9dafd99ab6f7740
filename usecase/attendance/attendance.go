package attendance

import (
	"context"

	"go.uber.org/zap"

	"github.com/budokan/backend/domain"
	"github.com/budokan/backend/repository"
	"github.com/budokan/backend/usecase"
)

type UseCase struct {
	attendance repository.AttendanceRepository
	presence   repository.PresenceRepository
	buffer     usecase.OperationBuffer
	logger     *zap.Logger
}

func New(attendance repository.AttendanceRepository, presence repository.PresenceRepository, buffer usecase.OperationBuffer, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		attendance: attendance,
		presence:   presence,
		buffer:     buffer,
		logger:     logger,
	}
}

// Join records that a viewer joined a session. The durable row is the
// source of truth; the presence entry only feeds the live viewer count and
// is best-effort.
func (uc *UseCase) Join(ctx context.Context, join domain.AttendanceJoin) error {
	if err := join.Validate(); err != nil {
		return err
	}

	if err := uc.attendance.RecordJoin(ctx, join); err != nil {
		if !uc.bufferJoin(ctx, join) {
			return err
		}
	}
	uc.touchPresence(ctx, join.SessionID, join.UserID)
	return nil
}

// AddWatchTime accumulates watch time onto an existing attendance record
// and refreshes the viewer's presence entry.
func (uc *UseCase) AddWatchTime(ctx context.Context, inc domain.AttendanceIncrement) error {
	if err := inc.Validate(); err != nil {
		return err
	}

	if err := uc.attendance.AddWatchTime(ctx, inc); err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return err
		}
		if !uc.bufferIncrement(ctx, inc) {
			return err
		}
	}
	uc.touchPresence(ctx, inc.SessionID, inc.UserID)
	return nil
}

// Get returns a viewer's attendance record for a session.
func (uc *UseCase) Get(ctx context.Context, sessionID, userID string) (*domain.Attendance, error) {
	return uc.attendance.Get(ctx, sessionID, userID)
}

// Leave drops the viewer's presence entry. The durable attendance row stays.
func (uc *UseCase) Leave(ctx context.Context, sessionID, userID string) error {
	if uc.presence == nil {
		return nil
	}
	return uc.presence.Leave(ctx, sessionID, userID)
}

// ViewerCount reports how many viewers are currently present on a session.
func (uc *UseCase) ViewerCount(ctx context.Context, sessionID string) (int, error) {
	if uc.presence == nil {
		return 0, nil
	}
	return uc.presence.Count(ctx, sessionID)
}

func (uc *UseCase) touchPresence(ctx context.Context, sessionID, userID string) {
	if uc.presence == nil {
		return
	}
	if err := uc.presence.Touch(ctx, sessionID, userID); err != nil {
		uc.logger.Warn("presence touch failed",
			zap.String("session_id", sessionID),
			zap.Error(err))
	}
}

func (uc *UseCase) bufferJoin(ctx context.Context, join domain.AttendanceJoin) bool {
	if uc.buffer == nil {
		return false
	}
	if err := uc.buffer.BufferAttendanceJoin(ctx, join); err != nil {
		uc.logger.Error("failed to buffer attendance join", zap.Error(err))
		return false
	}
	uc.logger.Warn("attendance join buffered", zap.String("session_id", join.SessionID))
	return true
}

func (uc *UseCase) bufferIncrement(ctx context.Context, inc domain.AttendanceIncrement) bool {
	if uc.buffer == nil {
		return false
	}
	if err := uc.buffer.BufferAttendanceIncrement(ctx, inc); err != nil {
		uc.logger.Error("failed to buffer attendance increment", zap.Error(err))
		return false
	}
	uc.logger.Warn("attendance increment buffered", zap.String("session_id", inc.SessionID))
	return true
}
