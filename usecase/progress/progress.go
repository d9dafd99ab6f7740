package progress

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/budokan/backend/domain"
	"github.com/budokan/backend/repository"
	"github.com/budokan/backend/usecase"
)

type UseCase struct {
	records repository.ProgressRepository
	buffer  usecase.OperationBuffer
	logger  *zap.Logger
	now     func() time.Time
}

func New(records repository.ProgressRepository, buffer usecase.OperationBuffer, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		records: records,
		buffer:  buffer,
		logger:  logger,
		now:     time.Now,
	}
}

// Get returns the stored record for (sessionID, userID), or the zeroed
// default when nothing has been written. A missing key is not an error.
func (uc *UseCase) Get(ctx context.Context, sessionID, userID string) (domain.WatchProgress, error) {
	if userID == "" {
		return domain.WatchProgress{}, domain.WrapError(domain.ErrCodeInvalid, "userId is required", nil)
	}
	record, err := uc.records.Get(ctx, repository.ProgressKey{SessionID: sessionID, UserID: userID})
	if err != nil {
		return domain.WatchProgress{}, err
	}
	if record == nil {
		return domain.ZeroProgress(sessionID, userID), nil
	}
	return *record, nil
}

// Record validates the update, merges it against the stored record and
// persists the result. When the store is unreachable the merged record is
// buffered for replay; the caller still gets the merged record back so the
// client can continue.
func (uc *UseCase) Record(ctx context.Context, update domain.ProgressUpdate) (*domain.WatchProgress, error) {
	if err := update.Validate(); err != nil {
		return nil, err
	}

	key := repository.ProgressKey{SessionID: update.SessionID, UserID: update.UserID}
	existing, err := uc.records.Get(ctx, key)
	if err != nil {
		uc.logger.Warn("progress read failed before merge", zap.Error(err))
		existing = nil
	}

	merged := domain.MergeProgress(existing, update, uc.now())
	if err := uc.records.Put(ctx, &merged); err != nil {
		if uc.shouldBuffer(ctx, &merged) {
			return &merged, nil
		}
		return nil, err
	}
	return &merged, nil
}

// SessionProgress lists stored records for one session, most recent first.
func (uc *UseCase) SessionProgress(ctx context.Context, sessionID string, limit int) ([]domain.WatchProgress, error) {
	return uc.records.ListBySession(ctx, sessionID, limit)
}

func (uc *UseCase) shouldBuffer(ctx context.Context, record *domain.WatchProgress) bool {
	if uc.buffer == nil {
		return false
	}
	if err := uc.buffer.BufferProgress(ctx, record); err != nil {
		uc.logger.Error("failed to buffer progress write",
			zap.String("session_id", record.SessionID),
			zap.Error(err))
		return false
	}
	uc.logger.Warn("progress write buffered",
		zap.String("session_id", record.SessionID),
		zap.String("user_id", record.UserID))
	return true
}
