package services

import (
	"context"
	"encoding/json"

	"github.com/budokan/backend/domain"
	"github.com/budokan/backend/internal/infrastructure/buffer"
	"github.com/budokan/backend/usecase"
)

type BufferBridge struct {
	processor *BufferProcessor
}

func NewBufferBridge(processor *BufferProcessor) *BufferBridge {
	return &BufferBridge{processor: processor}
}

func (b *BufferBridge) BufferProgress(ctx context.Context, record *domain.WatchProgress) error {
	if b.processor == nil || record == nil {
		return domain.ErrInvalidPayload
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return err
	}
	item := buffer.Item{
		SessionID: record.SessionID,
		UserID:    record.UserID,
		Entity:    buffer.EntityProgress,
		Operation: buffer.OperationUpsert,
		Data:      payload,
		Priority:  4,
	}
	return b.processor.BufferOperation(ctx, item)
}

func (b *BufferBridge) BufferAttendanceJoin(ctx context.Context, join domain.AttendanceJoin) error {
	if b.processor == nil {
		return domain.ErrInvalidPayload
	}
	payload, err := json.Marshal(join)
	if err != nil {
		return err
	}
	item := buffer.Item{
		SessionID: join.SessionID,
		UserID:    join.UserID,
		Entity:    buffer.EntityAttendance,
		Operation: buffer.OperationJoin,
		Data:      payload,
		Priority:  3,
	}
	return b.processor.BufferOperation(ctx, item)
}

func (b *BufferBridge) BufferAttendanceIncrement(ctx context.Context, inc domain.AttendanceIncrement) error {
	if b.processor == nil {
		return domain.ErrInvalidPayload
	}
	payload, err := json.Marshal(inc)
	if err != nil {
		return err
	}
	item := buffer.Item{
		SessionID: inc.SessionID,
		UserID:    inc.UserID,
		Entity:    buffer.EntityAttendance,
		Operation: buffer.OperationIncrement,
		Data:      payload,
		Priority:  3,
	}
	return b.processor.BufferOperation(ctx, item)
}

var _ usecase.OperationBuffer = (*BufferBridge)(nil)
