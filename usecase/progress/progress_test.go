package progress

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/budokan/backend/domain"
	"github.com/budokan/backend/repository"
	"github.com/budokan/backend/repository/memory"
)

type failingRepo struct {
	inner  repository.ProgressRepository
	putErr error
}

func (r *failingRepo) Get(ctx context.Context, key repository.ProgressKey) (*domain.WatchProgress, error) {
	return r.inner.Get(ctx, key)
}

func (r *failingRepo) Put(ctx context.Context, record *domain.WatchProgress) error {
	if r.putErr != nil {
		return r.putErr
	}
	return r.inner.Put(ctx, record)
}

func (r *failingRepo) ListBySession(ctx context.Context, sessionID string, limit int) ([]domain.WatchProgress, error) {
	return r.inner.ListBySession(ctx, sessionID, limit)
}

type recordingBuffer struct {
	progress []domain.WatchProgress
	err      error
}

func (b *recordingBuffer) BufferProgress(ctx context.Context, record *domain.WatchProgress) error {
	if b.err != nil {
		return b.err
	}
	b.progress = append(b.progress, *record)
	return nil
}

func (b *recordingBuffer) BufferAttendanceJoin(ctx context.Context, join domain.AttendanceJoin) error {
	return nil
}

func (b *recordingBuffer) BufferAttendanceIncrement(ctx context.Context, inc domain.AttendanceIncrement) error {
	return nil
}

func TestGet_DefaultsToZero(t *testing.T) {
	uc := New(memory.NewProgressRepository(), nil, nil)

	record, err := uc.Get(context.Background(), "s1", "u1")
	require.NoError(t, err)
	assert.Equal(t, "s1", record.SessionID)
	assert.Equal(t, "u1", record.UserID)
	assert.Equal(t, float64(0), record.LastWatchedPosition)
	assert.Equal(t, float64(0), record.TotalWatchTime)
}

func TestGet_RequiresUser(t *testing.T) {
	uc := New(memory.NewProgressRepository(), nil, nil)

	_, err := uc.Get(context.Background(), "s1", "")
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}

func TestRecord_MergeSequence(t *testing.T) {
	repo := memory.NewProgressRepository()
	uc := New(repo, nil, nil)
	ctx := context.Background()

	first, err := uc.Record(ctx, domain.ProgressUpdate{
		SessionID:           "s1",
		UserID:              "u1",
		LastWatchedPosition: 120,
		TotalWatchTime:      300,
	})
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)

	// A stale client reports a lower total; position rewinds, total holds.
	second, err := uc.Record(ctx, domain.ProgressUpdate{
		SessionID:           "s1",
		UserID:              "u1",
		LastWatchedPosition: 90,
		TotalWatchTime:      200,
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, float64(90), second.LastWatchedPosition)
	assert.Equal(t, float64(300), second.TotalWatchTime)

	stored, err := uc.Get(ctx, "s1", "u1")
	require.NoError(t, err)
	assert.Equal(t, float64(90), stored.LastWatchedPosition)
	assert.Equal(t, float64(300), stored.TotalWatchTime)
}

func TestRecord_RejectsInvalidWithoutWriting(t *testing.T) {
	repo := memory.NewProgressRepository()
	uc := New(repo, nil, nil)
	ctx := context.Background()

	_, err := uc.Record(ctx, domain.ProgressUpdate{
		SessionID:           "s1",
		UserID:              "u1",
		LastWatchedPosition: -5,
	})
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	record, err := uc.Get(ctx, "s1", "u1")
	require.NoError(t, err)
	assert.Equal(t, float64(0), record.LastWatchedPosition)
}

func TestRecord_BuffersWhenStoreUnavailable(t *testing.T) {
	buf := &recordingBuffer{}
	uc := New(&failingRepo{
		inner:  memory.NewProgressRepository(),
		putErr: errors.New("connection refused"),
	}, buf, nil)

	merged, err := uc.Record(context.Background(), domain.ProgressUpdate{
		SessionID:           "s1",
		UserID:              "u1",
		LastWatchedPosition: 42,
		TotalWatchTime:      60,
	})
	require.NoError(t, err)
	require.NotNil(t, merged)
	require.Len(t, buf.progress, 1)
	assert.Equal(t, float64(42), buf.progress[0].LastWatchedPosition)
}

func TestRecord_SurfacesErrorWhenBufferAlsoFails(t *testing.T) {
	uc := New(&failingRepo{
		inner:  memory.NewProgressRepository(),
		putErr: errors.New("connection refused"),
	}, &recordingBuffer{err: errors.New("disk full")}, nil)

	_, err := uc.Record(context.Background(), domain.ProgressUpdate{
		SessionID: "s1",
		UserID:    "u1",
	})
	require.Error(t, err)
}

func TestRecord_TotalNeverShrinksAcrossManyWrites(t *testing.T) {
	uc := New(memory.NewProgressRepository(), nil, nil)
	uc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	totals := []float64{50, 300, 120, 299, 301, 10}
	high := float64(0)
	for _, total := range totals {
		record, err := uc.Record(ctx, domain.ProgressUpdate{
			SessionID:      "s1",
			UserID:         "u1",
			TotalWatchTime: total,
		})
		require.NoError(t, err)
		if total > high {
			high = total
		}
		assert.Equal(t, high, record.TotalWatchTime)
	}
}
