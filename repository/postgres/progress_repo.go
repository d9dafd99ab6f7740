package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/budokan/backend/domain"
	"github.com/budokan/backend/repository"
)

type progressRepository struct {
	pool *pgxpool.Pool
}

// NewProgressRepository returns a Postgres-backed implementation of ProgressRepository.
func NewProgressRepository(pool *pgxpool.Pool) repository.ProgressRepository {
	return &progressRepository{pool: pool}
}

func (r *progressRepository) Get(ctx context.Context, key repository.ProgressKey) (*domain.WatchProgress, error) {
	const query = `
	SELECT id, session_id, user_id, last_watched_position, total_watch_time, completed, updated_at
	FROM watch_progress
	WHERE session_id = $1 AND user_id = $2
	`
	row := r.pool.QueryRow(ctx, query, key.SessionID, key.UserID)

	var record domain.WatchProgress
	if err := row.Scan(
		&record.ID,
		&record.SessionID,
		&record.UserID,
		&record.LastWatchedPosition,
		&record.TotalWatchTime,
		&record.Completed,
		&record.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (r *progressRepository) Put(ctx context.Context, record *domain.WatchProgress) error {
	if record == nil || record.SessionID == "" || record.UserID == "" {
		return domain.ErrInvalidPayload
	}

	// The merge above this layer already computed the monotonic total, but
	// GREATEST guards the invariant against racing writers too.
	const query = `
	INSERT INTO watch_progress (id, session_id, user_id, last_watched_position, total_watch_time, completed, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (session_id, user_id) DO UPDATE
	SET last_watched_position = EXCLUDED.last_watched_position,
		total_watch_time = GREATEST(watch_progress.total_watch_time, EXCLUDED.total_watch_time),
		completed = EXCLUDED.completed,
		updated_at = EXCLUDED.updated_at
	`
	_, err := r.pool.Exec(ctx, query,
		record.ID,
		record.SessionID,
		record.UserID,
		record.LastWatchedPosition,
		record.TotalWatchTime,
		record.Completed,
		record.UpdatedAt,
	)
	return err
}

func (r *progressRepository) ListBySession(ctx context.Context, sessionID string, limit int) ([]domain.WatchProgress, error) {
	const query = `
	SELECT id, session_id, user_id, last_watched_position, total_watch_time, completed, updated_at
	FROM watch_progress
	WHERE session_id = $1
	ORDER BY updated_at DESC
	LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, sessionID, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.WatchProgress
	for rows.Next() {
		var record domain.WatchProgress
		if err := rows.Scan(
			&record.ID,
			&record.SessionID,
			&record.UserID,
			&record.LastWatchedPosition,
			&record.TotalWatchTime,
			&record.Completed,
			&record.UpdatedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}
