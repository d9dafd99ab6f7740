package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/budokan/backend/domain"
	"github.com/budokan/backend/repository"
)

type attendanceRepository struct {
	pool *pgxpool.Pool
}

// NewAttendanceRepository returns a Postgres-backed implementation of AttendanceRepository.
func NewAttendanceRepository(pool *pgxpool.Pool) repository.AttendanceRepository {
	return &attendanceRepository{pool: pool}
}

func (r *attendanceRepository) Get(ctx context.Context, sessionID, userID string) (*domain.Attendance, error) {
	const query = `
	SELECT session_id, user_id, joined_at, watch_time, last_activity_at
	FROM attendance
	WHERE session_id = $1 AND user_id = $2
	`
	row := r.pool.QueryRow(ctx, query, sessionID, userID)

	var record domain.Attendance
	if err := row.Scan(
		&record.SessionID,
		&record.UserID,
		&record.JoinedAt,
		&record.WatchTime,
		&record.LastActivityAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAttendanceNotFound
		}
		return nil, err
	}
	return &record, nil
}

func (r *attendanceRepository) RecordJoin(ctx context.Context, join domain.AttendanceJoin) error {
	if join.SessionID == "" || join.UserID == "" {
		return domain.ErrInvalidPayload
	}
	joinedAt := join.JoinedAt
	if joinedAt.IsZero() {
		joinedAt = time.Now()
	}

	// Re-joining keeps the first joined_at; only activity moves.
	const query = `
	INSERT INTO attendance (session_id, user_id, joined_at, watch_time, last_activity_at)
	VALUES ($1, $2, $3, 0, NOW())
	ON CONFLICT (session_id, user_id) DO UPDATE
	SET last_activity_at = NOW()
	`
	_, err := r.pool.Exec(ctx, query, join.SessionID, join.UserID, joinedAt)
	return err
}

func (r *attendanceRepository) AddWatchTime(ctx context.Context, inc domain.AttendanceIncrement) error {
	if inc.SessionID == "" || inc.UserID == "" {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE attendance
	SET watch_time = watch_time + $3,
		last_activity_at = NOW()
	WHERE session_id = $1 AND user_id = $2
	`
	tag, err := r.pool.Exec(ctx, query, inc.SessionID, inc.UserID, inc.WatchTimeIncrement)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAttendanceNotFound
	}
	return nil
}
