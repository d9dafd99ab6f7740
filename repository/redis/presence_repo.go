package redis

import (
	"context"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/budokan/backend/repository"
)

type presenceRepository struct {
	client *redislib.Client
	prefix string
	ttl    time.Duration
}

// NewPresenceRepository creates a Redis-backed live presence repository.
// Each viewer gets a key that expires unless refreshed, so the per-session
// count decays on its own when clients vanish without a leave.
func NewPresenceRepository(client *redislib.Client, ttl time.Duration) repository.PresenceRepository {
	if ttl <= 0 {
		ttl = 90 * time.Second
	}
	return &presenceRepository{
		client: client,
		prefix: "presence:",
		ttl:    ttl,
	}
}

func (r *presenceRepository) Touch(ctx context.Context, sessionID, userID string) error {
	return r.client.Set(ctx, r.key(sessionID, userID), time.Now().Unix(), r.ttl).Err()
}

func (r *presenceRepository) Leave(ctx context.Context, sessionID, userID string) error {
	return r.client.Del(ctx, r.key(sessionID, userID)).Err()
}

func (r *presenceRepository) Count(ctx context.Context, sessionID string) (int, error) {
	pattern := fmt.Sprintf("%s%s:*", r.prefix, sessionID)
	var cursor uint64
	count := 0
	for {
		keys, next, err := r.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return 0, err
		}
		count += len(keys)
		cursor = next
		if cursor == 0 {
			return count, nil
		}
	}
}

func (r *presenceRepository) key(sessionID, userID string) string {
	return fmt.Sprintf("%s%s:%s", r.prefix, sessionID, userID)
}
