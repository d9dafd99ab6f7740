package buffer

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "buffer.db"), "")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_EnqueueAndDrainOrder(t *testing.T) {
	store := openTestStore(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// Same priority drains in arrival order; higher priority number drains last.
	require.NoError(t, store.Enqueue(Item{ID: "late", Entity: EntityProgress, Operation: OperationUpsert, Priority: 3, Timestamp: base.Add(time.Minute)}))
	require.NoError(t, store.Enqueue(Item{ID: "early", Entity: EntityProgress, Operation: OperationUpsert, Priority: 3, Timestamp: base}))
	require.NoError(t, store.Enqueue(Item{ID: "urgent", Entity: EntityAttendance, Operation: OperationJoin, Priority: 1, Timestamp: base.Add(2 * time.Minute)}))

	items, err := store.GetBatch(10)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "urgent", items[0].ID)
	assert.Equal(t, "early", items[1].ID)
	assert.Equal(t, "late", items[2].ID)
}

func TestStore_RemoveAfterDrain(t *testing.T) {
	store := openTestStore(t)

	payload, err := json.Marshal(map[string]string{"session_id": "s1"})
	require.NoError(t, err)
	require.NoError(t, store.Enqueue(Item{
		SessionID: "s1",
		UserID:    "u1",
		Entity:    EntityProgress,
		Operation: OperationUpsert,
		Data:      payload,
	}))

	items, err := store.GetBatch(10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.NotEmpty(t, items[0].ID)

	require.NoError(t, store.Remove(items[0]))

	size, err := store.Size()
	require.NoError(t, err)
	assert.Zero(t, size)
}

func TestStore_RequeueBumpsTimestamp(t *testing.T) {
	store := openTestStore(t)
	old := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Enqueue(Item{ID: "retry-me", Entity: EntityProgress, Operation: OperationUpsert, Timestamp: old}))

	items, err := store.GetBatch(1)
	require.NoError(t, err)
	require.Len(t, items, 1)

	require.NoError(t, store.Remove(items[0]))
	require.NoError(t, store.Requeue(items[0]))

	requeued, err := store.GetBatch(1)
	require.NoError(t, err)
	require.Len(t, requeued, 1)
	assert.Equal(t, "retry-me", requeued[0].ID)
	assert.True(t, requeued[0].Timestamp.After(old))
}

func TestStore_Cleanup(t *testing.T) {
	store := openTestStore(t)
	cutoff := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Enqueue(Item{ID: "stale", Entity: EntityProgress, Operation: OperationUpsert, Timestamp: cutoff.Add(-time.Hour)}))
	require.NoError(t, store.Enqueue(Item{ID: "fresh", Entity: EntityProgress, Operation: OperationUpsert, Timestamp: cutoff.Add(time.Hour)}))

	require.NoError(t, store.Cleanup(cutoff))

	items, err := store.GetBatch(10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "fresh", items[0].ID)
}
