package boltdb

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/centersync/internal/client/storage"
	"github.com/iudanet/centersync/internal/models"
)

// newEvent создает тестовое событие CREATE
func newEvent(recordID string) *models.OutboxEvent {
	return &models.OutboxEvent{
		RecordID: recordID,
		Event:    models.EventCreate,
		Content: models.Content{
			Kind:    "student",
			Payload: json.RawMessage(`{"name":"` + recordID + `"}`),
		},
		CreatedAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

// appendEvents добавляет n событий с record_id rec-<i>
func appendEvents(t *testing.T, store *Storage, n int) []uint64 {
	t.Helper()
	ids := make([]uint64, 0, n)
	for i := 0; i < n; i++ {
		id, err := store.Append(context.Background(), newEvent(fmt.Sprintf("rec-%d", i)))
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return ids
}

func TestStorage_Append(t *testing.T) {
	tests := []struct {
		event   *models.OutboxEvent
		name    string
		wantErr bool
	}{
		{name: "create", event: newEvent("rec-1")},
		{
			name: "delete without payload",
			event: &models.OutboxEvent{
				RecordID: "rec-2",
				Event:    models.EventDelete,
				Content:  models.Content{Kind: "student"},
			},
		},
		{
			name:  "untagged delete",
			event: &models.OutboxEvent{RecordID: "rec-3", Event: models.EventDelete},
		},
		{name: "nil event", event: nil, wantErr: true},
		{
			name:    "empty record id",
			event:   &models.OutboxEvent{Event: models.EventCreate, Content: models.Content{Kind: "student"}},
			wantErr: true,
		},
		{
			name:    "unknown kind",
			event:   &models.OutboxEvent{RecordID: "r", Event: "MERGE", Content: models.Content{Kind: "student"}},
			wantErr: true,
		},
		{
			name:    "untagged content",
			event:   &models.OutboxEvent{RecordID: "r", Event: models.EventUpdate},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := createTestStorage(t)
			ctx := context.Background()

			id, err := store.Append(ctx, tt.event)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, uint64(1), id)

			got, err := store.Get(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, id, got.LocalID)
			assert.Equal(t, tt.event.RecordID, got.RecordID)
			assert.Equal(t, tt.event.Event, got.Event)
			assert.False(t, got.Pushed)
			assert.False(t, got.CreatedAt.IsZero())
		})
	}
}

func TestStorage_AppendForcesPending(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	event := newEvent("rec-1")
	event.Pushed = true
	event.LocalID = 42

	id, err := store.Append(ctx, event)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)
	assert.Equal(t, uint64(1), event.LocalID)
	assert.False(t, event.Pushed)

	count, err := store.CountPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestStorage_FetchPending_Order(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	// больше 255 ключей: порядок должен оставаться числовым
	ids := appendEvents(t, store, 300)

	events, err := store.FetchPending(ctx, 1000)
	require.NoError(t, err)
	require.Len(t, events, 300)

	for i, event := range events {
		assert.Equal(t, ids[i], event.LocalID)
		assert.Equal(t, fmt.Sprintf("rec-%d", i), event.RecordID)
	}

	page, err := store.FetchPending(ctx, 100)
	require.NoError(t, err)
	require.Len(t, page, 100)
	assert.Equal(t, ids[0], page[0].LocalID)
	assert.Equal(t, ids[99], page[99].LocalID)

	_, err = store.FetchPending(ctx, 0)
	assert.Error(t, err)
}

func TestStorage_MarkPushed(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	ids := appendEvents(t, store, 5)

	// неизвестный id игнорируется
	require.NoError(t, store.MarkPushed(ctx, []uint64{ids[0], ids[2], 999}))

	count, err := store.CountPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	pending, err := store.FetchPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 3)
	assert.Equal(t, []uint64{ids[1], ids[3], ids[4]}, []uint64{pending[0].LocalID, pending[1].LocalID, pending[2].LocalID})

	pushed, err := store.Get(ctx, ids[2])
	require.NoError(t, err)
	assert.True(t, pushed.Pushed)

	// повторная отметка и пустой список безопасны
	require.NoError(t, store.MarkPushed(ctx, []uint64{ids[2]}))
	require.NoError(t, store.MarkPushed(ctx, nil))

	count, err = store.CountPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestStorage_Get_NotFound(t *testing.T) {
	store := createTestStorage(t)

	_, err := store.Get(context.Background(), 7)
	assert.ErrorIs(t, err, storage.ErrEventNotFound)
}

func TestStorage_ConcurrentAppendAndMark(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	initial := appendEvents(t, store, 50)

	var wg sync.WaitGroup
	wg.Add(2)

	// внешний writer добавляет события, пока синхронизатор отмечает старые
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			_, err := store.Append(ctx, newEvent(fmt.Sprintf("new-%d", i)))
			assert.NoError(t, err)
		}
	}()
	go func() {
		defer wg.Done()
		assert.NoError(t, store.MarkPushed(ctx, initial))
	}()

	wg.Wait()

	pending, err := store.FetchPending(ctx, 1000)
	require.NoError(t, err)
	require.Len(t, pending, 50)
	for _, event := range pending {
		assert.Contains(t, event.RecordID, "new-")
		assert.False(t, event.Pushed)
	}
}
