package sync

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/centersync/internal/client/storage"
	"github.com/iudanet/centersync/internal/crypto"
	"github.com/iudanet/centersync/internal/models"
	"github.com/iudanet/centersync/pkg/api"
)

// availableAPI мок центра: доступность подтверждена, загрузка делегирована upload
func availableAPI(upload func(ctx context.Context, centerID, signature string, body []byte, compress bool) (*api.StatusResponse, error)) *CentralAPIMock {
	return &CentralAPIMock{
		CheckSyncAvailabilityFunc: func(ctx context.Context, req api.CheckSyncAvailabilityRequest) (*api.StatusResponse, error) {
			return &api.StatusResponse{Status: api.StatusAvailable}, nil
		},
		UploadChunkFunc: upload,
	}
}

func accepted(ctx context.Context, centerID, signature string, body []byte, compress bool) (*api.StatusResponse, error) {
	return &api.StatusResponse{Status: api.StatusAccepted}, nil
}

// newTestSyncer собирает Syncer с быстрыми ретраями
func newTestSyncer(t *testing.T, outbox storage.OutboxStorage, settings storage.SettingsStorage, client CentralAPI, observer Observer) *Syncer {
	t.Helper()
	opts := Options{
		Interval:       time.Hour,
		BatchSize:      100,
		RetryAttempts:  3,
		RetryBaseDelay: time.Millisecond,
		RetryMaxDelay:  5 * time.Millisecond,
	}
	return NewSyncer(outbox, settings, NewSettingsKeyProvider(settings, ""), client, setupTestPool(t), observer, opts, setupTestLogger())
}

func TestSyncer_DrainCompleteness(t *testing.T) {
	key, _ := setupTestKey(t)
	outbox := newMemOutbox(350)
	outboxMock := outbox.mock()

	var (
		mu         sync.Mutex
		chunkSizes []int
		pendingAt  []int
	)

	client := availableAPI(func(ctx context.Context, centerID, signature string, body []byte, compress bool) (*api.StatusResponse, error) {
		// подпись покрывает center_id ‖ body
		require.NoError(t, crypto.VerifyChunk(&key.PublicKey, centerID, body, signature))
		assert.Equal(t, testCenterID, centerID)
		assert.False(t, compress)

		var payload api.UploadChunkPayload
		require.NoError(t, json.Unmarshal(body, &payload))

		mu.Lock()
		chunkSizes = append(chunkSizes, len(payload.Chunk))
		pendingAt = append(pendingAt, len(outbox.pendingIDs()))
		mu.Unlock()

		return &api.StatusResponse{Status: api.StatusAccepted}, nil
	})

	rec := &recorder{}
	syncer := newTestSyncer(t, outboxMock, masterSettings(t), client, rec)

	result, err := syncer.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int{100, 100, 100, 50}, chunkSizes)
	// следующий чанк уходит только после отметки предыдущего
	assert.Equal(t, []int{350, 250, 150, 50}, pendingAt)

	calls := outboxMock.MarkPushedCalls()
	require.Len(t, calls, 4)
	assert.Len(t, calls[0].Ids, 100)
	assert.Equal(t, uint64(1), calls[0].Ids[0])
	assert.Equal(t, uint64(100), calls[0].Ids[99])
	assert.Len(t, calls[3].Ids, 50)
	assert.Equal(t, uint64(301), calls[3].Ids[0])

	requireNoPending(t, outbox)

	assert.Equal(t, &Result{
		CenterID:  testCenterID,
		Role:      models.RoleMaster,
		Available: true,
		Pending:   350,
		Chunks:    4,
		Pushed:    350,
	}, result)

	assert.Equal(t, []EventType{
		EventRoleChecked,
		EventAvailable,
		EventCollectingChanges,
		EventStart,
		EventProgress,
		EventProgress,
		EventProgress,
		EventProgress,
		EventCompleted,
	}, rec.types())
}

func TestSyncer_ChunkPayload(t *testing.T) {
	outbox := newMemOutbox(2)

	var body []byte
	client := availableAPI(func(ctx context.Context, centerID, signature string, b []byte, compress bool) (*api.StatusResponse, error) {
		body = b
		return &api.StatusResponse{Status: api.StatusAccepted}, nil
	})

	syncer := newTestSyncer(t, outbox.mock(), masterSettings(t), client, &recorder{})
	_, err := syncer.RunOnce(context.Background())
	require.NoError(t, err)

	assert.JSONEq(t, `{"chunk":[
		{"created_at":"2024-03-01T10:00:00Z","record_id":"rec-1","event":"CREATE","content":{"kind":"student","payload":{"n":1}}},
		{"created_at":"2024-03-01T10:00:00Z","record_id":"rec-2","event":"CREATE","content":{"kind":"student","payload":{"n":1}}}
	]}`, string(body))
}

func TestSyncer_NotMaster(t *testing.T) {
	tests := []struct {
		settings map[string]string
		name     string
		wantRole models.InstanceRole
	}{
		{name: "slave", settings: map[string]string{storage.SettingInstanceType: "slave"}, wantRole: models.RoleSlave},
		{name: "role not set", settings: map[string]string{}, wantRole: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &CentralAPIMock{}
			outbox := newMemOutbox(5).mock()
			rec := &recorder{}

			syncer := newTestSyncer(t, outbox, settingsMock(tt.settings), client, rec)

			result, err := syncer.RunOnce(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.wantRole, result.Role)
			assert.False(t, result.Available)

			assert.Empty(t, client.CheckSyncAvailabilityCalls())
			assert.Empty(t, client.UploadChunkCalls())
			assert.Empty(t, outbox.CountPendingCalls())
			assert.Equal(t, []EventType{EventRoleChecked, EventNotMaster}, rec.types())
		})
	}
}

func TestSyncer_NotConfigured(t *testing.T) {
	client := &CentralAPIMock{}
	settings := settingsMock(map[string]string{storage.SettingInstanceType: "master"})

	syncer := newTestSyncer(t, newMemOutbox(1).mock(), settings, client, &recorder{})

	_, err := syncer.RunOnce(context.Background())
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.Empty(t, client.CheckSyncAvailabilityCalls())
}

func TestSyncer_Unavailable(t *testing.T) {
	tests := []struct {
		err     error
		wantErr error
		name    string
	}{
		{
			name:    "center not found",
			err:     &api.StatusError{HTTPStatus: http.StatusNotFound, Status: api.StatusCenterNotFound},
			wantErr: ErrCenterNotFound,
		},
		{
			name:    "signature invalid",
			err:     &api.StatusError{HTTPStatus: http.StatusUnauthorized, Status: api.StatusCenterSignatureInvalid},
			wantErr: ErrSignatureInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &CentralAPIMock{
				CheckSyncAvailabilityFunc: func(ctx context.Context, req api.CheckSyncAvailabilityRequest) (*api.StatusResponse, error) {
					return nil, tt.err
				},
			}
			outbox := newMemOutbox(3)
			rec := &recorder{}

			syncer := newTestSyncer(t, outbox.mock(), masterSettings(t), client, rec)

			result, err := syncer.RunOnce(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.False(t, result.Available)
			assert.Empty(t, client.UploadChunkCalls())
			assert.Len(t, outbox.pendingIDs(), 3)

			assert.Equal(t, []EventType{EventRoleChecked, EventUnavailable}, rec.types())
			assert.ErrorIs(t, rec.events[1].Err, tt.wantErr)
		})
	}
}

func TestSyncer_EmptyOutbox(t *testing.T) {
	client := availableAPI(accepted)
	rec := &recorder{}

	syncer := newTestSyncer(t, newMemOutbox(0).mock(), masterSettings(t), client, rec)

	result, err := syncer.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.Chunks)
	assert.Empty(t, client.UploadChunkCalls())
	assert.Equal(t, []EventType{EventRoleChecked, EventAvailable, EventCollectingChanges}, rec.types())
}

func TestSyncer_UploadRetriesTransientFailures(t *testing.T) {
	outbox := newMemOutbox(10)

	var attempts int
	client := availableAPI(func(ctx context.Context, centerID, signature string, body []byte, compress bool) (*api.StatusResponse, error) {
		attempts++
		switch attempts {
		case 1:
			return nil, &api.StatusError{HTTPStatus: http.StatusServiceUnavailable}
		case 2:
			return nil, errors.New("connection reset by peer")
		default:
			return &api.StatusResponse{Status: api.StatusAccepted}, nil
		}
	})

	syncer := newTestSyncer(t, outbox.mock(), masterSettings(t), client, &recorder{})

	result, err := syncer.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, 10, result.Pushed)
	requireNoPending(t, outbox)

	// повторы отправляют те же байты с той же подписью
	calls := client.UploadChunkCalls()
	require.Len(t, calls, 3)
	assert.Equal(t, calls[0].Body, calls[2].Body)
	assert.Equal(t, calls[0].Signature, calls[2].Signature)
}

func TestSyncer_UploadRejectedWithoutRetry(t *testing.T) {
	tests := []struct {
		err     error
		wantErr error
		name    string
	}{
		{
			name:    "signature invalid",
			err:     &api.StatusError{HTTPStatus: http.StatusUnauthorized, Status: api.StatusSignatureInvalid},
			wantErr: ErrSignatureInvalid,
		},
		{
			name:    "chunk invalid",
			err:     &api.StatusError{HTTPStatus: http.StatusBadRequest, Status: api.StatusChunkInvalid},
			wantErr: ErrChunkRejected,
		},
		{
			name:    "center not found",
			err:     &api.StatusError{HTTPStatus: http.StatusNotFound, Status: api.StatusCenterNotFound},
			wantErr: ErrCenterNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outbox := newMemOutbox(150)
			client := availableAPI(func(ctx context.Context, centerID, signature string, body []byte, compress bool) (*api.StatusResponse, error) {
				return nil, tt.err
			})
			rec := &recorder{}

			syncer := newTestSyncer(t, outbox.mock(), masterSettings(t), client, rec)

			result, err := syncer.RunOnce(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			var statusErr *api.StatusError
			assert.True(t, errors.As(err, &statusErr))

			// одна попытка, очередь не тронута, возврат к внешнему ожиданию
			assert.Len(t, client.UploadChunkCalls(), 1)
			assert.Len(t, outbox.pendingIDs(), 150)
			assert.Zero(t, result.Pushed)

			types := rec.types()
			assert.Equal(t, EventUploadChunkFailed, types[len(types)-1])
		})
	}
}

func TestSyncer_RetryBudgetExhausted(t *testing.T) {
	outbox := newMemOutbox(5)
	client := availableAPI(func(ctx context.Context, centerID, signature string, body []byte, compress bool) (*api.StatusResponse, error) {
		return nil, &api.StatusError{HTTPStatus: http.StatusInternalServerError, Status: api.StatusDatabaseUploadError}
	})

	syncer := newTestSyncer(t, outbox.mock(), masterSettings(t), client, &recorder{})

	_, err := syncer.RunOnce(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUploadFailed)
	// первая попытка + 3 повтора
	assert.Len(t, client.UploadChunkCalls(), 4)
	assert.Len(t, outbox.pendingIDs(), 5)
}

func TestSyncer_PartialDrainKeepsAcknowledged(t *testing.T) {
	outbox := newMemOutbox(250)

	var calls int
	client := availableAPI(func(ctx context.Context, centerID, signature string, body []byte, compress bool) (*api.StatusResponse, error) {
		calls++
		if calls == 2 {
			return nil, &api.StatusError{HTTPStatus: http.StatusUnauthorized, Status: api.StatusSignatureInvalid}
		}
		return &api.StatusResponse{Status: api.StatusAccepted}, nil
	})

	syncer := newTestSyncer(t, outbox.mock(), masterSettings(t), client, &recorder{})

	result, err := syncer.RunOnce(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, result.Chunks)
	assert.Equal(t, 100, result.Pushed)

	// отмечены ровно события первого чанка
	pending := outbox.pendingIDs()
	require.Len(t, pending, 150)
	assert.Equal(t, uint64(101), sortedIDs(pending)[0])
}

func TestSyncer_Compress(t *testing.T) {
	client := availableAPI(accepted)
	settings := masterSettings(t)

	opts := DefaultOptions()
	opts.Compress = true
	syncer := NewSyncer(newMemOutbox(1).mock(), settings, NewSettingsKeyProvider(settings, ""), client,
		setupTestPool(t), &recorder{}, opts, setupTestLogger())

	_, err := syncer.RunOnce(context.Background())
	require.NoError(t, err)

	calls := client.UploadChunkCalls()
	require.Len(t, calls, 1)
	assert.True(t, calls[0].Compress)
}

func TestSyncer_AlreadyRunning(t *testing.T) {
	syncer := newTestSyncer(t, newMemOutbox(0).mock(), masterSettings(t), availableAPI(accepted), &recorder{})
	syncer.running.Store(true)

	_, err := syncer.RunOnce(context.Background())
	assert.ErrorIs(t, err, ErrAlreadyRunning)
}

func TestSyncer_Run_Cancellation(t *testing.T) {
	outbox := newMemOutbox(3)
	observer := NewChannelObserver(64)

	syncer := newTestSyncer(t, outbox.mock(), masterSettings(t), availableAPI(accepted), observer)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- syncer.Run(ctx)
	}()

	// ждем перехода в сон после первого прохода
	timeout := time.After(10 * time.Second)
	for sleeping := false; !sleeping; {
		select {
		case event := <-observer.Events():
			sleeping = event.Type == EventSleep
		case <-timeout:
			t.Fatal("sync loop did not reach sleep")
		}
	}
	requireNoPending(t, outbox)

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancellation")
	}
}

func TestSyncer_Run_RepeatsAfterInterval(t *testing.T) {
	settings := masterSettings(t)
	observer := NewChannelObserver(256)

	opts := DefaultOptions()
	opts.Interval = 10 * time.Millisecond
	syncer := NewSyncer(newMemOutbox(0).mock(), settings, NewSettingsKeyProvider(settings, ""), availableAPI(accepted),
		setupTestPool(t), observer, opts, setupTestLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- syncer.Run(ctx)
	}()

	// несколько проходов подряд
	sleeps := 0
	timeout := time.After(10 * time.Second)
	for sleeps < 3 {
		select {
		case event := <-observer.Events():
			if event.Type == EventSleep {
				sleeps++
			}
		case <-timeout:
			t.Fatal("sync loop did not repeat")
		}
	}

	cancel()
	assert.NoError(t, <-done)
}

func TestSyncer_ObserverPanicIgnored(t *testing.T) {
	outbox := newMemOutbox(2)
	observer := ObserverFunc(func(event Event) {
		panic("ui is gone")
	})

	syncer := newTestSyncer(t, outbox.mock(), masterSettings(t), availableAPI(accepted), observer)

	result, err := syncer.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Pushed)
}
