package sync

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iudanet/centersync/internal/client/storage"
	"github.com/iudanet/centersync/internal/crypto"
	"github.com/iudanet/centersync/internal/models"
	"github.com/iudanet/centersync/internal/workpool"
)

const testCenterID = "center:z0zwv63iaazyq8idwjd8"

var (
	testKeyOnce sync.Once
	testKey     *rsa.PrivateKey
	testKeyB64  string
)

// setupTestLogger создает logger для тестов
func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// setupTestKey возвращает общий для тестов ключ (генерация RSA дорогая)
func setupTestKey(t *testing.T) (*rsa.PrivateKey, string) {
	t.Helper()
	testKeyOnce.Do(func() {
		pair, err := crypto.GenerateKeyPair(crypto.DefaultKeyBits)
		if err != nil {
			panic(err)
		}
		testKeyB64 = pair.PrivateKey
		testKey, err = crypto.ParsePrivateKey(pair.PrivateKey)
		if err != nil {
			panic(err)
		}
	})
	return testKey, testKeyB64
}

// setupTestPool создает пул, закрываемый после теста
func setupTestPool(t *testing.T) *workpool.Pool {
	t.Helper()
	pool := workpool.New(2, setupTestLogger())
	t.Cleanup(pool.Close)
	return pool
}

// memOutbox in-memory outbox поверх moq мока
type memOutbox struct {
	events []*models.OutboxEvent
	mu     sync.Mutex
}

// newMemOutbox создает очередь с n событиями CREATE
func newMemOutbox(n int) *memOutbox {
	o := &memOutbox{}
	for i := 0; i < n; i++ {
		o.events = append(o.events, &models.OutboxEvent{
			LocalID:   uint64(i + 1),
			RecordID:  fmt.Sprintf("rec-%d", i+1),
			Event:     models.EventCreate,
			Content:   models.Content{Kind: "student", Payload: json.RawMessage(`{"n":1}`)},
			CreatedAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		})
	}
	return o
}

func (o *memOutbox) pendingIDs() []uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	var ids []uint64
	for _, e := range o.events {
		if !e.Pushed {
			ids = append(ids, e.LocalID)
		}
	}
	return ids
}

// mock возвращает storage.OutboxStorageMock, работающий с памятью
func (o *memOutbox) mock() *storage.OutboxStorageMock {
	return &storage.OutboxStorageMock{
		CountPendingFunc: func(ctx context.Context) (int, error) {
			return len(o.pendingIDs()), nil
		},
		FetchPendingFunc: func(ctx context.Context, limit int) ([]*models.OutboxEvent, error) {
			o.mu.Lock()
			defer o.mu.Unlock()
			var out []*models.OutboxEvent
			for _, e := range o.events {
				if !e.Pushed && len(out) < limit {
					copied := *e
					out = append(out, &copied)
				}
			}
			return out, nil
		},
		MarkPushedFunc: func(ctx context.Context, ids []uint64) error {
			o.mu.Lock()
			defer o.mu.Unlock()
			set := make(map[uint64]bool, len(ids))
			for _, id := range ids {
				set[id] = true
			}
			for _, e := range o.events {
				if set[e.LocalID] {
					e.Pushed = true
				}
			}
			return nil
		},
	}
}

// settingsMock настройки экземпляра в памяти
func settingsMock(values map[string]string) *storage.SettingsStorageMock {
	var mu sync.Mutex
	return &storage.SettingsStorageMock{
		GetSettingFunc: func(ctx context.Context, key string) (string, error) {
			mu.Lock()
			defer mu.Unlock()
			v, ok := values[key]
			if !ok {
				return "", storage.ErrSettingNotFound
			}
			return v, nil
		},
		SetSettingFunc: func(ctx context.Context, key, value string) error {
			mu.Lock()
			defer mu.Unlock()
			values[key] = value
			return nil
		},
	}
}

// masterSettings настройки master экземпляра с тестовым ключом
func masterSettings(t *testing.T) *storage.SettingsStorageMock {
	_, keyB64 := setupTestKey(t)
	return settingsMock(map[string]string{
		storage.SettingInstanceType: string(models.RoleMaster),
		storage.SettingCenterID:     testCenterID,
		storage.SettingPrivateKey:   keyB64,
	})
}

// recorder собирает события наблюдателя
type recorder struct {
	events []Event
	mu     sync.Mutex
}

func (r *recorder) Notify(event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recorder) types() []EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

func sortedIDs(ids []uint64) []uint64 {
	out := append([]uint64(nil), ids...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func requireNoPending(t *testing.T, o *memOutbox) {
	t.Helper()
	require.Empty(t, o.pendingIDs())
}
