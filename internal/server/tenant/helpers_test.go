package tenant

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iudanet/centersync/pkg/api"
)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// setupTestRouter создает роутер во временном каталоге
func setupTestRouter(t *testing.T) (*Router, string) {
	t.Helper()

	dir := t.TempDir()
	router, err := NewRouter(dir, 0, setupTestLogger())
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, router.Close())
	})

	return router, dir
}

// event создает событие чанка
func event(kind, recordID, payload string) api.SyncEvent {
	e := api.SyncEvent{
		CreatedAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		RecordID:  recordID,
		Event:     kind,
		Content:   api.EventContent{Kind: "student"},
	}
	if payload != "" {
		e.Content.Payload = json.RawMessage(payload)
	}
	return e
}
