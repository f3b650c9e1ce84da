package handlers

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iudanet/centersync/internal/crypto"
	"github.com/iudanet/centersync/internal/models"
	"github.com/iudanet/centersync/internal/server/storage"
	"github.com/iudanet/centersync/internal/workpool"
	"github.com/iudanet/centersync/pkg/api"
)

var (
	keysOnce  sync.Once
	centerKey *rsa.PrivateKey
	otherKey  *rsa.PrivateKey
)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// setupTestKeys возвращает ключ зарегистрированных центров и посторонний ключ
func setupTestKeys(t *testing.T) (*rsa.PrivateKey, *rsa.PrivateKey) {
	t.Helper()
	keysOnce.Do(func() {
		var err error
		if centerKey, err = rsa.GenerateKey(rand.Reader, 2048); err != nil {
			panic(err)
		}
		if otherKey, err = rsa.GenerateKey(rand.Reader, 2048); err != nil {
			panic(err)
		}
	})
	return centerKey, otherKey
}

func testCenter(t *testing.T, id string) *models.Center {
	t.Helper()
	key, _ := setupTestKeys(t)
	return &models.Center{
		ID:        id,
		Name:      "Center " + id,
		PublicKey: crypto.EncodePublicKey(&key.PublicKey),
	}
}

func centersWith(centers ...*models.Center) *storage.CenterStorageMock {
	byID := make(map[string]*models.Center, len(centers))
	for _, c := range centers {
		byID[c.ID] = c
	}

	return &storage.CenterStorageMock{
		GetCenterFunc: func(ctx context.Context, id string) (*models.Center, error) {
			c, ok := byID[id]
			if !ok {
				return nil, storage.ErrCenterNotFound
			}
			return c, nil
		},
	}
}

func testPool(t *testing.T) *workpool.Pool {
	t.Helper()
	pool := workpool.New(2, setupTestLogger())
	t.Cleanup(pool.Close)
	return pool
}

func availabilityRequest(t *testing.T, centerID, signature string) *http.Request {
	t.Helper()
	body, err := json.Marshal(api.CheckSyncAvailabilityRequest{CenterID: centerID, Signature: signature})
	require.NoError(t, err)
	return httptest.NewRequest(http.MethodPost, api.PathCheckSyncAvailability, bytes.NewReader(body))
}

func decodeStatus(t *testing.T, rec *httptest.ResponseRecorder) api.Status {
	t.Helper()
	var resp api.StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Status
}
