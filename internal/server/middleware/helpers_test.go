package middleware

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
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
	testKeyOnce sync.Once
	testKey     *rsa.PrivateKey
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupTestKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	testKeyOnce.Do(func() {
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			panic(err)
		}
		testKey = key
	})
	return testKey
}

// centersWith возвращает справочник, знающий только переданные центры
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

func testCenter(t *testing.T, id string) *models.Center {
	t.Helper()
	return &models.Center{
		ID:        id,
		Name:      "Center " + id,
		PublicKey: crypto.EncodePublicKey(&setupTestKey(t).PublicKey),
	}
}

func testPool(t *testing.T) *workpool.Pool {
	t.Helper()
	pool := workpool.New(2, testLogger())
	t.Cleanup(pool.Close)
	return pool
}

// signedRequest собирает подписанный запрос загрузки чанка
func signedRequest(t *testing.T, centerID string, body []byte) *http.Request {
	t.Helper()

	signature, err := crypto.SignChunk(setupTestKey(t), centerID, body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, api.PathUploadChunk, bytes.NewReader(body))
	req.Header.Set(api.HeaderCenterID, centerID)
	req.Header.Set(api.HeaderSignature, signature)
	return req
}

// captureHandler запоминает контекст прошедшего запроса
type captureHandler struct {
	calls  int
	center *models.Center
	body   []byte
}

func (h *captureHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.calls++
	h.center, _ = CenterFromContext(r.Context())
	h.body, _ = BodyFromContext(r.Context())
	w.WriteHeader(http.StatusOK)
}
