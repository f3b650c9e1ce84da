package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/centersync/internal/crypto"
	"github.com/iudanet/centersync/internal/models"
	"github.com/iudanet/centersync/internal/server/storage"
	"github.com/iudanet/centersync/pkg/api"
)

const testChunk = `{"chunk":[{"id":"e1","type":"patient_created","content":{"id":"p1"}}]}`

func decodeStatus(t *testing.T, rec *httptest.ResponseRecorder) api.Status {
	t.Helper()
	var resp api.StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Status
}

func TestSignatureMiddleware_MissingHeaders(t *testing.T) {
	tests := []struct {
		name      string
		centerID  string
		signature string
	}{
		{name: "no headers"},
		{name: "only center id", centerID: "c1"},
		{name: "only signature", signature: "c2lnbmF0dXJl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			centers := centersWith(testCenter(t, "c1"))
			next := &captureHandler{}
			handler := SignatureMiddleware(centers, testPool(t), 1<<20, testLogger())(next)

			req := httptest.NewRequest(http.MethodPost, api.PathUploadChunk, bytes.NewReader([]byte(testChunk)))
			if tt.centerID != "" {
				req.Header.Set(api.HeaderCenterID, tt.centerID)
			}
			if tt.signature != "" {
				req.Header.Set(api.HeaderSignature, tt.signature)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, api.StatusMissingHeaders, decodeStatus(t, rec))
			assert.Empty(t, centers.GetCenterCalls(), "directory must not be touched")
			assert.Zero(t, next.calls)
		})
	}
}

func TestSignatureMiddleware_CenterLookup(t *testing.T) {
	t.Run("unknown center", func(t *testing.T) {
		next := &captureHandler{}
		handler := SignatureMiddleware(centersWith(testCenter(t, "c1")), testPool(t), 1<<20, testLogger())(next)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, signedRequest(t, "ghost", []byte(testChunk)))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, api.StatusCenterNotFound, decodeStatus(t, rec))
		assert.Zero(t, next.calls)
	})

	t.Run("directory failure", func(t *testing.T) {
		centers := &storage.CenterStorageMock{
			GetCenterFunc: func(ctx context.Context, id string) (*models.Center, error) {
				return nil, errors.New("disk on fire")
			},
		}
		next := &captureHandler{}
		handler := SignatureMiddleware(centers, testPool(t), 1<<20, testLogger())(next)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, signedRequest(t, "c1", []byte(testChunk)))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, api.StatusDatabaseUploadError, decodeStatus(t, rec))
		assert.Zero(t, next.calls)
	})
}

func TestSignatureMiddleware_Verification(t *testing.T) {
	body := []byte(testChunk)

	tests := []struct {
		build      func(t *testing.T) *http.Request
		center     func(t *testing.T) *models.Center
		name       string
		wantCode   int
		wantStatus api.Status
	}{
		{
			name:     "valid signature",
			build:    func(t *testing.T) *http.Request { return signedRequest(t, "c1", body) },
			wantCode: http.StatusOK,
		},
		{
			name: "body modified after signing",
			build: func(t *testing.T) *http.Request {
				req := signedRequest(t, "c1", body)
				tampered := httptest.NewRequest(http.MethodPost, api.PathUploadChunk,
					bytes.NewReader(append(append([]byte{}, body...), ' ')))
				tampered.Header = req.Header
				return tampered
			},
			wantCode:   http.StatusUnauthorized,
			wantStatus: api.StatusSignatureInvalid,
		},
		{
			name: "signature made for another center",
			build: func(t *testing.T) *http.Request {
				req := signedRequest(t, "c2", body)
				req.Header.Set(api.HeaderCenterID, "c1")
				return req
			},
			wantCode:   http.StatusUnauthorized,
			wantStatus: api.StatusSignatureInvalid,
		},
		{
			name: "signature is not base64",
			build: func(t *testing.T) *http.Request {
				req := signedRequest(t, "c1", body)
				req.Header.Set(api.HeaderSignature, "%%%not-base64%%%")
				return req
			},
			wantCode:   http.StatusUnauthorized,
			wantStatus: api.StatusSignatureInvalid,
		},
		{
			name:  "center has broken public key",
			build: func(t *testing.T) *http.Request { return signedRequest(t, "c1", body) },
			center: func(t *testing.T) *models.Center {
				c := testCenter(t, "c1")
				c.PublicKey = "bm90IGEga2V5"
				return c
			},
			wantCode:   http.StatusUnauthorized,
			wantStatus: api.StatusSignatureInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			center := testCenter(t, "c1")
			if tt.center != nil {
				center = tt.center(t)
			}
			next := &captureHandler{}
			handler := SignatureMiddleware(centersWith(center), testPool(t), 1<<20, testLogger())(next)

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, tt.build(t))

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantStatus != "" {
				assert.Equal(t, tt.wantStatus, decodeStatus(t, rec))
				assert.Zero(t, next.calls)
				return
			}

			require.Equal(t, 1, next.calls)
			require.NotNil(t, next.center)
			assert.Equal(t, "c1", next.center.ID)
			assert.Equal(t, body, next.body)
		})
	}
}

func TestSignatureMiddleware_Body(t *testing.T) {
	body := []byte(testChunk)

	t.Run("zstd body is verified over raw bytes", func(t *testing.T) {
		enc, err := zstd.NewWriter(nil)
		require.NoError(t, err)
		compressed := enc.EncodeAll(body, nil)
		require.NoError(t, enc.Close())

		signature, err := crypto.SignChunk(setupTestKey(t), "c1", body)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPost, api.PathUploadChunk, bytes.NewReader(compressed))
		req.Header.Set(api.HeaderCenterID, "c1")
		req.Header.Set(api.HeaderSignature, signature)
		req.Header.Set("Content-Encoding", "zstd")

		next := &captureHandler{}
		handler := SignatureMiddleware(centersWith(testCenter(t, "c1")), testPool(t), 1<<20, testLogger())(next)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, body, next.body)
	})

	t.Run("unsupported encoding", func(t *testing.T) {
		req := signedRequest(t, "c1", body)
		req.Header.Set("Content-Encoding", "br")

		next := &captureHandler{}
		handler := SignatureMiddleware(centersWith(testCenter(t, "c1")), testPool(t), 1<<20, testLogger())(next)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, api.StatusChunkInvalid, decodeStatus(t, rec))
	})

	t.Run("body over limit", func(t *testing.T) {
		next := &captureHandler{}
		handler := SignatureMiddleware(centersWith(testCenter(t, "c1")), testPool(t), 16, testLogger())(next)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, signedRequest(t, "c1", body))

		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		assert.Equal(t, api.StatusBodyTooLarge, decodeStatus(t, rec))
		assert.Zero(t, next.calls)
	})

	t.Run("decompressed body over limit", func(t *testing.T) {
		large := bytes.Repeat([]byte("a"), 64*1024)
		enc, err := zstd.NewWriter(nil)
		require.NoError(t, err)
		compressed := enc.EncodeAll(large, nil)
		require.NoError(t, enc.Close())

		signature, err := crypto.SignChunk(setupTestKey(t), "c1", large)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPost, api.PathUploadChunk, bytes.NewReader(compressed))
		req.Header.Set(api.HeaderCenterID, "c1")
		req.Header.Set(api.HeaderSignature, signature)
		req.Header.Set("Content-Encoding", "zstd")

		next := &captureHandler{}
		handler := SignatureMiddleware(centersWith(testCenter(t, "c1")), testPool(t), 4*1024, testLogger())(next)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		assert.Zero(t, next.calls)
	})
}
