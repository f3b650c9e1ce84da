package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/iudanet/centersync/internal/crypto"
	"github.com/iudanet/centersync/internal/server/middleware"
	"github.com/iudanet/centersync/internal/server/storage"
	"github.com/iudanet/centersync/internal/workpool"
	"github.com/iudanet/centersync/pkg/api"
)

//go:generate moq -out applier_mock.go . ChunkApplier

// maxAvailabilityBody предел тела запроса проверки доступности
const maxAvailabilityBody = 64 << 10

// ChunkApplier применяет разобранный чанк к namespace центра
type ChunkApplier interface {
	Apply(ctx context.Context, centerID string, events []api.SyncEvent, rawBody []byte) error
}

// SyncHandler обслуживает проверку доступности и прием подписанных чанков
type SyncHandler struct {
	logger  *slog.Logger
	centers storage.CenterStorage
	applier ChunkApplier
	pool    *workpool.Pool
}

// NewSyncHandler создает handler синхронизации
func NewSyncHandler(logger *slog.Logger, centers storage.CenterStorage, applier ChunkApplier, pool *workpool.Pool) *SyncHandler {
	return &SyncHandler{
		logger:  logger,
		centers: centers,
		applier: applier,
		pool:    pool,
	}
}

// CheckSyncAvailability обрабатывает POST /sync/check_sync_availability.
// Порядок проверок: алгоритм токена, существование центра, ключ центра,
// подпись с claim center_id, совпадение claim с запрошенным центром.
func (h *SyncHandler) CheckSyncAvailability(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.CheckSyncAvailabilityRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxAvailabilityBody)).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode availability request", slog.Any("error", err))
		sendStatus(w, http.StatusUnauthorized, api.StatusCenterSignatureInvalid)
		return
	}

	// 1. Алгоритм проверяется до обращения к ключам
	if err := crypto.CheckClaimAlgorithm(req.Signature); err != nil {
		h.logger.WarnContext(ctx, "availability claim rejected",
			slog.String("center_id", req.CenterID), slog.Any("error", err))
		sendStatus(w, http.StatusUnauthorized, api.StatusCenterSignatureInvalid)
		return
	}

	// 2. Центр
	center, err := h.centers.GetCenter(ctx, req.CenterID)
	if err != nil {
		if errors.Is(err, storage.ErrCenterNotFound) {
			h.logger.WarnContext(ctx, "availability check for unknown center", slog.String("center_id", req.CenterID))
			sendStatus(w, http.StatusNotFound, api.StatusCenterNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to look up center",
			slog.String("center_id", req.CenterID), slog.Any("error", err))
		sendStatus(w, http.StatusInternalServerError, api.StatusInternalError)
		return
	}

	// 3. Ключ центра
	publicKey, err := crypto.ParsePublicKey(center.PublicKey)
	if err != nil {
		h.logger.ErrorContext(ctx, "center has unusable public key",
			slog.String("center_id", center.ID), slog.Any("error", err))
		sendStatus(w, http.StatusUnauthorized, api.StatusCenterSignatureInvalid)
		return
	}

	// 4. Подпись
	var claims *crypto.AvailabilityClaims
	err = h.pool.Do(ctx, func() error {
		var verr error
		claims, verr = crypto.VerifyAvailabilityClaim(publicKey, req.Signature)
		return verr
	})
	if err != nil {
		if ctx.Err() != nil {
			sendStatus(w, http.StatusServiceUnavailable, api.StatusInternalError)
			return
		}
		h.logger.WarnContext(ctx, "availability claim signature invalid",
			slog.String("center_id", center.ID), slog.Any("error", err))
		sendStatus(w, http.StatusUnauthorized, api.StatusCenterSignatureInvalid)
		return
	}

	// 5. Подпись доказывает личность claim, а не запрошенного центра
	if claims.CenterID != req.CenterID {
		h.logger.WarnContext(ctx, "availability claim issued for another center",
			slog.String("center_id", req.CenterID), slog.String("claim_center_id", claims.CenterID))
		sendStatus(w, http.StatusUnauthorized, api.StatusCenterSignatureInvalid)
		return
	}

	// 6.
	sendStatus(w, http.StatusOK, api.StatusAvailable)
}

// UploadChunk обрабатывает POST /sync/upload_chunk.
// Вызывается после SignatureMiddleware: центр и проверенное тело лежат в контексте.
func (h *SyncHandler) UploadChunk(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	center, ok := middleware.CenterFromContext(ctx)
	if !ok {
		h.logger.ErrorContext(ctx, "upload reached handler without authenticated center")
		sendStatus(w, http.StatusInternalServerError, api.StatusInternalError)
		return
	}
	body, _ := middleware.BodyFromContext(ctx)

	payload, err := decodeChunk(body)
	if err != nil {
		h.logger.WarnContext(ctx, "invalid chunk body",
			slog.String("center_id", center.ID), slog.Any("error", err))
		sendStatus(w, http.StatusBadRequest, api.StatusChunkInvalid)
		return
	}

	if err := h.applier.Apply(ctx, center.ID, payload.Chunk, body); err != nil {
		h.logger.ErrorContext(ctx, "failed to apply chunk",
			slog.String("center_id", center.ID),
			slog.Int("events", len(payload.Chunk)),
			slog.Any("error", err))
		sendStatus(w, http.StatusInternalServerError, api.StatusDatabaseUploadError)
		return
	}

	h.logger.InfoContext(ctx, "chunk accepted",
		slog.String("center_id", center.ID),
		slog.Int("events", len(payload.Chunk)))

	sendStatus(w, http.StatusOK, api.StatusAccepted)
}

// decodeChunk разбирает тело {"chunk":[...]}; поле chunk обязательно
func decodeChunk(body []byte) (*api.UploadChunkPayload, error) {
	var raw struct {
		Chunk *[]api.SyncEvent `json:"chunk"`
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("trailing data after chunk payload")
	}
	if raw.Chunk == nil {
		return nil, errors.New("missing chunk field")
	}

	return &api.UploadChunkPayload{Chunk: *raw.Chunk}, nil
}

// sendStatus отправляет JSON {"status": ...}
func sendStatus(w http.ResponseWriter, code int, status api.Status) {
	middleware.WriteStatus(w, code, status)
}
