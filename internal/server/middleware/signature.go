package middleware

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/iudanet/centersync/internal/crypto"
	"github.com/iudanet/centersync/internal/server/storage"
	"github.com/iudanet/centersync/internal/workpool"
	"github.com/iudanet/centersync/pkg/api"
)

// BypassSignature значение заголовка Signature, пропускающее проверку в отладочной сборке
const BypassSignature = "debug-bypass"

// minDecoderMemory нижняя граница памяти zstd декодера
const minDecoderMemory = 1 << 20

// errBodyTooLarge тело больше max_chunk_bytes
var errBodyTooLarge = errors.New("request body too large")

// SignatureMiddleware аутентифицирует подписанный конверт загрузки чанка:
//  1. заголовки Center-ID и Signature обязательны (400 missing_headers, без обращения к хранилищу);
//  2. центр ищется в справочнике (404 center_not_found);
//  3. подпись над center_id ‖ raw_body проверяется публичным ключом центра (401 signature_invalid).
//
// Тело с Content-Encoding: zstd распаковывается до проверки, подпись покрывает несжатые байты.
// Центр и тело кладутся в контекст (CenterFromContext, BodyFromContext).
func SignatureMiddleware(centers storage.CenterStorage, pool *workpool.Pool, maxBodyBytes int64, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			// Извлекаем заголовки конверта
			centerID := r.Header.Get(api.HeaderCenterID)
			signature := r.Header.Get(api.HeaderSignature)
			if centerID == "" || signature == "" {
				logger.WarnContext(ctx, "Missing signature headers",
					"has_center_id", centerID != "",
					"has_signature", signature != "")
				WriteStatus(w, http.StatusBadRequest, api.StatusMissingHeaders)
				return
			}

			// Центр должен существовать до любой криптографии
			center, err := centers.GetCenter(ctx, centerID)
			if err != nil {
				if errors.Is(err, storage.ErrCenterNotFound) {
					logger.WarnContext(ctx, "Unknown center", "center_id", centerID)
					WriteStatus(w, http.StatusNotFound, api.StatusCenterNotFound)
					return
				}
				logger.ErrorContext(ctx, "Failed to look up center", "center_id", centerID, slog.Any("error", err))
				WriteStatus(w, http.StatusInternalServerError, api.StatusDatabaseUploadError)
				return
			}

			body, err := readBody(w, r, maxBodyBytes)
			if err != nil {
				if errors.Is(err, errBodyTooLarge) {
					logger.WarnContext(ctx, "Chunk body too large", "center_id", centerID, "limit", maxBodyBytes)
					WriteStatus(w, http.StatusRequestEntityTooLarge, api.StatusBodyTooLarge)
					return
				}
				logger.WarnContext(ctx, "Failed to read chunk body", "center_id", centerID, slog.Any("error", err))
				WriteStatus(w, http.StatusBadRequest, api.StatusChunkInvalid)
				return
			}

			if signatureBypassEnabled && signature == BypassSignature {
				logger.WarnContext(ctx, "Signature check bypassed (debug build)", "center_id", centerID)
			} else if err := verify(ctx, pool, center.PublicKey, centerID, body, signature); err != nil {
				if ctx.Err() != nil {
					WriteStatus(w, http.StatusServiceUnavailable, api.StatusInternalError)
					return
				}
				logger.WarnContext(ctx, "Chunk signature rejected", "center_id", centerID, slog.Any("error", err))
				WriteStatus(w, http.StatusUnauthorized, api.StatusSignatureInvalid)
				return
			}

			ctx = context.WithValue(ctx, centerKey, center)
			ctx = context.WithValue(ctx, bodyKey, body)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// verify разбирает ключ центра и проверяет подпись в пуле
func verify(ctx context.Context, pool *workpool.Pool, publicKey, centerID string, body []byte, signature string) error {
	key, err := crypto.ParsePublicKey(publicKey)
	if err != nil {
		return err
	}

	return pool.Do(ctx, func() error {
		return crypto.VerifyChunk(key, centerID, body, signature)
	})
}

// readBody читает тело с ограничением размера, распаковывая zstd
func readBody(w http.ResponseWriter, r *http.Request, limit int64) ([]byte, error) {
	reader := io.Reader(http.MaxBytesReader(w, r.Body, limit))

	switch encoding := strings.ToLower(strings.TrimSpace(r.Header.Get("Content-Encoding"))); encoding {
	case "", "identity":
	case "zstd":
		dec, err := zstd.NewReader(reader,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderMaxMemory(max(uint64(limit)*2, minDecoderMemory)))
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
		}
		defer dec.Close()
		reader = dec
	default:
		return nil, fmt.Errorf("unsupported content encoding %q", encoding)
	}

	// читаем на байт больше лимита, чтобы отличить ровно limit от превышения
	body, err := io.ReadAll(io.LimitReader(reader, limit+1))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) || errors.Is(err, zstd.ErrDecoderSizeExceeded) {
			return nil, errBodyTooLarge
		}
		return nil, err
	}
	if int64(len(body)) > limit {
		return nil, errBodyTooLarge
	}

	return body, nil
}
