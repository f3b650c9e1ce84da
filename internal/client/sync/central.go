package sync

import (
	"context"
	"errors"
	"fmt"

	"github.com/iudanet/centersync/pkg/api"
)

//go:generate moq -out central_mock.go . CentralAPI

// CentralAPI часть HTTP клиента центра, нужная синхронизатору
type CentralAPI interface {
	CheckSyncAvailability(ctx context.Context, req api.CheckSyncAvailabilityRequest) (*api.StatusResponse, error)
	UploadChunk(ctx context.Context, centerID, signature string, body []byte, compress bool) (*api.StatusResponse, error)
}

// classifyStatusError переводит структурированный ответ центра в ошибку пакета.
// Исходная *api.StatusError остается доступной через errors.As.
func classifyStatusError(err error) error {
	var statusErr *api.StatusError
	if !errors.As(err, &statusErr) {
		return err
	}

	switch statusErr.Status {
	case api.StatusCenterNotFound:
		return fmt.Errorf("%w: %w", ErrCenterNotFound, err)
	case api.StatusCenterSignatureInvalid, api.StatusSignatureInvalid:
		return fmt.Errorf("%w: %w", ErrSignatureInvalid, err)
	case api.StatusChunkInvalid, api.StatusMissingHeaders, api.StatusBodyTooLarge:
		return fmt.Errorf("%w: %w", ErrChunkRejected, err)
	case api.StatusDatabaseUploadError:
		return fmt.Errorf("%w: %w", ErrUploadFailed, err)
	default:
		return fmt.Errorf("%w: %w", ErrUnexpectedResponse, err)
	}
}

// isRetryable решает, стоит ли повторять загрузку того же чанка
func isRetryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}

	var statusErr *api.StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Temporary()
	}

	// транспортная ошибка: сеть, таймаут
	return !errors.Is(err, ErrUnexpectedResponse)
}
