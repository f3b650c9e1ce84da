package api

import "fmt"

// Status значение поля status в ответах центрального API
type Status string

// Статусы check_sync_availability
const (
	StatusAvailable              Status = "available"
	StatusCenterNotFound         Status = "center_not_found"
	StatusCenterSignatureInvalid Status = "center_signature_invalid"
)

// Статусы upload_chunk
const (
	StatusAccepted            Status = "accepted"
	StatusMissingHeaders      Status = "missing_headers"
	StatusChunkInvalid        Status = "chunk_invalid"
	StatusSignatureInvalid    Status = "signature_invalid"
	StatusDatabaseUploadError Status = "database_upload_error"
)

// Общие статусы транспортного уровня
const (
	StatusRateLimited   Status = "rate_limited"
	StatusInternalError Status = "internal_error"
	StatusBodyTooLarge  Status = "body_too_large"
)

// StatusError описывает структурированный не-2xx ответ сервера
type StatusError struct {
	Status     Status
	HTTPStatus int
}

func (e *StatusError) Error() string {
	if e.Status == "" {
		return fmt.Sprintf("central api responded %d", e.HTTPStatus)
	}
	return fmt.Sprintf("central api responded %d: %s", e.HTTPStatus, e.Status)
}

// Temporary сообщает, имеет ли смысл повторить тот же запрос
func (e *StatusError) Temporary() bool {
	return e.HTTPStatus >= 500 || e.HTTPStatus == 429
}
