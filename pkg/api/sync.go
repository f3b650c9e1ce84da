package api

import (
	"encoding/json"
	"time"
)

// Заголовки подписанного конверта загрузки чанка
const (
	HeaderCenterID  = "Center-ID"
	HeaderSignature = "Signature"
)

// Пути центрального API
const (
	PathCheckSyncAvailability = "/sync/check_sync_availability"
	PathUploadChunk           = "/sync/upload_chunk"
	PathHealth                = "/health"
)

// CheckSyncAvailabilityRequest запрос проверки доступности синхронизации.
// Signature - RS256 JWT с claim center_id.
type CheckSyncAvailabilityRequest struct {
	CenterID  string `json:"center_id"`
	Signature string `json:"signature"`
}

// SyncEvent одно событие outbox на проводе
type SyncEvent struct {
	CreatedAt time.Time    `json:"created_at"`
	RecordID  string       `json:"record_id"`
	Event     string       `json:"event"`
	Content   EventContent `json:"content"`
}

// EventContent явно размеченный payload: kind + payload
type EventContent struct {
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// UploadChunkPayload тело запроса загрузки чанка (подписывается целиком)
type UploadChunkPayload struct {
	Chunk []SyncEvent `json:"chunk"`
}

// StatusResponse ответ центрального API: всегда содержит status
type StatusResponse struct {
	Status Status `json:"status"`
}

// HeaderRequestID заголовок идентификатора запроса
const HeaderRequestID = "X-Request-ID"

// HealthResponse ответ GET /health
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}
