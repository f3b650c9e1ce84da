package middleware

import (
	"context"

	"github.com/iudanet/centersync/internal/models"
)

type contextKey string

const (
	centerKey    contextKey = "center"
	bodyKey      contextKey = "raw_body"
	requestIDKey contextKey = "request_id"
)

// CenterFromContext возвращает центр, аутентифицированный SignatureMiddleware
func CenterFromContext(ctx context.Context) (*models.Center, bool) {
	center, ok := ctx.Value(centerKey).(*models.Center)
	return center, ok && center != nil
}

// BodyFromContext возвращает исходные (несжатые) байты тела, покрытые подписью
func BodyFromContext(ctx context.Context) ([]byte, bool) {
	body, ok := ctx.Value(bodyKey).([]byte)
	return body, ok
}

// RequestIDFromContext возвращает идентификатор запроса
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
