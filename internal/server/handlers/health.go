package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/iudanet/centersync/pkg/api"
)

// HealthHandler отвечает на GET /health
type HealthHandler struct {
	logger  *slog.Logger
	version string
}

// NewHealthHandler создает handler health check, version выводится в ответе
func NewHealthHandler(logger *slog.Logger, version string) *HealthHandler {
	if version == "" {
		version = "dev"
	}
	return &HealthHandler{
		logger:  logger,
		version: version,
	}
}

// Health обрабатывает GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := api.HealthResponse{
		Status:  "ok",
		Version: h.version,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("failed to encode health response", slog.Any("error", err))
	}
}
