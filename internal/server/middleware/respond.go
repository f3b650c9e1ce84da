package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/iudanet/centersync/pkg/api"
)

// WriteStatus отправляет JSON {"status": ...} с кодом code
func WriteStatus(w http.ResponseWriter, code int, status api.Status) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(api.StatusResponse{Status: status})
}
