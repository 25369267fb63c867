package api

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const healthTimeout = 3 * time.Second

// HealthResponse reports the API and DynamoDB status.
type HealthResponse struct {
	API      string `json:"api"`
	DynamoDB string `json:"dynamodb"`
}

type healthHandler struct {
	pinger Pinger
	logger *zap.Logger
}

func (h *healthHandler) root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// check answers 200 when the table is reachable and 503 otherwise.
func (h *healthHandler) check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	resp := HealthResponse{API: "ok", DynamoDB: "connected"}
	if err := h.pinger.Ping(ctx); err != nil {
		h.logger.Warn("health check failed", zap.Error(err))
		resp.DynamoDB = "error: " + err.Error()
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
