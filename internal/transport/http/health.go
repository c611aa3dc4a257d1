package http

import (
	"context"
	"net/http"
	"time"

	"github.com/hashicorp/go-hclog"
)

const healthTimeout = 2 * time.Second

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	store  Pinger
	logger hclog.Logger
}

func NewHealthHandler(store Pinger, log hclog.Logger) *HealthHandler {
	return &HealthHandler{store: store, logger: log}
}

// HealthResponse is the body of GET /healthz
//
// swagger:model
type HealthResponse struct {
	// ok or unavailable
	//
	// required: true
	Status string `json:"status"`
}

// ServeHTTP handles GET /healthz
//
// swagger:route GET /healthz health checkHealth
//
// Reports whether the store answers a ping.
//
// Responses:
//
//	200: healthResponse
//	503: healthResponse
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.logger.Warn("Store ping failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}
