package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/marmos91/mdcatalog/internal/logger"
)

// Checker is anything that can report its own health.
// Both catalog store backends implement it.
type Checker interface {
	Healthcheck(ctx context.Context) error
}

// StoreCheck names a Checker for reporting.
type StoreCheck struct {
	Name    string
	Backend string
	Checker Checker
}

// HealthHandler handles health check endpoints.
//
// Health endpoints are unauthenticated and provide:
//   - Liveness probe: Is the process running?
//   - Readiness probe: Can both catalog stores be reached?
type HealthHandler struct {
	stores  []StoreCheck
	timeout time.Duration
}

// NewHealthHandler creates a new health handler. With no stores the
// readiness probe reports unhealthy.
func NewHealthHandler(timeout time.Duration, stores ...StoreCheck) *HealthHandler {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HealthHandler{stores: stores, timeout: timeout}
}

// Liveness handles GET /health.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthyResponse(map[string]string{
		"service": "mdcatalog",
	}))
}

// StoreHealth represents the health status of a single store.
type StoreHealth struct {
	Name    string `json:"name"`
	Backend string `json:"backend"`
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// ReadinessResponse lists the health of every catalog store.
type ReadinessResponse struct {
	Stores []StoreHealth `json:"stores"`
}

// Readiness handles GET /health/ready.
//
// Pings the published and draft stores. Returns 503 Service Unavailable if
// any of them fails or none is configured.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if len(h.stores) == 0 {
		writeJSON(w, http.StatusServiceUnavailable, unhealthyResponse("no stores configured"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	response := ReadinessResponse{Stores: make([]StoreHealth, 0, len(h.stores))}
	allHealthy := true

	for _, s := range h.stores {
		start := time.Now()
		err := s.Checker.Healthcheck(ctx)

		health := StoreHealth{
			Name:    s.Name,
			Backend: s.Backend,
			Latency: time.Since(start).String(),
			Status:  "healthy",
		}
		if err != nil {
			health.Status = "unhealthy"
			health.Error = err.Error()
			allHealthy = false
			logger.Warn("Store healthcheck failed", logger.Store(s.Name), logger.Err(err))
		}

		response.Stores = append(response.Stores, health)
	}

	if allHealthy {
		writeJSON(w, http.StatusOK, healthyResponse(response))
	} else {
		writeJSON(w, http.StatusServiceUnavailable, unhealthyResponseWithData(response))
	}
}
