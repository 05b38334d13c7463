package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// Pinger checks reachability of the market-data upstream.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthChecker struct {
	upstream     Pinger
	mockFallback bool
	logger       *logrus.Logger
}

type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services"`
}

func NewHealthChecker(upstream Pinger, mockFallback bool, logger *logrus.Logger) *HealthChecker {
	return &HealthChecker{
		upstream:     upstream,
		mockFallback: mockFallback,
		logger:       logger,
	}
}

func (h *HealthChecker) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		status := h.CheckHealth(ctx)

		w.Header().Set("Content-Type", "application/json")
		if status.Status == StatusUnhealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		} else {
			w.WriteHeader(http.StatusOK)
		}

		json.NewEncoder(w).Encode(status)
	}
}

// CheckHealth reports degraded rather than unhealthy when the upstream is
// down but the mock table can still be served.
func (h *HealthChecker) CheckHealth(ctx context.Context) HealthStatus {
	services := make(map[string]string)
	overallStatus := StatusHealthy

	if err := h.upstream.Ping(ctx); err != nil {
		services["coingecko"] = "unhealthy: " + err.Error()
		if h.mockFallback {
			services["mock_data"] = StatusHealthy
			overallStatus = StatusDegraded
		} else {
			overallStatus = StatusUnhealthy
		}
		h.logger.WithError(err).Warn("Market data health check failed")
	} else {
		services["coingecko"] = StatusHealthy
	}

	return HealthStatus{
		Status:    overallStatus,
		Timestamp: time.Now(),
		Services:  services,
	}
}

// Register mounts the liveness and readiness endpoints.
func (h *HealthChecker) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.Handler())
	mux.HandleFunc("GET /ready", h.Handler()) // Kubernetes readiness probe
}
