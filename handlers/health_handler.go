package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/tuitshoxrux/copilot/app"
	"github.com/tuitshoxrux/copilot/utils"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// HealthCheck handles GET /healthz.
// Basic liveness check - always returns 200 if the process is serving.
func HealthCheck(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		utils.WriteJSON(w, http.StatusOK, HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// ReadinessCheck handles GET /readyz.
// Readiness check - validates that the vector store is reachable.
func ReadinessCheck(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := make(map[string]string)
		status := "healthy"
		httpStatus := http.StatusOK

		if err := deps.DB.HealthCheck(r.Context()); err != nil {
			deps.Logger.Warn("database health check failed", zap.Error(err))
			checks["database"] = "unhealthy"
			status = "unhealthy"
			httpStatus = http.StatusServiceUnavailable
		} else {
			checks["database"] = "healthy"
		}

		if deps.Config != nil {
			if deps.Config.Providers.Embedding.APIKey == "" || deps.Config.Providers.Generation.APIKey == "" {
				checks["providers"] = "unconfigured"
				status = "unhealthy"
				httpStatus = http.StatusServiceUnavailable
			} else {
				checks["providers"] = "configured"
			}
		}

		utils.WriteJSON(w, httpStatus, HealthResponse{
			Status:    status,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Checks:    checks,
		})
	}
}
