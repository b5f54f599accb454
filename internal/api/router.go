package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// healthCheckTimeout bounds the component checks behind /api/v1/health.
const healthCheckTimeout = 3 * time.Second

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(
		s.requestIDMiddleware,
		s.observeMiddleware,
		s.recoveryMiddleware,
		s.corsMiddleware,
		s.bodyLimitMiddleware,
	)

	if s.metrics != nil {
		r.Handle(s.metricsPath, s.metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/audit", s.handleListAudit)

		r.Route("/devices", func(r chi.Router) {
			r.Get("/", s.handleListDevices)
			r.Get("/stats", s.handleDeviceStats)
			r.Post("/on", s.handleTurnOnAll)
			r.Post("/off", s.handleTurnOffAll)
			r.Post("/save", s.handleSave)
			r.Post("/{kind}", s.handleCreateDevice)
			r.Get("/{id}", s.handleGetDevice)
			r.Put("/{id}", s.handleReplaceDevice)
			r.Delete("/{id}", s.handleDeleteDevice)
			r.Patch("/{id}/fields", s.handleEditField)
			r.Post("/{id}/on", s.handleTurnOn)
			r.Post("/{id}/off", s.handleTurnOff)
		})
	})

	return r
}

// handleHealth reports the server status and each configured component.
// Any failing component turns the response into 503 "degraded".
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	status, code := "ok", http.StatusOK
	components := make(map[string]string, len(s.health))
	for name, checker := range s.health {
		if err := checker.HealthCheck(ctx); err != nil {
			components[name] = err.Error()
			status, code = "degraded", http.StatusServiceUnavailable
			continue
		}
		components[name] = "ok"
	}

	writeJSON(w, code, map[string]any{
		"status":         status,
		"version":        s.version,
		"uptime_seconds": int64(time.Since(s.startTime).Seconds()),
		"devices":        s.registry.Count(),
		"components":     components,
	})
}
