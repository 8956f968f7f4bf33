package web

import (
	"context"
	"net/http"
	"time"

	"github.com/JonMunkholm/quizbank/internal/core"
	"github.com/JonMunkholm/quizbank/internal/logging"
)

const healthCheckTimeout = 5 * time.Second

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("Quiz API Running"))
}

// HealthResponse reports database reachability and import slot usage.
type HealthResponse struct {
	Status  string                   `json:"status"`
	Imports core.ImportLimiterStatus `json:"imports"`
}

// handleHealth pings the database without reconnecting.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	resp := HealthResponse{Status: "ok", Imports: s.service.ImportStatus()}
	if err := s.service.HealthCheck(ctx); err != nil {
		logging.FromContext(r.Context()).Warn("health check failed", "error", err)
		resp.Status = "unavailable"
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
