package api

import (
	"context"
	"net/http"

	service "github.com/okian/convention/internal/app"
)

// StatsProvider reports service statistics.
type StatsProvider interface {
	GetStats(ctx context.Context) service.Stats
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		writeError(w, http.StatusServiceUnavailable, "unavailable", nil)
		return
	}
	writeJSON(w, http.StatusOK, s.stats.GetStats(r.Context()))
}
