package api

import "net/http"

type visitorsResponse struct {
	Count int64 `json:"count"`
}

type visitResponse struct {
	Counted bool  `json:"counted"`
	Count   int64 `json:"count"`
}

func (s *Server) handleVisitors(w http.ResponseWriter, r *http.Request) {
	n, err := s.deps.VisitorCount(r.Context())
	if err != nil {
		s.writeServiceError(w, r, "api.visitors", err)
		return
	}
	writeJSON(w, http.StatusOK, visitorsResponse{Count: n})
}

func (s *Server) handleVisit(w http.ResponseWriter, r *http.Request) {
	session := Session(w, r, s.sessionCookie)
	counted, n, err := s.deps.TrackVisit(r.Context(), session)
	if err != nil {
		s.writeServiceError(w, r, "api.visit", err)
		return
	}
	writeJSON(w, http.StatusOK, visitResponse{Counted: counted, Count: n})
}

func (s *Server) handleCountdown(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Countdown())
}

func (s *Server) handleSchedule(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Schedule())
}
