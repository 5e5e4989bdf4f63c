package server

import (
	"encoding/json"
	"net/http"
)

// handleCombinedInsight handles POST /api/insight/combined
func (s *Server) handleCombinedInsight(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sess := s.sessionFor(r)
	if _, err := s.svc.CombinedInsight(r.Context(), sess, req.toCore()); err != nil {
		s.respondAppError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, s.svc.CombinedView(sess))
}

// handleCombinedView handles GET /api/insight/combined
func (s *Server) handleCombinedView(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.svc.CombinedView(s.sessionFor(r)))
}

// handleSessionReset handles POST /api/session/reset
func (s *Server) handleSessionReset(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(r)
	s.svc.ResetSession(sess)
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"status": "reset"})
}
