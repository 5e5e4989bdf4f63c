package server

import (
	"encoding/json"
	"net/http"

	"axinsight/internal/apperr"
	"axinsight/internal/session"
)

// HealthResponse is the /health payload.
type HealthResponse struct {
	Status string `json:"status"`
}

// handleHealth handles the /health endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// sessionFor resolves the request's session from the X-Session-ID header,
// falling back to the shared default session.
func (s *Server) sessionFor(r *http.Request) *session.State {
	return s.sessions.Get(r.Header.Get("X-Session-ID"))
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error("Failed to encode JSON response", "error", err)
	}
}

// respondError writes an error response
func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"status":  status,
			"message": message,
		},
	})
}

// respondAppError maps error kinds to HTTP statuses: configuration gaps
// are 503 (the deployment, not the request, is at fault), upstream
// retrieval failures are 502, and indexing lag is a 202 with an
// "indexing" status so clients know to retry rather than give up.
func (s *Server) respondAppError(w http.ResponseWriter, err error) {
	kind, ok := apperr.KindOf(err)
	if !ok {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	switch kind {
	case apperr.KindConfiguration:
		s.respondError(w, http.StatusServiceUnavailable, err.Error())
	case apperr.KindRetrieval:
		s.respondError(w, http.StatusBadGateway, err.Error())
	case apperr.KindIndexingLag:
		s.respondJSON(w, http.StatusAccepted, map[string]interface{}{
			"status":  "indexing",
			"message": err.Error(),
		})
	default:
		s.respondError(w, http.StatusInternalServerError, err.Error())
	}
}
