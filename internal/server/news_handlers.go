package server

import (
	"encoding/json"
	"net/http"

	"axinsight/internal/core"
)

// NewsSearchRequest is the POST /api/news/search payload.
type NewsSearchRequest struct {
	Query     string `json:"query"`
	Count     int    `json:"count"`
	Freshness string `json:"freshness"` // Day, Week or Month
	StrictAND bool   `json:"strict_and"`
}

// NewsListResponse wraps a news result set.
type NewsListResponse struct {
	Query string          `json:"query"`
	Count int             `json:"count"`
	Items []core.NewsItem `json:"items"`
}

// AnalyzeRequest is the payload shared by the analysis endpoints.
type AnalyzeRequest struct {
	Company      string   `json:"company"`
	Technologies []string `json:"technologies"`
	Domains      []string `json:"domains"`
}

func (a AnalyzeRequest) toCore() core.AnalysisRequest {
	return core.AnalysisRequest{
		Company:      a.Company,
		Technologies: a.Technologies,
		Domains:      a.Domains,
	}
}

// handleNewsSearch handles POST /api/news/search
func (s *Server) handleNewsSearch(w http.ResponseWriter, r *http.Request) {
	var req NewsSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Query == "" {
		s.respondError(w, http.StatusBadRequest, "Query is required")
		return
	}
	if req.Count <= 0 {
		req.Count = 5
	}

	sess := s.sessionFor(r)
	items, err := s.svc.SearchNews(r.Context(), sess, req.Query, req.Count,
		core.FreshnessWindow(req.Freshness), req.StrictAND)
	if err != nil {
		s.respondAppError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, NewsListResponse{
		Query: req.Query,
		Count: len(items),
		Items: items,
	})
}

// handleNewsList handles GET /api/news
func (s *Server) handleNewsList(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(r)
	items := sess.NewsResults()
	s.respondJSON(w, http.StatusOK, NewsListResponse{
		Query: sess.LastQuery(),
		Count: len(items),
		Items: items,
	})
}

// handleAnalyzePestSwot handles POST /api/analysis/pest-swot
func (s *Server) handleAnalyzePestSwot(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sess := s.sessionFor(r)
	if _, err := s.svc.AnalyzePestSwot(r.Context(), sess, req.toCore()); err != nil {
		s.respondAppError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, s.svc.PestSwotView(sess))
}

// handlePestSwotView handles GET /api/analysis/pest-swot
func (s *Server) handlePestSwotView(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.svc.PestSwotView(s.sessionFor(r)))
}
