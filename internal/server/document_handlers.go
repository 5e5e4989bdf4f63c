package server

import (
	"encoding/json"
	"io"
	"net/http"

	"axinsight/internal/apperr"
	"axinsight/internal/core"
)

// uploadSizeLimit caps document uploads. The index pipeline chunks
// documents server-side, so large files only waste blob storage.
const uploadSizeLimit = 32 << 20

// DocumentSearchRequest is the POST /api/documents/search payload.
type DocumentSearchRequest struct {
	Keyword string `json:"keyword"`
}

// DocumentListResponse wraps a document result set.
type DocumentListResponse struct {
	Count int                  `json:"count"`
	Hits  []core.DocumentChunk `json:"hits"`
}

// UploadResponse reports the stored blob name and any hits the
// auto-fetch poll produced.
type UploadResponse struct {
	BlobName string               `json:"blob_name"`
	Count    int                  `json:"count"`
	Hits     []core.DocumentChunk `json:"hits"`
}

// SummaryResponse carries the document summary. Partial is set when the
// completion failed and the summary is a raw-content preview instead.
type SummaryResponse struct {
	Summary string `json:"summary"`
	Partial bool   `json:"partial"`
	Error   string `json:"error,omitempty"`
}

// handleDocumentUpload handles POST /api/documents/upload (multipart:
// "file" part, optional "auto_fetch" field, default true)
func (s *Server) handleDocumentUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(uploadSizeLimit); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "A file part named 'file' is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}
	autoFetch := r.FormValue("auto_fetch") != "false"

	sess := s.sessionFor(r)
	blobName, hits, err := s.svc.UploadDocument(r.Context(), sess, header.Filename, data, autoFetch)
	if err != nil {
		// The upload itself succeeded when a blob name came back; an
		// indexing-lag response still tells the client where the file went.
		if blobName != "" && apperr.IsKind(err, apperr.KindIndexingLag) {
			s.respondJSON(w, http.StatusAccepted, map[string]interface{}{
				"status":    "indexing",
				"blob_name": blobName,
				"message":   err.Error(),
			})
			return
		}
		s.respondAppError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, UploadResponse{
		BlobName: blobName,
		Count:    len(hits),
		Hits:     hits,
	})
}

// handleDocumentSearch handles POST /api/documents/search
func (s *Server) handleDocumentSearch(w http.ResponseWriter, r *http.Request) {
	var req DocumentSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Keyword == "" {
		s.respondError(w, http.StatusBadRequest, "Keyword is required")
		return
	}

	sess := s.sessionFor(r)
	hits, err := s.svc.SearchDocuments(r.Context(), sess, req.Keyword)
	if err != nil {
		s.respondAppError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, DocumentListResponse{Count: len(hits), Hits: hits})
}

// handleDocumentSummary handles GET /api/documents/summary
func (s *Server) handleDocumentSummary(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(r)
	if summary := sess.DocSummary(); summary != "" {
		s.respondJSON(w, http.StatusOK, SummaryResponse{Summary: summary})
		return
	}

	summary, err := s.svc.SummarizeDocuments(r.Context(), sess)
	if err != nil {
		if summary != "" {
			// Partial success: the preview is better than nothing.
			s.respondJSON(w, http.StatusOK, SummaryResponse{
				Summary: summary,
				Partial: true,
				Error:   err.Error(),
			})
			return
		}
		s.respondAppError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, SummaryResponse{Summary: summary})
}

// handleIndexerStatus handles GET /api/indexer/status
func (s *Server) handleIndexerStatus(w http.ResponseWriter, r *http.Request) {
	if s.indexer == nil || !s.indexer.HasIndexer() {
		s.respondError(w, http.StatusServiceUnavailable, "No indexer is configured")
		return
	}
	status, err := s.indexer.Status(r.Context())
	if err != nil {
		s.respondAppError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, status)
}

// handleIndexerFields handles GET /api/indexer/fields. The field map needs
// only the index, not an indexer, so it is not gated on HasIndexer.
func (s *Server) handleIndexerFields(w http.ResponseWriter, r *http.Request) {
	if s.indexer == nil {
		s.respondError(w, http.StatusServiceUnavailable, "No search index is configured")
		return
	}
	fields, err := s.indexer.DetectFieldMap(r.Context())
	if err != nil {
		s.respondAppError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, fields)
}

// handleIndexerRun handles POST /api/indexer/run
func (s *Server) handleIndexerRun(w http.ResponseWriter, r *http.Request) {
	if s.indexer == nil || !s.indexer.HasIndexer() {
		s.respondError(w, http.StatusServiceUnavailable, "No indexer is configured")
		return
	}
	if err := s.indexer.Run(r.Context()); err != nil {
		s.respondAppError(w, err)
		return
	}
	s.respondJSON(w, http.StatusAccepted, map[string]interface{}{"status": "running"})
}

// handleIndexerReindex handles POST /api/indexer/reindex
func (s *Server) handleIndexerReindex(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(r)
	hits, err := s.svc.ForceReindex(r.Context(), sess)
	if err != nil {
		s.respondAppError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, DocumentListResponse{Count: len(hits), Hits: hits})
}
