package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"axinsight/internal/analysis"
	"axinsight/internal/apperr"
	"axinsight/internal/config"
	"axinsight/internal/core"
	"axinsight/internal/llm"
	"axinsight/internal/news"
	"axinsight/internal/prompt"
	"axinsight/internal/searchindex"
)

type stubProvider struct {
	items []core.NewsItem
	err   error
}

func (p *stubProvider) Fetch(_ context.Context, _ string, _ news.Config) ([]core.NewsItem, error) {
	return p.items, p.err
}

func (p *stubProvider) Name() string { return "stub" }

type stubCompleter struct {
	response string
	err      error
}

func (c *stubCompleter) Complete(_ context.Context, _ prompt.Messages, _ llm.Options) (string, error) {
	return c.response, c.err
}

type stubUploader struct {
	blobName string
	err      error
}

func (u *stubUploader) Upload(_ context.Context, _ string, _ []byte) (string, error) {
	return u.blobName, u.err
}

type stubPoller struct {
	hits []core.DocumentChunk
	err  error
}

func (p *stubPoller) WaitForDocument(_ context.Context, _ string) ([]core.DocumentChunk, error) {
	return p.hits, p.err
}

func (p *stubPoller) ForceReindex(_ context.Context, _ string) ([]core.DocumentChunk, error) {
	return p.hits, p.err
}

type stubIndexerAdmin struct {
	status *searchindex.IndexerStatus
	fields *searchindex.FieldMap
	runErr error
	has    bool
}

func (a *stubIndexerAdmin) Status(_ context.Context) (*searchindex.IndexerStatus, error) {
	return a.status, nil
}

func (a *stubIndexerAdmin) Run(_ context.Context) error { return a.runErr }

func (a *stubIndexerAdmin) DetectFieldMap(_ context.Context) (*searchindex.FieldMap, error) {
	return a.fields, nil
}

func (a *stubIndexerAdmin) HasIndexer() bool { return a.has }

func newTestServer(deps analysis.Deps, indexer IndexerAdmin) *Server {
	return New(analysis.NewService(deps), indexer, config.Server{Host: "localhost", Port: 0})
}

func doJSON(t *testing.T, srv *Server, method, path string, body any, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, into any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(into); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(analysis.Deps{}, nil)
	rec := doJSON(t, srv, http.MethodGet, "/health", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp HealthResponse
	decodeBody(t, rec, &resp)
	if resp.Status != "ok" {
		t.Errorf("status = %q, want ok", resp.Status)
	}
}

func TestNewsSearchFlow(t *testing.T) {
	srv := newTestServer(analysis.Deps{
		News: &stubProvider{items: []core.NewsItem{{Title: "생성형 AI 확산"}}},
	}, nil)

	rec := doJSON(t, srv, http.MethodPost, "/api/news/search",
		NewsSearchRequest{Query: "생성형 AI"}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp NewsListResponse
	decodeBody(t, rec, &resp)
	if resp.Count != 1 || resp.Items[0].Title != "생성형 AI 확산" {
		t.Errorf("response = %+v", resp)
	}

	// The result set persists in the session and comes back on GET.
	rec = doJSON(t, srv, http.MethodGet, "/api/news", nil, nil)
	decodeBody(t, rec, &resp)
	if resp.Query != "생성형 AI" || resp.Count != 1 {
		t.Errorf("list response = %+v", resp)
	}
}

func TestNewsSearchValidation(t *testing.T) {
	srv := newTestServer(analysis.Deps{News: &stubProvider{}}, nil)

	rec := doJSON(t, srv, http.MethodPost, "/api/news/search", NewsSearchRequest{}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty query status = %d, want 400", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/news/search", strings.NewReader("not json"))
	rec2 := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec2, req)
	if rec2.Code != http.StatusBadRequest {
		t.Errorf("malformed body status = %d, want 400", rec2.Code)
	}
}

func TestErrorKindMapping(t *testing.T) {
	testCases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"Configuration maps to 503", apperr.Configuration("unset"), http.StatusServiceUnavailable},
		{"Retrieval maps to 502", apperr.Retrieval("upstream", nil), http.StatusBadGateway},
		{"Unknown maps to 500", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newTestServer(analysis.Deps{News: &stubProvider{err: tc.err}}, nil)
			rec := doJSON(t, srv, http.MethodPost, "/api/news/search",
				NewsSearchRequest{Query: "AI"}, nil)
			if rec.Code != tc.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
		})
	}
}

func TestSessionHeaderIsolation(t *testing.T) {
	srv := newTestServer(analysis.Deps{
		News: &stubProvider{items: []core.NewsItem{{Title: "기사"}}},
	}, nil)

	alpha := map[string]string{"X-Session-ID": "alpha"}
	doJSON(t, srv, http.MethodPost, "/api/news/search", NewsSearchRequest{Query: "AI"}, alpha)

	var resp NewsListResponse
	rec := doJSON(t, srv, http.MethodGet, "/api/news", nil, map[string]string{"X-Session-ID": "beta"})
	decodeBody(t, rec, &resp)
	if resp.Count != 0 {
		t.Error("beta session should not see alpha's results")
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/news", nil, alpha)
	decodeBody(t, rec, &resp)
	if resp.Count != 1 {
		t.Error("alpha session should keep its results")
	}
}

func TestAnalyzePestSwotEndpoint(t *testing.T) {
	srv := newTestServer(analysis.Deps{
		News: &stubProvider{items: []core.NewsItem{{Title: "기사"}}},
		LLM:  &stubCompleter{response: `{"PEST": {"P": ["정책 지원"]}, "one_liner": "요약"}`},
	}, nil)

	// No news yet: the analysis precondition fails as an upstream error.
	rec := doJSON(t, srv, http.MethodPost, "/api/analysis/pest-swot", AnalyzeRequest{}, nil)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status without news = %d, want 502", rec.Code)
	}

	doJSON(t, srv, http.MethodPost, "/api/news/search", NewsSearchRequest{Query: "AI"}, nil)
	rec = doJSON(t, srv, http.MethodPost, "/api/analysis/pest-swot",
		AnalyzeRequest{Company: "삼성SDS"}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var view analysis.PestSwotView
	decodeBody(t, rec, &view)
	if !view.HasResult || len(view.PEST.P) != 1 || view.OneLiner != "요약" {
		t.Errorf("view = %+v", view)
	}

	// The view endpoint serves the stored result without a new completion.
	rec = doJSON(t, srv, http.MethodGet, "/api/analysis/pest-swot", nil, nil)
	decodeBody(t, rec, &view)
	if !view.HasResult {
		t.Error("stored view should still be available")
	}
}

func multipartUpload(t *testing.T, srv *Server, filename, autoFetch string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	part.Write([]byte("문서 내용"))
	if autoFetch != "" {
		mw.WriteField("auto_fetch", autoFetch)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/documents/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestDocumentUpload(t *testing.T) {
	srv := newTestServer(analysis.Deps{
		Uploader: &stubUploader{blobName: "3f2a_report.pdf"},
		Poller:   &stubPoller{hits: []core.DocumentChunk{{Content: "본문"}}},
	}, nil)

	rec := multipartUpload(t, srv, "report.pdf", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp UploadResponse
	decodeBody(t, rec, &resp)
	if resp.BlobName != "3f2a_report.pdf" || resp.Count != 1 {
		t.Errorf("response = %+v", resp)
	}
}

func TestDocumentUploadIndexingLag(t *testing.T) {
	srv := newTestServer(analysis.Deps{
		Uploader: &stubUploader{blobName: "3f2a_report.pdf"},
		Poller:   &stubPoller{err: apperr.IndexingLag("document not yet indexed")},
	}, nil)

	rec := multipartUpload(t, srv, "report.pdf", "true")
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", rec.Code)
	}
	var resp map[string]any
	decodeBody(t, rec, &resp)
	if resp["status"] != "indexing" || resp["blob_name"] != "3f2a_report.pdf" {
		t.Errorf("response = %v", resp)
	}
}

func TestDocumentUploadNoAutoFetch(t *testing.T) {
	srv := newTestServer(analysis.Deps{
		Uploader: &stubUploader{blobName: "3f2a_report.pdf"},
	}, nil)

	rec := multipartUpload(t, srv, "report.pdf", "false")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp UploadResponse
	decodeBody(t, rec, &resp)
	if resp.Count != 0 {
		t.Errorf("auto_fetch=false should skip polling, got %d hits", resp.Count)
	}
}

func TestDocumentUploadRequiresFilePart(t *testing.T) {
	srv := newTestServer(analysis.Deps{Uploader: &stubUploader{blobName: "x"}}, nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("auto_fetch", "true")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/documents/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestDocumentSummaryPartial(t *testing.T) {
	srv := newTestServer(analysis.Deps{
		Docs: &stubDocIndex{chunks: []core.DocumentChunk{{Title: "report.pdf", Content: "본문"}}},
		LLM:  &stubCompleter{err: errors.New("upstream down")},
	}, nil)

	doJSON(t, srv, http.MethodPost, "/api/documents/search", DocumentSearchRequest{Keyword: "전략"}, nil)
	rec := doJSON(t, srv, http.MethodGet, "/api/documents/summary", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 with a partial preview", rec.Code)
	}
	var resp SummaryResponse
	decodeBody(t, rec, &resp)
	if !resp.Partial || resp.Summary == "" || resp.Error == "" {
		t.Errorf("response = %+v", resp)
	}
}

type stubDocIndex struct {
	chunks []core.DocumentChunk
}

func (d *stubDocIndex) SearchByKeyword(_ context.Context, _ string, _ int) ([]core.DocumentChunk, error) {
	return d.chunks, nil
}

func TestIndexerEndpointsUnconfigured(t *testing.T) {
	srv := newTestServer(analysis.Deps{}, nil)
	if rec := doJSON(t, srv, http.MethodGet, "/api/indexer/status", nil, nil); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status endpoint = %d, want 503", rec.Code)
	}
	if rec := doJSON(t, srv, http.MethodPost, "/api/indexer/run", nil, nil); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("run endpoint = %d, want 503", rec.Code)
	}
	if rec := doJSON(t, srv, http.MethodGet, "/api/indexer/fields", nil, nil); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("fields endpoint = %d, want 503", rec.Code)
	}
}

func TestIndexerEndpoints(t *testing.T) {
	admin := &stubIndexerAdmin{
		status: &searchindex.IndexerStatus{Status: "running", LastResult: "success"},
		has:    true,
	}
	srv := newTestServer(analysis.Deps{}, admin)

	rec := doJSON(t, srv, http.MethodGet, "/api/indexer/status", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var status searchindex.IndexerStatus
	decodeBody(t, rec, &status)
	if status.LastResult != "success" {
		t.Errorf("status = %+v", status)
	}

	if rec := doJSON(t, srv, http.MethodPost, "/api/indexer/run", nil, nil); rec.Code != http.StatusAccepted {
		t.Errorf("run = %d, want 202", rec.Code)
	}
}

func TestIndexerFieldsEndpoint(t *testing.T) {
	admin := &stubIndexerAdmin{
		fields: &searchindex.FieldMap{
			Content:        "merged_content",
			Blob:           "metadata_storage_name",
			BlobFilterable: true,
		},
	}
	srv := newTestServer(analysis.Deps{}, admin)

	rec := doJSON(t, srv, http.MethodGet, "/api/indexer/fields", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var fields searchindex.FieldMap
	decodeBody(t, rec, &fields)
	if fields.Content != "merged_content" || !fields.BlobFilterable {
		t.Errorf("fields = %+v", fields)
	}
}

func TestCombinedInsightEndpoint(t *testing.T) {
	srv := newTestServer(analysis.Deps{
		News: &stubProvider{items: []core.NewsItem{{Title: "기사"}}},
		Docs: &stubDocIndex{chunks: []core.DocumentChunk{{Content: "본문"}}},
		LLM: &stubCompleter{response: `{
			"internal_summary": ["내부 요약"],
			"strengths": ["기술력"],
			"proposals": {"cooperation": ["제휴 추진"]}
		}`},
	}, nil)

	// Missing evidence sets surface as an upstream error.
	rec := doJSON(t, srv, http.MethodPost, "/api/insight/combined", AnalyzeRequest{}, nil)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status without evidence = %d, want 502", rec.Code)
	}

	doJSON(t, srv, http.MethodPost, "/api/news/search", NewsSearchRequest{Query: "AI"}, nil)
	doJSON(t, srv, http.MethodPost, "/api/documents/search", DocumentSearchRequest{Keyword: "전략"}, nil)
	rec = doJSON(t, srv, http.MethodPost, "/api/insight/combined", AnalyzeRequest{Company: "삼성SDS"}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var view analysis.CombinedView
	decodeBody(t, rec, &view)
	if !view.HasResult || len(view.InternalSummary) != 1 {
		t.Errorf("view = %+v", view)
	}
	if view.PriorityChoice != "cooperation" || len(view.PrioritySummary) != 1 {
		t.Errorf("priority = %q %v", view.PriorityChoice, view.PrioritySummary)
	}
}

func TestSessionReset(t *testing.T) {
	srv := newTestServer(analysis.Deps{
		News: &stubProvider{items: []core.NewsItem{{Title: "기사"}}},
	}, nil)

	doJSON(t, srv, http.MethodPost, "/api/news/search", NewsSearchRequest{Query: "AI"}, nil)
	if rec := doJSON(t, srv, http.MethodPost, "/api/session/reset", nil, nil); rec.Code != http.StatusOK {
		t.Fatalf("reset status = %d", rec.Code)
	}

	var resp NewsListResponse
	rec := doJSON(t, srv, http.MethodGet, "/api/news", nil, nil)
	decodeBody(t, rec, &resp)
	if resp.Count != 0 {
		t.Error("reset should clear the session's results")
	}
}
