// Package analysis ties the retrieval and completion components into the
// dashboard flows: news search, news-only analysis, document upload and
// retrieval, document summary and the combined insight. One method per
// user action, operating on an explicit session state.
package analysis

import (
	"context"
	"strconv"
	"strings"
	"time"

	"axinsight/internal/apperr"
	"axinsight/internal/core"
	"axinsight/internal/insight"
	"axinsight/internal/llm"
	"axinsight/internal/logger"
	"axinsight/internal/news"
	"axinsight/internal/prompt"
	"axinsight/internal/session"
	"axinsight/internal/store"
)

// Token budgets per completion task, tuned for the prompt shapes each task
// produces.
const (
	newsAnalysisMaxTokens = 800
	docSummaryMaxTokens   = 1100
	combinedMaxTokens     = 800
)

// fallbackPreviewLimit caps the raw-content preview shown when the summary
// completion fails.
const fallbackPreviewLimit = 600

// Completer produces one completion for a system/user message pair.
type Completer interface {
	Complete(ctx context.Context, messages prompt.Messages, opts llm.Options) (string, error)
}

// Uploader stores an uploaded document and returns its stored name.
type Uploader interface {
	Upload(ctx context.Context, filename string, data []byte) (string, error)
}

// DocIndex is the keyword-search side of the document index.
type DocIndex interface {
	SearchByKeyword(ctx context.Context, query string, top int) ([]core.DocumentChunk, error)
}

// DocPoller waits out indexing lag after an upload.
type DocPoller interface {
	WaitForDocument(ctx context.Context, blobName string) ([]core.DocumentChunk, error)
	ForceReindex(ctx context.Context, blobName string) ([]core.DocumentChunk, error)
}

// QueryCache caches retrieval results. A nil items slice is a miss.
type QueryCache interface {
	GetCachedNews(queryKey string, maxAge time.Duration) ([]core.NewsItem, error)
	CacheNews(queryKey string, items []core.NewsItem) error
	GetCachedDocQuery(queryKey string, maxAge time.Duration) ([]core.DocumentChunk, error)
	CacheDocQuery(queryKey string, chunks []core.DocumentChunk) error
	InvalidateDocQueries() error
}

// Deps are the collaborators a Service drives. News, Uploader, Docs, Poller
// and Cache may each be nil when the corresponding feature is not
// configured; the methods that need them report a configuration error.
type Deps struct {
	News     news.Provider
	LLM      Completer
	Uploader Uploader
	Docs     DocIndex
	Poller   DocPoller
	Cache    QueryCache

	NewsTTL time.Duration
	DocTTL  time.Duration
	DocTop  int
}

// Service orchestrates the dashboard flows.
type Service struct {
	deps Deps
}

// NewService creates the orchestration service.
func NewService(deps Deps) *Service {
	if deps.DocTop <= 0 {
		deps.DocTop = 10
	}
	return &Service{deps: deps}
}

// SearchNews fetches news for query and stores the result set in the
// session, replacing the previous one. Analysis results derived from the
// old set are cleared by the session in the same step.
func (s *Service) SearchNews(ctx context.Context, sess *session.State, query string, count int, freshness core.FreshnessWindow, strictAND bool) ([]core.NewsItem, error) {
	if s.deps.News == nil {
		return nil, apperr.Configuration("no news provider is configured: set NAVER_CLIENT_ID/NAVER_CLIENT_SECRET or NEWSAPI_KEY")
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperr.Retrieval("empty news query", nil)
	}

	cacheKey := store.Key("news", s.deps.News.Name(), query,
		strconv.Itoa(count), string(freshness), strconv.FormatBool(strictAND))
	if s.deps.Cache != nil {
		if items, err := s.deps.Cache.GetCachedNews(cacheKey, s.deps.NewsTTL); err == nil && len(items) > 0 {
			logger.Debug("news cache hit", "query", query)
			sess.SetNewsResults(query, items)
			return items, nil
		}
	}

	items, err := s.deps.News.Fetch(ctx, query, news.Config{
		Count:     count,
		Freshness: freshness,
		StrictAND: strictAND,
	})
	if err != nil {
		return nil, err
	}
	sess.SetNewsResults(query, items)
	if s.deps.Cache != nil && len(items) > 0 {
		if err := s.deps.Cache.CacheNews(cacheKey, items); err != nil {
			logger.Warn("failed to cache news results", "error", err)
		}
	}
	return items, nil
}

// AnalyzePestSwot runs the news-only analysis over the session's news
// results and stores the raw completion text. Parsing is deferred to
// PestSwotView so a malformed response never loses the raw text.
func (s *Service) AnalyzePestSwot(ctx context.Context, sess *session.State, req core.AnalysisRequest) (string, error) {
	if s.deps.LLM == nil {
		return "", apperr.Configuration("completion service is not configured")
	}
	items := sess.NewsResults()
	if len(items) == 0 {
		return "", apperr.Retrieval("no news results to analyze: run a news search first", nil)
	}
	raw, err := s.deps.LLM.Complete(ctx, prompt.BuildNewsAnalysis(req, items), llm.Options{MaxTokens: newsAnalysisMaxTokens})
	if err != nil {
		return "", err
	}
	sess.SetPestSwotRaw(raw)
	return raw, nil
}

// UploadDocument stores the document and, when autoFetch is set, waits for
// it to appear in the index, storing the hits in the session. The stored
// blob name is recorded in the session either way so ForceReindex can
// target it later even after an indexing-lag exhaustion.
func (s *Service) UploadDocument(ctx context.Context, sess *session.State, filename string, data []byte, autoFetch bool) (string, []core.DocumentChunk, error) {
	if s.deps.Uploader == nil {
		return "", nil, apperr.Configuration("document storage is not configured: set AZURE_STORAGE_CONN")
	}
	blobName, err := s.deps.Uploader.Upload(ctx, filename, data)
	if err != nil {
		return "", nil, err
	}
	sess.SetLastBlobName(blobName)
	logger.Info("document uploaded", "blob", blobName, "bytes", len(data))

	if !autoFetch {
		return blobName, nil, nil
	}
	if s.deps.Poller == nil {
		return blobName, nil, apperr.Configuration("document index is not configured: set AZURE_SEARCH_ENDPOINT, AZURE_SEARCH_KEY and AZURE_SEARCH_INDEX")
	}
	hits, err := s.deps.Poller.WaitForDocument(ctx, blobName)
	if err != nil {
		return blobName, nil, err
	}
	sess.SetDocHits(hits)
	return blobName, hits, nil
}

// ForceReindex resets and reruns the indexer, then polls for the session's
// last uploaded document.
func (s *Service) ForceReindex(ctx context.Context, sess *session.State) ([]core.DocumentChunk, error) {
	if s.deps.Poller == nil {
		return nil, apperr.Configuration("document index is not configured")
	}
	blobName := sess.LastBlobName()
	if blobName == "" {
		return nil, apperr.Retrieval("no uploaded document in this session to reindex", nil)
	}
	hits, err := s.deps.Poller.ForceReindex(ctx, blobName)
	if err != nil {
		return nil, err
	}
	sess.SetDocHits(hits)
	return hits, nil
}

// SearchDocuments runs a keyword search over the document index and stores
// the hits in the session.
func (s *Service) SearchDocuments(ctx context.Context, sess *session.State, keyword string) ([]core.DocumentChunk, error) {
	if s.deps.Docs == nil {
		return nil, apperr.Configuration("document index is not configured")
	}
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, apperr.Retrieval("empty document query", nil)
	}

	cacheKey := store.Key("docs", keyword, strconv.Itoa(s.deps.DocTop))
	if s.deps.Cache != nil {
		if chunks, err := s.deps.Cache.GetCachedDocQuery(cacheKey, s.deps.DocTTL); err == nil && len(chunks) > 0 {
			logger.Debug("document cache hit", "keyword", keyword)
			sess.SetDocHits(chunks)
			return chunks, nil
		}
	}

	chunks, err := s.deps.Docs.SearchByKeyword(ctx, keyword, s.deps.DocTop)
	if err != nil {
		return nil, err
	}
	sess.SetDocHits(chunks)
	if s.deps.Cache != nil && len(chunks) > 0 {
		if err := s.deps.Cache.CacheDocQuery(cacheKey, chunks); err != nil {
			logger.Warn("failed to cache document results", "error", err)
		}
	}
	return chunks, nil
}

// SummarizeDocuments summarizes the session's document hits. When the
// completion fails, a citation-cleaned preview of the merged raw content is
// returned alongside the error so the caller can still show something.
func (s *Service) SummarizeDocuments(ctx context.Context, sess *session.State) (string, error) {
	hits := sess.DocHits()
	if len(hits) == 0 {
		return "", apperr.Retrieval("no document results to summarize: search or upload a document first", nil)
	}
	merged := prompt.MergeChunks(hits, prompt.DefaultDocBudget)
	if s.deps.LLM == nil {
		return "", apperr.Configuration("completion service is not configured")
	}
	summary, err := s.deps.LLM.Complete(ctx, prompt.BuildDocSummary(merged), llm.Options{MaxTokens: docSummaryMaxTokens})
	if err != nil {
		preview := merged
		if runes := []rune(preview); len(runes) > fallbackPreviewLimit {
			preview = string(runes[:fallbackPreviewLimit]) + "…"
		}
		return insight.CleanCitations(preview), err
	}
	sess.SetDocSummary(summary)
	return summary, nil
}

// CombinedInsight runs the combined analysis over both evidence sets and
// stores the raw completion text. Both sets are required: the prompt's
// grounding rule has nothing to cite otherwise.
func (s *Service) CombinedInsight(ctx context.Context, sess *session.State, req core.AnalysisRequest) (string, error) {
	if s.deps.LLM == nil {
		return "", apperr.Configuration("completion service is not configured")
	}
	newsItems := sess.NewsResults()
	docHits := sess.DocHits()
	if len(newsItems) == 0 || len(docHits) == 0 {
		return "", apperr.Retrieval("combined insight needs both news results and document results", nil)
	}
	raw, err := s.deps.LLM.Complete(ctx, prompt.BuildCombinedInsight(req, newsItems, docHits), llm.Options{MaxTokens: combinedMaxTokens})
	if err != nil {
		return "", err
	}
	sess.SetCombinedRaw(raw)
	return raw, nil
}

// ResetSession clears the session back to its start state and drops the
// cached document queries, so the next search observes the index afresh.
func (s *Service) ResetSession(sess *session.State) {
	sess.Reset()
	if s.deps.Cache != nil {
		if err := s.deps.Cache.InvalidateDocQueries(); err != nil {
			logger.Warn("failed to invalidate document query cache", "error", err)
		}
	}
}
