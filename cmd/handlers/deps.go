package handlers

import (
	"time"

	"axinsight/internal/analysis"
	"axinsight/internal/blobstore"
	"axinsight/internal/config"
	"axinsight/internal/llm"
	"axinsight/internal/logger"
	"axinsight/internal/news"
	"axinsight/internal/poller"
	"axinsight/internal/searchindex"
	"axinsight/internal/store"
)

// services bundles everything a command needs to run the analysis flows.
// Collaborators whose credentials are missing stay nil; the service
// reports a configuration error when a flow actually needs one.
type services struct {
	svc     *analysis.Service
	indexer *searchindex.Client // nil when no search index is configured
	cache   *store.Store        // nil when the cache could not be opened
}

// buildServices wires the dependency graph from configuration. It never
// fails outright: each missing credential disables one feature with a
// warning, so a partially configured deployment still serves the rest.
func buildServices(cfg *config.Config) *services {
	deps := analysis.Deps{
		NewsTTL: config.TimeoutOrDefault(cfg.Cache.TTL.News, time.Hour),
		DocTTL:  config.TimeoutOrDefault(cfg.Cache.TTL.Documents, 10*time.Minute),
	}

	cacheStore, err := store.NewStore(cfg.Cache.Directory)
	if err != nil {
		logger.Warn("Cache disabled: failed to open cache store", "error", err)
		cacheStore = nil
	} else {
		deps.Cache = cacheStore
	}

	provider, err := news.Select(cfg.News.NaverClientID, cfg.News.NaverClientSecret, cfg.News.NewsAPIKey)
	if err != nil {
		logger.Warn("News search disabled", "error", err)
	} else {
		deps.News = provider
		logger.Info("News provider selected", "provider", provider.Name())
	}

	llmClient, err := llm.NewClient(cfg.Completion.Endpoint, cfg.Completion.APIKey,
		cfg.Completion.APIVersion, cfg.Completion.Deployment)
	if err != nil {
		logger.Warn("Completion disabled", "error", err)
	} else {
		if cacheStore != nil {
			llmClient = llmClient.WithCache(cacheStore, config.TimeoutOrDefault(cfg.Cache.TTL.Completions, time.Hour))
		}
		deps.LLM = llmClient
	}

	if cfg.Storage.ConnectionString != "" {
		uploader, err := blobstore.New(cfg.Storage.ConnectionString, cfg.Storage.Container)
		if err != nil {
			logger.Warn("Document upload disabled", "error", err)
		} else {
			deps.Uploader = uploader
		}
	} else {
		logger.Warn("Document upload disabled: AZURE_STORAGE_CONN is not set")
	}

	var indexer *searchindex.Client
	if cfg.SearchIndex.Endpoint != "" && cfg.SearchIndex.APIKey != "" && cfg.SearchIndex.Index != "" {
		indexer = searchindex.New(cfg.SearchIndex.Endpoint, cfg.SearchIndex.APIKey,
			cfg.SearchIndex.Index, cfg.SearchIndex.Indexer, cfg.SearchIndex.APIVersion)
		deps.Docs = indexer
		var inv poller.Invalidator
		if cacheStore != nil {
			inv = cacheStore
		}
		deps.Poller = poller.New(indexer, inv)
	} else {
		logger.Warn("Document search disabled: search index is not configured")
	}

	return &services{
		svc:     analysis.NewService(deps),
		indexer: indexer,
		cache:   cacheStore,
	}
}

// close releases held resources.
func (s *services) close() {
	if s.cache != nil {
		if err := s.cache.Close(); err != nil {
			logger.Error("Failed to close cache store", err)
		}
	}
}
