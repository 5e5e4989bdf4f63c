// Package news fetches Korean-language articles from the configured
// providers and normalizes them into core.NewsItem values.
package news

import (
	"context"

	"axinsight/internal/core"
)

// Provider defines the unified interface for news providers.
type Provider interface {
	// Fetch performs a search and returns at most config.Count items.
	Fetch(ctx context.Context, query string, config Config) ([]core.NewsItem, error)

	// Name returns the name of the provider.
	Name() string
}

// Config holds per-request options for news fetches.
type Config struct {
	Count     int                  // maximum number of items to return
	Freshness core.FreshnessWindow // lookback window (Day/Week/Month)
	StrictAND bool                 // rewrite whitespace-split terms conjunctively (NewsAPI only)
}

// Select returns the preferred configured provider: Naver when both of its
// credentials are set, otherwise NewsAPI, otherwise a configuration error.
func Select(naverID, naverSecret, newsAPIKey string) (Provider, error) {
	if naverID != "" && naverSecret != "" {
		return NewNaverProvider(naverID, naverSecret), nil
	}
	if newsAPIKey != "" {
		return NewNewsAPIProvider(newsAPIKey), nil
	}
	return nil, errNoProviderConfigured()
}
