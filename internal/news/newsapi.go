package news

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"axinsight/internal/apperr"
	"axinsight/internal/core"
	"axinsight/internal/logger"
)

const newsAPIEndpoint = "https://newsapi.org/v2/everything"

// NewsAPIProvider implements Provider using the NewsAPI "everything" search.
type NewsAPIProvider struct {
	apiKey  string
	client  *http.Client
	baseURL string
	now     func() time.Time
}

// NewNewsAPIProvider creates a new NewsAPI provider.
func NewNewsAPIProvider(apiKey string) *NewsAPIProvider {
	return &NewsAPIProvider{
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 20 * time.Second},
		baseURL: newsAPIEndpoint,
		now:     time.Now,
	}
}

// Name returns the name of this provider.
func (p *NewsAPIProvider) Name() string { return "NewsAPI" }

// Fetch performs a Korean-language article search. With config.StrictAND the
// whitespace-delimited query is rewritten as a conjunctive search string.
func (p *NewsAPIProvider) Fetch(ctx context.Context, query string, config Config) ([]core.NewsItem, error) {
	if p.apiKey == "" {
		return nil, apperr.Configuration("NEWSAPI_KEY is not set")
	}
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, apperr.Retrieval("news query is empty", nil)
	}
	if config.StrictAND {
		if terms := strings.Fields(q); len(terms) > 0 {
			q = strings.Join(terms, " AND ")
		}
	}

	fromDate := p.now().UTC().AddDate(0, 0, -config.Freshness.Days()).Format("2006-01-02")

	params := url.Values{}
	params.Set("q", q)
	params.Set("from", fromDate)
	params.Set("sortBy", "publishedAt")
	params.Set("pageSize", strconv.Itoa(config.Count))
	params.Set("language", "ko")
	params.Set("apiKey", p.apiKey)
	params.Set("searchIn", "title,description,content")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create NewsAPI request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, apperr.Retrieval("NewsAPI request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, apperr.RetrievalStatus("NewsAPI request failed", resp.StatusCode, string(body))
	}

	var apiResponse struct {
		Articles []struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			Content     string `json:"content"`
			URL         string `json:"url"`
			PublishedAt string `json:"publishedAt"`
			Source      struct {
				Name string `json:"name"`
			} `json:"source"`
		} `json:"articles"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return nil, apperr.Retrieval("failed to parse NewsAPI response", err)
	}

	items := make([]core.NewsItem, 0, len(apiResponse.Articles))
	for _, a := range apiResponse.Articles {
		title := a.Title
		if title == "" {
			title = "(제목 없음)"
		}
		snippet := a.Description
		if snippet == "" {
			snippet = a.Content
		}
		provider := a.Source.Name
		if provider == "" {
			provider = "NewsAPI"
		}
		items = append(items, core.NewsItem{
			Title:       title,
			Snippet:     snippet,
			URL:         a.URL,
			PublishedAt: a.PublishedAt,
			Provider:    provider,
		})
	}
	if len(items) > config.Count {
		items = items[:config.Count]
	}

	logger.Info("NewsAPI search completed", "query", q, "results_found", len(items))
	return items, nil
}
