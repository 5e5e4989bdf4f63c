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

const naverEndpoint = "https://openapi.naver.com/v1/search/news.json"

// NaverProvider implements Provider using the Naver news search API. Naver
// carries its two credential values in request headers rather than query
// parameters, and marks query matches in titles and descriptions with
// literal <b> tags that must be stripped.
type NaverProvider struct {
	clientID     string
	clientSecret string
	client       *http.Client
	baseURL      string
}

// NewNaverProvider creates a new Naver news provider.
func NewNaverProvider(clientID, clientSecret string) *NaverProvider {
	return &NaverProvider{
		clientID:     clientID,
		clientSecret: clientSecret,
		client:       &http.Client{Timeout: 15 * time.Second},
		baseURL:      naverEndpoint,
	}
}

// Name returns the name of this provider.
func (p *NaverProvider) Name() string { return "Naver News" }

// Fetch performs a news search sorted by date. Freshness and StrictAND are
// NewsAPI-only options and are ignored here.
func (p *NaverProvider) Fetch(ctx context.Context, query string, config Config) ([]core.NewsItem, error) {
	if p.clientID == "" || p.clientSecret == "" {
		return nil, apperr.Configuration("NAVER_CLIENT_ID/NAVER_CLIENT_SECRET are not set")
	}
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, apperr.Retrieval("news query is empty", nil)
	}

	params := url.Values{}
	params.Set("query", q)
	params.Set("display", strconv.Itoa(config.Count))
	params.Set("sort", "date")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Naver request: %w", err)
	}
	req.Header.Set("X-Naver-Client-Id", p.clientID)
	req.Header.Set("X-Naver-Client-Secret", p.clientSecret)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, apperr.Retrieval("Naver news request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, apperr.RetrievalStatus("Naver news request failed", resp.StatusCode, string(body))
	}

	var apiResponse struct {
		Items []struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			Link        string `json:"link"`
			PubDate     string `json:"pubDate"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return nil, apperr.Retrieval("failed to parse Naver response", err)
	}

	items := make([]core.NewsItem, 0, len(apiResponse.Items))
	for _, a := range apiResponse.Items {
		title := stripBoldTags(a.Title)
		if title == "" {
			title = "(제목 없음)"
		}
		items = append(items, core.NewsItem{
			Title:       title,
			Snippet:     stripBoldTags(a.Description),
			URL:         a.Link,
			PublishedAt: a.PubDate,
			Provider:    "Naver News",
		})
	}
	if len(items) > config.Count {
		items = items[:config.Count]
	}

	logger.Info("Naver news search completed", "query", q, "results_found", len(items))
	return items, nil
}

// stripBoldTags removes the literal <b></b> highlight markup Naver injects
// around query matches.
func stripBoldTags(s string) string {
	s = strings.ReplaceAll(s, "<b>", "")
	s = strings.ReplaceAll(s, "</b>", "")
	return s
}
