// Package searchindex queries the document search index over its REST API
// and normalizes hits into core.DocumentChunk values. Index schemas vary
// between deployments, so every logical attribute is resolved through an
// ordered list of known field aliases.
package searchindex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"axinsight/internal/apperr"
	"axinsight/internal/core"
	"axinsight/internal/logger"
)

// Field aliases per logical attribute, in resolution order.
var (
	contentAliases = []string{"merged_content", "content", "text", "page_content", "chunk", "document", "body"}
	titleAliases   = []string{"title", "file_name", "metadata_storage_name", "name", "filename", "doc_title"}
	sourceAliases  = []string{"url", "metadata_storage_path", "source"}
	nameAliases    = []string{"metadata_storage_name", "title", "file_name", "filename", "name"}
)

// Client is a search index client. Endpoint, key and index name are checked
// lazily on each call so a deployment without document search still serves
// the news-only features.
type Client struct {
	endpoint   string
	apiKey     string
	index      string
	indexer    string
	apiVersion string
	client     *http.Client
}

// New creates a search index client. The endpoint is normalized by trimming
// whitespace and a trailing slash.
func New(endpoint, apiKey, index, indexer, apiVersion string) *Client {
	return &Client{
		endpoint:   strings.TrimRight(strings.TrimSpace(endpoint), "/"),
		apiKey:     strings.TrimSpace(apiKey),
		index:      strings.TrimSpace(index),
		indexer:    strings.TrimSpace(indexer),
		apiVersion: apiVersion,
		client:     &http.Client{Timeout: 20 * time.Second},
	}
}

// HasIndexer reports whether an indexer name is configured.
func (c *Client) HasIndexer() bool { return c.indexer != "" }

func (c *Client) checkConfig() error {
	if c.endpoint == "" || c.apiKey == "" || c.index == "" {
		return apperr.Configuration("search index is not configured: set AZURE_SEARCH_ENDPOINT, AZURE_SEARCH_KEY and AZURE_SEARCH_INDEX")
	}
	return nil
}

// CandidateNames returns the match strings tried against the index for a
// stored blob name, in order: the full stored name, its basename, and any
// prefix token before the first underscore. The index may store only a
// transformed filename, so all three are tried until one query returns
// results.
func CandidateNames(blobName string) []string {
	name := strings.TrimSpace(blobName)
	if name == "" {
		return nil
	}
	candidates := []string{name}
	if base := path.Base(name); base != "" && base != name {
		candidates = append(candidates, base)
	}
	if i := strings.Index(name, "_"); i > 0 {
		if prefix := name[:i]; prefix != name {
			candidates = append(candidates, prefix)
		}
	}
	return candidates
}

// SearchByBlobName queries the index for fragments of exactly the uploaded
// document. Each candidate name is issued as a quoted-phrase query until one
// returns results; hits are then filtered so that a name field actually
// contains one of the candidates, a defense against the provider's fuzzy
// ranking returning unrelated documents. The filter checks the name field
// only; it does not verify the hit's content originates from the uploaded
// file, which is documented best-effort behavior.
func (c *Client) SearchByBlobName(ctx context.Context, blobName string, top int) ([]core.DocumentChunk, error) {
	if err := c.checkConfig(); err != nil {
		return nil, err
	}
	candidates := CandidateNames(blobName)
	if len(candidates) == 0 {
		return nil, nil
	}

	var hits []map[string]any
	for _, cand := range candidates {
		var err error
		hits, err = c.search(ctx, fmt.Sprintf("%q", cand), top)
		if err != nil {
			return nil, err
		}
		if len(hits) > 0 {
			break
		}
	}
	if len(hits) == 0 {
		return nil, nil
	}

	var confirmed []map[string]any
	for _, hit := range hits {
		name := pickString(hit, nameAliases)
		for _, cand := range candidates {
			if cand != "" && strings.Contains(name, cand) {
				confirmed = append(confirmed, hit)
				break
			}
		}
	}
	return toChunks(confirmed), nil
}

// SearchByKeyword queries the index with a free-text keyword, falling back
// to a quoted-phrase query when the plain query returns nothing.
func (c *Client) SearchByKeyword(ctx context.Context, query string, top int) ([]core.DocumentChunk, error) {
	if err := c.checkConfig(); err != nil {
		return nil, err
	}
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, nil
	}

	for _, phrase := range []string{q, fmt.Sprintf("%q", q)} {
		hits, err := c.search(ctx, phrase, top)
		if err != nil {
			return nil, err
		}
		if len(hits) > 0 {
			return toChunks(hits), nil
		}
	}
	return nil, nil
}

// search POSTs one query against the documents endpoint and returns the raw
// value array.
func (c *Client) search(ctx context.Context, phrase string, top int) ([]map[string]any, error) {
	body, err := json.Marshal(map[string]any{"search": phrase, "top": top})
	if err != nil {
		return nil, fmt.Errorf("failed to encode search request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/indexes/%s/docs/search?api-version=%s", c.endpoint, c.index, c.apiVersion)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, apperr.Retrieval("document search request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, apperr.RetrievalStatus("document search request failed", resp.StatusCode, string(raw))
	}

	var parsed struct {
		Value []map[string]any `json:"value"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, apperr.Retrieval("failed to parse search response", err)
	}

	logger.Debug("document search completed", "phrase", phrase, "hits", len(parsed.Value))
	return parsed.Value, nil
}

// toChunks normalizes raw hits through the field alias lists. Content may
// resolve to an empty string; that is a valid chunk, not a missing one.
func toChunks(hits []map[string]any) []core.DocumentChunk {
	chunks := make([]core.DocumentChunk, 0, len(hits))
	for _, hit := range hits {
		title := pickString(hit, titleAliases)
		if title == "" {
			title = "(제목 없음)"
		}
		chunks = append(chunks, core.DocumentChunk{
			Title:   title,
			Content: pickString(hit, contentAliases),
			Source:  pickString(hit, sourceAliases),
		})
	}
	return chunks
}

// pickString returns the first alias present in the hit with a non-empty
// string value.
func pickString(hit map[string]any, aliases []string) string {
	for _, alias := range aliases {
		if v, ok := hit[alias].(string); ok && strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
