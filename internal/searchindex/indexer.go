package searchindex

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"axinsight/internal/apperr"
	"axinsight/internal/logger"
)

// IndexerStatus is the indexer's service status plus its last run outcome.
type IndexerStatus struct {
	Status     string `json:"status"`
	LastResult string `json:"last_result"`
}

func (c *Client) checkIndexerConfig() error {
	if err := c.checkConfig(); err != nil {
		return err
	}
	if c.indexer == "" {
		return apperr.Configuration("indexer is not configured: set AZURE_SEARCH_INDEXER")
	}
	return nil
}

// Status fetches the indexer's current status.
func (c *Client) Status(ctx context.Context) (*IndexerStatus, error) {
	if err := c.checkIndexerConfig(); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/indexers/%s/status?api-version=%s", c.endpoint, c.indexer, c.apiVersion)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create indexer status request: %w", err)
	}
	req.Header.Set("api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, apperr.Retrieval("indexer status request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, apperr.RetrievalStatus("indexer status request failed", resp.StatusCode, string(raw))
	}

	var parsed struct {
		Status     string `json:"status"`
		LastResult struct {
			Status string `json:"status"`
		} `json:"lastResult"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, apperr.Retrieval("failed to parse indexer status", err)
	}
	return &IndexerStatus{Status: parsed.Status, LastResult: parsed.LastResult.Status}, nil
}

// Run triggers one indexer run. A 409 means a run is already in progress,
// which callers treat the same as a successful trigger.
func (c *Client) Run(ctx context.Context) error {
	return c.post(ctx, "run", []int{http.StatusAccepted, http.StatusNoContent, http.StatusConflict})
}

// Reset resets the indexer's change tracking so the next run reprocesses
// every document.
func (c *Client) Reset(ctx context.Context) error {
	return c.post(ctx, "reset", []int{http.StatusNoContent, http.StatusAccepted})
}

// ResetAndRun performs the forced reindex path: reset change tracking, then
// trigger a run.
func (c *Client) ResetAndRun(ctx context.Context) error {
	if err := c.Reset(ctx); err != nil {
		return err
	}
	return c.Run(ctx)
}

func (c *Client) post(ctx context.Context, action string, okStatuses []int) error {
	if err := c.checkIndexerConfig(); err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/indexers/%s/%s?api-version=%s", c.endpoint, c.indexer, action, c.apiVersion)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create indexer %s request: %w", action, err)
	}
	req.Header.Set("api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return apperr.Retrieval("indexer "+action+" request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	for _, status := range okStatuses {
		if resp.StatusCode == status {
			logger.Debug("indexer action accepted", "action", action, "status", resp.StatusCode)
			return nil
		}
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return apperr.RetrievalStatus("indexer "+action+" request failed", resp.StatusCode, string(raw))
}
