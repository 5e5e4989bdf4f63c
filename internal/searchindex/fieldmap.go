package searchindex

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"axinsight/internal/apperr"
)

// FieldMap records which concrete index fields back each logical attribute.
// Detection is a diagnostic aid; query normalization works from the alias
// lists alone when the schema cannot be fetched.
type FieldMap struct {
	Content        string `json:"content"`
	Title          string `json:"title"`
	Blob           string `json:"blob"`
	BlobFilterable bool   `json:"blob_filterable"`
	Source         string `json:"source"`
}

// DetectFieldMap fetches the index schema and resolves each logical
// attribute to the first alias the schema defines.
func (c *Client) DetectFieldMap(ctx context.Context) (*FieldMap, error) {
	if err := c.checkConfig(); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/indexes/%s?api-version=%s", c.endpoint, c.index, c.apiVersion)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create schema request: %w", err)
	}
	req.Header.Set("api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, apperr.Retrieval("index schema request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, apperr.RetrievalStatus("index schema request failed", resp.StatusCode, string(raw))
	}

	var parsed struct {
		Fields []struct {
			Name       string `json:"name"`
			Filterable bool   `json:"filterable"`
		} `json:"fields"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, apperr.Retrieval("failed to parse index schema", err)
	}

	byName := make(map[string]bool, len(parsed.Fields))
	filterable := make(map[string]bool, len(parsed.Fields))
	for _, f := range parsed.Fields {
		byName[f.Name] = true
		filterable[f.Name] = f.Filterable
	}

	pick := func(aliases []string) string {
		for _, alias := range aliases {
			if byName[alias] {
				return alias
			}
		}
		return ""
	}

	fm := &FieldMap{
		Content: pick(contentAliases),
		Title:   pick(titleAliases),
		Blob:    pick(nameAliases),
		Source:  pick(sourceAliases),
	}
	fm.BlobFilterable = fm.Blob != "" && filterable[fm.Blob]
	return fm, nil
}
