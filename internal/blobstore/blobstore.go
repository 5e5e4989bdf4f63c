// Package blobstore uploads documents to the blob container the search
// indexer watches. Uploaded names are prefixed with a fresh UUID so repeated
// uploads of the same file never collide, and the prefix doubles as a
// high-precision match token for the indexing poller.
package blobstore

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/google/uuid"

	"axinsight/internal/apperr"
	"axinsight/internal/logger"
)

// Uploader stores documents in a blob container.
type Uploader interface {
	// Upload stores data under a generated unique name derived from
	// filename and returns the stored name.
	Upload(ctx context.Context, filename string, data []byte) (string, error)
}

// Client is an Uploader backed by the blob storage service.
type Client struct {
	client    *azblob.Client
	container string
}

// New creates a blob client from a connection string. A missing connection
// string is a configuration error, detected before any network call.
func New(connectionString, container string) (*Client, error) {
	if connectionString == "" {
		return nil, apperr.Configuration("blob storage is not configured: set AZURE_STORAGE_CONN")
	}
	if container == "" {
		container = "docs"
	}
	client, err := azblob.NewClientFromConnectionString(connectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create blob client: %w", err)
	}
	return &Client{client: client, container: container}, nil
}

// Upload stores data as "<uuid>_<basename>" with overwrite-on-conflict
// semantics and returns the stored blob name.
func (c *Client) Upload(ctx context.Context, filename string, data []byte) (string, error) {
	blobName := fmt.Sprintf("%s_%s", uuid.NewString(), filepath.Base(filename))
	if _, err := c.client.UploadBuffer(ctx, c.container, blobName, data, nil); err != nil {
		return "", apperr.Retrieval("blob upload failed", err)
	}
	logger.Info("document uploaded", "blob", blobName, "bytes", len(data))
	return blobName, nil
}
