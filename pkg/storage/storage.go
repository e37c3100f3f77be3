// Package storage provides blob storage for document files with Azure Blob
// Storage and in-memory implementations. The core domain stores only the
// opaque keys produced here, never the bytes.
package storage

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/sahilkapur/ledgerdesk/pkg/lifecycle"
)

// System manages blob storage operations and lifecycle coordination.
type System interface {
	// Start registers a startup hook that initializes the storage backend.
	Start(lc *lifecycle.Coordinator) error
	// Upload streams data to a blob at the given key with the specified content type.
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) error
	// Download returns a stream for the blob at the given key. The caller must
	// close the reader. Returns ErrNotFound if the blob does not exist.
	Download(ctx context.Context, key string) (*DownloadResult, error)
	// Delete removes the blob at the given key. Returns ErrNotFound if the blob
	// does not exist.
	Delete(ctx context.Context, key string) error
	// Exists reports whether a blob exists at the given key.
	Exists(ctx context.Context, key string) (bool, error)
}

// DownloadResult carries a blob stream with its content type.
type DownloadResult struct {
	Body        io.ReadCloser
	ContentType string
}

// New creates a storage system for the configured backend.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	if cfg.Backend == BackendMemory {
		return NewMemory(logger), nil
	}
	return newAzure(cfg, logger)
}

func validateKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if strings.Contains(key, "..") {
		return ErrInvalidKey
	}
	return nil
}
