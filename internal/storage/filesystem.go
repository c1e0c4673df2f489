package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"server/internal/domain"
)

// FileStore persists images on the local filesystem. It is intended for
// development and test environments where an object storage service is
// not available.
type FileStore struct {
	basePath string
	baseURL  string
}

// NewFileStore initializes a FileStore rooted at basePath. Public URLs
// are built from baseURL, e.g. http://localhost:3001/storage.
func NewFileStore(basePath, baseURL string) (*FileStore, error) {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" {
		return nil, errors.New("storage: base path is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: ensure base path: %w", err)
	}
	return &FileStore{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}, nil
}

func (s *FileStore) Name() string { return "filesystem" }

// BasePath returns the configured root directory.
func (s *FileStore) BasePath() string {
	if s == nil {
		return ""
	}
	return s.basePath
}

// Upload writes the image under a date-partitioned, uuid-named key and
// returns the key plus its public URL.
func (s *FileStore) Upload(ctx context.Context, data []byte, filename, folder, contentType string) (string, string, error) {
	if s == nil {
		return "", "", domain.NewError(domain.KindStorageError, "no object store configured", "")
	}
	if err := ctx.Err(); err != nil {
		return "", "", domain.WrapError(domain.KindStorageError, "upload canceled", err)
	}

	key, err := sanitizeKey(buildKey(folder, filename, contentType, time.Now()))
	if err != nil {
		return "", "", domain.WrapError(domain.KindStorageError, "invalid storage key", err)
	}

	fullPath := filepath.Join(s.basePath, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", "", domain.WrapError(domain.KindStorageError, "failed to create storage directory", err)
	}
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return "", "", domain.WrapError(domain.KindStorageError, "failed to write image", err)
	}

	return key, s.baseURL + "/" + key, nil
}

// sanitizeKey normalizes a key and prevents escaping the storage root.
func sanitizeKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", errors.New("storage: key is required")
	}
	key = strings.ReplaceAll(key, "\\", "/")
	key = strings.TrimPrefix(key, "./")
	key = strings.TrimLeft(key, "/")
	cleaned := filepath.Clean(key)
	cleaned = strings.ReplaceAll(cleaned, "\\", "/")
	if cleaned == "." || strings.HasPrefix(cleaned, "../") {
		return "", errors.New("storage: invalid key")
	}
	return cleaned, nil
}

var _ ObjectStore = (*FileStore)(nil)
