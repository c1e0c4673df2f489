// Package storage provides the object-store port used by the pipeline
// plus a local filesystem adapter and an S3-compatible (MinIO) adapter,
// selected by configuration.
package storage

import (
	"context"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ObjectStore uploads image bytes and returns the storage key plus a
// publicly resolvable URL. Upload failures are non-fatal to the request
// pipeline; callers log and continue without a URL.
type ObjectStore interface {
	Upload(ctx context.Context, data []byte, filename, folder, contentType string) (key string, url string, err error)
	Name() string
}

// buildKey produces a collision-resistant, date-partitioned object key:
// folder/yyyy/mm/dd/<uuid><ext>. The extension comes from the original
// filename, falling back to the content type.
func buildKey(folder, filename, contentType string, now time.Time) string {
	ext := strings.ToLower(path.Ext(filename))
	if ext == "" {
		ext = extensionForContentType(contentType)
	}
	return path.Join(folder, now.UTC().Format("2006/01/02"), uuid.NewString()+ext)
}

func extensionForContentType(contentType string) string {
	switch strings.ToLower(contentType) {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".png"
	}
}
