// Package imaging holds the pure image helpers used by the generation
// pipeline: upload validation, resizing, logo compositing and base64
// response encoding. Everything operates on byte slices and has no side
// effects beyond reading the logo asset from disk.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"strings"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"server/internal/domain"
)

// Validate checks an uploaded image against the configured size limit and
// MIME allow-list, then verifies the bytes actually decode as an image.
// The input is never modified.
func Validate(data []byte, contentType string, maxSizeMB int, allowedTypes []string) error {
	sizeMB := float64(len(data)) / (1024 * 1024)
	if sizeMB > float64(maxSizeMB) {
		return domain.NewError(
			domain.KindFileSizeExceeded,
			fmt.Sprintf("file size %.2fMB exceeds limit of %dMB", sizeMB, maxSizeMB),
			"",
		)
	}

	if contentType == "" || !typeAllowed(contentType, allowedTypes) {
		return domain.NewError(
			domain.KindInvalidFileType,
			fmt.Sprintf("file type %q not allowed, allowed types: %s", contentType, strings.Join(allowedTypes, ", ")),
			"",
		)
	}

	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return domain.WrapError(domain.KindImageProcessingError, "invalid image file", err)
	}

	return nil
}

func typeAllowed(contentType string, allowed []string) bool {
	for _, t := range allowed {
		if strings.EqualFold(strings.TrimSpace(t), contentType) {
			return true
		}
	}
	return false
}
