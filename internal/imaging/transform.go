package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io/fs"
	"os"
	"strings"

	xdraw "golang.org/x/image/draw"

	"server/internal/domain"
)

const (
	logoWidthRatio = 0.1 // logo width relative to background width
	logoPadding    = 20  // px from the bottom-right corner
	jpegQuality    = 90
)

// ResizeIfNeeded scales the image down so its longest side equals
// maxDimension, preserving aspect ratio. Images already within bounds are
// returned byte-identical. The output is re-encoded in the detected
// source format; formats without an encoder (webp) fall back to PNG.
func ResizeIfNeeded(data []byte, maxDimension int) ([]byte, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, domain.WrapError(domain.KindImageProcessingError, "failed to decode image", err)
	}
	if cfg.Width <= maxDimension && cfg.Height <= maxDimension {
		return data, nil
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, domain.WrapError(domain.KindImageProcessingError, "failed to decode image", err)
	}

	var newW, newH int
	if cfg.Width > cfg.Height {
		newW = maxDimension
		newH = cfg.Height * maxDimension / cfg.Width
	} else {
		newH = maxDimension
		newW = cfg.Width * maxDimension / cfg.Height
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)

	out, err := encodeAs(dst, format)
	if err != nil {
		return nil, domain.WrapError(domain.KindImageProcessingError, "failed to re-encode resized image", err)
	}
	return out, nil
}

// OverlayLogo composites the logo at logoPath onto the bottom-right
// corner of the background, scaled to 10% of the background width. A
// missing logo file is not an error: the background is returned
// unchanged with applied=false so the pipeline can degrade instead of
// failing.
func OverlayLogo(background []byte, logoPath string) (out []byte, applied bool, err error) {
	logoBytes, err := os.ReadFile(logoPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return background, false, nil
		}
		return nil, false, domain.WrapError(domain.KindLogoOverlayError, "failed to read logo file", err)
	}

	bg, _, err := image.Decode(bytes.NewReader(background))
	if err != nil {
		return nil, false, domain.WrapError(domain.KindLogoOverlayError, "failed to decode background image", err)
	}
	logo, _, err := image.Decode(bytes.NewReader(logoBytes))
	if err != nil {
		return nil, false, domain.WrapError(domain.KindLogoOverlayError, "failed to decode logo image", err)
	}

	bgBounds := bg.Bounds()
	bgW, bgH := bgBounds.Dx(), bgBounds.Dy()

	logoW := int(float64(bgW) * logoWidthRatio)
	if logoW < 1 {
		logoW = 1
	}
	logoBounds := logo.Bounds()
	logoH := logoW * logoBounds.Dy() / logoBounds.Dx()
	if logoH < 1 {
		logoH = 1
	}

	// Alpha-capable canvas with the background drawn first.
	canvas := image.NewRGBA(image.Rect(0, 0, bgW, bgH))
	xdraw.Draw(canvas, canvas.Bounds(), bg, bgBounds.Min, xdraw.Src)

	scaled := image.NewRGBA(image.Rect(0, 0, logoW, logoH))
	xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), logo, logoBounds, xdraw.Src, nil)

	pos := image.Rect(bgW-logoW-logoPadding, bgH-logoH-logoPadding, bgW-logoPadding, bgH-logoPadding)
	xdraw.Draw(canvas, pos, scaled, image.Point{}, xdraw.Over)

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, false, domain.WrapError(domain.KindLogoOverlayError, "failed to encode composited image", err)
	}
	return buf.Bytes(), true, nil
}

// ToBase64DataURI encodes data as a data URI. Total: it succeeds for any
// input, including empty bytes.
func ToBase64DataURI(data []byte, format string) string {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = "png"
	}
	return fmt.Sprintf("data:image/%s;base64,%s", format, base64.StdEncoding.EncodeToString(data))
}

// DetectFormat reports the registered image format of data ("png",
// "jpeg", "webp"), or empty when the bytes do not decode.
func DetectFormat(data []byte) string {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return ""
	}
	return format
}

func encodeAs(img image.Image, format string) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case "jpeg":
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
			return nil, err
		}
	default:
		// png and formats without an encoder, webp included
		if err := png.Encode(&buf, img); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}
