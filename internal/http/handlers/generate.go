package handlers

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"server/internal/domain"
	"server/internal/imagegen"
	"server/internal/imaging"
)

type generateData struct {
	Base64Image  string `json:"base64Image"`
	Message      string `json:"message"`
	GenerationID string `json:"generation_id"`
}

type generateResponse struct {
	Success bool         `json:"success"`
	Data    generateData `json:"data"`
}

// Generate runs the upload-to-result pipeline for one request: validate,
// track, generate, brand, store, respond. The steps are strictly
// sequential; storage and tracking failures degrade instead of failing
// the request, validation and generation failures are fatal.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()

	tracked := false
	generationID := ""
	defer func() {
		rec := recover()
		if rec == nil {
			return
		}
		a.Logger.Error().Interface("panic", rec).Str("generation_id", generationID).
			Msg("unhandled failure in generation pipeline")
		if tracked {
			a.trackFail(ctx, generationID, fmt.Sprintf("internal error: %v", rec), start)
		}
		a.error(w, http.StatusInternalServerError, domain.KindInternal,
			"internal server error", fmt.Sprintf("%v", rec))
	}()

	file, header, err := r.FormFile("image")
	if err != nil {
		a.error(w, http.StatusBadRequest, domain.KindInvalidFileType,
			`multipart field "image" is required`, err.Error())
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		a.error(w, http.StatusBadRequest, domain.KindImageProcessingError,
			"failed to read uploaded image", err.Error())
		return
	}

	contentType := header.Header.Get("Content-Type")
	if err := imaging.Validate(data, contentType, a.Config.MaxImageSizeMB, a.Config.AllowedImageTypes); err != nil {
		a.errorFrom(w, http.StatusBadRequest, err)
		return
	}
	uploadSize := int64(len(data))

	a.Logger.Info().
		Str("filename", header.Filename).
		Str("content_type", contentType).
		Int64("size_bytes", uploadSize).
		Msg("upload validated")

	// Keep the vendor payload bounded.
	data, err = imaging.ResizeIfNeeded(data, a.Config.MaxImageDimension)
	if err != nil {
		a.errorFrom(w, http.StatusBadRequest, err)
		return
	}

	g := domain.Generation{
		ID:               uuid.NewString(),
		OriginalFilename: header.Filename,
		OriginalSize:     uploadSize,
		OriginalFormat:   strings.TrimPrefix(contentType, "image/"),
		Status:           domain.StatusPending,
		CreatedAt:        start,
	}
	g, err = domain.Transition(g, domain.Event{Kind: domain.EventStart}, start)
	if err != nil {
		a.error(w, http.StatusInternalServerError, domain.KindInternal, "internal server error", err.Error())
		return
	}
	generationID = g.ID

	tracked, err = a.trackCreate(ctx, &g)
	if err != nil {
		// strict persistence only; best-effort never returns an error here
		a.errorFrom(w, http.StatusServiceUnavailable, err)
		return
	}

	description := a.Generator.DescribeImage(ctx, data)
	generated, err := a.Generator.Generate(ctx, data, description)
	if err != nil {
		if tracked {
			a.trackFail(ctx, g.ID, err.Error(), start)
		}
		a.Logger.Error().Err(err).Str("generation_id", g.ID).Msg("image generation failed")
		a.errorFrom(w, http.StatusInternalServerError, err)
		return
	}

	// Logo overlay failure is explicitly non-fatal: the caller gets the
	// unbranded generated image as a degraded success.
	final := generated
	logoApplied := false
	message := "Image generated successfully"
	if out, applied, overlayErr := imaging.OverlayLogo(generated, a.Config.LogoPath); overlayErr != nil {
		a.Logger.Warn().Err(overlayErr).Str("generation_id", g.ID).
			Msg("logo overlay failed, returning unbranded image")
		message = "Image generated successfully, logo overlay skipped"
	} else {
		final = out
		logoApplied = applied
		if !applied {
			message = "Image generated successfully, logo overlay skipped"
		}
	}

	var originalURL, generatedURL string
	if a.Store != nil {
		if _, url, upErr := a.Store.Upload(ctx, data, header.Filename, "originals", contentType); upErr != nil {
			a.Logger.Warn().Err(upErr).Str("generation_id", g.ID).Msg("failed to store original image")
		} else {
			originalURL = url
		}
		if _, url, upErr := a.Store.Upload(ctx, final, generatedFilename(header.Filename), "generations", "image/png"); upErr != nil {
			a.Logger.Warn().Err(upErr).Str("generation_id", g.ID).Msg("failed to store generated image")
		} else {
			generatedURL = url
		}
	}

	done, err := domain.Transition(g, domain.Event{Kind: domain.EventComplete}, time.Now())
	if err == nil && tracked {
		a.trackComplete(ctx, done, originalURL, generatedURL,
			imagegen.InpaintPrompt(description), description, int64(len(final)), logoApplied)
	}

	a.Logger.Info().
		Str("generation_id", g.ID).
		Bool("logo_applied", logoApplied).
		Float64("processing_time", done.ProcessingTime).
		Msg("generation completed")

	a.json(w, http.StatusOK, generateResponse{
		Success: true,
		Data: generateData{
			Base64Image:  imaging.ToBase64DataURI(final, imaging.DetectFormat(final)),
			Message:      message,
			GenerationID: g.ID,
		},
	})
}

func generatedFilename(original string) string {
	base := strings.TrimSuffix(filepath.Base(original), filepath.Ext(original))
	if base == "" || base == "." {
		base = "image"
	}
	return "generated_" + base + ".png"
}
