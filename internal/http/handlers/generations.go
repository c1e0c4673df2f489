package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"server/internal/domain"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

type generationDTO struct {
	ID               string     `json:"id"`
	OriginalFilename string     `json:"original_image_filename"`
	OriginalSize     int64      `json:"original_image_size"`
	OriginalFormat   string     `json:"original_image_format"`
	OriginalURL      string     `json:"original_image_url,omitempty"`
	GeneratedURL     string     `json:"generated_image_url,omitempty"`
	GeneratedSize    int64      `json:"generated_image_size,omitempty"`
	PromptUsed       string     `json:"prompt_used,omitempty"`
	Description      string     `json:"description,omitempty"`
	Status           string     `json:"status"`
	ErrorMessage     string     `json:"error_message,omitempty"`
	ProcessingTime   *float64   `json:"processing_time"`
	LogoApplied      bool       `json:"logo_applied"`
	CreatedAt        time.Time  `json:"created_at"`
	StartedAt        *time.Time `json:"started_at"`
	CompletedAt      *time.Time `json:"completed_at"`
}

type pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalCount int64 `json:"total_count"`
	TotalPages int64 `json:"total_pages"`
}

func toDTO(g *domain.Generation) generationDTO {
	dto := generationDTO{
		ID:               g.ID,
		OriginalFilename: g.OriginalFilename,
		OriginalSize:     g.OriginalSize,
		OriginalFormat:   g.OriginalFormat,
		OriginalURL:      g.OriginalURL,
		GeneratedURL:     g.GeneratedURL,
		GeneratedSize:    g.GeneratedSize,
		PromptUsed:       g.PromptUsed,
		Description:      g.Description,
		Status:           string(g.Status),
		ErrorMessage:     g.ErrorMessage,
		LogoApplied:      g.LogoApplied,
		CreatedAt:        g.CreatedAt,
	}
	if g.Status.Terminal() {
		dto.ProcessingTime = &g.ProcessingTime
	}
	if !g.StartedAt.IsZero() {
		dto.StartedAt = &g.StartedAt
	}
	if !g.CompletedAt.IsZero() {
		dto.CompletedAt = &g.CompletedAt
	}
	return dto
}

// Generations returns a paginated list, newest first, optionally
// filtered by status.
func (a *App) Generations(w http.ResponseWriter, r *http.Request) {
	if a.Repo == nil {
		a.error(w, http.StatusServiceUnavailable, domain.KindDatabaseError, "database service is not available", "")
		return
	}

	page := queryInt(r, "page", 1)
	if page < 1 {
		page = 1
	}
	limit := queryInt(r, "limit", defaultPageLimit)
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	filter := domain.ListFilter{
		Page:   page,
		Limit:  limit,
		Status: domain.Status(r.URL.Query().Get("status")),
	}

	items, total, err := a.Repo.List(r.Context(), filter)
	if err != nil {
		a.Logger.Error().Err(err).Msg("failed to list generations")
		a.error(w, http.StatusInternalServerError, domain.KindDatabaseError, "failed to fetch generations", err.Error())
		return
	}

	dtos := make([]generationDTO, 0, len(items))
	for _, g := range items {
		dtos = append(dtos, toDTO(g))
	}
	totalPages := (total + int64(limit) - 1) / int64(limit)

	a.json(w, http.StatusOK, map[string]any{
		"generations": dtos,
		"pagination": pagination{
			Page:       page,
			Limit:      limit,
			TotalCount: total,
			TotalPages: totalPages,
		},
	})
}

// GenerationByID looks up a single record; 404 when absent.
func (a *App) GenerationByID(w http.ResponseWriter, r *http.Request) {
	if a.Repo == nil {
		a.error(w, http.StatusServiceUnavailable, domain.KindDatabaseError, "database service is not available", "")
		return
	}

	id := chi.URLParam(r, "id")
	g, err := a.Repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "NotFound", "generation not found", "")
			return
		}
		a.Logger.Error().Err(err).Str("generation_id", id).Msg("failed to load generation")
		a.error(w, http.StatusInternalServerError, domain.KindDatabaseError, "failed to fetch generation", err.Error())
		return
	}

	a.json(w, http.StatusOK, toDTO(g))
}

func queryInt(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}
