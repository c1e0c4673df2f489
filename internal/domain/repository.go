package domain

import (
	"context"
	"time"
)

// GenerationPatch is a partial update; nil fields are left unchanged.
type GenerationPatch struct {
	Status         *Status
	OriginalURL    *string
	GeneratedURL   *string
	GeneratedSize  *int64
	PromptUsed     *string
	Description    *string
	ErrorMessage   *string
	ProcessingTime *float64
	LogoApplied    *bool
	StartedAt      *time.Time
	CompletedAt    *time.Time
}

// ListFilter narrows and pages List results.
type ListFilter struct {
	Page   int
	Limit  int
	Status Status // empty = all
}

// Statistics aggregates generation outcomes over a day window.
type Statistics struct {
	WindowDays            int     `json:"window_days"`
	TotalGenerations      int64   `json:"total_generations"`
	CompletedGenerations  int64   `json:"completed"`
	FailedGenerations     int64   `json:"failed"`
	SuccessRate           float64 `json:"success_rate"`
	AverageProcessingTime float64 `json:"average_processing_time"`
}

// GenerationRepository persists generation records.
type GenerationRepository interface {
	Create(ctx context.Context, g *Generation) error
	Update(ctx context.Context, id string, patch GenerationPatch) error
	GetByID(ctx context.Context, id string) (*Generation, error)
	List(ctx context.Context, f ListFilter) ([]*Generation, int64, error)
	Stats(ctx context.Context, days int) (*Statistics, error)
	Ping(ctx context.Context) error
}
