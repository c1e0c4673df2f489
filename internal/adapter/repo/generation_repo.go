package repo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"server/internal/domain"
)

// GenerationRepositoryPG implements domain.GenerationRepository on
// PostgreSQL.
type GenerationRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewGenerationRepository creates a generation repository backed by
// PostgreSQL.
func NewGenerationRepository(pool *pgxpool.Pool) *GenerationRepositoryPG {
	return &GenerationRepositoryPG{pool: pool}
}

const generationColumns = `
id, original_image_filename, original_image_size, original_image_format,
original_image_url, generated_image_url, generated_image_size,
prompt_used, description, status, error_message, processing_time,
logo_applied, created_at, started_at, completed_at`

// Create inserts a new generation record.
func (r *GenerationRepositoryPG) Create(ctx context.Context, g *domain.Generation) error {
	query := `
INSERT INTO generations (
  id, original_image_filename, original_image_size, original_image_format,
  original_image_url, generated_image_url, generated_image_size,
  prompt_used, description, status, error_message, logo_applied,
  created_at, started_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
`
	_, err := r.pool.Exec(ctx, query,
		g.ID,
		g.OriginalFilename,
		g.OriginalSize,
		g.OriginalFormat,
		g.OriginalURL,
		g.GeneratedURL,
		g.GeneratedSize,
		g.PromptUsed,
		g.Description,
		string(g.Status),
		g.ErrorMessage,
		g.LogoApplied,
		g.CreatedAt,
		nullableTime(g.StartedAt),
	)
	if err != nil {
		return domain.WrapError(domain.KindDatabaseError, "failed to create generation record", err)
	}
	return nil
}

// Update applies a partial update; nil patch fields leave the stored
// value unchanged.
func (r *GenerationRepositoryPG) Update(ctx context.Context, id string, patch domain.GenerationPatch) error {
	query := `
UPDATE generations
SET status          = COALESCE($2, status),
    original_image_url  = COALESCE($3, original_image_url),
    generated_image_url = COALESCE($4, generated_image_url),
    generated_image_size = COALESCE($5, generated_image_size),
    prompt_used     = COALESCE($6, prompt_used),
    description     = COALESCE($7, description),
    error_message   = COALESCE($8, error_message),
    processing_time = COALESCE($9, processing_time),
    logo_applied    = COALESCE($10, logo_applied),
    started_at      = COALESCE($11, started_at),
    completed_at    = COALESCE($12, completed_at)
WHERE id = $1;
`
	tag, err := r.pool.Exec(ctx, query,
		id,
		(*string)(patch.Status),
		patch.OriginalURL,
		patch.GeneratedURL,
		patch.GeneratedSize,
		patch.PromptUsed,
		patch.Description,
		patch.ErrorMessage,
		patch.ProcessingTime,
		patch.LogoApplied,
		patch.StartedAt,
		patch.CompletedAt,
	)
	if err != nil {
		return domain.WrapError(domain.KindDatabaseError, "failed to update generation record", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID fetches a generation by its identifier.
func (r *GenerationRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Generation, error) {
	query := `SELECT ` + generationColumns + ` FROM generations WHERE id = $1;`
	g, err := scanGeneration(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.WrapError(domain.KindDatabaseError, "failed to load generation record", err)
	}
	return g, nil
}

// List returns a page of generations plus the total count, optionally
// filtered by status, newest first.
func (r *GenerationRepositoryPG) List(ctx context.Context, f domain.ListFilter) ([]*domain.Generation, int64, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 20
	}
	offset := (f.Page - 1) * f.Limit

	var (
		rows  pgx.Rows
		total int64
		err   error
	)
	if f.Status != "" {
		countQuery := `SELECT COUNT(*) FROM generations WHERE status = $1;`
		if err = r.pool.QueryRow(ctx, countQuery, string(f.Status)).Scan(&total); err != nil {
			return nil, 0, domain.WrapError(domain.KindDatabaseError, "failed to count generations", err)
		}
		query := `SELECT ` + generationColumns + `
FROM generations WHERE status = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3;`
		rows, err = r.pool.Query(ctx, query, string(f.Status), f.Limit, offset)
	} else {
		countQuery := `SELECT COUNT(*) FROM generations;`
		if err = r.pool.QueryRow(ctx, countQuery).Scan(&total); err != nil {
			return nil, 0, domain.WrapError(domain.KindDatabaseError, "failed to count generations", err)
		}
		query := `SELECT ` + generationColumns + `
FROM generations ORDER BY created_at DESC LIMIT $1 OFFSET $2;`
		rows, err = r.pool.Query(ctx, query, f.Limit, offset)
	}
	if err != nil {
		return nil, 0, domain.WrapError(domain.KindDatabaseError, "failed to list generations", err)
	}
	defer rows.Close()

	var out []*domain.Generation
	for rows.Next() {
		g, err := scanGeneration(rows)
		if err != nil {
			return nil, 0, domain.WrapError(domain.KindDatabaseError, "failed to scan generation row", err)
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, domain.WrapError(domain.KindDatabaseError, "failed to list generations", err)
	}
	return out, total, nil
}

// Stats aggregates generation outcomes over the trailing day window.
func (r *GenerationRepositoryPG) Stats(ctx context.Context, days int) (*domain.Statistics, error) {
	if days < 1 {
		days = 7
	}
	query := `
SELECT COUNT(*),
       COUNT(*) FILTER (WHERE status = 'completed'),
       COUNT(*) FILTER (WHERE status = 'failed'),
       COALESCE(AVG(processing_time) FILTER (WHERE status = 'completed'), 0)
FROM generations
WHERE created_at >= NOW() - ($1 * INTERVAL '1 day');
`
	stats := &domain.Statistics{WindowDays: days}
	err := r.pool.QueryRow(ctx, query, days).Scan(
		&stats.TotalGenerations,
		&stats.CompletedGenerations,
		&stats.FailedGenerations,
		&stats.AverageProcessingTime,
	)
	if err != nil {
		return nil, domain.WrapError(domain.KindDatabaseError, "failed to load statistics", err)
	}
	if stats.TotalGenerations > 0 {
		stats.SuccessRate = float64(stats.CompletedGenerations) / float64(stats.TotalGenerations) * 100
	}
	return stats, nil
}

// Ping reports database reachability for the health endpoint.
func (r *GenerationRepositoryPG) Ping(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return domain.WrapError(domain.KindDatabaseError, "database unreachable", err)
	}
	return nil
}

func scanGeneration(row pgx.Row) (*domain.Generation, error) {
	var (
		g              domain.Generation
		status         string
		errMsg         *string
		processingTime *float64
		startedAt      *time.Time
		completedAt    *time.Time
	)
	if err := row.Scan(
		&g.ID,
		&g.OriginalFilename,
		&g.OriginalSize,
		&g.OriginalFormat,
		&g.OriginalURL,
		&g.GeneratedURL,
		&g.GeneratedSize,
		&g.PromptUsed,
		&g.Description,
		&status,
		&errMsg,
		&processingTime,
		&g.LogoApplied,
		&g.CreatedAt,
		&startedAt,
		&completedAt,
	); err != nil {
		return nil, err
	}
	g.Status = domain.Status(status)
	if errMsg != nil {
		g.ErrorMessage = *errMsg
	}
	if processingTime != nil {
		g.ProcessingTime = *processingTime
	}
	if startedAt != nil {
		g.StartedAt = *startedAt
	}
	if completedAt != nil {
		g.CompletedAt = *completedAt
	}
	return &g, nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

var _ domain.GenerationRepository = (*GenerationRepositoryPG)(nil)
