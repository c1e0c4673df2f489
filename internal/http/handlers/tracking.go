package handlers

import (
	"context"
	"time"

	"server/internal/domain"
	"server/internal/infra"
)

// Record tracking is auxiliary to the user-visible outcome. In
// best-effort mode every record-store failure is logged and swallowed so
// the request can still succeed; strict mode propagates the failure.

func (a *App) strictPersistence() bool {
	return a.Config != nil && a.Config.PersistenceMode == infra.PersistenceStrict
}

// trackCreate inserts the initial processing record. It returns false
// when tracking is disabled or the insert failed in best-effort mode;
// in that case later track calls become no-ops.
func (a *App) trackCreate(ctx context.Context, g *domain.Generation) (bool, error) {
	if a.Repo == nil {
		return false, nil
	}
	if err := a.Repo.Create(ctx, g); err != nil {
		if a.strictPersistence() {
			return false, err
		}
		a.Logger.Warn().Err(err).Str("generation_id", g.ID).
			Msg("failed to create tracking record, continuing without tracking")
		return false, nil
	}
	return true, nil
}

func (a *App) trackUpdate(ctx context.Context, id string, patch domain.GenerationPatch) {
	if a.Repo == nil {
		return
	}
	if err := a.Repo.Update(ctx, id, patch); err != nil {
		a.Logger.Warn().Err(err).Str("generation_id", id).
			Msg("failed to update tracking record")
	}
}

// trackComplete mirrors the two-step update of the original pipeline:
// first the terminal status with timing, then the storage URLs and the
// prompt that produced the image.
func (a *App) trackComplete(ctx context.Context, g domain.Generation, originalURL, generatedURL, prompt, description string, generatedSize int64, logoApplied bool) {
	status := domain.StatusCompleted
	patch := domain.GenerationPatch{
		Status:         &status,
		ProcessingTime: &g.ProcessingTime,
		CompletedAt:    &g.CompletedAt,
		LogoApplied:    &logoApplied,
	}
	a.trackUpdate(ctx, g.ID, patch)

	urls := domain.GenerationPatch{PromptUsed: &prompt, Description: &description, GeneratedSize: &generatedSize}
	if originalURL != "" {
		urls.OriginalURL = &originalURL
	}
	if generatedURL != "" {
		urls.GeneratedURL = &generatedURL
	}
	a.trackUpdate(ctx, g.ID, urls)
}

func (a *App) trackFail(ctx context.Context, id string, errMsg string, startedAt time.Time) {
	status := domain.StatusFailed
	now := time.Now()
	elapsed := now.Sub(startedAt).Seconds()
	a.trackUpdate(ctx, id, domain.GenerationPatch{
		Status:         &status,
		ErrorMessage:   &errMsg,
		ProcessingTime: &elapsed,
		CompletedAt:    &now,
	})
}
