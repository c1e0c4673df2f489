package handlers

import (
	"net/http"

	"server/internal/domain"
)

const (
	defaultStatsWindowDays = 7
	maxStatsWindowDays     = 365
)

// Statistics aggregates generation outcomes over a trailing window of
// days (?days=, default 7).
func (a *App) Statistics(w http.ResponseWriter, r *http.Request) {
	if a.Repo == nil {
		a.error(w, http.StatusServiceUnavailable, domain.KindDatabaseError, "database service is not available", "")
		return
	}

	days := queryInt(r, "days", defaultStatsWindowDays)
	if days < 1 {
		days = defaultStatsWindowDays
	}
	if days > maxStatsWindowDays {
		days = maxStatsWindowDays
	}

	stats, err := a.Repo.Stats(r.Context(), days)
	if err != nil {
		a.Logger.Error().Err(err).Int("days", days).Msg("failed to compute statistics")
		a.error(w, http.StatusInternalServerError, domain.KindDatabaseError, "failed to fetch statistics", err.Error())
		return
	}

	a.json(w, http.StatusOK, stats)
}
