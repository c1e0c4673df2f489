// Package handlers contains the HTTP surface of the service. App is the
// dependency container: every external collaborator (generation vendor,
// object store, record store) is injected at process start so tests can
// swap in stubs.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"server/internal/domain"
	"server/internal/imagegen"
	"server/internal/infra"
	"server/internal/storage"
)

type App struct {
	Config    *infra.Config
	Logger    infra.Logger
	Generator imagegen.Generator
	Store     storage.ObjectStore          // nil = no object storage
	Repo      domain.GenerationRepository  // nil = no-tracking mode
}

func NewApp(cfg *infra.Config, logger infra.Logger, gen imagegen.Generator, store storage.ObjectStore, repo domain.GenerationRepository) *App {
	return &App{
		Config:    cfg,
		Logger:    logger,
		Generator: gen,
		Store:     store,
		Repo:      repo,
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// errorResponse is the structured error body: a machine-readable kind in
// "error" plus a human-readable message. Details are included only in
// debug mode so internals never leak to clients by default.
type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (a *App) error(w http.ResponseWriter, code int, kind domain.ErrorKind, message, details string) {
	resp := errorResponse{Error: string(kind), Message: message}
	if a.Config != nil && a.Config.Debug {
		resp.Details = details
	}
	a.json(w, code, resp)
}

// errorFrom maps a pipeline error to its kind and writes the response.
func (a *App) errorFrom(w http.ResponseWriter, code int, err error) {
	kind := domain.KindOf(err)
	message := err.Error()
	details := ""
	var de *domain.Error
	if errors.As(err, &de) {
		message = de.Message
		details = de.Details
	}
	a.error(w, code, kind, message, details)
}
