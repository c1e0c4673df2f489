package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"server/internal/http/handlers"
	"server/internal/middleware"
)

// NewRouter wires the HTTP surface. Cross-cutting middleware applies to
// everything; the per-minute rate limit guards only the generation
// endpoint since that is the one that spends vendor credits.
func NewRouter(app *handlers.App) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(app.Logger),
		middleware.CORS(app.Config.CORSOrigins),
	)

	r.Get("/health", app.Health)

	r.Route("/api", func(r chi.Router) {
		r.With(middleware.RateLimit(app.Config.RateLimitPerMin, time.Minute)).
			Post("/generate-dog-image", app.Generate)

		r.Get("/generations", app.Generations)
		r.Get("/generations/{id}", app.GenerationByID)
		r.Get("/statistics", app.Statistics)
	})

	return r
}
