package handlers

import (
	"net/http"
	"time"
)

type healthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services"`
}

// Health reports the reachability of each collaborator. The endpoint
// always answers 200 so orchestrators distinguish "process up" from
// "dependency degraded" by reading the body.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	services := map[string]string{}

	if a.Generator != nil && a.Generator.Healthy() {
		services["stability_ai"] = "healthy"
	} else {
		services["stability_ai"] = "unhealthy"
	}

	switch {
	case a.Repo == nil:
		services["database"] = "disabled"
	case a.Repo.Ping(r.Context()) == nil:
		services["database"] = "healthy"
	default:
		services["database"] = "unhealthy"
	}

	if a.Store == nil {
		services["storage"] = "disabled"
	} else {
		services["storage"] = a.Store.Name()
	}

	status := "healthy"
	for _, s := range services {
		if s == "unhealthy" {
			status = "degraded"
			break
		}
	}

	a.json(w, http.StatusOK, healthResponse{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Services:  services,
	})
}
