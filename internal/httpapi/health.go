package httpapi

import (
	"net/http"

	"log/slog"

	"github.com/jpcadena/aws-session-management/internal/config"
	"github.com/jpcadena/aws-session-management/internal/domain"
)

// registerHealthRoutes exposes the aggregate health of the configured
// backends. Every check contributes its own key next to the overall status.
func registerHealthRoutes(mux *http.ServeMux, logger *slog.Logger, services domain.Container) {
	mux.HandleFunc(config.APIPrefix+"/health", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		health := map[string]string{"status": "healthy"}
		status := http.StatusOK
		for _, check := range services.Checks {
			if err := check.Fn(r.Context()); err != nil {
				logger.Error("health check failed", "check", check.Name, "err", err)
				health[check.Name] = "unhealthy"
				health["status"] = "unhealthy"
				status = http.StatusServiceUnavailable
				continue
			}
			health[check.Name] = "healthy"
		}

		respondJSON(w, status, health)
	})
}
