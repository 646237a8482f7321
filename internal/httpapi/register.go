package httpapi

import (
	"encoding/json"
	"net/http"
	"os"
	"time"

	"log/slog"

	"github.com/jpcadena/aws-session-management/internal/config"
	"github.com/jpcadena/aws-session-management/internal/domain"
)

// Register attaches API routes to the provided mux.
func Register(mux *http.ServeMux, logger *slog.Logger, domainServices domain.Container, openapiJSON []byte) {
	mux.HandleFunc(config.APIPrefix+"/ping", func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{
			"status":  "ok",
			"time":    time.Now().UTC().Format(time.RFC3339),
			"server":  config.ProjectName,
			"version": config.APIVersion,
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			logger.Error("failed to write ping response", "err", err)
		}
	})

	// Images referenced by the docs page live under the assets directory.
	mux.Handle("/static/", http.StripPrefix("/static/",
		http.FileServerFS(os.DirFS(config.AssetsDir))))

	registerSessionRoutes(mux, logger, domainServices)
	registerHealthRoutes(mux, logger, domainServices)
	registerDocsRoutes(mux, logger, openapiJSON)
}
