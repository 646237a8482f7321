package httpapi

import (
	"html/template"
	"net/http"

	"log/slog"

	"github.com/jpcadena/aws-session-management/internal/config"
)

// OpenAPIPath serves the marshaled API document.
const OpenAPIPath = config.APIPrefix + "/openapi.json"

// swaggerPage bootstraps Swagger UI from the jsDelivr CDN. The inline script
// stays constant so its sha256 can be pinned through SWAGGER_SHA_KEY.
var swaggerPage = template.Must(template.New("swagger").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8"/>
<link type="text/css" rel="stylesheet" href="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui.css">
<link rel="shortcut icon" href="/static/images/project.png">
<title>{{.Title}}</title>
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
<script>
const ui = SwaggerUIBundle({
    url: '{{.OpenAPIURL}}',
    dom_id: '#swagger-ui',
    presets: [SwaggerUIBundle.presets.apis, SwaggerUIBundle.SwaggerUIStandalonePreset],
    layout: 'BaseLayout',
    deepLinking: true,
    showExtensions: true,
    showCommonExtensions: true,
})
</script>
</body>
</html>
`))

type swaggerData struct {
	Title      string
	OpenAPIURL string
}

func registerDocsRoutes(mux *http.ServeMux, logger *slog.Logger, openapiJSON []byte) {
	mux.HandleFunc(OpenAPIPath, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write(openapiJSON); err != nil {
			logger.Error("failed to write api document", "err", err)
		}
	})

	mux.HandleFunc("/docs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		err := swaggerPage.Execute(w, swaggerData{
			Title:      config.APIName + " - Swagger UI",
			OpenAPIURL: OpenAPIPath,
		})
		if err != nil {
			logger.Error("failed to render docs page", "err", err)
		}
	})

	// The bare mux pattern also catches every path nothing else claimed, so
	// anything but the root itself is a JSON 404.
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			respondError(w, http.StatusNotFound, "Not Found")
			return
		}
		http.Redirect(w, r, "/docs", http.StatusTemporaryRedirect)
	})
}
