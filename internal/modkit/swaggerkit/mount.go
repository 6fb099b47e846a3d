// Package swaggerkit mounts the Swagger UI and the generated OpenAPI document
package swaggerkit

import (
	"net/http"

	phttp "fieldops/internal/platform/net/http"

	httpSwagger "github.com/swaggo/http-swagger"
)

// Mount registers the docs UI under /api/docs when enabled; a no-op otherwise
func Mount(r phttp.Router, enabled bool) {
	if !enabled {
		return
	}
	// the UI lives under the trailing-slash path
	r.Get("/api/docs", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/api/docs/", http.StatusPermanentRedirect)
	})
	r.Get("/api/docs/doc.json", serveDocJSON())
	r.Handle("/api/docs/*", httpSwagger.Handler(
		httpSwagger.InstanceName("api"),
		httpSwagger.URL("/api/docs/doc.json"),
	))
}
