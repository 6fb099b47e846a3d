package httpkit

import (
	"compress/flate"
	"net/http"
	"time"

	"fieldops/internal/platform/net/middleware"
)

// CommonStack returns a baseline per module middleware slice
// the request timeout sits above the server-side solver ceiling so long
// solves are cancelled by their own deadline, not by the transport
func CommonStack() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		// correlation first so everything downstream sees the id
		middleware.RequestID(),
		middleware.RealIP(),

		middleware.RecoverJSON,
		middleware.NoCache(),
		middleware.Logger(),

		// cross-origin defaults, override via main when fronting a UI
		middleware.CORS(middleware.CORSOptions{}),
		middleware.Compress(flate.BestSpeed),
		middleware.Heartbeat("/health"),
		middleware.RedirectSlashes(),
		middleware.StripSlashes(),
		middleware.Timeout(150 * time.Second),
	}
}
