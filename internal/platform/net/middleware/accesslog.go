package middleware

import (
	"net/http"
	"time"

	"fieldops/internal/platform/logger"
)

// AccessLogOptions tunes the access log
type AccessLogOptions struct {
	// Slow escalates requests taking >= Slow to warn, 0 disables the escalation
	Slow time.Duration
}

// AccessLogZerolog logs method, path, status, elapsed, and bytes written
// through the request-scoped logger, so every line carries the request id
func AccessLogZerolog(opt AccessLogOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cw := &capture{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()

			next.ServeHTTP(cw, r)

			elapsed := time.Since(start)
			log := logger.C(r.Context())
			evt := log.Info()
			if opt.Slow > 0 && elapsed >= opt.Slow {
				evt = log.Warn()
			}
			evt.Int("status", cw.status).
				Dur("elapsed", elapsed).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("bytes", cw.bytes).
				Msg("request done")
		})
	}
}
