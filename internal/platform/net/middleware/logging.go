package middleware

import (
	"net/http"
	"time"

	"fieldops/internal/platform/logger"
)

// slowThreshold is where a request line turns from info into warn
const slowThreshold = 500 * time.Millisecond

// capture records the status code and byte count it forwards downstream
type capture struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (c *capture) WriteHeader(code int) {
	c.status = code
	c.ResponseWriter.WriteHeader(code)
}

func (c *capture) Write(b []byte) (int, error) {
	n, err := c.ResponseWriter.Write(b)
	if n > 0 {
		c.bytes += n
	}
	return n, err
}

// AccessLog writes one line per request with method, path, status, and elapsed time.
// Requests slower than slowThreshold log at warn
func AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cw := &capture{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(cw, r)

		elapsed := time.Since(start)
		log := logger.C(r.Context())
		evt := log.Info()
		if elapsed >= slowThreshold {
			evt = log.Warn()
		}
		evt.Int("status", cw.status).
			Dur("elapsed", elapsed).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("request done")
	})
}
