package middleware

import (
	stdjson "encoding/json"
	stdhttp "net/http"
	"runtime/debug"
	"strings"

	perr "fieldops/internal/platform/errors"
	"fieldops/internal/platform/logger"
	pnet "fieldops/internal/platform/net"
)

type panicWire struct {
	StatusCode int    `json:"status_code"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
	RequestID  string `json:"request_id,omitempty"`
}

// indentedStack renders the goroutine stack the way chi's recoverer does
func indentedStack() string {
	lines := strings.Split(string(debug.Stack()), "\n")
	return strings.Join(lines, "\n\t")
}

func writePanicEnvelope(w stdhttp.ResponseWriter, reqID string) {
	// echo the id so clients can quote it
	if reqID != "" {
		w.Header().Set("X-Request-ID", reqID)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(stdhttp.StatusInternalServerError)
	_ = stdjson.NewEncoder(w).Encode(panicWire{
		StatusCode: stdhttp.StatusInternalServerError,
		Status:     stdhttp.StatusText(stdhttp.StatusInternalServerError),
		Error:      perr.Root(perr.PanicErrf("panic recovered")).Error(),
		RequestID:  reqID,
	})
}

// RecoverJSON turns a handler panic into the JSON 500 envelope and logs the stack
func RecoverJSON(next stdhttp.Handler) stdhttp.Handler {
	return stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		defer func() {
			if v := recover(); v != nil {
				reqID := pnet.RequestID(r.Context())

				log := logger.C(r.Context())
				if log == nil {
					log = logger.Named("http")
				}
				log.Error().
					Str("request_id", reqID).
					Interface("panic", v).
					Msgf("panic recovered\n%s", indentedStack())

				writePanicEnvelope(w, reqID)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
