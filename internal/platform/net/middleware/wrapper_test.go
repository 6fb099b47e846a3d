package middleware_test

import (
	"compress/flate"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fieldops/internal/platform/net/middleware"

	chimw "github.com/go-chi/chi/v5/middleware"
)

func TestWrappers_ReturnHandlers(t *testing.T) {
	wrappers := map[string]func(http.Handler) http.Handler{
		"RequestID":        middleware.RequestID(),
		"RealIP":           middleware.RealIP(),
		"Recover":          middleware.Recover(),
		"Logger":           middleware.Logger(),
		"Timeout":          middleware.Timeout(time.Second),
		"NoCache":          middleware.NoCache(),
		"RedirectSlashes":  middleware.RedirectSlashes(),
		"StripSlashes":     middleware.StripSlashes(),
		"AllowContentType": middleware.AllowContentType("application/json"),
		"SetHeader":        middleware.SetHeader("X", "Y"),
		"ContentCharset":   middleware.ContentCharset("utf-8"),
		"Throttle":         middleware.Throttle(10),
		"ThrottleBacklog":  middleware.ThrottleBacklog(10, 10, time.Second),
		"Heartbeat":        middleware.Heartbeat("/healthz"),
	}
	for name, mw := range wrappers {
		if mw == nil {
			t.Fatalf("%s returned a nil middleware", name)
		}
	}
}

func TestCompress_EncodesWhenAccepted(t *testing.T) {
	// body large enough that the compressor bothers engaging
	big := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = io.WriteString(w, strings.Repeat("a", 4<<10))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rr := httptest.NewRecorder()

	middleware.Compress(flate.DefaultCompression)(big).ServeHTTP(rr, req)

	if rr.Result().Header.Get("Content-Encoding") == "" {
		t.Fatalf("expected Content-Encoding on a compressible response")
	}
}

func TestCORS_DefaultsFillMissing(t *testing.T) {
	// only origins given; methods and headers come from the defaults
	cors := middleware.CORS(middleware.CORSOptions{
		AllowedOrigins: []string{"https://dispatch.fieldops.dev"},
	})

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://dispatch.fieldops.dev")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "Authorization")

	rr := httptest.NewRecorder()
	cors(ok).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK && rr.Code != http.StatusNoContent {
		t.Fatalf("preflight: expected 200 or 204, got %d", rr.Code)
	}
	for _, h := range []string{"Access-Control-Allow-Methods", "Access-Control-Allow-Headers"} {
		if rr.Header().Get(h) == "" {
			t.Fatalf("preflight: expected %s to be set", h)
		}
	}
}

func TestDefaults_BundleRuns(t *testing.T) {
	chain := middleware.Defaults()
	if len(chain) == 0 {
		t.Fatal("Defaults returned an empty chain")
	}

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rid := chimw.GetReqID(r.Context()); rid == "" {
			t.Fatalf("RequestID middleware left no id in context")
		}

		// RealIP may rewrite RemoteAddr to a bare IP; accept ip or host:port
		if r.RemoteAddr == "" {
			t.Fatalf("RemoteAddr came through empty")
		}
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err != nil || host == "" {
			if net.ParseIP(r.RemoteAddr) == nil {
				t.Fatalf("RemoteAddr is neither ip nor host:port: %q", r.RemoteAddr)
			}
		}

		w.WriteHeader(http.StatusOK)
	})

	// first element of the chain is the outermost wrapper
	var wrapped http.Handler = inner
	for i := len(chain) - 1; i >= 0; i-- {
		wrapped = chain[i](wrapped)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "127.0.0.1:12345"
	req.Header.Set("X-Forwarded-For", "1.2.3.4")
	rr := httptest.NewRecorder()

	wrapped.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rr.Code)
	}
	if rr.Header().Get("Cache-Control") == "" {
		t.Fatal("NoCache should have set Cache-Control")
	}
}
