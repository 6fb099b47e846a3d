package http_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"fieldops/internal/platform/config"
	phttp "fieldops/internal/platform/net/http"
)

func profilerGet(r phttp.Router, path string) int {
	rec := httptest.NewRecorder()
	r.Mux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec.Code
}

func TestMountProfiler_Enabled(t *testing.T) {
	srv := phttp.NewServer(config.New())
	r := srv.Router()
	phttp.MountProfiler(r, "/debug", true)

	// index and one sub-endpoint answer under {prefix}/pprof/
	if code := profilerGet(r, "/debug/pprof/"); code != http.StatusOK {
		t.Fatalf("index: expected 200, got %d", code)
	}
	if code := profilerGet(r, "/debug/pprof/cmdline"); code != http.StatusOK {
		t.Fatalf("cmdline: expected 200, got %d", code)
	}

	// the bare prefix either redirects into pprof or 404s, both acceptable
	switch code := profilerGet(r, "/debug"); code {
	case http.StatusMovedPermanently, http.StatusPermanentRedirect, http.StatusNotFound:
	default:
		t.Fatalf("prefix root: expected 301/308/404, got %d", code)
	}
}

func TestMountProfiler_Disabled(t *testing.T) {
	srv := phttp.NewServer(config.New())
	r := srv.Router()
	phttp.MountProfiler(r, "/debug", false)

	if code := profilerGet(r, "/debug/pprof/"); code != http.StatusNotFound {
		t.Fatalf("expected 404 when disabled, got %d", code)
	}
}
