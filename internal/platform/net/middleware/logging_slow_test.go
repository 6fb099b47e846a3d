package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fieldops/internal/platform/net/middleware"
)

// Overrunning the slow threshold only changes the log level, never the response
func TestAccessLog_WarnsOnSlowRequests(t *testing.T) {
	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(550 * time.Millisecond)
		w.WriteHeader(http.StatusNoContent)
	})

	rr := httptest.NewRecorder()
	middleware.AccessLog(slow).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/slow-warn", nil))

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204 got %d", rr.Code)
	}
}
