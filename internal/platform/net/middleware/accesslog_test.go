package middleware_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fieldops/internal/platform/net/middleware"
)

// the middleware must never alter what the wrapped handler produced
func TestAccessLogZerolog_Transparent(t *testing.T) {
	cases := []struct {
		name       string
		opt        middleware.AccessLogOptions
		handler    http.HandlerFunc
		wantStatus int
		wantBody   string
	}{
		{
			name: "status and body pass through",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusCreated)
				_, _ = io.WriteString(w, "board")
			},
			wantStatus: http.StatusCreated,
			wantBody:   "board",
		},
		{
			name: "slow escalation leaves the response alone",
			opt:  middleware.AccessLogOptions{Slow: time.Nanosecond},
			handler: func(w http.ResponseWriter, r *http.Request) {
				time.Sleep(50 * time.Microsecond)
				_, _ = io.WriteString(w, "slow")
			},
			wantStatus: http.StatusOK,
			wantBody:   "slow",
		},
		{
			name: "byte counter accumulates across writes",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("hi"))
				_, _ = w.Write([]byte("there"))
			},
			wantStatus: http.StatusOK,
			wantBody:   "hithere",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/today", nil)

			middleware.AccessLogZerolog(tc.opt)(tc.handler).ServeHTTP(rr, req)

			if rr.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rr.Code, tc.wantStatus)
			}
			if rr.Body.String() != tc.wantBody {
				t.Fatalf("body = %q, want %q", rr.Body.String(), tc.wantBody)
			}
		})
	}
}
