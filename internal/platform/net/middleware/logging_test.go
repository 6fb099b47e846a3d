package middleware_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fieldops/internal/platform/net/middleware"
)

// AccessLog must be invisible to the client no matter how the handler behaves
func TestAccessLog_Transparent(t *testing.T) {
	cases := []struct {
		name     string
		handler  http.HandlerFunc
		path     string
		wantCode int
		wantBody string
	}{
		{
			name: "status and body pass through",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(201)
				_, _ = io.WriteString(w, "board")
			},
			path:     "/capacity",
			wantCode: 201,
			wantBody: "board",
		},
		{
			name: "slow handler unaffected",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				time.Sleep(10 * time.Millisecond)
				_, _ = io.WriteString(w, "slow")
			},
			path:     "/slow",
			wantCode: 200,
			wantBody: "slow",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)

			middleware.AccessLog(tc.handler).ServeHTTP(rr, req)

			if rr.Code != tc.wantCode {
				t.Fatalf("expected %d got %d", tc.wantCode, rr.Code)
			}
			if rr.Body.String() != tc.wantBody {
				t.Fatalf("expected body %q got %q", tc.wantBody, rr.Body.String())
			}
		})
	}
}
