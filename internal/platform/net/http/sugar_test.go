package http

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

type dto struct {
	Minutes int `json:"minutes"`
}

func TestSugar_JSONVerbs(t *testing.T) {
	t.Parallel()

	m := chi.NewRouter()
	r := AdaptChi(m)

	// GET: accept body {}, ignore parsed input
	GetJSON(r, "/board", func(_ *http.Request) (any, error) {
		return map[string]string{"ok": "get"}, nil
	})

	// POST: double n
	PostJSON[dto](r, "/visits", func(_ *http.Request, in dto) (any, error) {
		return map[string]int{"d": in.Minutes * 2}, nil
	})

	// PUT: triple n
	PutJSON[dto](r, "/visits/7", func(_ *http.Request, in dto) (any, error) {
		return map[string]int{"t": in.Minutes * 3}, nil
	})

	// PATCH: echo n
	PatchJSON[dto](r, "/visits/9", func(_ *http.Request, in dto) (any, error) {
		return map[string]int{"minutes": in.Minutes}, nil
	})

	srv := httptest.NewServer(r.Mux())
	defer srv.Close()

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, srv.URL+path, bytes.NewBufferString(body))
		if body != "" {
			req.Header.Set("Content-Type", "application/json")
		}
		rr := httptest.NewRecorder()
		r.Mux().ServeHTTP(rr, req)
		return rr
	}

	// GET
	rr := do(http.MethodGet, "/board", `{}`)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"ok":"get"`) {
		t.Fatalf("GET /board => code=%d body=%q", rr.Code, rr.Body.String())
	}

	// POST
	rr = do(http.MethodPost, "/visits", `{"minutes":7}`)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"d":14`) {
		t.Fatalf("POST /visits => code=%d body=%q", rr.Code, rr.Body.String())
	}

	// PUT
	rr = do(http.MethodPut, "/visits/7", `{"minutes":5}`)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"t":15`) {
		t.Fatalf("PUT /visits/7 => code=%d body=%q", rr.Code, rr.Body.String())
	}

	// PATCH
	rr = do(http.MethodPatch, "/visits/9", `{"minutes":9}`)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"minutes":9`) {
		t.Fatalf("PATCH /visits/9 => code=%d body=%q", rr.Code, rr.Body.String())
	}

	// also verify bind error propagates via sugar+JSONHandler (bad JSON on POST)
	rr = do(http.MethodPost, "/visits", `{`)
	if rr.Code == http.StatusOK {
		t.Fatalf("POST /visits with bad json should not be 200; got %d", rr.Code)
	}
}
