package modkit

import (
	"net/http"
	"reflect"
	"testing"

	"fieldops/internal/modkit/httpkit"
)

func handlerPtr(f func(http.Handler) http.Handler) uintptr {
	return reflect.ValueOf(f).Pointer()
}

func TestBuild_ZeroOptions(t *testing.T) {
	t.Parallel()

	b := Build()

	if b.Name != "" || b.Prefix != "" {
		t.Fatalf("zero Build should leave Name and Prefix empty, got %q %q", b.Name, b.Prefix)
	}
	if b.Ports != nil {
		t.Fatalf("zero Build Ports = %v, want nil", b.Ports)
	}
	if b.SwaggerOn {
		t.Fatal("zero Build should not enable swagger")
	}
	if len(b.Mw) != 0 {
		t.Fatalf("zero Build Mw length = %d", len(b.Mw))
	}

	// the fallback subrouter is identity and the fallback register is a no-op
	var r httpkit.Router
	if out := b.Subrouter(r); out != r {
		t.Fatal("fallback Subrouter should hand back its input")
	}
	defer func() {
		if v := recover(); v != nil {
			t.Fatalf("fallback Register panicked: %v", v)
		}
	}()
	b.Register(r)
}

func TestBuild_AppliesOptions(t *testing.T) {
	t.Parallel()

	type ports struct {
		Crews  int
		Region string
	}
	p := ports{Crews: 7, Region: "north"}

	mwA := func(next http.Handler) http.Handler { return next }
	mwB := func(next http.Handler) http.Handler { return next }
	source := []func(http.Handler) http.Handler{mwA, mwB}

	subCalls, regCalls := 0, 0
	hooks := Option(func(c *buildCfg) {
		c.subrouter = func(in httpkit.Router) httpkit.Router {
			subCalls++
			return in
		}
		c.register = func(httpkit.Router) { regCalls++ }
		c.swaggerOn = true
	})

	b := Build(
		WithName("schedule"),
		WithPrefix("/api/v1/schedule"),
		WithMiddlewares(source...),
		WithPorts[ports](p),
		hooks,
	)

	if b.Name != "schedule" || b.Prefix != "/api/v1/schedule" {
		t.Fatalf("Name/Prefix = %q %q", b.Name, b.Prefix)
	}
	if got, ok := b.Ports.(ports); !ok || got != p {
		t.Fatalf("Ports = %#v, want %#v", b.Ports, p)
	}
	if !b.SwaggerOn {
		t.Fatal("SwaggerOn should be true after the hook option")
	}

	if len(b.Mw) != 2 || handlerPtr(b.Mw[0]) != handlerPtr(mwA) || handlerPtr(b.Mw[1]) != handlerPtr(mwB) {
		t.Fatalf("Mw not preserved in order, len=%d", len(b.Mw))
	}

	var r httpkit.Router
	if out := b.Subrouter(r); out != r {
		t.Fatal("Subrouter should return its input")
	}
	b.Register(r)
	if subCalls != 1 || regCalls != 1 {
		t.Fatalf("hook invocations sub=%d reg=%d, want 1 each", subCalls, regCalls)
	}
}

func TestBuild_CopiesMiddlewareSlice(t *testing.T) {
	t.Parallel()

	mwA := func(next http.Handler) http.Handler { return next }
	mwB := func(next http.Handler) http.Handler { return next }
	source := []func(http.Handler) http.Handler{mwA, mwB}

	b := Build(WithMiddlewares(source...))

	// mutating the source slice after Build must not leak into Built.Mw
	mwC := func(next http.Handler) http.Handler { return next }
	source[0] = mwC

	if handlerPtr(b.Mw[0]) != handlerPtr(mwA) || handlerPtr(b.Mw[1]) != handlerPtr(mwB) {
		t.Fatal("Built.Mw aliased the caller's slice")
	}
}
