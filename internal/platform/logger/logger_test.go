package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	kit "fieldops/internal/platform/testkit"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]string{
		"trace":          "trace",
		"debug":          "debug",
		"info":           "info",
		"warn":           "warn",
		"warning":        "warn",
		"error":          "error",
		"fatal":          "fatal",
		"panic":          "panic",
		"":               "debug",
		"   nonsense   ": "debug",
	}
	for in, want := range cases {
		if got := strings.ToLower(parseLevel(in).String()); got != want {
			t.Fatalf("parseLevel(%q) = %q, want %q", in, got, want)
		}
	}
}

// resample forces N=1 so every line emits even when Init sampled the root
func resample(l *Logger) *Logger {
	v := l.Sample(&zerolog.BasicSampler{N: 1})
	return &v
}

func TestInit_Get_Named_C_WithRequest(t *testing.T) {
	var buf bytes.Buffer

	// sampling on to exercise that branch
	Init(Options{
		Level:       "info",
		Format:      "console",
		Service:     "fieldops-api",
		Component:   "root",
		Writer:      &buf,
		WithCaller:  true,
		SampleEvery: 2,
		StaticFields: map[string]string{
			"build": "test",
		},
	})

	resample(Get()).Info().Str("k", "v").Msg("root-msg")
	resample(Named("solver")).Info().Msg("named-msg")

	ctx := WithRequest(context.Background(), "req-123")
	resample(C(ctx)).Info().Msg("ctx-msg")

	// child off a bare context, exercised only
	resample(C(context.Background())).Info().Msg("ctx-empty")

	out := buf.String()

	// the console writer may pad around '=', so match key and value separately
	for _, want := range []string{
		"root-msg", "named-msg", "ctx-msg",
		"component=", "solver",
		"request_id=", "req-123",
		"build=", "test",
		"service=", "fieldops-api",
	} {
		kit.MustContain(t, out, want)
	}
}

func TestFromEnv_Independently(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_SERVICE", "fieldops-worker")
	t.Setenv("LOG_COMPONENT", "travel-cache")
	t.Setenv("LOG_CALLER", "true")
	t.Setenv("LOG_SAMPLE_EVERY", "5")

	opt := FromEnv()
	if strings.ToLower(opt.Level) != "warn" {
		t.Fatalf("Level = %q, want warn", opt.Level)
	}
	if opt.Format != "json" || opt.Service != "fieldops-worker" || opt.Component != "travel-cache" {
		t.Fatalf("fields mismatch: %+v", opt)
	}
	if !opt.WithCaller || opt.SampleEvery != 5 {
		t.Fatalf("caller/sample mismatch: %+v", opt)
	}
}

func TestWithRequest_NoValues(t *testing.T) {
	resample(C(context.Background())).Debug().Msg("no-fields")
}
