package store

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
)

// a URL pg.Open cannot parse must bubble out and leave no store behind
func TestOpen_BadPGURL(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		cfg  Config
	}{
		{
			name: "full pg config",
			cfg: Config{PG: PGConfig{
				Enabled:     true,
				URL:         "://bad", // fails inside pg.Open before any dial
				MaxConns:    1,
				SlowQueryMs: 0,
			}},
		},
		{
			name: "minimal pg config",
			cfg:  Config{PG: PGConfig{Enabled: true, URL: "://bad"}},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			s, err := Open(context.Background(), tc.cfg)
			if err == nil {
				t.Fatalf("Open should fail, got store=%#v", s)
			}
			if s != nil {
				t.Fatalf("store should be nil on error, got %#v", s)
			}
		})
	}
}

// WithLogger must apply cleanly even when no backend is enabled
func TestOpen_WithLoggerNoBackends(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	// the zero zerolog.Logger is a valid no-op sink
	var zl zerolog.Logger

	s, err := Open(ctx, Config{}, WithLogger(zl))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if s == nil {
		t.Fatalf("Open returned nil store")
	}
	if e := s.Close(ctx); e != nil {
		t.Fatalf("Close on empty store: %v", e)
	}
}
