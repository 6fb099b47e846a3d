package pg

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"fieldops/internal/platform/testkit"

	"github.com/jackc/pgx/v5/pgxpool"
)

func TestOpen_RejectsUnparseableURL(t *testing.T) {
	t.Parallel()

	if _, err := Open(context.Background(), Config{URL: "://bad"}, nil, nil); err == nil {
		t.Fatalf("expected parse error for malformed URL")
	}
}

func TestOpen_SurfacesPoolDialError(t *testing.T) {
	// swaps the package-level newPool seam, so no t.Parallel
	testkit.Serial(t)

	testkit.Swap(t, &newPool, func(context.Context, *pgxpool.Config) (*pgxpool.Pool, error) {
		return nil, errors.New("dial refused")
	})

	// a well-formed DSN gets past parsing and into newPool
	cfg := Config{URL: "postgres://fieldops:pw@db:5432/fieldops?sslmode=disable"}
	if _, err := Open(context.Background(), cfg, nil, nil); err == nil {
		t.Fatalf("expected the newPool error to bubble out of Open")
	}
}

func TestOpen_AppliesConfigAndMutator(t *testing.T) {
	testkit.Serial(t)

	// zero-value pool stands in for a dialed one; never Close it
	stub := &pgxpool.Pool{}
	testkit.Swap(t, &newPool, func(context.Context, *pgxpool.Config) (*pgxpool.Pool, error) {
		return stub, nil
	})

	cfg := Config{URL: "postgres://fieldops:pw@db:5432/fieldops?sslmode=disable", MaxConns: 7, SlowMs: 123}

	var mutated atomic.Bool
	p, err := Open(context.Background(), cfg, nil, func(pc *pgxpool.Config) {
		mutated.Store(true)
		if pc.MaxConns != cfg.MaxConns {
			t.Fatalf("MaxConns not carried into pool config: got %d want %d", pc.MaxConns, cfg.MaxConns)
		}
		pc.MaxConnIdleTime = 42 * time.Second
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if !mutated.Load() {
		t.Fatalf("pool config mutator never ran")
	}
	if p.SlowMs != cfg.SlowMs {
		t.Fatalf("SlowMs not carried onto PG: got %d want %d", p.SlowMs, cfg.SlowMs)
	}
	if p.Pool != stub {
		t.Fatalf("PG should wrap the pool newPool returned")
	}
}

func TestClose_ToleratesNilReceiverAndNilPool(t *testing.T) {
	t.Parallel()

	var p *PG
	p.Close()

	p = &PG{}
	p.Close()
	p.Close() // second call is harmless
}
