// Package pg wraps pgxpool behind a small client that the store adapter
// consumes, with optional per-query tracing
package pg

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Config holds the connection settings taken from the environment
type Config struct {
	URL      string
	MaxConns int32
	SlowMs   int
}

// PG bundles the pool with the tracer that logs its queries
type PG struct {
	Pool   *pgxpool.Pool
	Tracer QueryTracer
	SlowMs int
}

// Option tweaks the client while Open assembles it
type Option func(*PG) error

var newPool = pgxpool.NewWithConfig

// poolConfig parses the DSN and layers on MaxConns plus the caller mutator
func poolConfig(cfg Config, mut func(*pgxpool.Config)) (*pgxpool.Config, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, err
	}
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = cfg.MaxConns
	}
	if mut != nil {
		mut(pcfg)
	}
	return pcfg, nil
}

// Open parses cfg.URL, applies the optional pool config mutator, and dials
// the pool. The tracer may be nil
func Open(ctx context.Context, cfg Config, tracer QueryTracer, poolCfgMut func(*pgxpool.Config)) (*PG, error) {
	pcfg, err := poolConfig(cfg, poolCfgMut)
	if err != nil {
		return nil, err
	}
	pool, err := newPool(ctx, pcfg) // seam for tests
	if err != nil {
		return nil, err
	}
	p := &PG{Pool: pool, Tracer: tracer, SlowMs: cfg.SlowMs}
	return p, nil
}

// Close releases the pool. Safe on a nil receiver
func (p *PG) Close() {
	if p == nil || p.Pool == nil {
		return
	}
	p.Pool.Close()
}
