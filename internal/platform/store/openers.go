package store

import (
	"context"
	"fmt"
	"time"

	"fieldops/internal/platform/store/pg"
)

// boot-time ping policy
const (
	pingAttempts    = 20
	pingTimeout     = 3 * time.Second
	pingBackoffMin  = 150 * time.Millisecond
	pingBackoffCeil = 2 * time.Second
)

// waitForPG pings the bare pool with exponential backoff so startup
// probes never hit the query tracer
func waitForPG(ctx context.Context, p *pg.PG) error {
	var lastErr error
	backoff := pingBackoffMin

	for i := 0; i < pingAttempts; i++ {
		toCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		lastErr = p.Pool.Ping(toCtx)
		cancel()

		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		time.Sleep(backoff)
		if backoff = backoff * 2; backoff > pingBackoffCeil {
			backoff = pingBackoffCeil
		}
	}
	return fmt.Errorf("postgres ping failed after %d attempts: %w", pingAttempts, lastErr)
}

// openPG opens the postgres pool and wraps it with the sql adapter
func openPG(ctx context.Context, cfg Config, s *Store) (TxRunner, error) {
	var tracer pg.QueryTracer
	if cfg.PG.LogSQL {
		tracer = pg.Tracer(s.Log)
	}

	p, err := pg.Open(ctx, pg.Config{
		URL:      cfg.PG.URL,
		MaxConns: cfg.PG.MaxConns,
		SlowMs:   cfg.PG.SlowQueryMs,
	}, tracer, nil)
	if err != nil {
		return nil, err
	}

	if err := waitForPG(ctx, p); err != nil {
		p.Close()
		return nil, err
	}

	// the adapter goes live only once the pool answers
	a := newPGAdapter(p)
	s.PG = a
	return a, nil
}
