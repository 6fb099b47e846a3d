package store

import (
	"context"
	"errors"
	"time"

	"fieldops/internal/platform/store/pg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgAdapter fronts pg.PG with our RowQuerier + TxRunner surface
// when a tracer is set on pg.PG every statement emits a QueryEvent
type pgAdapter struct {
	p *pg.PG
}

func newPGAdapter(p *pg.PG) *pgAdapter { return &pgAdapter{p: p} }

func (a *pgAdapter) Ping(ctx context.Context) error {
	if a == nil {
		return errors.New("pg: nil adapter")
	}
	var one int
	return a.QueryRow(ctx, "SELECT 1").Scan(&one)
}

func (a *pgAdapter) Close() error { a.p.Close(); return nil }

// trace reports the tracer and slow threshold in microseconds; nil disables emission
func (a *pgAdapter) trace() (pg.QueryTracer, int64) {
	if a == nil || a.p == nil {
		return nil, 0
	}
	return a.p.Tracer, int64(a.p.SlowMs) * 1000
}

func (a *pgAdapter) Exec(ctx context.Context, sql string, args ...any) (CommandTag, error) {
	tracer, slowUS := a.trace()
	start := time.Now()
	ct, err := a.p.Pool.Exec(ctx, sql, args...)
	emitQuery(ctx, tracer, slowUS, sql, args, start, err)
	return tagAdapter{ct}, err
}

func (a *pgAdapter) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	tracer, slowUS := a.trace()
	start := time.Now()
	rs, err := a.p.Pool.Query(ctx, sql, args...)
	// emit at open time; end-to-end timing would need a Close wrapper
	emitQuery(ctx, tracer, slowUS, sql, args, start, err)
	if err != nil {
		return nil, err
	}
	return rowsAdapter{r: rs}, nil
}

func (a *pgAdapter) QueryRow(ctx context.Context, sql string, args ...any) Row {
	tracer, slowUS := a.trace()
	start := time.Now()
	r := a.p.Pool.QueryRow(ctx, sql, args...)
	// defer the emit until Scan runs so its error is captured too
	return rowAdapter{
		r: r,
		after: func(scanErr error) {
			emitQuery(ctx, tracer, slowUS, sql, args, start, scanErr)
		},
	}
}

func (a *pgAdapter) Tx(ctx context.Context, fn func(q RowQuerier) error) error {
	tx, err := a.p.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	q := txSession{
		tx:     tx,
		tracer: a.p.Tracer,
		slowUS: int64(a.p.SlowMs) * 1000,
	}
	if err := fn(q); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

// emitQuery forwards one statement's timing and outcome to the tracer
func emitQuery(ctx context.Context, tracer pg.QueryTracer, slowUS int64, sql string, args []any, start time.Time, err error) {
	if tracer == nil {
		return
	}
	elapsedUS := time.Since(start).Microseconds()
	tracer.OnQuery(ctx, pg.QueryEvent{
		SQL:       sql,
		Args:      args,
		ElapsedUS: elapsedUS,
		Err:       err,
		Slow:      slowUS >= 0 && elapsedUS >= slowUS,
	})
}

// thin pgx adapters onto our Row/Rows/CommandTag

type rowAdapter struct {
	r     pgx.Row
	after func(error)
}

func (x rowAdapter) Scan(dst ...any) error {
	err := x.r.Scan(dst...)
	if x.after != nil {
		x.after(err)
	}
	return err
}

type rowsAdapter struct{ r pgx.Rows }

func (x rowsAdapter) Next() bool            { return x.r.Next() }
func (x rowsAdapter) Scan(dst ...any) error { return x.r.Scan(dst...) }
func (x rowsAdapter) Err() error            { return x.r.Err() }
func (x rowsAdapter) Close()                { x.r.Close() }
func (x rowsAdapter) Columns() []string {
	f := x.r.FieldDescriptions()
	out := make([]string, len(f))
	for i := range f {
		out[i] = string(f[i].Name)
	}
	return out
}

// tagAdapter adapts pgconn.CommandTag to our CommandTag
type tagAdapter struct{ t pgconn.CommandTag }

func (t tagAdapter) String() string      { return t.t.String() }
func (t tagAdapter) RowsAffected() int64 { return t.t.RowsAffected() }

// txSession satisfies RowQuerier on top of pgx.Tx
// statements inside a transaction trace exactly like pool statements
type txSession struct {
	tx     pgx.Tx
	tracer pg.QueryTracer
	slowUS int64
}

func (t txSession) Exec(ctx context.Context, sql string, args ...any) (CommandTag, error) {
	start := time.Now()
	ct, err := t.tx.Exec(ctx, sql, args...)
	emitQuery(ctx, t.tracer, t.slowUS, sql, args, start, err)
	return tagAdapter{ct}, err
}

func (t txSession) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	start := time.Now()
	rs, err := t.tx.Query(ctx, sql, args...)
	emitQuery(ctx, t.tracer, t.slowUS, sql, args, start, err)
	if err != nil {
		return nil, err
	}
	return rowsAdapter{r: rs}, nil
}

func (t txSession) QueryRow(ctx context.Context, sql string, args ...any) Row {
	start := time.Now()
	r := t.tx.QueryRow(ctx, sql, args...)
	return rowAdapter{
		r: r,
		after: func(scanErr error) {
			emitQuery(ctx, t.tracer, t.slowUS, sql, args, start, scanErr)
		},
	}
}
