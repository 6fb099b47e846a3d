package pg

import (
	"context"
	"strings"

	"fieldops/internal/platform/logger"

	"github.com/rs/zerolog"
)

// QueryEvent describes one executed statement for the tracer
type QueryEvent struct {
	SQL       string
	Args      any
	ElapsedUS int64
	Err       error
	Slow      bool
}

// QueryTracer receives one event per statement the adapter runs
type QueryTracer interface {
	OnQuery(ctx context.Context, ev QueryEvent)
}

// Tracer builds a QueryTracer that prints SQL whenever LogSQL is on,
// regardless of the process-wide root level
func Tracer(root logger.Logger) QueryTracer {
	ll := root.Level(zerolog.DebugLevel).With().Str("component", "pg").Logger()
	return &queryLogger{log: ll}
}

type queryLogger struct{ log logger.Logger }

func (q *queryLogger) OnQuery(_ context.Context, ev QueryEvent) {
	// normal statements log at Info, slow ones escalate to Warn
	evt := q.log.Info()
	if ev.Slow {
		evt = q.log.Warn()
	}

	evt.Float64("elapsed_ms", float64(ev.ElapsedUS)/1000.0).
		Bool("slow", ev.Slow).
		Str("sql", compact(ev.SQL)).
		Interface("args", ev.Args).
		Err(ev.Err).
		Msg("pg query")
}

// compact squeezes runs of whitespace to single spaces so multi-line SQL
// fits one log field
func compact(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		switch r {
		case '\n', '\t', '\r', ' ':
			if !space {
				b.WriteByte(' ')
				space = true
			}
		default:
			space = false
			b.WriteRune(r)
		}
	}
	return b.String()
}
