package store

import "time"

// Config gathers the per-backend settings Open consumes
type Config struct {
	AppName string

	PG PGConfig
}

// PGConfig covers postgres connectivity plus query tracing
type PGConfig struct {
	Enabled     bool
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int

	// boot-time guard knobs
	ConnectRetries int           // default 6 (63s(ish) max with exponential backoff)
	PingTimeout    time.Duration // default 5s
}
