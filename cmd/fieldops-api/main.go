// @title         FieldOps API
// @version       0.1.0
// @description   Daily route and schedule optimization for field crews

package main

import (
	"context"

	"fieldops/internal/platform/config"
	"fieldops/internal/platform/logger"
	phttp "fieldops/internal/platform/net/http"
	"fieldops/internal/platform/store"

	"fieldops/internal/services/api"
)

// openStore brings up the postgres-backed platform store from SERVICE_PGSQL_*
func openStore(ctx context.Context, pgCfg config.Conf) (*store.Store, error) {
	return store.Open(ctx, store.Config{
		PG: store.PGConfig{
			Enabled:     true,
			URL:         pgCfg.MustString("DBURL"),
			MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
			LogSQL:      pgCfg.MayBool("LOG_SQL", true),
		},
	}, store.WithLogger(*logger.Get()))
}

func main() {
	root := config.New()
	apiCfg := root.Prefix("CORE_API_")

	// logging comes up first so store bring-up is visible
	l := logger.Get()

	st, err := openStore(context.Background(), root.Prefix("SERVICE_PGSQL_"))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	// http server reads CORE_API_PORT
	srv := phttp.NewServer(apiCfg)

	api.Mount(srv.Router(), api.Options{
		Config:         root,
		Store:          st,
		Logger:         l,
		EnableSwagger:  apiCfg.MayBool("SWAGGER", true),
		EnableProfiler: apiCfg.MayBool("PROFILER", true),
	})

	if err := srv.Run(context.Background()); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
