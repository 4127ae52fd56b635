// @title         Hansard API
// @version       0.1.0
// @description   Read only endpoints over ingested parliament sittings, plus an offline parser

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"hansard/internal/core/version"
	"hansard/internal/platform/config"
	"hansard/internal/platform/logger"
	phttp "hansard/internal/platform/net/http"
	"hansard/internal/platform/store"

	"hansard/internal/services/api"
)

func main() {
	if os.Getenv("LOG_SERVICE") == "" {
		_ = os.Setenv("LOG_SERVICE", "hansard-api")
	}
	version.SetService("hansard-api")

	root := config.New()
	apiCfg := root.Prefix("SERVICE_API_")
	pgCfg := root.Prefix("SERVICE_PGSQL_")

	// bring up logging early
	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// without a DBURL only /v1/parse and meta answer
	dsn := pgCfg.MayString("DBURL", "")
	st, err := store.Open(
		ctx,
		store.Config{
			AppName: "hansard-api",
			PG: store.PGConfig{
				Enabled:     dsn != "",
				URL:         dsn,
				MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
				SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
				LogSQL:      pgCfg.MayBool("LOG_SQL", true),
			},
		},
		store.WithLogger(*logger.Get()),
	)
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()
	if dsn == "" {
		l.Warn().Msg("SERVICE_PGSQL_DBURL unset, sittings endpoints will answer 503")
	}

	// http server (reads SERVICE_API_PORT)
	srv := phttp.NewServer(root.Prefix("SERVICE_"))

	api.Mount(
		srv.Router(),
		api.Options{
			Config:         apiCfg,
			Store:          st,
			Logger:         l,
			CORSOrigins:    apiCfg.MayCSV("CORS_ORIGINS", nil),
			EnableProfiler: apiCfg.MayBool("PROFILER", false),
		},
	)

	if err := srv.Run(ctx); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
