package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"hansard/internal/core/version"
	"hansard/internal/modkit"
	"hansard/internal/modkit/module"
	"hansard/internal/platform/config"
	"hansard/internal/platform/logger"
	"hansard/internal/platform/store"

	ingestdom "hansard/internal/services/ingest/domain"
	ingestmod "hansard/internal/services/ingest/module"
	ingestrepo "hansard/internal/services/ingest/repo"
	summod "hansard/internal/services/summaries/module"
)

func mustSetEnv(key, val string) {
	if val != "" {
		_ = os.Setenv(key, val)
	}
}

func boolEnv(b bool) string { return map[bool]string{true: "1", false: "0"}[b] }

func main() {
	var (
		fRunDate  = flag.String("run-date", "", "ingest a single sitting day, YYYY-MM-DD or DD-MM-YYYY")
		fStart    = flag.String("start", "", "first day of the window")
		fEnd      = flag.String("end", "", "last day of the window, inclusive (default today)")
		fWorkers  = flag.Int("workers", 0, "days processed concurrently")
		fMaxDays  = flag.Int("max-days", 0, "cap on days per run")
		fDumpDir  = flag.String("dump-dir", "", "write per-day CSV tables here")
		fSaveJSON = flag.Bool("save-json", false, "also dump the raw report JSON (with -dump-dir)")
		fSkipDB   = flag.Bool("skip-db", false, "parse and dump only, never touch postgres")
		fAI       = flag.Bool("ai", false, "generate speech and sitting summaries")
		fReingest = flag.Bool("reingest", false, "re-run every stored sitting day in the window")
		fSchema   = flag.Bool("ensure-schema", true, "create tables when missing")
	)
	flag.Parse()

	// flags override env; modules read their options FromConfig
	mustSetEnv("RUN_DATE", *fRunDate)
	mustSetEnv("START_DATE", *fStart)
	mustSetEnv("END_DATE", *fEnd)
	mustSetEnv("CORE_INGEST_DUMP_DIR", *fDumpDir)
	if *fWorkers > 0 {
		mustSetEnv("CORE_INGEST_WORKERS", strconv.Itoa(*fWorkers))
	}
	if *fMaxDays > 0 {
		mustSetEnv("CORE_INGEST_MAX_DAYS_PER_RUN", strconv.Itoa(*fMaxDays))
	}
	if *fSaveJSON {
		mustSetEnv("CORE_INGEST_SAVE_JSON", boolEnv(true))
	}
	if *fSkipDB {
		mustSetEnv("CORE_INGEST_SKIP_DB", boolEnv(true))
	}
	if *fAI {
		mustSetEnv("CORE_AI_ENABLED", boolEnv(true))
	}
	if os.Getenv("LOG_SERVICE") == "" {
		mustSetEnv("LOG_SERVICE", "hansard-ingest")
	}
	version.SetService("hansard-ingest")

	root := config.New()
	pgCfg := root.Prefix("SERVICE_PGSQL_")
	skipDB := root.Prefix("CORE_INGEST_").MayBool("SKIP_DB", false)

	l := logger.Get()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, store.Config{
		AppName: "hansard-ingest",
		PG: store.PGConfig{
			Enabled:     !skipDB,
			URL:         pgCfg.MayString("DBURL", ""),
			MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 8)),
			SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
			LogSQL:      pgCfg.MayBool("LOG_SQL", false),
		},
	}, store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	if st.PG != nil && *fSchema {
		if err := ingestrepo.EnsureSchema(ctx, st.PG); err != nil {
			l.Panic().Err(err).Msg("ensure schema failed")
		}
	}

	deps := modkit.Deps{Cfg: root, PG: st.PG, Log: *l}

	if summod.FromConfig(root).Enabled {
		sm, err := summod.New(deps)
		if err != nil {
			l.Panic().Err(err).Msg("summaries module failed")
		}
		module.Register(sm.Name(), sm.Ports())
	}

	// enrichment is on only when the summaries module registered its port
	var summaries ingestdom.Summarizer
	if p, ok := module.PortsAs[summod.Ports]("summaries"); ok {
		summaries = p.Summaries
	}

	im, err := ingestmod.New(deps, summaries)
	if err != nil {
		l.Panic().Err(err).Msg("ingest module failed")
	}
	module.Register(im.Name(), im.Ports())

	runner := im.Runner()
	started := time.Now()

	if *fReingest {
		opts := im.Options()
		if err := runner.Reingest(ctx, opts.StartDate, opts.EndDate); err != nil {
			l.Fatal().Err(err).Msg("reingest failed")
		}
		l.Info().Dur("took", time.Since(started)).Msg("reingest done")
		return
	}

	plan, err := runner.RunAuto(ctx, time.Now())
	if err != nil {
		l.Fatal().Err(err).
			Str("start", plan.Start.Format(time.DateOnly)).
			Str("end", plan.End.Format(time.DateOnly)).
			Msg("ingest failed")
	}
	l.Info().
		Str("start", plan.Start.Format(time.DateOnly)).
		Str("end", plan.End.Format(time.DateOnly)).
		Int("days", plan.Days()).
		Str("source", plan.Source).
		Bool("capped", plan.Capped).
		Dur("took", time.Since(started)).
		Msg("ingest done")
}
