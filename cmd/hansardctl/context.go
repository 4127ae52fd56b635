package main

import (
	"context"
	"strings"
	"time"

	"hansard/internal/core/transcript"
	"hansard/internal/modkit"
	"hansard/internal/platform/config"
	perr "hansard/internal/platform/errors"
	"hansard/internal/platform/logger"
	"hansard/internal/platform/store"
)

// commandContext carries lazily opened shared state across subcommands
type commandContext struct {
	dsnFlag *string
	cfg     config.Conf
	st      *store.Store
}

func newCommandContext(dsn *string) *commandContext {
	return &commandContext{dsnFlag: dsn, cfg: config.New()}
}

func (c *commandContext) dsn() string {
	if c.dsnFlag != nil && strings.TrimSpace(*c.dsnFlag) != "" {
		return strings.TrimSpace(*c.dsnFlag)
	}
	return c.cfg.Prefix("SERVICE_PGSQL_").MayString("DBURL", "")
}

// store opens postgres once per invocation
func (c *commandContext) store(ctx context.Context) (*store.Store, error) {
	if c.st != nil {
		return c.st, nil
	}
	dsn := c.dsn()
	if dsn == "" {
		return nil, perr.InvalidArgf("no database: pass --dburl or set SERVICE_PGSQL_DBURL")
	}
	pg := c.cfg.Prefix("SERVICE_PGSQL_")
	st, err := store.Open(ctx, store.Config{
		AppName: "hansardctl",
		PG: store.PGConfig{
			Enabled:     true,
			URL:         dsn,
			MaxConns:    int32(pg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs: pg.MayInt("SLOW_MS", 500),
			LogSQL:      pg.MayBool("LOG_SQL", false),
		},
	}, store.WithLogger(*logger.Get()))
	if err != nil {
		return nil, err
	}
	c.st = st
	return st, nil
}

// deps builds module deps; withDB opens the store first
func (c *commandContext) deps(ctx context.Context, withDB bool) (modkit.Deps, error) {
	d := modkit.Deps{Cfg: c.cfg, Log: *logger.Get()}
	if !withDB {
		return d, nil
	}
	st, err := c.store(ctx)
	if err != nil {
		return d, err
	}
	d.PG = st.PG
	return d, nil
}

func (c *commandContext) close(ctx context.Context) error {
	if c.st == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	err := c.st.Close(ctx)
	c.st = nil
	return err
}

// dayFlag parses an optional date flag. Empty means open
func dayFlag(name, v string) (time.Time, error) {
	if strings.TrimSpace(v) == "" {
		return time.Time{}, nil
	}
	d, ok := transcript.ParseRunDate(v)
	if !ok {
		return time.Time{}, perr.WithField(perr.InvalidArgf("--%s: %q is not YYYY-MM-DD or DD-MM-YYYY", name, v), name)
	}
	return d, nil
}
