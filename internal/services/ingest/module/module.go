// Package module provides the ingest module implementation
package module

import (
	"fmt"
	"os"

	"github.com/google/uuid"

	"hansard/internal/adapters/dump"
	"hansard/internal/adapters/ingest/sprs"
	"hansard/internal/modkit"
	"hansard/internal/services/ingest/domain"
	"hansard/internal/services/ingest/guardrails"
	"hansard/internal/services/ingest/repo"
	"hansard/internal/services/ingest/service"
)

// Ports defines the ingest module ports
type Ports struct {
	Runner domain.RunnerPort
}

// Module implements the ingest module
type Module struct {
	deps  modkit.Deps
	opts  Options
	svc   *service.Service
	cache *sprs.CachedFetcher
	ports Ports
}

// New constructs the ingest module from CORE_INGEST_* config. summaries may be nil to
// ingest without AI enrichment. It does not mount any routes
func New(deps modkit.Deps, summaries domain.Summarizer) (*Module, error) {
	opts := FromConfig(deps.Cfg)

	cache, err := sprs.NewCachedFetcher(opts.CacheDir,
		sprs.NewHTTPFetcher(sprs.Options{
			BaseURL:    opts.BaseURL,
			Timeout:    opts.HTTPTimeout,
			MaxRetries: opts.MaxRetries,
			RetryBase:  opts.RetryBase,
		}),
		sprs.WithRefreshRecent(opts.RefreshRecent),
		sprs.WithRetention(opts.CacheMaxAge, opts.CacheMaxBytes),
	)
	if err != nil {
		return nil, err
	}

	db := deps.PG
	if opts.SkipDB {
		db = nil
	}

	var lease guardrails.LeaseFunc
	if db != nil && opts.EnableLeases {
		lease = guardrails.MakeDayLease(db, leaseOwner(), opts.LeaseTTL)
	}

	svc := service.New(db, repo.NewPG(), cache, service.Config{
		Workers:          opts.Workers,
		DelayPerDay:      opts.Delay,
		MaxRetries:       opts.MaxRetries,
		RetryBase:        opts.RetryBase,
		DayTimeout:       opts.DayTimeout,
		FetchTimeout:     opts.FetchTimeout,
		DBTimeout:        opts.DBTimeout,
		AITimeout:        opts.AITimeout,
		MaxDaysPerRun:    opts.MaxDaysPerRun,
		EnableLeases:     opts.EnableLeases,
		SkipDB:           opts.SkipDB,
		RunDate:          opts.RunDate,
		StartDate:        opts.StartDate,
		EndDate:          opts.EndDate,
		ResumeFromLatest: opts.ResumeFrom,
	}, lease)

	if summaries != nil {
		svc.WithSummaries(summaries)
	}
	if opts.DumpDir != "" {
		d, err := dump.New(opts.DumpDir, opts.SaveJSON)
		if err != nil {
			return nil, err
		}
		svc.WithDumper(d)
	}

	return &Module{deps: deps, opts: opts, svc: svc, cache: cache, ports: Ports{Runner: svc}}, nil
}

// Name returns the module name
func (m *Module) Name() string { return "ingest" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// Runner is the typed port for in-process callers
func (m *Module) Runner() domain.RunnerPort { return m.ports.Runner }

// Service exposes the concrete service for callers that observe per-day results
func (m *Module) Service() *service.Service { return m.svc }

// Cache is the on-disk report cache the runner fetches through
func (m *Module) Cache() *sprs.CachedFetcher { return m.cache }

// Options returns the resolved configuration
func (m *Module) Options() Options { return m.opts }

// Prefix returns the module prefix (none)
func (m *Module) Prefix() string { return "" }

// MountRoutes is a no-op as ingest has no routes
func (m *Module) MountRoutes(_ interface{}) {}

// leaseOwner identifies this process in ingest_day_leases
func leaseOwner() string {
	host, _ := os.Hostname()
	if host == "" {
		host = "unknown"
	}
	return fmt.Sprintf("%s:%d:%s", host, os.Getpid(), uuid.NewString()[:8])
}
