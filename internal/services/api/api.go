// Package api mounts the read and parse modules under /v1
package api

import (
	"time"

	"hansard/internal/platform/config"
	"hansard/internal/platform/logger"
	phttp "hansard/internal/platform/net/http"
	"hansard/internal/platform/net/middleware"
	"hansard/internal/platform/store"

	"hansard/internal/modkit"
	"hansard/internal/modkit/httpkit"
	"hansard/internal/modkit/module"

	metamod "hansard/internal/services/api/meta/module"
	sittingsmod "hansard/internal/services/api/sittings/module"
)

// Options are the API options
type Options struct {
	Config         config.Conf
	Store          *store.Store
	Logger         *logger.Logger
	CORSOrigins    []string
	EnableProfiler bool
}

// Mount mounts the API service onto the given router
func Mount(r phttp.Router, opt Options) {
	// shared deps for modules
	deps := modkit.Deps{Cfg: opt.Config}
	if opt.Store != nil {
		deps.PG = opt.Store.PG
	}
	if opt.Logger != nil {
		deps.Log = *opt.Logger
	}

	mods := []module.Module{
		metamod.New(deps),
		sittingsmod.New(deps),
		// parse bodies run up to 32MB, so cap how many are decoded at once
		sittingsmod.NewParse(deps, modkit.WithMiddlewares(
			middleware.Throttle(opt.Config.MayInt("PARSE_CONCURRENCY", 4), 16, 10*time.Second),
		)),
	}

	// load balancer probe, outside the versioned tree
	r.Use(middleware.Heartbeat("/health"))
	phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

	stack := httpkit.CommonStackCORS(middleware.CORSOptions{AllowedOrigins: opt.CORSOrigins})
	httpkit.MountAPIV1(r, stack, func(api httpkit.Router) {
		for _, m := range mods {
			module.Register(m.Name(), m.Ports())
			m.MountRoutes(api)
		}
	})
}
