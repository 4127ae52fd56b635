// Package module mounts the meta endpoints under /meta
package module

import (
	"net/http"
	"time"

	modkit "hansard/internal/modkit"
	"hansard/internal/modkit/httpkit"
	str "hansard/internal/platform/strings"
	summaries "hansard/internal/services/summaries/domain"

	metahttp "hansard/internal/services/api/meta/http"
)

// Module implements modkit.Module
type Module struct {
	b    modkit.Built
	deps metahttp.Deps
}

// New builds the meta module. Readiness pings deps.PG when it is set
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("meta"), modkit.WithPrefix("/meta")}, opts...)...)
	md := metahttp.Deps{StartedAt: time.Now(), SummaryVersion: summaries.SummaryVersion}
	if deps.PG != nil {
		md.PG = deps.PG
	}
	return &Module{b: b, deps: md}
}

// MountRoutes mounts the module under its prefix
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Route(m.Prefix(), func(rr httpkit.Router) {
		for _, mw := range m.b.Mw {
			rr.Use(mw)
		}
		rr = m.b.Subrouter(rr)
		metahttp.Register(rr, m.deps)
		m.b.Register(rr)
	})
}

func (m *Module) Name() string { return str.MustString(m.b.Name, "meta module name") }

func (m *Module) Prefix() string { return str.MustPrefix(m.b.Prefix) }

func (m *Module) Middlewares() []func(http.Handler) http.Handler { return m.b.Mw }

// Ports is nil; nothing depends on meta
func (m *Module) Ports() any { return nil }
