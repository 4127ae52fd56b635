// Package module wires sittings into the API using modkit
package module

import (
	"net/http"

	modkit "hansard/internal/modkit"
	"hansard/internal/modkit/httpkit"
	str "hansard/internal/platform/strings"
	"hansard/internal/services/api/sittings/domain"
	sittingshttp "hansard/internal/services/api/sittings/http"
	sittingsrepo "hansard/internal/services/api/sittings/repo"
	sittingssvc "hansard/internal/services/api/sittings/service"
)

// Module implements the modkit.Module interface
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws   []func(http.Handler) http.Handler
	ports any

	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)

	svc sittingssvc.Service
}

// New constructs the sittings read module mounted at /sittings. Reads answer
// unavailable when deps.PG is nil
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	svc := sittingssvc.New(deps.PG, sittingsrepo.NewPG())
	return build(deps, svc, sittingshttp.Register,
		append([]modkit.Option{modkit.WithName("sittings"), modkit.WithPrefix("/sittings")}, opts...)...)
}

// NewParse constructs the offline parse module mounted at /parse. It never touches the database
func NewParse(deps modkit.Deps, opts ...modkit.Option) *Module {
	svc := sittingssvc.New(nil, sittingsrepo.NewPG())
	return build(deps, svc, sittingshttp.RegisterParse,
		append([]modkit.Option{modkit.WithName("parse"), modkit.WithPrefix("/parse")}, opts...)...)
}

func build(deps modkit.Deps, svc sittingssvc.Service, reg func(httpkit.Router, domain.ServicePort), opts ...modkit.Option) *Module {
	b := modkit.Build(opts...)

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		subrouter: b.Subrouter,
		svc:       svc,
	}
	m.ports = Ports{Service: svc}

	external := b.Register
	m.register = func(r httpkit.Router) {
		reg(r, m.svc)
		if external != nil {
			external(r)
		}
	}
	return m
}

// Ports is what the sittings module exposes to other modules
type Ports struct {
	Service domain.ServicePort
}

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// MountRoutes implements the modkit.Module interface
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Route(m.prefix, func(rr httpkit.Router) {
		for _, mw := range m.mws {
			rr.Use(mw)
		}
		if m.subrouter != nil {
			rr = m.subrouter(rr)
		}
		if m.register != nil {
			m.register(rr)
		}
	})
}

// Name returns the module name
func (m *Module) Name() string { return str.MustString(m.name, "module name") }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return str.MustPrefix(m.prefix) }

// Middlewares returns the module middlewares
func (m *Module) Middlewares() []func(http.Handler) http.Handler { return m.mws }
