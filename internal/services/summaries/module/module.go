// Package module provides the summaries module implementation
package module

import (
	"context"

	"hansard/internal/adapters/llm/openai"
	"hansard/internal/modkit"
	"hansard/internal/modkit/repokit"
	"hansard/internal/services/summaries/domain"
	"hansard/internal/services/summaries/repo"
	"hansard/internal/services/summaries/service"
)

// Ports defines the summaries module ports
type Ports struct {
	Summaries domain.Port
}

// Module implements the summaries module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs the summaries module from CORE_AI_* config. When summaries are enabled
// without a usable backend the error is returned, so a misconfigured run fails at boot
func New(deps modkit.Deps) (*Module, error) {
	opts := FromConfig(deps.Cfg)

	var llm domain.LLM
	if opts.Enabled {
		c, err := openai.New(openai.Options{
			APIKey:    opts.APIKey,
			BaseURL:   opts.BaseURL,
			Model:     opts.Model,
			Timeout:   opts.Timeout,
			Attempts:  opts.Retries,
			RetryBase: opts.RetryBase,
			RPS:       opts.RPS,
		})
		if err != nil {
			return nil, err
		}
		llm = llmPort{c: c}
	}

	svc := service.New(repokit.TxRunner(deps.PG), repo.NewPG(), llm, service.Config{
		Enabled:  opts.Enabled,
		DryRun:   opts.DryRun,
		MaxChars: opts.MaxChars,
	})
	return &Module{deps: deps, ports: Ports{Summaries: svc}}, nil
}

// Name returns the module name
func (m *Module) Name() string { return "summaries" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// Port is the typed port for in-process callers
func (m *Module) Port() domain.Port { return m.ports.Summaries }

// Prefix returns the module prefix (none)
func (m *Module) Prefix() string { return "" }

// MountRoutes is a no-op as summaries has no routes
func (m *Module) MountRoutes(_ interface{}) {}

// llmPort adapts the openai client to domain.LLM
type llmPort struct{ c *openai.Client }

func (p llmPort) Complete(ctx context.Context, c domain.Completion) (string, error) {
	r := openai.Request{System: c.System, User: c.User, Temperature: c.Temperature}
	if c.Schema != nil {
		r.SchemaName, r.Schema, r.Strict = c.Schema.Name, c.Schema.JSON, c.Schema.Strict
	}
	return p.c.Complete(ctx, r)
}

func (p llmPort) Provider() string { return p.c.Provider() }

func (p llmPort) Model() string { return p.c.Model() }
