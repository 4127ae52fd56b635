// Package http serves the liveness, readiness and build endpoints
package http

import (
	"context"
	"net/http"
	"time"

	"hansard/internal/core/version"
	"hansard/internal/modkit/httpkit"
)

// Pinger is the readiness hook; the postgres adapter implements it
type Pinger interface {
	Ping(context.Context) error
}

// Deps are what the meta handlers report on. PG may be nil
type Deps struct {
	StartedAt      time.Time
	PG             any
	SummaryVersion string
	PingTimeout    time.Duration
}

// Register mounts health, ready and version on r
func Register(r httpkit.Router, d Deps) {
	if d.PingTimeout <= 0 {
		d.PingTimeout = 2 * time.Second
	}
	httpkit.Get(r, "/health", d.health)
	httpkit.Get(r, "/ready", d.ready)
	httpkit.Get(r, "/version", d.version)
}

// Health is the liveness payload
type Health struct {
	OK      bool   `json:"ok"`
	Service string `json:"service"`
	Started string `json:"started"`
	Uptime  int64  `json:"uptime_seconds"`
}

// Check is one dependency's readiness
type Check struct {
	Name   string `json:"name"`
	Status string `json:"status"` // ok, fail, skipped
	Error  string `json:"error,omitempty"`
}

// Ready is the readiness payload. Status is degraded when postgres is not configured,
// since parsing still works without it
type Ready struct {
	Status string  `json:"status"`
	Checks []Check `json:"checks"`
}

// Version is the build payload plus the summary version stamped on stored rows
type Version struct {
	version.BuildInfo
	SummaryVersion string `json:"summary_version"`
}

func (d Deps) health(*http.Request) (any, error) {
	return Health{
		OK:      true,
		Service: version.Info().Service,
		Started: d.StartedAt.UTC().Format(time.RFC3339),
		Uptime:  int64(time.Since(d.StartedAt) / time.Second),
	}, nil
}

func (d Deps) ready(r *http.Request) (any, error) {
	pg := Check{Name: "pg", Status: "skipped"}
	if p, ok := d.PG.(Pinger); ok {
		ctx, cancel := context.WithTimeout(r.Context(), d.PingTimeout)
		defer cancel()
		pg.Status = "ok"
		if err := p.Ping(ctx); err != nil {
			pg.Status, pg.Error = "fail", err.Error()
		}
	}

	status := map[string]string{"ok": "ok", "fail": "fail", "skipped": "degraded"}[pg.Status]
	out := Ready{Status: status, Checks: []Check{pg}}
	if status == "fail" {
		return httpkit.Response{Status: http.StatusServiceUnavailable, Body: out}, nil
	}
	return out, nil
}

func (d Deps) version(*http.Request) (any, error) {
	return Version{BuildInfo: version.Info(), SummaryVersion: d.SummaryVersion}, nil
}
