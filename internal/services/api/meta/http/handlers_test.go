package http

import (
	"context"
	"encoding/json"
	"errors"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"hansard/internal/modkit/httpkit"
	phttp "hansard/internal/platform/net/http"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func serve(t *testing.T, d Deps, path string) (int, map[string]any) {
	t.Helper()
	r := phttp.AdaptChi(chi.NewRouter())
	r.Route("/meta", func(sub httpkit.Router) { Register(sub, d) })

	rec := httptest.NewRecorder()
	r.Mux().ServeHTTP(rec, httptest.NewRequest(stdhttp.MethodGet, path, nil))
	var env struct {
		Data map[string]any `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	return rec.Code, env.Data
}

func TestReady(t *testing.T) {
	tests := []struct {
		name   string
		pg     any
		code   int
		status string
	}{
		{"no database", nil, stdhttp.StatusOK, "degraded"},
		{"database up", pinger{}, stdhttp.StatusOK, "ok"},
		{"database down", pinger{errors.New("connection refused")}, stdhttp.StatusServiceUnavailable, "fail"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			code, data := serve(t, Deps{PG: tc.pg}, "/meta/ready")
			if code != tc.code || data["status"] != tc.status {
				t.Fatalf("status %d body %v", code, data)
			}
		})
	}
}

func TestHealthAndVersion(t *testing.T) {
	d := Deps{StartedAt: time.Now().Add(-time.Minute), SummaryVersion: "v3"}

	code, data := serve(t, d, "/meta/health")
	if code != stdhttp.StatusOK || data["ok"] != true || data["uptime_seconds"].(float64) < 59 {
		t.Fatalf("health %d %v", code, data)
	}

	_, data = serve(t, d, "/meta/version")
	if data["summary_version"] != "v3" {
		t.Fatalf("version %v", data)
	}
	if _, ok := data["commit"]; !ok {
		t.Fatalf("build info missing: %v", data)
	}
}
