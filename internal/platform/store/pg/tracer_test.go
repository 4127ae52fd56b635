package pg

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"hansard/internal/platform/logger"
)

func TestCompact(t *testing.T) {
	tests := map[string]string{
		"select 1":                            "select 1",
		"  select   1  ":                      "select 1",
		"SELECT\t*\nFROM\r\thansard_speeches": "SELECT * FROM hansard_speeches",
		"":                                    "",
	}
	for in, want := range tests {
		if got := compact(in); got != want {
			t.Fatalf("compact(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTracer_Lines(t *testing.T) {
	var buf bytes.Buffer
	tr := Tracer(zerolog.New(&buf).Level(zerolog.ErrorLevel))

	ctx := logger.WithRun(context.Background(), "run-1")
	tr.OnQuery(ctx, QueryEvent{SQL: "select\n 1", ElapsedUS: 1500})
	tr.OnQuery(context.Background(), QueryEvent{SQL: "select 2", Slow: true, Err: errors.New("boom")})

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 2 {
		t.Fatalf("want 2 lines even with an error-level root, got %d: %s", len(lines), buf.String())
	}

	var first, second map[string]any
	if err := json.Unmarshal(lines[0], &first); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(lines[1], &second); err != nil {
		t.Fatal(err)
	}
	if first["level"] != "info" || first["sql"] != "select 1" || first["run_id"] != "run-1" || first["elapsed_ms"] != 1.5 {
		t.Fatalf("first = %v", first)
	}
	if second["level"] != "warn" || second["error"] != "boom" || second["component"] != "pg" {
		t.Fatalf("second = %v", second)
	}
	if _, ok := second["run_id"]; ok {
		t.Fatal("no run on ctx, no run_id")
	}
}
