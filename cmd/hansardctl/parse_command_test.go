package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sittingDoc = `{
	"metadata": {"sittingDate": "05-03-2024", "parlimentNO": 14},
	"attendanceList": [
		{"mpName": "Mr Tan Ah Kow (Jurong).", "attendance": true},
		{"mpName": "Ms Lim Bee Hoon (Marine Parade).", "attendance": false}
	],
	"takesSectionVOList": [{
		"sectionType": "OS",
		"title": "Motion",
		"content": "<p><strong>Mr Tan Ah Kow</strong>: Sir, I beg to move.</p>"
	}]
}`

func writeDoc(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "05-03-2024.json")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestParse_Table(t *testing.T) {
	out, err := run(t, "parse", writeDoc(t, sittingDoc), "--table", "attendance")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	for _, want := range []string{"attendance=2", "Tan Ah Kow", "Lim Bee Hoon"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "I beg to move") {
		t.Fatal("speeches table should not be printed")
	}
}

func TestParse_JSON(t *testing.T) {
	out, err := run(t, "parse", writeDoc(t, sittingDoc), "--format", "json")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	var got struct {
		SittingDate string            `json:"sitting_date"`
		Attendance  []json.RawMessage `json:"attendance"`
		Speeches    []json.RawMessage `json:"speeches"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(got.Attendance) != 2 || len(got.Speeches) != 1 {
		t.Fatalf("got %+v", got)
	}
}

func TestParse_CSV(t *testing.T) {
	out, err := run(t, "parse", writeDoc(t, sittingDoc), "--format", "csv", "--table", "speeches")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !strings.Contains(out, "I beg to move") || strings.Count(strings.TrimSpace(out), "\n") != 1 {
		t.Fatalf("want header plus one row:\n%s", out)
	}
}

func TestParse_Errors(t *testing.T) {
	doc := writeDoc(t, sittingDoc)
	if _, err := run(t, "parse", doc, "--format", "xml"); err == nil {
		t.Fatal("unknown format should fail")
	}
	if _, err := run(t, "parse", doc, "--table", "votes"); err == nil {
		t.Fatal("unknown table should fail")
	}
	if _, err := run(t, "parse", filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("missing file should fail")
	}
}

func TestParse_Blank(t *testing.T) {
	out, err := run(t, "parse", writeDoc(t, `{"metadata": {}, "attendanceList": [], "takesSectionVOList": []}`))
	if err != nil || !strings.Contains(out, "no sitting") {
		t.Fatalf("out = %q err = %v", out, err)
	}
}

func TestDayFlag(t *testing.T) {
	if d, err := dayFlag("start", ""); err != nil || !d.IsZero() {
		t.Fatalf("empty = %v, %v", d, err)
	}
	if d, err := dayFlag("start", "05-03-2024"); err != nil || d.Format("2006-01-02") != "2024-03-05" {
		t.Fatalf("day = %v, %v", d, err)
	}
	if _, err := dayFlag("start", "soon"); err == nil {
		t.Fatal("expected error")
	}
}

func TestReingest_NeedsDB(t *testing.T) {
	t.Setenv("SERVICE_PGSQL_DBURL", "")
	if _, err := run(t, "reingest"); err == nil || !strings.Contains(err.Error(), "no database") {
		t.Fatalf("err = %v", err)
	}
}
