package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"hansard/internal/core/transcript"
	"hansard/internal/modkit/repokit"
	perr "hansard/internal/platform/errors"
	"hansard/internal/platform/store"
	"hansard/internal/services/summaries/domain"
)

type fakeTx struct{}

func (fakeTx) Exec(context.Context, string, ...any) (store.CommandTag, error) { return nil, nil }
func (fakeTx) Query(context.Context, string, ...any) (store.Rows, error)      { return nil, nil }
func (fakeTx) QueryRow(context.Context, string, ...any) store.Row             { return nil }
func (f fakeTx) Tx(_ context.Context, fn func(q store.RowQuerier) error) error {
	return fn(f)
}

type saved struct {
	key domain.SpeechKey
	sum domain.SpeechSummary
}

type fakeRepo struct {
	mu      sync.Mutex
	rows    []domain.SpeechRow
	saved   []saved
	sitting []domain.SittingSummary
}

func (r *fakeRepo) SpeechesForDate(_ context.Context, day string) ([]domain.SpeechRow, error) {
	var out []domain.SpeechRow
	for _, row := range r.rows {
		if row.SittingDate == day {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *fakeRepo) PendingSpeeches(_ context.Context, from, to string, after domain.SpeechKey, limit int) ([]domain.SpeechRow, error) {
	var out []domain.SpeechRow
	for _, row := range r.rows {
		if from != "" && row.SittingDate < from || to != "" && row.SittingDate > to {
			continue
		}
		if after.SittingDate != "" && (row.SittingDate < after.SittingDate ||
			row.SittingDate == after.SittingDate && row.RowNum <= after.RowNum) {
			continue
		}
		if !row.NeedsSummary() {
			continue
		}
		out = append(out, row)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeRepo) SaveSpeechSummary(_ context.Context, key domain.SpeechKey, s domain.SpeechSummary, _ time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = append(r.saved, saved{key, s})
	return nil
}

func (r *fakeRepo) UpsertSittingSummary(_ context.Context, s domain.SittingSummary) error {
	r.sitting = append(r.sitting, s)
	return nil
}

type fakeLLM struct {
	replies []string
	err     error
	calls   []domain.Completion
}

func (l *fakeLLM) Complete(_ context.Context, c domain.Completion) (string, error) {
	l.calls = append(l.calls, c)
	if l.err != nil {
		return "", l.err
	}
	if len(l.replies) == 0 {
		return `{"segment_type":"statement","one_liner":"ok","themes":[],"key_claims":[]}`, nil
	}
	r := l.replies[0]
	l.replies = l.replies[1:]
	return r, nil
}

func (l *fakeLLM) Provider() string { return "fake" }
func (l *fakeLLM) Model() string    { return "fake-1" }

func newSvc(repo *fakeRepo, llm domain.LLM, cfg Config) *Service {
	cfg.Enabled = true
	binder := repokit.BindFunc[domain.StorageRepo](func(repokit.Queryer) domain.StorageRepo { return repo })
	s := New(fakeTx{}, binder, llm, cfg)
	s.now = func() time.Time { return time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC) }
	return s
}

var long = strings.Repeat("The Minister said the scheme covers all households in the estate. ", 4)

func row(day string, n int, label, text string) domain.SpeechRow {
	return domain.SpeechRow{SpeechKey: domain.SpeechKey{SittingDate: day, RowNum: n}, NameRaw: label, Text: text}
}

func ptr(s string) *string { return &s }

func TestShortCircuit_Thresholds(t *testing.T) {
	if ChairShortCircuitChars != 180 || MinTextChars != 30 {
		t.Fatalf("thresholds moved: %d/%d", ChairShortCircuitChars, MinTextChars)
	}
	chair := speechMeta{Role: "chair"}
	if sum, ok := shortCircuit("Order. Members will resume their seats now please.", chair); !ok || sum.SegmentType != domain.SegmentProcedural {
		t.Fatalf("short chair text should be procedural, got %+v %v", sum, ok)
	}
	if _, ok := shortCircuit(strings.Repeat("a", ChairShortCircuitChars), chair); ok {
		t.Fatal("chair text at the threshold goes to the model")
	}
	if sum, ok := shortCircuit("", speechMeta{}); !ok || sum.SegmentType != domain.SegmentOther || sum.OneLiner != emptyOneLiner {
		t.Fatalf("empty text = %+v", sum)
	}
	if _, ok := shortCircuit(strings.Repeat("b", MinTextChars), speechMeta{}); ok {
		t.Fatal("member text at MinTextChars goes to the model")
	}
}

func TestChairRole(t *testing.T) {
	for label, want := range map[string]string{
		"Mr Speaker":                     "chair",
		"Madam Deputy Speaker":           "chair",
		"The Chairman":                   "chair",
		"Mr Chan Chun Sing":              "",
		"Mr Speaker (Mr Seah Kian Peng)": "chair",
	} {
		if got := chairRole(label); got != want {
			t.Fatalf("chairRole(%q) = %q", label, got)
		}
	}
}

func TestParseOutput(t *testing.T) {
	sum, ok := parseOutput(`{"segment_type":"answer","one_liner":"` + strings.Repeat("w ", 40) + `",
		"themes":["housing grants for first timers", "", 3, "a","b","c","d","e","f"],
		"key_claims":[" one ","two","three","four","five","six"]}`)
	if !ok {
		t.Fatal("expected valid output")
	}
	if len(strings.Fields(sum.OneLiner)) != maxOneLinerWords {
		t.Fatalf("one_liner words = %d", len(strings.Fields(sum.OneLiner)))
	}
	if len(sum.Themes) != maxThemes || sum.Themes[0] != "housing grants for first" {
		t.Fatalf("themes = %q", sum.Themes)
	}
	if len(sum.KeyClaims) != maxKeyClaims || sum.KeyClaims[0] != "one" {
		t.Fatalf("claims = %q", sum.KeyClaims)
	}

	for _, bad := range []string{
		``,
		`not json`,
		`{"segment_type":"rant","one_liner":"x","themes":[],"key_claims":[]}`,
		`{"segment_type":"answer","themes":[],"key_claims":[]}`,
		`{"segment_type":"answer","one_liner":"x","themes":"a","key_claims":[]}`,
	} {
		if _, ok := parseOutput(bad); ok {
			t.Fatalf("parseOutput(%q) should fail", bad)
		}
	}

	if sum, ok := parseOutput(`{"segment_type":"other","one_liner":"  ","themes":[],"key_claims":[]}`); !ok || sum.OneLiner != emptyOneLiner {
		t.Fatalf("blank one_liner = %+v", sum)
	}
}

func TestSpeechRow_NeedsSummary(t *testing.T) {
	v3, old := ptr(domain.SummaryVersion), ptr("v2")
	cases := []struct {
		row  domain.SpeechRow
		want bool
	}{
		{domain.SpeechRow{}, true},
		{domain.SpeechRow{SummaryVersion: old, OneLiner: ptr("x")}, true},
		{domain.SpeechRow{SummaryVersion: v3, OneLiner: ptr("x")}, false},
		{domain.SpeechRow{SummaryVersion: v3}, true},
		{domain.SpeechRow{SummaryVersion: v3, SegmentType: ptr("procedural")}, false},
	}
	for i, c := range cases {
		if got := c.row.NeedsSummary(); got != c.want {
			t.Fatalf("case %d: NeedsSummary = %v", i, got)
		}
	}
}

func TestSummarizeDate_RepairsOnce(t *testing.T) {
	repo := &fakeRepo{rows: []domain.SpeechRow{
		row("2024-03-05", 1, "Mr Speaker", "Order."),
		row("2024-03-05", 2, "Mr Chan Chun Sing", long),
		row("2024-03-05", 3, "Mr Chan Chun Sing", long),
		{SpeechKey: domain.SpeechKey{SittingDate: "2024-03-05", RowNum: 4}, Text: long, SummaryVersion: ptr(domain.SummaryVersion), OneLiner: ptr("done")},
	}}
	llm := &fakeLLM{replies: []string{
		`{"segment_type":"answer","one_liner":"Covers all households","themes":["housing"],"key_claims":["all households"]}`,
		`oops`,
		`{"segment_type":"statement","one_liner":"Repaired","themes":[],"key_claims":[]}`,
	}}
	rep, err := newSvc(repo, llm, Config{}).SummarizeDate(context.Background(), time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("SummarizeDate: %v", err)
	}
	if rep.Scanned != 4 || rep.Attempted != 3 || rep.ShortCircuited != 1 || rep.Summarized != 2 || rep.Written != 3 {
		t.Fatalf("report = %+v", rep)
	}
	if len(llm.calls) != 3 {
		t.Fatalf("llm calls = %d", len(llm.calls))
	}
	if !strings.HasPrefix(llm.calls[2].User, "Fix to schema.") || llm.calls[2].Schema == nil {
		t.Fatalf("repair call = %+v", llm.calls[2])
	}
	if !strings.Contains(llm.calls[0].User, "- speaker_name: Mr Chan Chun Sing") {
		t.Fatalf("metadata missing: %s", llm.calls[0].User)
	}
	if repo.saved[2].sum.OneLiner != "Repaired" {
		t.Fatalf("saved = %+v", repo.saved)
	}
}

func TestSummarizeDate_DryRunWritesNothing(t *testing.T) {
	repo := &fakeRepo{rows: []domain.SpeechRow{row("2024-03-05", 1, "Mr Tan", long)}}
	rep, err := newSvc(repo, &fakeLLM{}, Config{DryRun: true}).SummarizeDate(context.Background(), time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC))
	if err != nil || rep.Summarized != 1 || rep.Written != 0 || len(repo.saved) != 0 {
		t.Fatalf("rep = %+v err = %v saved = %d", rep, err, len(repo.saved))
	}
}

func TestBackfill_LimitAndCursor(t *testing.T) {
	var rows []domain.SpeechRow
	for _, d := range []string{"2024-03-05", "2024-03-06", "2024-03-07"} {
		for n := 1; n <= 3; n++ {
			rows = append(rows, row(d, n, "Mr Tan", long))
		}
	}
	repo := &fakeRepo{rows: rows}
	rep, err := newSvc(repo, &fakeLLM{}, Config{}).Backfill(context.Background(), domain.BackfillRequest{
		From:      time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC),
		Limit:     4,
		BatchSize: 2,
	})
	if err != nil {
		t.Fatalf("Backfill: %v", err)
	}
	if rep.Attempted != 4 || len(repo.saved) != 4 {
		t.Fatalf("report = %+v", rep)
	}
	if repo.saved[0].key.SittingDate != "2024-03-06" || repo.saved[3].key != (domain.SpeechKey{SittingDate: "2024-03-07", RowNum: 1}) {
		t.Fatalf("saved keys = %+v", repo.saved)
	}
}

func TestBackfill_FailsOverRatio(t *testing.T) {
	repo := &fakeRepo{rows: []domain.SpeechRow{row("2024-03-05", 1, "Mr Tan", long), row("2024-03-05", 2, "Mr Tan", long)}}
	llm := &fakeLLM{err: perr.New(perr.ErrorCodeUnavailable, "down")}
	rep, err := newSvc(repo, llm, Config{}).Backfill(context.Background(), domain.BackfillRequest{})
	if err == nil || rep.Failed != 2 {
		t.Fatalf("rep = %+v err = %v", rep, err)
	}
}

func TestBackfill_RejectsInvertedRange(t *testing.T) {
	_, err := newSvc(&fakeRepo{}, &fakeLLM{}, Config{}).Backfill(context.Background(), domain.BackfillRequest{
		From: time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
	})
	if perr.CodeOf(err) != perr.ErrorCodeInvalidArgument {
		t.Fatalf("err = %v", err)
	}
}

func TestDisabled(t *testing.T) {
	s := New(fakeTx{}, repokit.BindFunc[domain.StorageRepo](func(repokit.Queryer) domain.StorageRepo { return &fakeRepo{} }), nil, Config{})
	got, err := s.SummarizeSitting(context.Background(), &transcript.Sitting{})
	if got != nil || err != nil {
		t.Fatalf("disabled SummarizeSitting = %v, %v", got, err)
	}
	if _, err := s.SummarizeDate(context.Background(), time.Now()); perr.CodeOf(err) != perr.ErrorCodeUnavailable {
		t.Fatalf("disabled SummarizeDate err = %v", err)
	}
}

func TestSummarizeSitting(t *testing.T) {
	llm := &fakeLLM{replies: []string{"One. Two. Three."}}
	st := &transcript.Sitting{SittingDate: "2024-03-05", Speeches: []transcript.Speech{
		{NameRaw: "Mr Speaker", Speaker: ptr("Seah Kian Peng"), Text: "Order."},
		{NameRaw: "Mr Tan", Text: "  "},
		{NameRaw: "Mr Chan", Text: strings.Repeat("x", 50)},
	}}
	got, err := newSvc(&fakeRepo{}, llm, Config{MaxChars: 40}).SummarizeSitting(context.Background(), st)
	if err != nil {
		t.Fatalf("SummarizeSitting: %v", err)
	}
	if got.Text != "One. Two. Three." || got.Provider != "fake" || got.Model != "fake-1" || got.SittingDate != "2024-03-05" {
		t.Fatalf("summary = %+v", got)
	}
	prompt := llm.calls[0].User
	if !strings.Contains(prompt, "Seah Kian Peng: Order.") || !strings.HasSuffix(prompt, truncatedMarker) {
		t.Fatalf("prompt = %q", prompt)
	}
	if strings.Contains(prompt, "Mr Tan:") {
		t.Fatal("blank speeches are skipped")
	}
}

func TestSittingPrompt_NoSpeeches(t *testing.T) {
	p := sittingPrompt("2024-03-05", nil, 0)
	if !strings.Contains(p, "No speech content was parsed for this sitting.") {
		t.Fatalf("prompt = %q", p)
	}
}
