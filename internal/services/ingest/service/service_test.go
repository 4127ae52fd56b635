package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"hansard/internal/core/transcript"
	"hansard/internal/modkit/repokit"
	perr "hansard/internal/platform/errors"
	"hansard/internal/platform/store"
	"hansard/internal/services/ingest/domain"
	"hansard/internal/services/ingest/guardrails"
	sumdom "hansard/internal/services/summaries/domain"
)

const sittingDoc = `{
	"metadata": {"sittingDate": "05-03-2024", "parlimentNO": 14},
	"attendanceList": [{"mpName": "Mr Tan Ah Kow (Jurong).", "attendance": true}],
	"takesSectionVOList": [{
		"sectionType": "OS",
		"title": "Motion",
		"content": "<p><strong>Mr Tan Ah Kow</strong>: Sir, I beg to move.</p>"
	}]
}`

const blankDoc = `{"metadata": {}, "attendanceList": [], "takesSectionVOList": []}`

var (
	mar4 = time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)
	mar5 = time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
	mar6 = time.Date(2024, time.March, 6, 0, 0, 0, 0, time.UTC)
)

type fakeTx struct{}

func (fakeTx) Exec(context.Context, string, ...any) (store.CommandTag, error) { return nil, nil }
func (fakeTx) Query(context.Context, string, ...any) (store.Rows, error)      { return nil, nil }
func (fakeTx) QueryRow(context.Context, string, ...any) store.Row             { return nil }
func (f fakeTx) Tx(_ context.Context, fn func(q store.RowQuerier) error) error {
	return fn(f)
}

type fakeRepo struct {
	mu        sync.Mutex
	sittings  []domain.Sitting
	speeches  int
	summaries []domain.SittingSummary
	latest    time.Time
	stored    []time.Time
}

func (r *fakeRepo) UpsertAttendance(_ context.Context, rows []transcript.Attendance) (int, error) {
	return len(rows), nil
}

func (r *fakeRepo) UpsertLeave(_ context.Context, rows []transcript.Leave) (int, error) {
	return len(rows), nil
}

func (r *fakeRepo) UpsertSpeeches(_ context.Context, rows []transcript.Speech) (int, []string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.speeches += len(rows)
	return len(rows), nil, nil
}

func (r *fakeRepo) UpsertSitting(_ context.Context, s domain.Sitting) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sittings = append(r.sittings, s)
	return nil
}

func (r *fakeRepo) UpsertSittingSummary(_ context.Context, s domain.SittingSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.summaries = append(r.summaries, s)
	return nil
}

func (r *fakeRepo) LatestSittingDate(context.Context) (time.Time, bool, error) {
	return r.latest, !r.latest.IsZero(), nil
}

func (r *fakeRepo) SittingDates(_ context.Context, from, to time.Time) ([]time.Time, error) {
	return r.stored, nil
}

type fakeFetcher struct {
	mu    sync.Mutex
	docs  map[string]string
	errs  map[string][]error // popped per call before docs are served
	calls map[string]int
}

func (f *fakeFetcher) Fetch(_ context.Context, day time.Time) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := day.Format(transcript.DayLayout)
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[k]++
	if errs := f.errs[k]; len(errs) > 0 {
		f.errs[k] = errs[1:]
		return nil, errs[0]
	}
	doc, ok := f.docs[k]
	if !ok {
		return nil, perr.NotFoundf("no report for %s", k)
	}
	return []byte(doc), nil
}

type fakeSummaries struct {
	mu         sync.Mutex
	sittingErr error
	dates      []time.Time
}

func (f *fakeSummaries) SummarizeSitting(_ context.Context, s *transcript.Sitting) (*domain.SittingSummary, error) {
	if f.sittingErr != nil {
		return nil, f.sittingErr
	}
	return &domain.SittingSummary{SittingDate: s.SittingDate, Provider: "fake", Model: "m", Text: "A. B. C."}, nil
}

func (f *fakeSummaries) SummarizeDate(_ context.Context, day time.Time) (sumdom.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dates = append(f.dates, day)
	return sumdom.Report{Scanned: 1, Summarized: 1}, nil
}

func newSvc(repo *fakeRepo, f *fakeFetcher, cfg Config) (*Service, *[]domain.DayResult) {
	var mu sync.Mutex
	var results []domain.DayResult
	s := New(fakeTx{}, repokit.BindFunc[domain.StorageRepo](func(repokit.Queryer) domain.StorageRepo { return repo }), f, cfg, nil)
	s.sleep = func(context.Context, time.Duration) error { return nil }
	s.OnDay = func(r domain.DayResult) {
		mu.Lock()
		defer mu.Unlock()
		results = append(results, r)
	}
	return s, &results
}

func statuses(rs []domain.DayResult) map[string]domain.Status {
	out := map[string]domain.Status{}
	for _, r := range rs {
		out[r.Day.Format(transcript.DayLayout)] = r.Status
	}
	return out
}

func TestRunRange_Statuses(t *testing.T) {
	repo := &fakeRepo{}
	f := &fakeFetcher{docs: map[string]string{"2024-03-04": blankDoc, "2024-03-05": sittingDoc}}
	s, results := newSvc(repo, f, Config{Workers: 2})

	if err := s.RunRange(context.Background(), mar4, mar6); err != nil {
		t.Fatalf("RunRange: %v", err)
	}
	got := statuses(*results)
	want := map[string]domain.Status{
		"2024-03-04": domain.StatusNoSitting,
		"2024-03-05": domain.StatusOK,
		"2024-03-06": domain.StatusNoSitting, // 404
	}
	for k, v := range want {
		if got[k] != v {
			t.Fatalf("%s = %s, want %s (all %v)", k, got[k], v, got)
		}
	}
	if len(repo.sittings) != 1 || repo.sittings[0].SittingDate != "2024-03-05" || repo.speeches == 0 {
		t.Fatalf("repo = %+v", repo)
	}
	if p := repo.sittings[0].ParliamentNo; p == nil || *p != 14 {
		t.Fatalf("parliament = %v", p)
	}
}

func TestRunRange_RetriesTransient(t *testing.T) {
	repo := &fakeRepo{}
	f := &fakeFetcher{
		docs: map[string]string{"2024-03-05": sittingDoc},
		errs: map[string][]error{"2024-03-05": {perr.Unavailablef("upstream 503")}},
	}
	s, results := newSvc(repo, f, Config{MaxRetries: 3})

	if err := s.RunRange(context.Background(), mar5, mar5); err != nil {
		t.Fatalf("RunRange: %v", err)
	}
	if f.calls["2024-03-05"] != 2 {
		t.Fatalf("calls = %d, want 2", f.calls["2024-03-05"])
	}
	if (*results)[0].Status != domain.StatusOK {
		t.Fatalf("status = %s", (*results)[0].Status)
	}
}

func TestRunRange_FailureIsPerDay(t *testing.T) {
	repo := &fakeRepo{}
	f := &fakeFetcher{docs: map[string]string{"2024-03-04": "{not json", "2024-03-05": sittingDoc}}
	s, results := newSvc(repo, f, Config{MaxRetries: 3})

	err := s.RunRange(context.Background(), mar4, mar5)
	if err == nil {
		t.Fatal("expected aggregate error")
	}
	if f.calls["2024-03-04"] != 1 {
		t.Fatalf("bad json retried %d times", f.calls["2024-03-04"])
	}
	got := statuses(*results)
	if got["2024-03-04"] != domain.StatusFailed || got["2024-03-05"] != domain.StatusOK {
		t.Fatalf("statuses = %v", got)
	}
	for _, r := range *results {
		if r.Status == domain.StatusFailed && !perr.IsCode(r.Err, perr.ErrorCodeJSON) {
			t.Fatalf("err = %v", r.Err)
		}
	}
}

func TestRunRange_Guards(t *testing.T) {
	s, _ := newSvc(&fakeRepo{}, &fakeFetcher{}, Config{MaxDaysPerRun: 2})
	if err := s.RunRange(context.Background(), mar6, mar4); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("inverted range err = %v", err)
	}
	if err := s.RunRange(context.Background(), mar4, mar6); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("oversized range err = %v", err)
	}
}

func TestRunRange_LeaseHeld(t *testing.T) {
	f := &fakeFetcher{docs: map[string]string{"2024-03-05": sittingDoc}}
	s, results := newSvc(&fakeRepo{}, f, Config{EnableLeases: true})
	s.Lease = func(context.Context, time.Time, func(context.Context) error) error {
		return guardrails.ErrLeaseHeld
	}

	if err := s.RunRange(context.Background(), mar5, mar5); err != nil {
		t.Fatalf("held lease is a clean skip: %v", err)
	}
	if f.calls["2024-03-05"] != 0 {
		t.Fatal("leased day was fetched")
	}
	if (*results)[0].Status != domain.StatusLeased {
		t.Fatalf("status = %s", (*results)[0].Status)
	}
}

func TestRunRange_LeaseRunsDay(t *testing.T) {
	repo := &fakeRepo{}
	f := &fakeFetcher{docs: map[string]string{"2024-03-05": sittingDoc}}
	s, _ := newSvc(repo, f, Config{EnableLeases: true})
	var leased []time.Time
	s.Lease = func(ctx context.Context, day time.Time, do func(context.Context) error) error {
		leased = append(leased, day)
		return do(ctx)
	}

	if err := s.RunRange(context.Background(), mar5, mar5); err != nil {
		t.Fatalf("RunRange: %v", err)
	}
	if len(leased) != 1 || len(repo.sittings) != 1 {
		t.Fatalf("leased = %v sittings = %d", leased, len(repo.sittings))
	}
}

func TestRunRange_SkipDB(t *testing.T) {
	f := &fakeFetcher{docs: map[string]string{"2024-03-05": sittingDoc}}
	s := New(nil, repokit.BindFunc[domain.StorageRepo](func(repokit.Queryer) domain.StorageRepo {
		t.Fatal("skip-db run bound a repo")
		return nil
	}), f, Config{}, nil)
	s.sleep = func(context.Context, time.Duration) error { return nil }
	var got domain.Status
	s.OnDay = func(r domain.DayResult) { got = r.Status }

	if !s.Cfg.SkipDB {
		t.Fatal("nil db implies skip-db")
	}
	if err := s.RunRange(context.Background(), mar5, mar5); err != nil {
		t.Fatalf("RunRange: %v", err)
	}
	if got != domain.StatusParsed {
		t.Fatalf("status = %s", got)
	}
}

func TestRunRange_Summaries(t *testing.T) {
	repo := &fakeRepo{}
	f := &fakeFetcher{docs: map[string]string{"2024-03-05": sittingDoc}}
	sum := &fakeSummaries{}
	s, _ := newSvc(repo, f, Config{})
	s.WithSummaries(sum)

	if err := s.RunRange(context.Background(), mar5, mar5); err != nil {
		t.Fatalf("RunRange: %v", err)
	}
	if len(repo.summaries) != 1 || repo.summaries[0].SittingDate != "2024-03-05" {
		t.Fatalf("summaries = %+v", repo.summaries)
	}
	if len(sum.dates) != 1 || !sum.dates[0].Equal(mar5) {
		t.Fatalf("speech summaries ran for %v", sum.dates)
	}
}

func TestRunRange_SummaryFailureKeepsDay(t *testing.T) {
	repo := &fakeRepo{}
	f := &fakeFetcher{docs: map[string]string{"2024-03-05": sittingDoc}}
	s, results := newSvc(repo, f, Config{})
	s.WithSummaries(&fakeSummaries{sittingErr: errors.New("llm down")})

	if err := s.RunRange(context.Background(), mar5, mar5); err != nil {
		t.Fatalf("RunRange: %v", err)
	}
	if len(repo.summaries) != 0 || len(repo.sittings) != 1 || (*results)[0].Status != domain.StatusOK {
		t.Fatalf("repo = %+v", repo)
	}
}

func TestPlan(t *testing.T) {
	now := time.Date(2024, time.March, 10, 15, 0, 0, 0, time.UTC)
	tests := []struct {
		name   string
		cfg    Config
		latest time.Time
		want   domain.Plan
	}{
		{"run date", Config{RunDate: mar5, StartDate: mar4}, time.Time{},
			domain.Plan{Start: mar5, End: mar5, Source: "run_date"}},
		{"start date", Config{StartDate: mar4, EndDate: mar6}, time.Time{},
			domain.Plan{Start: mar4, End: mar6, Source: "start_date"}},
		{"resume", Config{ResumeFromLatest: true}, mar5,
			domain.Plan{Start: mar6, End: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), Source: "resume"}},
		{"default", Config{ResumeFromLatest: true, EndDate: DefaultStart.AddDate(0, 0, 1)}, time.Time{},
			domain.Plan{Start: DefaultStart, End: DefaultStart.AddDate(0, 0, 1), Source: "default"}},
		{"capped", Config{StartDate: mar4, MaxDaysPerRun: 2}, time.Time{},
			domain.Plan{Start: mar4, End: mar5, Source: "start_date", Capped: true}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s, _ := newSvc(&fakeRepo{latest: tc.latest}, &fakeFetcher{}, tc.cfg)
			got, err := s.Plan(context.Background(), now)
			if err != nil {
				t.Fatalf("Plan: %v", err)
			}
			if !got.Start.Equal(tc.want.Start) || !got.End.Equal(tc.want.End) || got.Source != tc.want.Source || got.Capped != tc.want.Capped {
				t.Fatalf("plan = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestRunAuto_NothingToDo(t *testing.T) {
	f := &fakeFetcher{}
	s, _ := newSvc(&fakeRepo{latest: mar6}, f, Config{ResumeFromLatest: true})
	plan, err := s.RunAuto(context.Background(), mar6)
	if err != nil || plan.Days() != 0 {
		t.Fatalf("plan = %+v, %v", plan, err)
	}
	if len(f.calls) != 0 {
		t.Fatal("nothing should be fetched")
	}
}

func TestReingest(t *testing.T) {
	repo := &fakeRepo{stored: []time.Time{mar5}}
	f := &fakeFetcher{docs: map[string]string{"2024-03-05": sittingDoc}}
	s, _ := newSvc(repo, f, Config{})

	if err := s.Reingest(context.Background(), time.Time{}, time.Time{}); err != nil {
		t.Fatalf("Reingest: %v", err)
	}
	if f.calls["2024-03-05"] != 1 || len(repo.sittings) != 1 {
		t.Fatalf("calls = %v sittings = %d", f.calls, len(repo.sittings))
	}

	skip := New(nil, repokit.BindFunc[domain.StorageRepo](func(repokit.Queryer) domain.StorageRepo { return repo }), f, Config{}, nil)
	if err := skip.Reingest(context.Background(), time.Time{}, time.Time{}); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("skip-db reingest err = %v", err)
	}
}
