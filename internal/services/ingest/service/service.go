// Package service provides the sitting ingest implementation
package service

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"hansard/internal/core/transcript"
	"hansard/internal/modkit/repokit"
	perr "hansard/internal/platform/errors"
	"hansard/internal/platform/logger"
	ptime "hansard/internal/platform/time"
	"hansard/internal/services/ingest/domain"
	"hansard/internal/services/ingest/guardrails"
)

// DefaultStart is where an empty database starts ingesting
var DefaultStart = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

// Config holds configuration options for the ingest service
type Config struct {
	// Concurrency & pacing
	Workers     int           // number of parallel days; <=0 -> 1
	DelayPerDay time.Duration // optional sleep after each processed day (per worker)

	// Day-level retry
	MaxRetries int           // attempts per day; <=0 -> 1
	RetryBase  time.Duration // base backoff for day retries; <=0 -> 500ms

	// Timeouts applied via guardrails
	DayTimeout   time.Duration
	FetchTimeout time.Duration
	DBTimeout    time.Duration
	AITimeout    time.Duration

	// Range guard for RunAuto; RunRange refuses larger spans
	MaxDaysPerRun int // 0 = unlimited

	// Per-day lease in ingest_day_leases (optional)
	EnableLeases bool

	// SkipDB parses and dumps without touching Postgres
	SkipDB bool

	// Window for RunAuto. Zero values are unset
	RunDate   time.Time
	StartDate time.Time
	EndDate   time.Time

	// ResumeFromLatest starts RunAuto the day after the newest stored sitting
	ResumeFromLatest bool
}

// Service implements domain.RunnerPort
type Service struct {
	DB     repokit.TxRunner                    // nil in skip-DB runs
	Binder repokit.Binder[domain.StorageRepo] // binds q -> domain.StorageRepo
	Fetch  domain.Fetcher
	Cfg    Config

	// Optional collaborators
	Summaries domain.Summarizer
	Dump      domain.Dumper
	Lease     guardrails.LeaseFunc

	// OnDay observes every finished day, e.g. for CLI output
	OnDay func(domain.DayResult)

	sleep func(context.Context, time.Duration) error
}

// New constructs the ingest service
func New(
	db repokit.TxRunner,
	binder repokit.Binder[domain.StorageRepo],
	f domain.Fetcher,
	cfg Config,
	lease guardrails.LeaseFunc,
) *Service {
	if f == nil {
		panic("ingest.Service requires a non nil Fetcher")
	}
	if binder == nil {
		panic("ingest.Service requires a non nil Repo binder")
	}
	if db == nil {
		cfg.SkipDB = true
	}
	return &Service{DB: db, Binder: binder, Fetch: f, Cfg: cfg, Lease: lease, sleep: sleepCtx}
}

// WithSummaries wires the optional AI enrichment
func (s *Service) WithSummaries(p domain.Summarizer) *Service {
	s.Summaries = p
	return s
}

// WithDumper wires debug dumps
func (s *Service) WithDumper(d domain.Dumper) *Service {
	s.Dump = d
	return s
}

// RunRange implements domain.RunnerPort
func (s *Service) RunRange(ctx context.Context, start, end time.Time) error {
	start, end = ptime.Day(start), ptime.Day(end)
	if end.Before(start) {
		return perr.InvalidArgf("end %s before start %s", end.Format(transcript.DayLayout), start.Format(transcript.DayLayout))
	}
	n := int(end.Sub(start).Hours()/24) + 1
	if s.Cfg.MaxDaysPerRun > 0 && n > s.Cfg.MaxDaysPerRun {
		return perr.InvalidArgf("range of %d days exceeds MaxDaysPerRun %d", n, s.Cfg.MaxDaysPerRun)
	}

	days := make([]time.Time, 0, n)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return s.runDays(ctx, days)
}

// RunAuto implements domain.RunnerPort
func (s *Service) RunAuto(ctx context.Context, now time.Time) (domain.Plan, error) {
	plan, err := s.Plan(ctx, now)
	if err != nil {
		return plan, err
	}
	if plan.Days() == 0 {
		logger.C(ctx).Info().
			Str("start", plan.Start.Format(transcript.DayLayout)).
			Str("end", plan.End.Format(transcript.DayLayout)).
			Msg("ingest: nothing to do")
		return plan, nil
	}
	days := make([]time.Time, 0, plan.Days())
	for d := plan.Start; !d.After(plan.End); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return plan, s.runDays(ctx, days)
}

// Plan resolves the RunAuto window: RUN_DATE alone, else START_DATE, the day after the
// newest stored sitting, or DefaultStart, through END_DATE or today. MaxDaysPerRun caps it
func (s *Service) Plan(ctx context.Context, now time.Time) (domain.Plan, error) {
	today := ptime.Day(now)

	if !s.Cfg.RunDate.IsZero() {
		d := ptime.Day(s.Cfg.RunDate)
		return domain.Plan{Start: d, End: d, Source: "run_date"}, nil
	}

	plan := domain.Plan{Start: DefaultStart, End: today, Source: "default"}
	switch {
	case !s.Cfg.StartDate.IsZero():
		plan.Start, plan.Source = ptime.Day(s.Cfg.StartDate), "start_date"
	case s.Cfg.ResumeFromLatest && !s.Cfg.SkipDB:
		latest, ok, err := s.Binder.Bind(s.DB).LatestSittingDate(ctx)
		if err != nil {
			return plan, err
		}
		if ok {
			plan.Start, plan.Source = latest.AddDate(0, 0, 1), "resume"
		}
	}
	if !s.Cfg.EndDate.IsZero() {
		plan.End = ptime.Day(s.Cfg.EndDate)
	}
	if limit := s.Cfg.MaxDaysPerRun; limit > 0 && plan.Days() > limit {
		plan.End = plan.Start.AddDate(0, 0, limit-1)
		plan.Capped = true
	}
	return plan, nil
}

// Reingest implements domain.RunnerPort
func (s *Service) Reingest(ctx context.Context, from, to time.Time) error {
	if s.Cfg.SkipDB {
		return perr.InvalidArgf("reingest needs a database")
	}
	days, err := s.Binder.Bind(s.DB).SittingDates(ctx, from, to)
	if err != nil {
		return err
	}
	logger.C(ctx).Info().Int("sittings", len(days)).Msg("ingest: reingesting stored sittings")
	return s.runDays(ctx, days)
}

// runDays drains days with a fixed pool. Each worker claims the next index until none
// are left. A failed day is logged and counted, never fatal to the run
func (s *Service) runDays(ctx context.Context, days []time.Time) error {
	runID := uuid.NewString()
	ctx = logger.WithRun(ctx, runID)
	log := logger.C(ctx)

	w := min(max(s.Cfg.Workers, 1), max(len(days), 1))
	log.Info().Int("days", len(days)).Int("workers", w).Bool("skip_db", s.Cfg.SkipDB).Msg("ingest: run started")

	var (
		next  atomic.Int64
		fails atomic.Int64
		tally sync.Map // domain.Status -> *atomic.Int64
		wg    sync.WaitGroup
	)
	count := func(st domain.Status) {
		v, _ := tally.LoadOrStore(st, new(atomic.Int64))
		v.(*atomic.Int64).Add(1)
	}

	worker := func() {
		defer wg.Done()
		for {
			i := int(next.Add(1) - 1)
			if i >= len(days) || ctx.Err() != nil {
				return
			}
			res := s.runDayWithRetry(ctx, days[i])
			count(res.Status)
			if res.Err != nil {
				fails.Add(1)
			}
			if s.OnDay != nil {
				s.OnDay(res)
			}
			if s.Cfg.DelayPerDay > 0 {
				_ = s.sleep(ctx, s.Cfg.DelayPerDay)
			}
		}
	}

	start := time.Now()
	wg.Add(w)
	for range w {
		go worker()
	}
	wg.Wait()

	ev := log.Info().Int("days", len(days)).Int64("failed", fails.Load()).Dur("elapsed", time.Since(start))
	tally.Range(func(k, v any) bool {
		ev = ev.Int64(string(k.(domain.Status)), v.(*atomic.Int64).Load())
		return true
	})
	ev.Msg("ingest: run finished")

	if err := ctx.Err(); err != nil {
		return err
	}
	if fails.Load() > 0 {
		return perr.Newf(perr.ErrorCodeUnknown, "%d of %d days failed", fails.Load(), len(days))
	}
	return nil
}

func (s *Service) runDayWithRetry(ctx context.Context, day time.Time) domain.DayResult {
	attempts := max(s.Cfg.MaxRetries, 1)
	base := s.Cfg.RetryBase
	if base <= 0 {
		base = 500 * time.Millisecond
	}
	ctx = logger.WithSitting(ctx, day.Format(transcript.DayLayout))

	var res domain.DayResult
	for i := range attempts {
		res = s.runDay(ctx, day)
		if res.Err == nil || !retryable(res.Err) || i == attempts-1 {
			break
		}

		// Exponential backoff with jitter, cap at 30s
		d := min(base<<i, 30*time.Second)
		j := d/2 + time.Duration(rand.Int63n(int64(d/2)+1))
		logger.C(ctx).Warn().Err(res.Err).Int("attempt", i+1).Dur("retry_in", j).Msg("ingest: day failed, retrying")
		if se := s.sleep(ctx, j); se != nil {
			res.Err = se
			break
		}
	}

	log := logger.C(ctx)
	if res.Err != nil {
		res.Status = domain.StatusFailed
		log.Error().Err(res.Err).Msg("ingest: day failed")
	} else {
		log.Info().
			Str("status", string(res.Status)).
			Int("attendance", res.Written.Attendance).
			Int("ptba", res.Written.Leave).
			Int("speeches", res.Written.Speeches).
			Int("fetch_ms", res.FetchMS).
			Int("parse_ms", res.ParseMS).
			Int("db_ms", res.DBMS).
			Msg("ingest: day done")
	}
	return res
}

// runDay takes the day lease when configured. A held lease is a clean skip
func (s *Service) runDay(ctx context.Context, day time.Time) domain.DayResult {
	if s.Lease == nil || !s.Cfg.EnableLeases || s.Cfg.SkipDB {
		return s.runDayUnlocked(ctx, day)
	}
	var res domain.DayResult
	err := s.Lease(ctx, day, func(ctx context.Context) error {
		res = s.runDayUnlocked(ctx, day)
		return nil
	})
	if errors.Is(err, guardrails.ErrLeaseHeld) {
		logger.C(ctx).Info().Msg("ingest: day leased by another runner, skipping")
		return domain.DayResult{Day: day, Status: domain.StatusLeased}
	}
	if err != nil {
		return domain.DayResult{Day: day, Err: err}
	}
	return res
}

func (s *Service) runDayUnlocked(ctx context.Context, day time.Time) (res domain.DayResult) {
	res.Day = day
	tos := guardrails.Timeouts{
		Day:   s.Cfg.DayTimeout,
		Fetch: s.Cfg.FetchTimeout,
		DB:    s.Cfg.DBTimeout,
		AI:    s.Cfg.AITimeout,
	}
	dayCtx, dayCancel := guardrails.WithDay(ctx, tos)
	defer dayCancel()
	log := logger.C(ctx)

	// Fetch (timeoutable)
	t0 := time.Now()
	fetchCtx, fetchCancel := guardrails.ForFetch(dayCtx, tos)
	raw, err := s.Fetch.Fetch(fetchCtx, day)
	fetchCancel()
	res.FetchMS = int(time.Since(t0).Milliseconds())
	if perr.IsCode(err, perr.ErrorCodeNotFound) {
		res.Status = domain.StatusNoSitting
		return res
	}
	if err != nil {
		res.Err = err
		return res
	}
	if s.Dump != nil {
		if err := s.Dump.Raw(day, raw); err != nil {
			log.Warn().Err(err).Msg("ingest: raw dump failed")
		}
	}

	// Parse
	t1 := time.Now()
	doc, err := transcript.Decode(raw)
	if err != nil {
		res.Err = err
		return res
	}
	if doc.Blank() {
		res.ParseMS = int(time.Since(t1).Milliseconds())
		res.Status = domain.StatusNoSitting
		return res
	}
	sitting, err := transcript.ParseDocument(doc)
	res.ParseMS = int(time.Since(t1).Milliseconds())
	if err != nil {
		res.Err = err
		return res
	}
	res.Stats = sitting.Stats
	logStats(log, sitting)

	if sitting.Empty() {
		log.Info().Msg("ingest: no sitting detected (0 attendance, 0 speeches), skipping insert")
		res.Status = domain.StatusNoSitting
		return res
	}
	if s.Dump != nil {
		if err := s.Dump.Tables(day, sitting); err != nil {
			log.Warn().Err(err).Msg("ingest: table dump failed")
		}
	}

	digest := s.sittingSummary(dayCtx, tos, sitting)

	if s.Cfg.SkipDB {
		log.Info().
			Int("attendance", len(sitting.Attendance)).
			Int("ptba", len(sitting.Leave)).
			Int("speeches", len(sitting.Speeches)).
			Bool("summary", digest != nil).
			Msg("ingest: skip-db, parsed only")
		res.Status = domain.StatusParsed
		return res
	}

	// Write every table in one transaction (timeoutable)
	t2 := time.Now()
	dbCtx, dbCancel := guardrails.ForDB(dayCtx, tos)
	res.Written, err = s.write(dbCtx, sitting, digest)
	dbCancel()
	res.DBMS = int(time.Since(t2).Milliseconds())
	if err != nil {
		res.Err = err
		return res
	}
	if len(res.Written.SpeechColumnsDropped) > 0 {
		log.Warn().Strs("columns", res.Written.SpeechColumnsDropped).Msg("ingest: speech table lacks optional columns, wrote base columns only")
	}

	s.speechSummaries(dayCtx, tos, day)
	res.Status = domain.StatusOK
	return res
}

func (s *Service) write(ctx context.Context, sitting *transcript.Sitting, digest *domain.SittingSummary) (domain.Written, error) {
	var w domain.Written
	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		applyTxTuning(ctx, q)
		r := s.Binder.Bind(q)

		var err error
		if w.Attendance, err = r.UpsertAttendance(ctx, sitting.Attendance); err != nil {
			return err
		}
		if w.Leave, err = r.UpsertLeave(ctx, sitting.Leave); err != nil {
			return err
		}
		if w.Speeches, w.SpeechColumnsDropped, err = r.UpsertSpeeches(ctx, sitting.Speeches); err != nil {
			return err
		}
		if err := r.UpsertSitting(ctx, domain.SittingFrom(sitting)); err != nil {
			return err
		}
		if digest != nil {
			return r.UpsertSittingSummary(ctx, *digest)
		}
		return nil
	})
	if err != nil {
		return domain.Written{}, err
	}
	return w, nil
}

// sittingSummary runs before the write so the digest commits with the sitting. AI
// failures never fail the day
func (s *Service) sittingSummary(ctx context.Context, tos guardrails.Timeouts, sitting *transcript.Sitting) *domain.SittingSummary {
	if s.Summaries == nil {
		return nil
	}
	aiCtx, cancel := guardrails.ForAI(ctx, tos)
	defer cancel()
	digest, err := s.Summaries.SummarizeSitting(aiCtx, sitting)
	if err != nil {
		logger.C(ctx).Warn().Err(err).Msg("ingest: sitting summary failed")
		return nil
	}
	return digest
}

// speechSummaries enriches rows already committed for day
func (s *Service) speechSummaries(ctx context.Context, tos guardrails.Timeouts, day time.Time) {
	if s.Summaries == nil {
		return
	}
	aiCtx, cancel := guardrails.ForAI(ctx, tos)
	defer cancel()
	rep, err := s.Summaries.SummarizeDate(aiCtx, day)
	log := logger.C(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("ingest: speech summaries failed")
		return
	}
	if rep.Scanned > 0 {
		log.Info().
			Int("scanned", rep.Scanned).
			Int("summarized", rep.Summarized).
			Int("short_circuited", rep.ShortCircuited).
			Int("failed", rep.Failed).
			Msg("ingest: speech summaries")
	}
}

func logStats(log *logger.Logger, s *transcript.Sitting) {
	st := s.Stats
	log.Debug().
		Int("sections", st.Sections).
		Int("blocks", st.Blocks).
		Int("chair_markers", st.ChairMarkers).
		Int("time_stamps", st.TimeStamps).
		Int("call_outs", st.CallOuts).
		Int("question_listings", st.QuestionListings).
		Int("continuations", st.Continuations).
		Int("orphans", st.Orphans).
		Int("loose_runs", st.LooseRuns).
		Int("unresolved", st.Unresolved).
		Int("leave_out_of_range", st.LeaveOutOfRange).
		Int("attendance_deduped", st.AttendanceDeduped).
		Int("ptba_deduped", st.LeaveDeduped).
		Int("speeches_deduped", st.SpeechesDeduped).
		Msg("ingest: parse stats")
}

// retryable covers transient db errors plus upstream throttling and outages
func retryable(err error) bool {
	if perr.Retryable(err) {
		return true
	}
	switch perr.CodeOf(err) {
	case perr.ErrorCodeUnavailable, perr.ErrorCodeTooManyRequests:
		return true
	}
	return false
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SET LOCAL only lives for the duration of the current transaction
func applyTxTuning(ctx context.Context, q repokit.Queryer) {
	_, _ = q.Exec(ctx, "SET LOCAL statement_timeout = 0")
}
