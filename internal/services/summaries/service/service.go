// Package service generates speech and sitting summaries through an LLM
package service

import (
	"context"
	"strings"
	"time"

	"hansard/internal/core/normalize"
	"hansard/internal/core/transcript"
	"hansard/internal/modkit/repokit"
	perr "hansard/internal/platform/errors"
	"hansard/internal/platform/logger"
	"hansard/internal/services/summaries/domain"
)

const (
	defaultBatch         = 50
	defaultProgressEvery = 25
	defaultMaxFailRatio  = 0.3

	speechTemperature  = 0.2
	sittingTemperature = 0.5
)

// Config holds summary options
type Config struct {
	Enabled bool
	DryRun  bool // generate, log, never write

	// MaxChars caps the transcript in a sitting prompt; 0 = no cap
	MaxChars int

	// MaxFailRatio fails a backfill when failed/attempted exceeds it; <=0 -> 0.3
	MaxFailRatio float64
}

// Service implements domain.Port
type Service struct {
	DB     repokit.TxRunner
	Binder repokit.Binder[domain.StorageRepo]
	LLM    domain.LLM
	Cfg    Config

	now func() time.Time
}

// New constructs the summaries service. llm may be nil when summaries are disabled and db
// may be nil for offline runs, where only SummarizeSitting works
func New(db repokit.TxRunner, binder repokit.Binder[domain.StorageRepo], llm domain.LLM, cfg Config) *Service {
	if binder == nil {
		panic("summaries.Service requires a non nil Repo binder")
	}
	if cfg.MaxFailRatio <= 0 {
		cfg.MaxFailRatio = defaultMaxFailRatio
	}
	return &Service{DB: db, Binder: binder, LLM: llm, Cfg: cfg, now: time.Now}
}

func (s *Service) ready() error {
	if !s.Cfg.Enabled {
		return perr.New(perr.ErrorCodeUnavailable, "summaries are disabled")
	}
	if s.LLM == nil {
		return perr.New(perr.ErrorCodeUnavailable, "summaries enabled without an llm backend")
	}
	return nil
}

func (s *Service) stored() error {
	if err := s.ready(); err != nil {
		return err
	}
	if s.DB == nil {
		return perr.New(perr.ErrorCodeUnavailable, "summaries need a database")
	}
	return nil
}

// SummarizeSitting implements domain.Port. Returns nil without error when disabled
func (s *Service) SummarizeSitting(ctx context.Context, st *transcript.Sitting) (*domain.SittingSummary, error) {
	if !s.Cfg.Enabled {
		return nil, nil
	}
	if s.LLM == nil {
		return nil, perr.New(perr.ErrorCodeUnavailable, "summaries enabled without an llm backend")
	}
	out, err := s.LLM.Complete(ctx, domain.Completion{
		System:      sittingSystemPrompt,
		User:        sittingPrompt(st.SittingDate, st.Speeches, s.Cfg.MaxChars),
		Temperature: sittingTemperature,
	})
	if err != nil {
		return nil, err
	}
	if out == "" {
		return nil, perr.Newf(perr.ErrorCodeValidation, "empty sitting summary for %s", st.SittingDate)
	}
	return &domain.SittingSummary{
		SittingDate: st.SittingDate,
		Provider:    s.LLM.Provider(),
		Model:       s.LLM.Model(),
		Text:        out,
		UpdatedAt:   s.now().UTC(),
	}, nil
}

// SummarizeDate implements domain.Port
func (s *Service) SummarizeDate(ctx context.Context, day time.Time) (domain.Report, error) {
	var rep domain.Report
	if err := s.stored(); err != nil {
		return rep, err
	}
	iso := day.Format(transcript.DayLayout)

	var rows []domain.SpeechRow
	if err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		var err error
		rows, err = s.Binder.Bind(q).SpeechesForDate(ctx, iso)
		return err
	}); err != nil {
		return rep, perr.Wrapf(err, perr.CodeOf(err), "load speeches for %s", iso)
	}

	log := logger.C(ctx).With().Str("sitting_date", iso).Logger()
	for _, row := range rows {
		rep.Scanned++
		if !row.NeedsSummary() {
			continue
		}
		r, err := s.process(ctx, row)
		rep.Add(r)
		if err != nil {
			log.Warn().Err(err).Int("row_num", row.RowNum).Msg("speech summary failed")
		}
	}
	log.Info().
		Int("scanned", rep.Scanned).
		Int("attempted", rep.Attempted).
		Int("failed", rep.Failed).
		Bool("dry_run", s.Cfg.DryRun).
		Msg("speech summaries for sitting")
	return rep, nil
}

// Backfill implements domain.Port
func (s *Service) Backfill(ctx context.Context, req domain.BackfillRequest) (domain.Report, error) {
	var rep domain.Report
	if err := s.stored(); err != nil {
		return rep, err
	}
	if !req.From.IsZero() && !req.To.IsZero() && req.To.Before(req.From) {
		return rep, perr.InvalidArgf("backfill end %s before start %s", req.To.Format(transcript.DayLayout), req.From.Format(transcript.DayLayout))
	}
	batch := req.BatchSize
	if batch <= 0 {
		batch = defaultBatch
	}
	every := req.ProgressEvery
	if every <= 0 {
		every = defaultProgressEvery
	}
	from, to := isoOrEmpty(req.From), isoOrEmpty(req.To)

	log := logger.C(ctx)
	started := s.now()
	var after domain.SpeechKey

	for {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		limit := batch
		if req.Limit > 0 {
			limit = min(limit, req.Limit-rep.Attempted)
			if limit <= 0 {
				break
			}
		}

		var rows []domain.SpeechRow
		if err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
			var err error
			rows, err = s.Binder.Bind(q).PendingSpeeches(ctx, from, to, after, limit)
			return err
		}); err != nil {
			return rep, err
		}
		if len(rows) == 0 {
			break
		}

		for _, row := range rows {
			after = row.SpeechKey
			rep.Scanned++
			r, err := s.process(ctx, row)
			rep.Add(r)
			if err != nil {
				log.Warn().Err(err).Str("sitting_date", row.SittingDate).Int("row_num", row.RowNum).Msg("speech summary failed")
			}
			if rep.Attempted > 0 && rep.Attempted%every == 0 {
				log.Info().
					Int("attempted", rep.Attempted).
					Int("summarized", rep.Summarized).
					Int("short_circuited", rep.ShortCircuited).
					Int("failed", rep.Failed).
					Str("cursor", after.SittingDate).
					Dur("elapsed", s.now().Sub(started)).
					Msg("summary backfill progress")
			}
		}
	}

	log.Info().
		Int("attempted", rep.Attempted).
		Int("summarized", rep.Summarized).
		Int("short_circuited", rep.ShortCircuited).
		Int("failed", rep.Failed).
		Int("written", rep.Written).
		Dur("elapsed", s.now().Sub(started)).
		Msg("summary backfill done")

	if rep.Attempted > 0 && float64(rep.Failed)/float64(rep.Attempted) > s.Cfg.MaxFailRatio {
		return rep, perr.Newf(perr.ErrorCodeUnavailable, "summary backfill: %d of %d rows failed", rep.Failed, rep.Attempted)
	}
	return rep, nil
}

// process summarizes one row and stores the result unless dry running
func (s *Service) process(ctx context.Context, row domain.SpeechRow) (domain.Report, error) {
	rep := domain.Report{Attempted: 1}
	sum, local, err := s.summarize(ctx, row)
	if err != nil {
		rep.Failed++
		return rep, err
	}
	if local {
		rep.ShortCircuited++
	} else {
		rep.Summarized++
	}
	if s.Cfg.DryRun {
		logger.C(ctx).Info().
			Str("sitting_date", row.SittingDate).
			Int("row_num", row.RowNum).
			Str("segment_type", string(sum.SegmentType)).
			Str("one_liner", sum.OneLiner).
			Msg("dry run speech summary")
		return rep, nil
	}

	if err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		return s.Binder.Bind(q).SaveSpeechSummary(ctx, row.SpeechKey, sum, s.now().UTC())
	}); err != nil {
		rep.Failed++
		return rep, err
	}
	rep.Written++
	return rep, nil
}

// summarize short-circuits procedural text, else asks the model and repairs once
func (s *Service) summarize(ctx context.Context, row domain.SpeechRow) (domain.SpeechSummary, bool, error) {
	cleaned := normalize.WS(row.Text)
	meta := metaFor(row)
	if sum, ok := shortCircuit(cleaned, meta); ok {
		return sum, true, nil
	}

	user := userContent(cleaned, meta)
	raw, err := s.complete(ctx, user)
	if err != nil {
		return domain.SpeechSummary{}, false, err
	}
	if sum, ok := parseOutput(raw); ok {
		return sum, false, nil
	}

	raw, err = s.complete(ctx, fixPrompt(raw)+"\n\n"+user)
	if err != nil {
		return domain.SpeechSummary{}, false, err
	}
	if sum, ok := parseOutput(raw); ok {
		return sum, false, nil
	}
	return domain.SpeechSummary{}, false, perr.Newf(perr.ErrorCodeValidation,
		"summary for %s row %d failed validation after repair", row.SittingDate, row.RowNum)
}

func (s *Service) complete(ctx context.Context, user string) (string, error) {
	return s.LLM.Complete(ctx, domain.Completion{
		System:      speechSystemPrompt,
		User:        user,
		Temperature: speechTemperature,
		Schema:      &domain.Schema{Name: schemaName, Strict: true, JSON: speechSchema},
	})
}

func isoOrEmpty(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return strings.TrimSpace(t.Format(transcript.DayLayout))
}
