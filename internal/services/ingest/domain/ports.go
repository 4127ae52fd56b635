package domain

import (
	"context"
	"time"

	"hansard/internal/core/transcript"
	sumdom "hansard/internal/services/summaries/domain"
)

// RunnerPort is public port exposed by the module (what other modules would call)
type RunnerPort interface {
	// RunRange ingests every calendar day in [start, end]
	RunRange(ctx context.Context, start, end time.Time) error

	// RunAuto resolves the window from config and storage, then runs it
	RunAuto(ctx context.Context, now time.Time) (Plan, error)

	// Reingest re-runs every stored sitting day in [from, to]. Zero bounds are open
	Reingest(ctx context.Context, from, to time.Time) error
}

// StorageRepo is the storage repository interface
type StorageRepo interface {
	// UpsertAttendance upserts on (sitting_date, mp_name_raw)
	UpsertAttendance(ctx context.Context, rows []transcript.Attendance) (int, error)

	// UpsertLeave upserts on (sitting_date, mp_name_raw, ptba_from, ptba_to)
	UpsertLeave(ctx context.Context, rows []transcript.Leave) (int, error)

	// UpsertSpeeches upserts on (sitting_date, row_num). When the table predates the
	// optional speech columns it retries once without them and reports which were dropped
	UpsertSpeeches(ctx context.Context, rows []transcript.Speech) (n int, dropped []string, err error)

	// UpsertSitting upserts the sittings row on sitting_date
	UpsertSitting(ctx context.Context, s Sitting) error

	// UpsertSittingSummary upserts the digest on sitting_date
	UpsertSittingSummary(ctx context.Context, s SittingSummary) error

	// LatestSittingDate is the newest stored sitting, ok=false when none
	LatestSittingDate(ctx context.Context) (time.Time, bool, error)

	// SittingDates lists stored sittings in [from, to] ascending. Zero bounds are open
	SittingDates(ctx context.Context, from, to time.Time) ([]time.Time, error)
}

// Fetcher returns the raw report for a sitting day
type Fetcher interface {
	Fetch(ctx context.Context, day time.Time) ([]byte, error)
}

// Summarizer is the optional AI enrichment run per sitting. SummarizeSitting works on the
// parse, SummarizeDate on speeches already stored
type Summarizer interface {
	SummarizeSitting(ctx context.Context, s *transcript.Sitting) (*SittingSummary, error)
	SummarizeDate(ctx context.Context, day time.Time) (sumdom.Report, error)
}

// Dumper writes debug copies of a day's raw document and parsed tables
type Dumper interface {
	Raw(day time.Time, raw []byte) error
	Tables(day time.Time, s *transcript.Sitting) error
}
