// Package repo provides postgres access for sitting ingest writes
package repo

import (
	"context"
	"strconv"
	"strings"
	"time"

	"hansard/internal/core/normalize"
	"hansard/internal/core/transcript"
	"hansard/internal/modkit/repokit"
	perr "hansard/internal/platform/errors"
	pstrings "hansard/internal/platform/strings"
	ptime "hansard/internal/platform/time"
	"hansard/internal/services/ingest/domain"
)

type (
	// PG is a Postgres binder for domain.StorageRepo
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

// NewPG returns a Postgres binder for domain.StorageRepo
func NewPG() repokit.Binder[domain.StorageRepo] { return PG{} }

// Bind implements repokit.Binder
func (PG) Bind(q repokit.Queryer) domain.StorageRepo { return &queries{q: q} }

// rows per multi-row INSERT; speeches carry large text so they go in smaller batches
const (
	attendanceBatch = 500
	leaveBatch      = 500
	speechBatch     = 300
)

// table describes one upsert target
type table struct {
	name     string
	cols     []string
	conflict []string
}

var (
	attendanceTable = table{
		name:     "hansard_attendance",
		cols:     []string{"sitting_date", "mp_name_raw", "parliament_no", "mp_name_cleaned", "dim_is_speaker", "dim_is_deputy_speaker", "dim_is_present"},
		conflict: []string{"sitting_date", "mp_name_raw"},
	}
	leaveTable = table{
		name:     "hansard_ptba",
		cols:     []string{"sitting_date", "mp_name_raw", "ptba_from", "ptba_to", "parliament_no", "mp_name_cleaned", "ptba_start", "ptba_end"},
		conflict: []string{"sitting_date", "mp_name_raw", "ptba_from", "ptba_to"},
	}

	speechBaseCols = []string{
		"sitting_date", "row_num", "parliament_no", "mp_name_raw", "mp_name_fuzzy_matched",
		"speech_details", "word_count", "dim_speaker", "chair_name_raw",
	}

	// OptionalSpeechCols were added after the first schema; older tables may lack them
	OptionalSpeechCols = []string{
		"discussion_title", "section_type",
		"dim_is_question_for_oral_answer", "dim_is_oral_speech",
		"dim_is_written_answer_not_answered", "dim_is_written_answer_to_questions",
		"is_question_listing", "match_method", "match_score",
	}
)

func (r *queries) UpsertAttendance(ctx context.Context, rows []transcript.Attendance) (int, error) {
	vals := make([][]any, 0, len(rows))
	for _, a := range rows {
		vals = append(vals, []any{
			a.SittingDate, a.NameRaw, a.ParliamentNo, sanitizePtr(a.NameCleaned),
			a.IsSpeaker, a.IsDeputySpeaker, a.IsPresent,
		})
	}
	return upsert(ctx, r.q, attendanceTable, vals, attendanceBatch)
}

func (r *queries) UpsertLeave(ctx context.Context, rows []transcript.Leave) (int, error) {
	vals := make([][]any, 0, len(rows))
	for _, l := range rows {
		vals = append(vals, []any{
			l.SittingDate, l.NameRaw, l.From, l.To, l.ParliamentNo, sanitizePtr(l.NameCleaned),
			pstrings.SQLNull(l.Start), pstrings.SQLNull(l.End),
		})
	}
	return upsert(ctx, r.q, leaveTable, vals, leaveBatch)
}

// UpsertSpeeches writes under a savepoint. An undefined-column error naming one of the
// optional columns rolls back to it and retries with the base columns only. Callers run
// this inside a transaction
func (r *queries) UpsertSpeeches(ctx context.Context, rows []transcript.Speech) (int, []string, error) {
	if len(rows) == 0 {
		return 0, nil, nil
	}
	if _, err := r.q.Exec(ctx, "SAVEPOINT speeches_upsert"); err != nil {
		return 0, nil, perr.FromPostgres(err, "savepoint speeches")
	}

	full := table{name: "hansard_speeches", cols: append(append([]string{}, speechBaseCols...), OptionalSpeechCols...), conflict: []string{"sitting_date", "row_num"}}
	n, err := upsert(ctx, r.q, full, speechValues(rows, true), speechBatch)
	if err == nil {
		_, _ = r.q.Exec(ctx, "RELEASE SAVEPOINT speeches_upsert")
		return n, nil, nil
	}
	if !missingOptionalColumn(err) {
		return 0, nil, err
	}

	if _, rerr := r.q.Exec(ctx, "ROLLBACK TO SAVEPOINT speeches_upsert"); rerr != nil {
		return 0, nil, perr.FromPostgres(rerr, "rollback to savepoint speeches")
	}
	base := table{name: full.name, cols: speechBaseCols, conflict: full.conflict}
	n, err = upsert(ctx, r.q, base, speechValues(rows, false), speechBatch)
	if err != nil {
		return 0, nil, err
	}
	return n, OptionalSpeechCols, nil
}

func speechValues(rows []transcript.Speech, optional bool) [][]any {
	out := make([][]any, 0, len(rows))
	for _, s := range rows {
		v := []any{
			s.SittingDate, s.RowNum, s.ParliamentNo, s.NameRaw, sanitizePtr(s.Speaker),
			normalize.Sanitize(s.Text), s.WordCount, s.ChairRole, sanitizePtr(s.ChairName),
		}
		if optional {
			v = append(v,
				sanitizePtr(s.DiscussionTitle), pstrings.SQLNull(s.SectionType),
				s.IsQuestionForOralAnswer, s.IsOralSpeech,
				s.IsWrittenAnswerNotAnswered, s.IsWrittenAnswer,
				s.IsQuestionListing, pstrings.SQLNull(string(s.Match)), s.MatchScore,
			)
		}
		out = append(out, v)
	}
	return out
}

// missingOptionalColumn matches 42703 whose message names an optional speech column
func missingOptionalColumn(err error) bool {
	if !perr.IsUndefinedColumn(err) {
		return false
	}
	pg, ok := perr.ExtractPgError(err)
	if !ok {
		return false
	}
	for _, c := range OptionalSpeechCols {
		if strings.Contains(pg.Message, `"`+c+`"`) {
			return true
		}
	}
	return false
}

func (r *queries) UpsertSitting(ctx context.Context, s domain.Sitting) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO hansard_sittings (sitting_date, source_url, parliament_no, updated_at)
		VALUES ($1::date, $2, $3, now())
		ON CONFLICT (sitting_date) DO UPDATE
		SET source_url = EXCLUDED.source_url,
		    parliament_no = coalesce(EXCLUDED.parliament_no, hansard_sittings.parliament_no),
		    updated_at = now()
	`, s.SittingDate, s.SourceURL, s.ParliamentNo)
	return perr.FromPostgresf(err, "upsert sitting %s", s.SittingDate)
}

func (r *queries) UpsertSittingSummary(ctx context.Context, s domain.SittingSummary) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO hansard_ai_summaries (sitting_date, provider, model, summary_3_sentences, updated_at)
		VALUES ($1::date, $2, $3, $4, $5)
		ON CONFLICT (sitting_date) DO UPDATE
		SET provider = EXCLUDED.provider,
		    model = EXCLUDED.model,
		    summary_3_sentences = EXCLUDED.summary_3_sentences,
		    updated_at = EXCLUDED.updated_at
	`, s.SittingDate, s.Provider, s.Model, normalize.Sanitize(s.Text), s.UpdatedAt.UTC())
	return perr.FromPostgresf(err, "upsert sitting summary %s", s.SittingDate)
}

func (r *queries) LatestSittingDate(ctx context.Context) (time.Time, bool, error) {
	var day *time.Time
	if err := r.q.QueryRow(ctx, `SELECT max(sitting_date) FROM hansard_sittings`).Scan(&day); err != nil {
		return time.Time{}, false, perr.FromPostgres(err, "latest sitting")
	}
	if day == nil {
		return time.Time{}, false, nil
	}
	return ptime.Day(*day), true, nil
}

func (r *queries) SittingDates(ctx context.Context, from, to time.Time) ([]time.Time, error) {
	rows, err := r.q.Query(ctx, `
		SELECT sitting_date
		FROM hansard_sittings
		WHERE ($1::date IS NULL OR sitting_date >= $1::date)
		  AND ($2::date IS NULL OR sitting_date <= $2::date)
		ORDER BY sitting_date
	`, ptime.DayArg(from, transcript.DayLayout), ptime.DayArg(to, transcript.DayLayout))
	if err != nil {
		return nil, perr.FromPostgres(err, "list sittings")
	}
	defer rows.Close()

	var out []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, perr.FromPostgres(err, "scan sitting")
		}
		out = append(out, ptime.Day(d))
	}
	if err := rows.Err(); err != nil {
		return nil, perr.FromPostgres(err, "iterate sittings")
	}
	return out, nil
}

// upsert writes vals in batches of size as multi-row VALUES with DO UPDATE on every
// non-key column. Returns rows affected
func upsert(ctx context.Context, q repokit.Queryer, t table, vals [][]any, size int) (int, error) {
	total := 0
	for start := 0; start < len(vals); start += size {
		end := min(start+size, len(vals))
		sql, args := upsertSQL(t, vals[start:end])
		tag, err := q.Exec(ctx, sql, args...)
		if err != nil {
			return total, perr.FromPostgresf(err, "upsert %s rows %d-%d", t.name, start, end)
		}
		total += int(tag.RowsAffected())
	}
	return total, nil
}

func upsertSQL(t table, batch [][]any) (string, []any) {
	var b strings.Builder
	args := make([]any, 0, len(batch)*len(t.cols))

	b.WriteString("INSERT INTO ")
	b.WriteString(t.name)
	b.WriteString(" (")
	b.WriteString(strings.Join(t.cols, ", "))
	b.WriteString(") VALUES ")
	for i, row := range batch {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('(')
		for j, v := range row {
			if j > 0 {
				b.WriteString(", ")
			}
			args = append(args, v)
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(len(args)))
		}
		b.WriteByte(')')
	}

	b.WriteString(" ON CONFLICT (")
	b.WriteString(strings.Join(t.conflict, ", "))
	b.WriteString(") DO ")

	key := make(map[string]bool, len(t.conflict))
	for _, c := range t.conflict {
		key[c] = true
	}
	var set []string
	for _, c := range t.cols {
		if !key[c] {
			set = append(set, c+" = EXCLUDED."+c)
		}
	}
	if len(set) == 0 {
		b.WriteString("NOTHING")
	} else {
		b.WriteString("UPDATE SET ")
		b.WriteString(strings.Join(set, ", "))
	}
	return b.String(), args
}

func sanitizePtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := normalize.Sanitize(*s)
	return &v
}

