// Package repo provides postgres reads for sittings
package repo

import (
	"context"
	"time"

	"hansard/internal/core/names"
	"hansard/internal/core/transcript"
	"hansard/internal/modkit/repokit"
	perr "hansard/internal/platform/errors"
	pstrings "hansard/internal/platform/strings"
	"hansard/internal/services/api/sittings/domain"
)

type (
	// PG is a binder that can bind the repo to a Queryer or TxRunner
	PG struct{}
	// queries implements domain.StorageRepo
	queries struct{ q repokit.Queryer }
)

// NewPG returns a binder that can bind the repo to a Queryer or TxRunner
func NewPG() repokit.Binder[domain.StorageRepo] { return PG{} }

// Bind wires a Queryer to the repo
func (PG) Bind(q repokit.Queryer) domain.StorageRepo { return &queries{q: q} }

const sittingSelect = `
select s.sitting_date::text, s.parliament_no, s.source_url,
       (select count(*) from hansard_attendance a where a.sitting_date = s.sitting_date),
       (select count(*) from hansard_attendance a where a.sitting_date = s.sitting_date and a.dim_is_present),
       (select count(*) from hansard_speeches p where p.sitting_date = s.sitting_date)
from hansard_sittings s`

func scanSitting(row interface{ Scan(...any) error }) (domain.Sitting, error) {
	var s domain.Sitting
	err := row.Scan(&s.SittingDate, &s.ParliamentNo, &s.SourceURL, &s.Attendance, &s.Present, &s.Speeches)
	return s, err
}

func (r *queries) ListSittings(ctx context.Context, from, to string, limit, offset int) ([]domain.Sitting, error) {
	rows, err := r.q.Query(ctx, sittingSelect+`
where ($1::date is null or s.sitting_date >= $1::date)
and ($2::date is null or s.sitting_date <= $2::date)
order by s.sitting_date desc
limit $3 offset $4`, pstrings.SQLNull(from), pstrings.SQLNull(to), limit, offset)
	if err != nil {
		return nil, perr.FromPostgres(err, "list sittings")
	}
	defer rows.Close()

	var out []domain.Sitting
	for rows.Next() {
		s, err := scanSitting(rows)
		if err != nil {
			return nil, perr.FromPostgres(err, "scan sitting")
		}
		out = append(out, s)
	}
	return out, perr.FromPostgres(rows.Err(), "iterate sittings")
}

func (r *queries) Sitting(ctx context.Context, day string) (domain.Sitting, bool, error) {
	rows, err := r.q.Query(ctx, sittingSelect+` where s.sitting_date = $1::date`, day)
	if err != nil {
		return domain.Sitting{}, false, perr.FromPostgres(err, "get sitting")
	}
	defer rows.Close()
	if !rows.Next() {
		return domain.Sitting{}, false, perr.FromPostgres(rows.Err(), "get sitting")
	}
	s, err := scanSitting(rows)
	if err != nil {
		return domain.Sitting{}, false, perr.FromPostgres(err, "scan sitting")
	}
	return s, true, nil
}

func (r *queries) Summary(ctx context.Context, day string) (*domain.Summary, error) {
	rows, err := r.q.Query(ctx, `
select provider, model, summary_3_sentences, updated_at
from hansard_ai_summaries
where sitting_date = $1::date`, day)
	if err != nil {
		return nil, perr.FromPostgres(err, "get summary")
	}
	defer rows.Close()
	if !rows.Next() {
		return nil, perr.FromPostgres(rows.Err(), "get summary")
	}
	var s domain.Summary
	var at time.Time
	if err := rows.Scan(&s.Provider, &s.Model, &s.Text, &at); err != nil {
		return nil, perr.FromPostgres(err, "scan summary")
	}
	s.UpdatedAt = at.UTC().Format(time.RFC3339)
	return &s, nil
}

func (r *queries) Attendance(ctx context.Context, day string) ([]transcript.Attendance, error) {
	rows, err := r.q.Query(ctx, `
select sitting_date::text, parliament_no, mp_name_raw, mp_name_cleaned,
       dim_is_speaker, dim_is_deputy_speaker, dim_is_present
from hansard_attendance
where sitting_date = $1::date
order by mp_name_raw`, day)
	if err != nil {
		return nil, perr.FromPostgres(err, "list attendance")
	}
	defer rows.Close()

	out := []transcript.Attendance{}
	for rows.Next() {
		var a transcript.Attendance
		if err := rows.Scan(&a.SittingDate, &a.ParliamentNo, &a.NameRaw, &a.NameCleaned,
			&a.IsSpeaker, &a.IsDeputySpeaker, &a.IsPresent); err != nil {
			return nil, perr.FromPostgres(err, "scan attendance")
		}
		out = append(out, a)
	}
	return out, perr.FromPostgres(rows.Err(), "iterate attendance")
}

func (r *queries) Leave(ctx context.Context, day string) ([]transcript.Leave, error) {
	rows, err := r.q.Query(ctx, `
select sitting_date::text, parliament_no, mp_name_raw, mp_name_cleaned, ptba_from, ptba_to,
       coalesce(ptba_start::text, ''), coalesce(ptba_end::text, '')
from hansard_ptba
where sitting_date = $1::date
order by mp_name_raw, ptba_from`, day)
	if err != nil {
		return nil, perr.FromPostgres(err, "list ptba")
	}
	defer rows.Close()

	out := []transcript.Leave{}
	for rows.Next() {
		var l transcript.Leave
		if err := rows.Scan(&l.SittingDate, &l.ParliamentNo, &l.NameRaw, &l.NameCleaned,
			&l.From, &l.To, &l.Start, &l.End); err != nil {
			return nil, perr.FromPostgres(err, "scan ptba")
		}
		out = append(out, l)
	}
	return out, perr.FromPostgres(rows.Err(), "iterate ptba")
}

func (r *queries) Speeches(ctx context.Context, day string, in domain.SpeechInput) ([]domain.Speech, error) {
	limit := in.Limit
	if limit <= 0 {
		limit = 2000
	}
	rows, err := r.q.Query(ctx, `
select sitting_date::text, row_num, parliament_no, discussion_title, coalesce(section_type, ''),
       mp_name_raw, mp_name_fuzzy_matched, speech_details, word_count, dim_speaker, chair_name_raw,
       dim_is_question_for_oral_answer, dim_is_oral_speech,
       dim_is_written_answer_not_answered, dim_is_written_answer_to_questions,
       is_question_listing, coalesce(match_method, ''), coalesce(match_score, 0),
       segment_type, one_liner, coalesce(themes, '{}'), coalesce(key_claims, '{}'), summary_version
from hansard_speeches
where sitting_date = $1::date
and ($2 = '' or mp_name_fuzzy_matched ilike '%' || $2 || '%' or mp_name_raw ilike '%' || $2 || '%')
and ($3 = '' or section_type = upper($3))
order by row_num
limit $4 offset $5`, day, in.Speaker, in.Section, limit, in.Offset)
	if err != nil {
		return nil, perr.FromPostgres(err, "list speeches")
	}
	defer rows.Close()

	out := []domain.Speech{}
	for rows.Next() {
		var s domain.Speech
		var method string
		if err := rows.Scan(
			&s.SittingDate, &s.RowNum, &s.ParliamentNo, &s.DiscussionTitle, &s.SectionType,
			&s.NameRaw, &s.Speaker, &s.Text, &s.WordCount, &s.ChairRole, &s.ChairName,
			&s.IsQuestionForOralAnswer, &s.IsOralSpeech,
			&s.IsWrittenAnswerNotAnswered, &s.IsWrittenAnswer,
			&s.IsQuestionListing, &method, &s.MatchScore,
			&s.SegmentType, &s.OneLiner, &s.Themes, &s.KeyClaims, &s.SummaryVersion,
		); err != nil {
			return nil, perr.FromPostgres(err, "scan speech")
		}
		s.Match = names.Method(method)
		out = append(out, s)
	}
	return out, perr.FromPostgres(rows.Err(), "iterate speeches")
}
