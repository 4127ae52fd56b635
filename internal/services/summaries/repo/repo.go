// Package repo provides postgres access for speech and sitting summaries
package repo

import (
	"context"
	"time"

	"hansard/internal/modkit/repokit"
	perr "hansard/internal/platform/errors"
	pstrings "hansard/internal/platform/strings"
	"hansard/internal/services/summaries/domain"
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

const speechCols = `
	sitting_date::text, row_num, coalesce(speech_details, ''), coalesce(mp_name_raw, ''),
	mp_name_fuzzy_matched, dim_speaker, one_liner, segment_type, summary_version`

func (r *queries) SpeechesForDate(ctx context.Context, day string) ([]domain.SpeechRow, error) {
	return r.scan(ctx, `
		SELECT `+speechCols+`
		FROM hansard_speeches
		WHERE sitting_date = $1::date
		ORDER BY row_num
	`, day)
}

// PendingSpeeches mirrors domain.SpeechRow.NeedsSummary in SQL so keyset pages stay dense
func (r *queries) PendingSpeeches(ctx context.Context, from, to string, after domain.SpeechKey, limit int) ([]domain.SpeechRow, error) {
	var afterDate any
	if after.SittingDate != "" {
		afterDate = after.SittingDate
	}
	return r.scan(ctx, `
		SELECT `+speechCols+`
		FROM hansard_speeches
		WHERE ($1::date IS NULL OR sitting_date >= $1::date)
		  AND ($2::date IS NULL OR sitting_date <= $2::date)
		  AND ($3::date IS NULL OR (sitting_date, row_num) > ($3::date, $4))
		  AND (
		        summary_version IS DISTINCT FROM $5
		     OR (coalesce(one_liner, '') = '' AND segment_type IS DISTINCT FROM 'procedural')
		  )
		ORDER BY sitting_date, row_num
		LIMIT $6
	`, pstrings.SQLNull(from), pstrings.SQLNull(to), afterDate, after.RowNum, domain.SummaryVersion, limit)
}

func (r *queries) scan(ctx context.Context, sql string, args ...any) ([]domain.SpeechRow, error) {
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, perr.FromPostgres(err, "select speeches")
	}
	defer rows.Close()

	var out []domain.SpeechRow
	for rows.Next() {
		var s domain.SpeechRow
		if err := rows.Scan(
			&s.SittingDate, &s.RowNum, &s.Text, &s.NameRaw,
			&s.Speaker, &s.ChairRole, &s.OneLiner, &s.SegmentType, &s.SummaryVersion,
		); err != nil {
			return nil, perr.FromPostgres(err, "scan speech")
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, perr.FromPostgres(err, "iterate speeches")
	}
	return out, nil
}

// SaveSpeechSummary stores procedural rows with a NULL one-liner and no themes or claims
func (r *queries) SaveSpeechSummary(ctx context.Context, key domain.SpeechKey, s domain.SpeechSummary, at time.Time) error {
	oneLiner, themes, claims := s.OneLiner, s.Themes, s.KeyClaims
	if s.SegmentType == domain.SegmentProcedural {
		oneLiner, themes, claims = "", nil, nil
	}
	if themes == nil {
		themes = []string{}
	}
	if claims == nil {
		claims = []string{}
	}
	tag, err := r.q.Exec(ctx, `
		UPDATE hansard_speeches SET
			segment_type = $3,
			one_liner = NULLIF($4, ''),
			themes = $5,
			key_claims = $6,
			summary_version = $7,
			summarized_at = $8
		WHERE sitting_date = $1::date AND row_num = $2
	`, key.SittingDate, key.RowNum, string(s.SegmentType), oneLiner, themes, claims, domain.SummaryVersion, at.UTC())
	if err != nil {
		return perr.FromPostgres(err, "update speech summary")
	}
	if tag.RowsAffected() == 0 {
		return perr.NotFoundf("speech %s row %d", key.SittingDate, key.RowNum)
	}
	return nil
}

func (r *queries) UpsertSittingSummary(ctx context.Context, s domain.SittingSummary) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO hansard_ai_summaries (sitting_date, provider, model, summary_3_sentences, updated_at)
		VALUES ($1::date, $2, $3, $4, $5)
		ON CONFLICT (sitting_date) DO UPDATE SET
			provider = EXCLUDED.provider,
			model = EXCLUDED.model,
			summary_3_sentences = EXCLUDED.summary_3_sentences,
			updated_at = EXCLUDED.updated_at
	`, s.SittingDate, s.Provider, s.Model, s.Text, s.UpdatedAt.UTC())
	return perr.FromPostgres(err, "upsert sitting summary")
}
