// Package domain holds the summary types and ports shared by the summaries service and its callers
package domain

import (
	"time"
)

// SummaryVersion tags every stored speech summary. Rows with any other version are redone
const SummaryVersion = "v3"

// SegmentType classifies a summarized speech
type SegmentType string

const (
	SegmentQuestion              SegmentType = "question"
	SegmentAnswer                SegmentType = "answer"
	SegmentSupplementaryQuestion SegmentType = "supplementary_question"
	SegmentSupplementaryAnswer   SegmentType = "supplementary_answer"
	SegmentStatement             SegmentType = "statement"
	SegmentProcedural            SegmentType = "procedural"
	SegmentOther                 SegmentType = "other"
)

// SegmentTypes lists the accepted segment types in schema order
var SegmentTypes = []SegmentType{
	SegmentQuestion,
	SegmentAnswer,
	SegmentSupplementaryQuestion,
	SegmentSupplementaryAnswer,
	SegmentStatement,
	SegmentProcedural,
	SegmentOther,
}

// Valid reports whether t is one of SegmentTypes
func (t SegmentType) Valid() bool {
	for _, s := range SegmentTypes {
		if s == t {
			return true
		}
	}
	return false
}

// SpeechSummary is the structured evidence extracted from one speech
type SpeechSummary struct {
	SegmentType SegmentType `json:"segment_type"`
	OneLiner    string      `json:"one_liner"`
	Themes      []string    `json:"themes"`
	KeyClaims   []string    `json:"key_claims"`
}

// SpeechKey identifies a speech row
type SpeechKey struct {
	SittingDate string
	RowNum      int
}

// SpeechRow is what the summarizer reads back from storage
type SpeechRow struct {
	SpeechKey
	Text           string
	NameRaw        string
	Speaker        *string
	ChairRole      *string
	OneLiner       *string
	SegmentType    *string
	SummaryVersion *string
}

// NeedsSummary reports whether the row has no current summary. Procedural rows store no
// one-liner, so a current procedural row is done
func (r SpeechRow) NeedsSummary() bool {
	if r.SummaryVersion == nil || *r.SummaryVersion != SummaryVersion {
		return true
	}
	if r.SegmentType != nil && SegmentType(*r.SegmentType) == SegmentProcedural {
		return false
	}
	return r.OneLiner == nil || *r.OneLiner == ""
}

// SittingSummary is the three sentence digest of one sitting. Key: sitting_date
type SittingSummary struct {
	SittingDate string    `json:"sitting_date"`
	Provider    string    `json:"provider"`
	Model       string    `json:"model"`
	Text        string    `json:"summary_3_sentences"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BackfillRequest bounds a summary backfill. Zero dates are open ends, a zero Limit is unbounded
type BackfillRequest struct {
	From, To      time.Time
	Limit         int
	BatchSize     int
	ProgressEvery int
}

// Report counts what a summarize pass did
type Report struct {
	Scanned        int `json:"scanned"`
	Attempted      int `json:"attempted"`
	Summarized     int `json:"summarized"`
	ShortCircuited int `json:"short_circuited"`
	Failed         int `json:"failed"`
	Written        int `json:"written"`
}

// Add folds o into r
func (r *Report) Add(o Report) {
	r.Scanned += o.Scanned
	r.Attempted += o.Attempted
	r.Summarized += o.Summarized
	r.ShortCircuited += o.ShortCircuited
	r.Failed += o.Failed
	r.Written += o.Written
}
