// Package domain holds DTOs for the sittings http and service contracts
package domain

import "hansard/internal/core/transcript"

// ListInput filters the sittings list
type ListInput struct {
	From   string `query:"from"   json:"from,omitempty"   validate:"omitempty,datetime=2006-01-02" example:"2024-01-01"`
	To     string `query:"to"     json:"to,omitempty"     validate:"omitempty,datetime=2006-01-02" example:"2024-12-31"`
	Limit  int    `query:"limit"  json:"limit,omitempty"  validate:"omitempty,min=1,max=500"       example:"50"`
	Offset int    `query:"offset" json:"offset,omitempty" validate:"omitempty,min=0"`
}

// SpeechInput filters one sitting's speeches
type SpeechInput struct {
	Speaker string `query:"speaker" json:"speaker,omitempty" validate:"omitempty,max=200"`
	Section string `query:"section" json:"section,omitempty" validate:"omitempty,alpha,max=8" example:"OA"`
	Limit   int    `query:"limit"   json:"limit,omitempty"   validate:"omitempty,min=1,max=2000"`
	Offset  int    `query:"offset"  json:"offset,omitempty"  validate:"omitempty,min=0"`
}

// Sitting is one stored sitting with row counts
type Sitting struct {
	SittingDate  string `json:"sitting_date"`
	ParliamentNo *int   `json:"parliament_no"`
	SourceURL    string `json:"source_url"`
	Attendance   int    `json:"attendance"`
	Present      int    `json:"present"`
	Speeches     int    `json:"speeches"`
}

// Summary is the stored three sentence digest of a sitting
type Summary struct {
	Provider  string `json:"provider"`
	Model     string `json:"model"`
	Text      string `json:"summary_3_sentences"`
	UpdatedAt string `json:"updated_at"`
}

// SittingDetail is a sitting plus its digest when one exists
type SittingDetail struct {
	Sitting
	Summary *Summary `json:"summary,omitempty"`
}

// Speech is a stored speech row with its summary fields
type Speech struct {
	transcript.Speech
	SegmentType    *string  `json:"segment_type"`
	OneLiner       *string  `json:"one_liner"`
	Themes         []string `json:"themes"`
	KeyClaims      []string `json:"key_claims"`
	SummaryVersion *string  `json:"summary_version"`
}

// Parsed is the response of the offline parse endpoint
type Parsed struct {
	NoSitting bool                `json:"no_sitting"`
	Sitting   *transcript.Sitting `json:"sitting,omitempty"`
}
