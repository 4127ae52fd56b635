package domain

import (
	"context"
	"encoding/json"
	"time"

	"hansard/internal/core/transcript"
)

// Port is what other modules call
type Port interface {
	// SummarizeSitting builds the three sentence digest from parsed speeches
	SummarizeSitting(ctx context.Context, s *transcript.Sitting) (*SittingSummary, error)

	// SummarizeDate fills missing or stale speech summaries for one stored sitting
	SummarizeDate(ctx context.Context, day time.Time) (Report, error)

	// Backfill walks stored speeches in key order and summarizes those that need it
	Backfill(ctx context.Context, req BackfillRequest) (Report, error)
}

// Completion is one chat request. Schema, when set, constrains the reply to JSON
type Completion struct {
	System      string
	User        string
	Temperature float32
	Schema      *Schema
}

// Schema is a named JSON schema for structured output
type Schema struct {
	Name   string
	Strict bool
	JSON   json.RawMessage
}

// LLM is the completion backend
type LLM interface {
	Complete(ctx context.Context, c Completion) (string, error)
	Provider() string
	Model() string
}

// StorageRepo reads speeches and writes summaries
type StorageRepo interface {
	// SpeechesForDate returns a sitting's speeches in row order
	SpeechesForDate(ctx context.Context, day string) ([]SpeechRow, error)

	// PendingSpeeches returns up to limit rows after the key that need a summary, in key order.
	// Empty from/to are open bounds
	PendingSpeeches(ctx context.Context, from, to string, after SpeechKey, limit int) ([]SpeechRow, error)

	// SaveSpeechSummary stores a summary on its speech row
	SaveSpeechSummary(ctx context.Context, key SpeechKey, s SpeechSummary, at time.Time) error

	// UpsertSittingSummary stores a sitting digest
	UpsertSittingSummary(ctx context.Context, s SittingSummary) error
}
