package domain

import (
	"context"

	"hansard/internal/core/transcript"
)

// ServicePort defines the service contract for sittings
type ServicePort interface {
	List(ctx context.Context, in ListInput) ([]Sitting, error)
	Get(ctx context.Context, day string) (SittingDetail, error)
	Attendance(ctx context.Context, day string) ([]transcript.Attendance, error)
	Leave(ctx context.Context, day string) ([]transcript.Leave, error)
	Speeches(ctx context.Context, day string, in SpeechInput) ([]Speech, error)
	Parse(ctx context.Context, raw []byte) (Parsed, error)
}

// StorageRepo is the read surface over the ingest tables
type StorageRepo interface {
	ListSittings(ctx context.Context, from, to string, limit, offset int) ([]Sitting, error)
	Sitting(ctx context.Context, day string) (Sitting, bool, error)
	Summary(ctx context.Context, day string) (*Summary, error)
	Attendance(ctx context.Context, day string) ([]transcript.Attendance, error)
	Leave(ctx context.Context, day string) ([]transcript.Leave, error)
	Speeches(ctx context.Context, day string, in SpeechInput) ([]Speech, error)
}
