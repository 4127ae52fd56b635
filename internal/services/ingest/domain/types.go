// Package domain holds the types and ports of the sitting ingest
package domain

import (
	"time"

	"hansard/internal/core/transcript"
	sumdom "hansard/internal/services/summaries/domain"
)

// SittingSummary re-exports the digest shape written next to a sitting
type SittingSummary = sumdom.SittingSummary

// Status is how a day ended
type Status string

const (
	StatusOK        Status = "ok"
	StatusNoSitting Status = "no_sitting"
	StatusParsed    Status = "parsed" // skip-DB runs stop after parse and dump
	StatusLeased    Status = "leased" // another runner owns the day
	StatusFailed    Status = "failed"
)

// Sitting is the hansard_sittings row
type Sitting struct {
	SittingDate  string
	SourceURL    string
	ParliamentNo *int
}

// SittingFrom derives the sittings row from a parse
func SittingFrom(s *transcript.Sitting) Sitting {
	return Sitting{SittingDate: s.SittingDate, SourceURL: s.SourceURL, ParliamentNo: s.ParliamentNo}
}

// Written counts rows an upsert touched per table
type Written struct {
	Attendance int
	Leave      int
	Speeches   int

	// SpeechColumnsDropped lists optional speech columns left out for an older schema
	SpeechColumnsDropped []string
}

// DayResult is what one day of a run produced
type DayResult struct {
	Day     time.Time
	Status  Status
	Written Written
	Stats   transcript.Stats

	FetchMS int
	ParseMS int
	DBMS    int
	Err     error
}

// Plan is the resolved date window of an automatic run
type Plan struct {
	Start, End time.Time
	Source     string // run_date, start_date, resume, default
	Capped     bool
}

// Days counts calendar days in the plan, inclusive
func (p Plan) Days() int {
	if p.End.Before(p.Start) {
		return 0
	}
	return int(p.End.Sub(p.Start).Hours()/24) + 1
}
