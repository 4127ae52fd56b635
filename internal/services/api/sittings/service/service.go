// Package service contains sittings read workflows
package service

import (
	"context"
	"time"

	"hansard/internal/core/transcript"
	"hansard/internal/modkit/repokit"
	perr "hansard/internal/platform/errors"
	"hansard/internal/services/api/sittings/domain"
)

const defaultListLimit = 50

// Service defines the sittings service contract
type Service interface {
	domain.ServicePort
}

// Svc implements the sittings service
type Svc struct {
	Repo domain.StorageRepo // nil when no database is configured
}

// New constructs a sittings service. db may be nil, leaving only Parse available
func New(db repokit.TxRunner, binder repokit.Binder[domain.StorageRepo]) *Svc {
	if binder == nil {
		panic("sittings.Service requires a non nil Repo binder")
	}
	s := &Svc{}
	if db != nil {
		s.Repo = binder.Bind(db)
	}
	return s
}

func (s *Svc) repo() (domain.StorageRepo, error) {
	if s.Repo == nil {
		return nil, perr.Unavailablef("sittings store is not configured")
	}
	return s.Repo, nil
}

// List returns stored sittings newest first
func (s *Svc) List(ctx context.Context, in domain.ListInput) ([]domain.Sitting, error) {
	r, err := s.repo()
	if err != nil {
		return nil, err
	}
	if in.From != "" && in.To != "" && in.To < in.From {
		return nil, perr.WithField(perr.InvalidArgf("to is before from"), "to")
	}
	limit := in.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	out, err := r.ListSittings(ctx, in.From, in.To, limit, in.Offset)
	if out == nil && err == nil {
		out = []domain.Sitting{}
	}
	return out, err
}

// Get returns one sitting with its digest
func (s *Svc) Get(ctx context.Context, day string) (domain.SittingDetail, error) {
	r, err := s.repo()
	if err != nil {
		return domain.SittingDetail{}, err
	}
	if day, err = sittingDay(day); err != nil {
		return domain.SittingDetail{}, err
	}
	st, ok, err := r.Sitting(ctx, day)
	if err != nil {
		return domain.SittingDetail{}, err
	}
	if !ok {
		return domain.SittingDetail{}, perr.NotFoundf("no sitting on %s", day)
	}
	sum, err := r.Summary(ctx, day)
	if err != nil {
		return domain.SittingDetail{}, err
	}
	return domain.SittingDetail{Sitting: st, Summary: sum}, nil
}

// Attendance lists the roster of one sitting
func (s *Svc) Attendance(ctx context.Context, day string) ([]transcript.Attendance, error) {
	r, err := s.repo()
	if err != nil {
		return nil, err
	}
	if day, err = sittingDay(day); err != nil {
		return nil, err
	}
	return r.Attendance(ctx, day)
}

// Leave lists leave rows of one sitting
func (s *Svc) Leave(ctx context.Context, day string) ([]transcript.Leave, error) {
	r, err := s.repo()
	if err != nil {
		return nil, err
	}
	if day, err = sittingDay(day); err != nil {
		return nil, err
	}
	return r.Leave(ctx, day)
}

// Speeches lists speech rows of one sitting in row order
func (s *Svc) Speeches(ctx context.Context, day string, in domain.SpeechInput) ([]domain.Speech, error) {
	r, err := s.repo()
	if err != nil {
		return nil, err
	}
	if day, err = sittingDay(day); err != nil {
		return nil, err
	}
	return r.Speeches(ctx, day, in)
}

// Parse runs the parser over a raw sitting document without persisting anything
func (s *Svc) Parse(_ context.Context, raw []byte) (domain.Parsed, error) {
	doc, err := transcript.Decode(raw)
	if err != nil {
		return domain.Parsed{}, err
	}
	if doc.Blank() {
		return domain.Parsed{NoSitting: true}, nil
	}
	st, err := transcript.ParseDocument(doc)
	if err != nil {
		return domain.Parsed{}, err
	}
	return domain.Parsed{NoSitting: st.Empty(), Sitting: st}, nil
}

// sittingDay accepts either date form and returns YYYY-MM-DD
func sittingDay(s string) (string, error) {
	d, ok := transcript.ParseRunDate(s)
	if !ok {
		return "", perr.WithField(perr.InvalidArgf("invalid sitting date %q", s), "date")
	}
	return d.Format(time.DateOnly), nil
}
