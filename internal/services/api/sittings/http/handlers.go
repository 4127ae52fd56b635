// Package http provides http transport for sittings
package http

import (
	"io"
	stdhttp "net/http"

	"hansard/internal/modkit/httpkit"
	perr "hansard/internal/platform/errors"
	"hansard/internal/platform/net/http/bind"
	"hansard/internal/services/api/sittings/domain"
)

// maxDocument bounds a posted sitting document
const maxDocument = 32 << 20

// Register mounts the read endpoints on a router already scoped to the sittings prefix
func Register(r httpkit.Router, s domain.ServicePort) {
	h := &handlers{svc: s}

	httpkit.Get(r, "/", h.list)
	httpkit.Get(r, "/{date}", h.get)
	httpkit.Get(r, "/{date}/attendance", h.attendance)
	httpkit.Get(r, "/{date}/ptba", h.leave)
	httpkit.Get(r, "/{date}/speeches", h.speeches)
}

// RegisterParse mounts the offline parse endpoint
func RegisterParse(r httpkit.Router, s domain.ServicePort) {
	h := &handlers{svc: s}
	httpkit.Post(r, "/", h.parse)
}

type handlers struct{ svc domain.ServicePort }

// list serves stored sittings newest first, bounded by from/to and limit
func (h *handlers) list(r *stdhttp.Request) (any, error) {
	in, err := bind.ParseQuery[domain.ListInput](r)
	if err != nil {
		return nil, err
	}
	return h.svc.List(r.Context(), in)
}

func (h *handlers) get(r *stdhttp.Request) (any, error) {
	return h.svc.Get(r.Context(), httpkit.Param(r, "date"))
}

func (h *handlers) attendance(r *stdhttp.Request) (any, error) {
	return h.svc.Attendance(r.Context(), httpkit.Param(r, "date"))
}

func (h *handlers) leave(r *stdhttp.Request) (any, error) {
	return h.svc.Leave(r.Context(), httpkit.Param(r, "date"))
}

func (h *handlers) speeches(r *stdhttp.Request) (any, error) {
	in, err := bind.ParseQuery[domain.SpeechInput](r)
	if err != nil {
		return nil, err
	}
	return h.svc.Speeches(r.Context(), httpkit.Param(r, "date"), in)
}

// parse runs the parser over a posted document without storing anything
func (h *handlers) parse(r *stdhttp.Request) (any, error) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxDocument+1))
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "read body")
	}
	if len(raw) > maxDocument {
		return nil, perr.InvalidArgf("document larger than %d bytes", maxDocument)
	}
	if len(raw) == 0 {
		return nil, perr.JSONErrf("empty body")
	}
	return h.svc.Parse(r.Context(), raw)
}
