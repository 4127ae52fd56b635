// Package httpkit is what modules mount routes with, so they never import the platform
// http package directly
package httpkit

import (
	"net/http"

	phttp "hansard/internal/platform/net/http"
)

type (
	// Router is the platform router seam
	Router = phttp.Router

	// Handler is the platform handler type
	Handler = phttp.Handler

	// Response is an already shaped reply; handlers may return one instead of plain data
	Response = phttp.Response
)

// Call adapts fn to the envelope writer. A nil error with plain data is a 200
func Call(fn func(*http.Request) (any, error)) Handler {
	return phttp.Handle(func(r *http.Request) phttp.Response {
		out, err := fn(r)
		if err != nil {
			return phttp.Error(err)
		}
		if resp, ok := out.(phttp.Response); ok {
			return resp
		}
		return phttp.OK(out)
	})
}
