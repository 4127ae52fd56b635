package httpkit

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// Param returns the trimmed path parameter bound by the router, "" when absent
func Param(r *http.Request, name string) string {
	return strings.TrimSpace(chi.URLParam(r, name))
}
