package httpkit

import (
	"compress/flate"
	"net/http"
	"time"

	"hansard/internal/platform/net/middleware"
)

// CommonStack is the api middleware with same-origin CORS
func CommonStack() []func(http.Handler) http.Handler {
	return CommonStackCORS(middleware.CORSOptions{})
}

// CommonStackCORS is the full per-version api stack
func CommonStackCORS(cors middleware.CORSOptions) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		middleware.RequestID(),
		middleware.RealIP(),
		middleware.RecoverJSON,
		middleware.NoCache(),
		middleware.RequestLog(middleware.AccessLogOptions{Slow: 500 * time.Millisecond}),
		middleware.CORS(cors),
		middleware.Compress(flate.BestSpeed),
		middleware.RedirectSlashes(),
		middleware.StripSlashes(),
		middleware.Timeout(30 * time.Second),
	}
}
