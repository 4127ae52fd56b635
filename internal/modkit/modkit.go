// Package modkit builds api modules from shared deps and functional options
package modkit

import phttp "hansard/internal/platform/net/http"

// Module is what api.Mount needs from a module
type Module interface {
	MountRoutes(r phttp.Router)
	Ports() any
	Name() string
}
