// Package module is the contract api modules satisfy and a small port registry for
// wiring them together in main
package module

import phttp "hansard/internal/platform/net/http"

// Module mounts its routes and exposes its ports
type Module interface {
	MountRoutes(r phttp.Router)
	Ports() any
	Name() string
}
