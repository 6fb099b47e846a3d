package modkit

import (
	phttp "fieldops/internal/platform/net/http"
)

// Module is what the api server expects from every mounted module
// the surface stays tiny so modules only couple through ports
type Module interface {
	// MountRoutes attaches the module's HTTP routes to the router seam
	MountRoutes(r phttp.Router)
	// Ports exposes the module's port set for cross-module wiring
	Ports() any

	// Name returns the module name
	Name() string
}

// Builder builds a Module from shared deps plus options
// modules expose New(deps Deps, opts ...Option) Module in this shape
type Builder func(Deps, ...Option) Module
