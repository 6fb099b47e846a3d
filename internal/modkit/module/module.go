// Package module defines the minimal contract for a modkit module
package module

import (
	phttp "fieldops/internal/platform/net/http"
)

// Module mirrors the modkit contract
// living in a sibling package avoids import cycles when a module also
// exports its own ports type
type Module interface {
	MountRoutes(r phttp.Router)
	Ports() any
	Name() string
}
