// Package module wires meta endpoints into the API using a tiny module
package module

import (
	"time"

	modkit "fieldops/internal/modkit"
	"fieldops/internal/modkit/httpkit"
	str "fieldops/internal/platform/strings"

	metahttp "fieldops/internal/services/api/meta/http"
)

// Module implements the modkit.Module interface
type Module struct {
	deps      modkit.Deps
	built     modkit.Built
	startedAt time.Time
}

// New constructs a meta module with the provided dependencies and options
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("meta"),
		modkit.WithPrefix("/meta"),
	}, opts...)...)

	return &Module{
		deps:      deps,
		built:     b,
		startedAt: time.Now(),
	}
}

// MountRoutes implements the modkit.Module interface
func (m *Module) MountRoutes(r httpkit.Router) {
	httpkit.MountUnder(r, m.Prefix(), m.built.Mw, func(sub httpkit.Router) {
		if m.built.Subrouter != nil {
			sub = m.built.Subrouter(sub)
		}
		metahttp.Register(sub, metahttp.Deps{
			ServiceName: "fieldops-api",
			StartedAt:   m.startedAt,
			PG:          m.deps.PG,
		})
		if m.built.Register != nil {
			m.built.Register(sub)
		}
	})
}

// Name implements the modkit.Module interface
func (m *Module) Name() string { return str.MustString(m.built.Name, "meta") }

// Prefix implements the modkit.Module interface
func (m *Module) Prefix() string { return str.MustPrefix(m.built.Prefix) }

// Ports implements the modkit.Module interface
func (m *Module) Ports() any { return nil }
