// Package module wires schedule into the API using modkit
package module

import (
	"net/http"

	"fieldops/internal/core/travel"
	modkit "fieldops/internal/modkit"
	"fieldops/internal/modkit/httpkit"

	"fieldops/internal/services/schedule/domain"
	shttp "fieldops/internal/services/schedule/http"
	ssvc "fieldops/internal/services/schedule/service"
)

// Module implements the schedule API module
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws       []func(http.Handler) http.Handler
	ports     any
	swaggerOn bool

	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)

	svc *ssvc.Svc
}

// Ports exposes the schedule service to sibling modules.
type Ports struct {
	Service domain.ServicePort
}

// New constructs the schedule module. Without a maps API key the travel
// oracle runs in pure haversine mode.
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("schedule"),
		modkit.WithPrefix("/schedule"),
	}, opts...)...)

	cfg := FromConfig(deps.Cfg)

	oracleOpts := []travel.Option{travel.WithCacheTTL(cfg.CacheTTL)}
	if cfg.MapsAPIKey != "" {
		oracleOpts = append(oracleOpts, travel.WithProvider(travel.NewMapsClient(travel.MapsOptions{
			APIKey:  cfg.MapsAPIKey,
			BaseURL: cfg.MapsBaseURL,
			Timeout: cfg.MapsTimeout,
		})))
	}
	oracle := travel.NewOracle(oracleOpts...)

	svc := ssvc.New(deps, oracle, ssvc.Config{
		MaxConcurrentSolves: int64(cfg.MaxConcurrentSolves),
		RetryAfterSeconds:   cfg.RetryAfterSeconds,
	})

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		swaggerOn: b.SwaggerOn,
		subrouter: b.Subrouter,
		svc:       svc,
	}
	m.ports = Ports{Service: svc}

	external := b.Register
	m.register = func(r httpkit.Router) {
		shttp.Register(r, m.svc, cfg.RetryAfterSeconds)
		if external != nil {
			external(r)
		}
	}
	return m
}

// MountRoutes mounts the module routes on the given router
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Route(m.prefix, func(rr httpkit.Router) {
		for _, mw := range m.mws {
			rr.Use(mw)
		}
		if m.subrouter != nil {
			rr = m.subrouter(rr)
		}
		if m.register != nil {
			m.register(rr)
		}
	})
}

// Name returns the module name
func (m *Module) Name() string { return m.name }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return m.prefix }

// Ports exposes the module's ports for injection into siblings
func (m *Module) Ports() any { return m.ports }
