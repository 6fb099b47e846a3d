// Package travel estimates driving minutes between geocoded points.
// Provider first, deterministic haversine fallback: an oracle call never
// fails, it always yields a usable minute count for the solver.
package travel

import (
	"context"
	"math"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"fieldops/internal/core/geo"
	"fieldops/internal/platform/logger"
)

const (
	// MinMinutes is the floor for any trip; identical coordinates still
	// cost one minute so scheduling arithmetic stays strictly ordered.
	MinMinutes = 1

	// MaxMinutes caps a single leg; anything longer is a data error,
	// not a trip a technician would drive between two daily stops.
	MaxMinutes = 120

	// roadFactor inflates great-circle distance to road distance.
	roadFactor = 1.4

	// avgSpeedKmh is the assumed driving speed for the fallback.
	avgSpeedKmh = 40.0

	defaultCacheTTL = 15 * time.Minute
)

// Provider fetches driving durations from an external distance service.
// A nil duration for a pair means the provider had no answer for it.
type Provider interface {
	Durations(ctx context.Context, origins, destinations []geo.Location) ([][]time.Duration, error)
}

// Oracle answers pairwise travel-minute queries with caching.
type Oracle struct {
	provider Provider
	cache    *gocache.Cache
	log      logger.Logger
}

// Option mutates the Oracle during construction.
type Option func(*Oracle)

// WithProvider installs an external distance provider.
func WithProvider(p Provider) Option {
	return func(o *Oracle) { o.provider = p }
}

// WithCacheTTL overrides the pair-cache TTL.
func WithCacheTTL(ttl time.Duration) Option {
	return func(o *Oracle) { o.cache = gocache.New(ttl, 2*ttl) }
}

// NewOracle builds an oracle. Without a provider it runs in pure
// haversine mode, which is what tests and keyless deployments use.
func NewOracle(opts ...Option) *Oracle {
	o := &Oracle{
		cache: gocache.New(defaultCacheTTL, 2*defaultCacheTTL),
		log:   *logger.Named("travel"),
	}
	for _, fn := range opts {
		fn(o)
	}
	return o
}

// Minutes returns driving minutes between two points, clamped to
// [MinMinutes, MaxMinutes]. It never returns an error: provider
// failures are logged and the haversine fallback answers instead.
func (o *Oracle) Minutes(ctx context.Context, from, to geo.Location) int {
	if from.SameCoords(to) {
		return MinMinutes
	}
	key := pairKey(from, to)
	if v, ok := o.cache.Get(key); ok {
		return v.(int)
	}

	m := 0
	if o.provider != nil {
		if d, ok := o.providerPair(ctx, from, to); ok {
			m = d
		}
	}
	if m == 0 {
		m = Fallback(from, to)
	}
	m = clamp(m)
	o.cache.SetDefault(key, m)
	return m
}

// providerPair asks the provider for one pair and converts to minutes.
func (o *Oracle) providerPair(ctx context.Context, from, to geo.Location) (int, bool) {
	rows, err := o.provider.Durations(ctx, []geo.Location{from}, []geo.Location{to})
	if err != nil {
		o.log.Warn().Err(err).Msg("travel provider failed, using haversine")
		return 0, false
	}
	if len(rows) != 1 || len(rows[0]) != 1 || rows[0][0] <= 0 {
		return 0, false
	}
	return minutesCeil(rows[0][0]), true
}

// Fallback is the deterministic haversine estimate: road factor 1.4
// over the great-circle distance at 40 km/h, rounded up, clamped.
func Fallback(from, to geo.Location) int {
	if from.SameCoords(to) {
		return MinMinutes
	}
	km := geo.HaversineKm(from, to) * roadFactor
	m := int(math.Ceil(km / avgSpeedKmh * 60))
	return clamp(m)
}

func minutesCeil(d time.Duration) int {
	return int(math.Ceil(d.Seconds() / 60))
}

func clamp(m int) int {
	if m < MinMinutes {
		return MinMinutes
	}
	if m > MaxMinutes {
		return MaxMinutes
	}
	return m
}

func pairKey(from, to geo.Location) string { return from.Key() + "|" + to.Key() }
