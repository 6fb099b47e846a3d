package module

import (
	"time"

	"fieldops/internal/platform/config"
)

// Options controls solver orchestration and the maps provider.
type Options struct {
	MapsAPIKey  string
	MapsBaseURL string
	MapsTimeout time.Duration
	CacheTTL    time.Duration

	MaxConcurrentSolves int
	RetryAfterSeconds   int
}

// FromConfig reads SCHEDULE_* values from process config/env.
// GOOGLE_MAPS_API_KEY works as an unprefixed fallback for the key.
func FromConfig(cfg config.Conf) Options {
	sc := cfg.Prefix("SCHEDULE_")
	key := sc.MayString("MAPS_API_KEY", "")
	if key == "" {
		key = cfg.MayString("GOOGLE_MAPS_API_KEY", "")
	}
	return Options{
		MapsAPIKey:          key,
		MapsBaseURL:         sc.MayString("MAPS_BASE_URL", ""),
		MapsTimeout:         sc.MayDuration("MAPS_TIMEOUT", 8*time.Second),
		CacheTTL:            sc.MayDuration("TRAVEL_CACHE_TTL", 15*time.Minute),
		MaxConcurrentSolves: sc.MayInt("MAX_CONCURRENT_SOLVES", 2),
		RetryAfterSeconds:   sc.MayInt("RETRY_AFTER_SECONDS", 5),
	}
}
