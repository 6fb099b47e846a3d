// Package config reads application settings from namespaced environment variables
package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"fieldops/internal/platform/logger"
)

// Conf reads environment variables under a fixed prefix such as "CORE_API_" or "PG_".
// New gives the root namespace; Prefix derives module scopes from it
type Conf struct{ prefix string }

// New returns the root namespace
func New() Conf { return Conf{} }

// Prefix derives a child namespace, e.g. cfg.Prefix("CORE_API_")
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p} }

// key composes the full variable name
func (c Conf) key(k string) string { return c.prefix + k }

// lookup fetches and trims the variable, "" when unset
func (c Conf) lookup(key string) string {
	return strings.TrimSpace(os.Getenv(c.key(key)))
}

// complain aborts through the process logger with the offending key attached
func (c Conf) complain(key, value, msg string) {
	evt := logger.Get().Panic().Str("key", c.key(key))
	if value != "" {
		evt = evt.Str("value", value)
	}
	evt.Msg(msg)
}

// may parses an optional variable, falling back to def on absence or bad input
func may[T any](c Conf, key string, def T, parse func(string) (T, error), note string) T {
	s := c.lookup(key)
	if s == "" {
		return def
	}
	v, err := parse(s)
	if err != nil {
		logger.Get().Warn().Str("key", c.key(key)).Str("value", s).Msg(note)
		return def
	}
	return v
}

// MustString panics when key is unset or blank
func (c Conf) MustString(key string) string {
	v := c.lookup(key)
	if v == "" {
		c.complain(key, "", "missing required env")
	}
	return v
}

// MustInt panics when key is unset, blank, or not an int
func (c Conf) MustInt(key string) int {
	s := c.MustString(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		c.complain(key, s, "invalid int value")
	}
	return n
}

// MustBool panics when key is unset, blank, or not a bool
func (c Conf) MustBool(key string) bool {
	s := c.MustString(key)
	b, err := strconv.ParseBool(s)
	if err != nil {
		c.complain(key, s, "invalid bool value")
	}
	return b
}

// MustDuration panics when key is unset, blank, or not a Go duration
func (c Conf) MustDuration(key string) time.Duration {
	s := c.MustString(key)
	d, err := time.ParseDuration(s)
	if err != nil {
		c.complain(key, s, "invalid duration (e.g., 250ms, 2s, 1h)")
	}
	return d
}

// MustURL panics unless the value parses as an absolute URL
func (c Conf) MustURL(key string) *url.URL {
	s := c.MustString(key)
	u, err := url.Parse(s)
	if err != nil || !u.IsAbs() {
		c.complain(key, s, "invalid absolute URL")
	}
	return u
}

// MustPort validates 1..65535 and returns a listen addr like ":4100"
func (c Conf) MustPort(key string) string {
	s := c.MustString(key)
	p, err := strconv.Atoi(s)
	if err != nil || p < 1 || p > 65535 {
		c.complain(key, s, "invalid TCP port; expected 1..65535")
	}
	return ":" + s
}

// Require panics unless every listed key is present and non-blank
func (c Conf) Require(keys ...string) {
	for _, k := range keys {
		if c.lookup(k) == "" {
			c.complain(k, "", "missing required env")
		}
	}
}

// MayString returns def when the key is unset or blank
func (c Conf) MayString(key, def string) string {
	if v := c.lookup(key); v != "" {
		return v
	}
	return def
}

// MayInt returns def when unset; warns and returns def on a bad value
func (c Conf) MayInt(key string, def int) int {
	return may(c, key, def, strconv.Atoi, "invalid int; using default")
}

// MayFloat64 returns def when unset; warns and returns def on a bad value
func (c Conf) MayFloat64(key string, def float64) float64 {
	return may(c, key, def, func(s string) (float64, error) {
		return strconv.ParseFloat(s, 64)
	}, "invalid float64; using default")
}

// MayBool returns def when unset; warns and returns def on a bad value
func (c Conf) MayBool(key string, def bool) bool {
	return may(c, key, def, strconv.ParseBool, "invalid bool; using default")
}

// MayDuration returns def when unset; warns and returns def on a bad value
func (c Conf) MayDuration(key string, def time.Duration) time.Duration {
	return may(c, key, def, time.ParseDuration, "invalid duration; using default")
}

// MayCSV splits a comma-separated variable, dropping blank entries; def when nothing survives
func (c Conf) MayCSV(key string, def []string) []string {
	s := c.lookup(key)
	if s == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

// MayEnum returns def when unset and panics when the value is outside allowed
func (c Conf) MayEnum(key, def string, allowed ...string) string {
	v := c.MayString(key, def)
	if v == "" {
		return v
	}
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return v
		}
	}
	logger.Get().Panic().Str("key", c.key(key)).Str("value", v).Strs("allowed", allowed).Msg("invalid enum value")
	return "" // unreachable
}
