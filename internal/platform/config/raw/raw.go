// Package raw is the tiny env reader the logger bootstraps from.
// It must not import the logger package, so it never reports bad values
// and just falls back to the caller's default
package raw

import (
	"os"
	"strings"
)

// Conf reads environment variables under a fixed prefix (e.g. "CORE_API_", "PG_")
type Conf struct{ prefix string }

// New returns the root namespace
func New() Conf { return Conf{} }

// Prefix derives a child namespace, e.g. "LOG_"
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p} }

// key composes the full variable name
func (c Conf) key(k string) string { return c.prefix + k }

// lookup fetches and trims the variable, "" when unset
func (c Conf) lookup(key string) string {
	return strings.TrimSpace(os.Getenv(c.key(key)))
}

// Get returns the trimmed value or def when unset
func (c Conf) Get(key, def string) string {
	if v := c.lookup(key); v != "" {
		return v
	}
	return def
}

// GetBool treats 1, true, and yes as truthy; anything else is false, absence is def
func (c Conf) GetBool(key string, def bool) bool {
	switch strings.ToLower(c.lookup(key)) {
	case "":
		return def
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}

// GetInt parses a non-negative integer, returning def on anything non-numeric
func (c Conf) GetInt(key string, def int) int {
	s := c.lookup(key)
	if s == "" {
		return def
	}
	n := 0
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch < '0' || ch > '9' {
			return def
		}
		n = n*10 + int(ch-'0')
	}
	return n
}
