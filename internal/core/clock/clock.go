// Package clock models zone-free minutes of a local day.
// The scheduler works entirely in whole minutes since midnight; dates are
// carried separately as YYYY-MM-DD strings and never gain a timezone.
package clock

import (
	"fmt"
	"strconv"
	"strings"
)

// Minute is a minute of the local day, 0..1439.
// Negative values mean "unset" (see None).
type Minute int

// None marks an absent optional minute, e.g. a job without bounds.
const None Minute = -1

// DayMinutes is the number of minutes in one day.
const DayMinutes = 24 * 60

// Set reports whether m carries a real minute of day.
func (m Minute) Set() bool { return m >= 0 }

// String renders m as HH:MM:SS, the wire format for times of day.
func (m Minute) String() string {
	if m < 0 {
		return ""
	}
	return fmt.Sprintf("%02d:%02d:00", int(m)/60, int(m)%60)
}

// HHMM renders m as HH:MM for logs.
func (m Minute) HHMM() string {
	if m < 0 {
		return ""
	}
	return fmt.Sprintf("%02d:%02d", int(m)/60, int(m)%60)
}

// Parse reads a minute of day from HH:MM, HH:MM:SS, or an ISO-8601
// timestamp (the time part is taken, the rest ignored). Seconds are
// truncated. Audit payloads may carry any of the three forms.
func Parse(s string) (Minute, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return None, fmt.Errorf("empty time of day")
	}
	// ISO-8601: split the time part off "2006-01-02T15:04:05..." forms
	if i := strings.IndexByte(s, 'T'); i >= 0 {
		s = s[i+1:]
	} else if i := strings.IndexByte(s, ' '); i >= 0 && strings.Contains(s[:i], "-") {
		s = s[i+1:]
	}
	// strip zone suffixes the ISO form may carry
	for _, cut := range []byte{'Z', '+'} {
		if i := strings.IndexByte(s, cut); i >= 0 {
			s = s[:i]
		}
	}
	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return None, fmt.Errorf("malformed time of day %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return None, fmt.Errorf("bad hour in %q", s)
	}
	mi, err := strconv.Atoi(parts[1])
	if err != nil || mi < 0 || mi > 59 {
		return None, fmt.Errorf("bad minute in %q", s)
	}
	return Minute(h*60 + mi), nil
}

// MustParse is Parse for literals in tests and fixtures.
func MustParse(s string) Minute {
	m, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return m
}

// Overlaps reports whether [aStart,aEnd) intersects [bStart,bEnd).
// Zero-length intervals never overlap anything.
func Overlaps(aStart, aEnd, bStart, bEnd Minute) bool {
	if aStart >= aEnd || bStart >= bEnd {
		return false
	}
	return aStart < bEnd && bStart < aEnd
}
