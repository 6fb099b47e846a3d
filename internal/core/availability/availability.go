// Package availability models a technician's working day: the shift
// window plus an optional lunch break carved out of it.
package availability

import (
	"fieldops/internal/core/clock"
	perr "fieldops/internal/platform/errors"
)

// MaxLunchMinutes caps the lunch break length.
const MaxLunchMinutes = 120

// Entry is one technician-day. A zero Entry is "not working".
type Entry struct {
	Available    bool
	WindowStart  clock.Minute
	WindowEnd    clock.Minute
	LunchStart   clock.Minute
	LunchMinutes int
}

// New validates and builds a working-day entry. Pass lunchStart
// clock.None for no lunch.
func New(windowStart, windowEnd, lunchStart clock.Minute, lunchMinutes int) (Entry, error) {
	if !windowStart.Set() || !windowEnd.Set() {
		return Entry{}, perr.InvalidArgf("availability window must be set")
	}
	if windowStart >= windowEnd {
		return Entry{}, perr.InvalidArgf("window start %s not before end %s", windowStart, windowEnd)
	}
	if lunchMinutes < 0 || lunchMinutes > MaxLunchMinutes {
		return Entry{}, perr.InvalidArgf("lunch length %d outside [0, %d]", lunchMinutes, MaxLunchMinutes)
	}
	if lunchMinutes > 0 {
		if !lunchStart.Set() {
			return Entry{}, perr.InvalidArgf("lunch length %d without a start time", lunchMinutes)
		}
		lunchEnd := lunchStart + clock.Minute(lunchMinutes)
		if lunchStart < windowStart || lunchEnd > windowEnd {
			return Entry{}, perr.InvalidArgf("lunch %s+%dm outside window %s..%s",
				lunchStart, lunchMinutes, windowStart, windowEnd)
		}
	} else {
		lunchStart = clock.None
	}
	return Entry{
		Available:    true,
		WindowStart:  windowStart,
		WindowEnd:    windowEnd,
		LunchStart:   lunchStart,
		LunchMinutes: lunchMinutes,
	}, nil
}

// Off is the canonical not-working entry.
func Off() Entry { return Entry{LunchStart: clock.None} }

// LunchEnd returns the end of the lunch break, or clock.None without one.
func (e Entry) LunchEnd() clock.Minute {
	if e.LunchMinutes == 0 || !e.LunchStart.Set() {
		return clock.None
	}
	return e.LunchStart + clock.Minute(e.LunchMinutes)
}

// AvailableMinutes is the workable capacity of the day: window length
// minus lunch. Zero when not working.
func (e Entry) AvailableMinutes() int {
	if !e.Available {
		return 0
	}
	return int(e.WindowEnd-e.WindowStart) - e.LunchMinutes
}

// Contains reports whether the half-open span [start, end) fits inside
// the working window without touching lunch.
func (e Entry) Contains(start, end clock.Minute) bool {
	if !e.Available || !start.Set() || !end.Set() || start >= end {
		return false
	}
	if start < e.WindowStart || end > e.WindowEnd {
		return false
	}
	if e.LunchMinutes > 0 && clock.Overlaps(start, end, e.LunchStart, e.LunchEnd()) {
		return false
	}
	return true
}

// IsTimeAvailable reports whether a single instant falls in working,
// non-lunch time.
func (e Entry) IsTimeAvailable(at clock.Minute) bool {
	if !e.Available || !at.Set() {
		return false
	}
	if at < e.WindowStart || at >= e.WindowEnd {
		return false
	}
	if e.LunchMinutes > 0 && at >= e.LunchStart && at < e.LunchEnd() {
		return false
	}
	return true
}
