package solver

import (
	"github.com/google/uuid"

	"fieldops/internal/core/availability"
	"fieldops/internal/core/clock"
	"fieldops/internal/core/plan"
)

// stopSeed is one planned visit before timing. Fixed is set for pinned
// stops (in-progress or completed work during re-optimization) and for
// multi-staff jobs whose crews must start together.
type stopSeed struct {
	job   plan.JobSnapshot
	fixed clock.Minute
}

// buildTimeline times an ordered visit sequence for one staff member.
// Arithmetic follows the tour invariants: the day starts at the window
// start, each arrival is the previous end plus travel, a stop never
// starts before its arrival, and a stop that would straddle lunch is
// pushed past it. Returns ok=false when a fixed start cannot be met or
// would itself straddle lunch.
func buildTimeline(in *plan.SolverInput, staff plan.StaffSnapshot, seeds []stopSeed) (plan.Tour, bool) {
	tour := plan.Tour{StaffID: staff.ID}
	if len(seeds) == 0 {
		return tour, true
	}

	day := staff.Day
	cursor := day.WindowStart
	prevLoc := staff.Home

	tour.Stops = make([]plan.Stop, 0, len(seeds))
	for _, seed := range seeds {
		leg := in.Matrix.Minutes(prevLoc, seed.job.Location)
		arrive := cursor + clock.Minute(leg)

		start := arrive
		if seed.job.EarliestStart.Set() && start < seed.job.EarliestStart {
			start = seed.job.EarliestStart
		}
		span := clock.Minute(seed.job.DurationMinutes + seed.job.BufferMinutes)
		start = pushPastLunch(day, start, span)

		if seed.fixed.Set() {
			if arrive > seed.fixed || start > seed.fixed {
				return plan.Tour{}, false
			}
			// a fixed start is exempt from the push, so it must clear
			// lunch on its own
			if pushPastLunch(day, seed.fixed, span) != seed.fixed {
				return plan.Tour{}, false
			}
			start = seed.fixed
		}

		end := start + span
		tour.Stops = append(tour.Stops, plan.Stop{
			JobID:          seed.job.ID,
			Arrive:         arrive,
			Start:          start,
			End:            end,
			TravelFromPrev: leg,
		})
		cursor = end
		prevLoc = seed.job.Location
	}
	return tour, true
}

// pushPastLunch moves a start past the lunch break when the stop would
// otherwise straddle it.
func pushPastLunch(day availability.Entry, start, span clock.Minute) clock.Minute {
	if day.LunchMinutes == 0 {
		return start
	}
	if clock.Overlaps(start, start+span, day.LunchStart, day.LunchEnd()) {
		return day.LunchEnd()
	}
	return start
}

// fitsWindow reports whether a timed tour stays inside the staff's day,
// including the trip home after the final stop.
func fitsWindow(in *plan.SolverInput, staff plan.StaffSnapshot, tour plan.Tour) bool {
	if len(tour.Stops) == 0 {
		return true
	}
	last := tour.Stops[len(tour.Stops)-1]
	if last.End > staff.Day.WindowEnd {
		return false
	}
	job, ok := in.Job(last.JobID)
	if !ok {
		return false
	}
	home := in.Matrix.Minutes(job.Location, staff.Home)
	return last.End+clock.Minute(home) <= staff.Day.WindowEnd
}

// seedsOf reconstructs the seed list of an existing tour, preserving
// fixed starts for pinned jobs.
func seedsOf(in *plan.SolverInput, tour plan.Tour, pinned map[uuid.UUID]bool) []stopSeed {
	seeds := make([]stopSeed, 0, len(tour.Stops))
	for _, s := range tour.Stops {
		job, ok := in.Job(s.JobID)
		if !ok {
			continue
		}
		seed := stopSeed{job: job, fixed: clock.None}
		if pinned[s.JobID] {
			seed.fixed = s.Start
		}
		seeds = append(seeds, seed)
	}
	return seeds
}
