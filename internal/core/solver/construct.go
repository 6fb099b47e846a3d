package solver

import (
	"sort"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"fieldops/internal/core/clock"
	"fieldops/internal/core/constraint"
	"fieldops/internal/core/plan"
)

// constructionOrder sorts jobs for greedy seating: urgent first, then
// oldest, then longest. Deterministic for equal inputs.
func constructionOrder(jobs []plan.JobSnapshot) []plan.JobSnapshot {
	out := make([]plan.JobSnapshot, len(jobs))
	copy(out, jobs)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		if a.DurationMinutes != b.DurationMinutes {
			return a.DurationMinutes > b.DurationMinutes
		}
		return a.ID.String() < b.ID.String()
	})
	return out
}

// construct seats jobs greedily, one at a time, each at the insertion
// with the best soft delta among all that keep the schedule feasible.
func (s *search) construct() {
	for _, job := range constructionOrder(s.in.Jobs) {
		if s.seated[job.ID] {
			continue
		}
		if !job.Eligible(s.reopt) {
			continue
		}
		if len(s.in.Staff) == 0 {
			s.reject(job.ID, plan.ReasonStaffShortage)
			continue
		}
		if job.StaffingNeeded > 1 {
			s.constructCrew(job)
			continue
		}

		if !s.anyEquipped(job) {
			s.reject(job.ID, plan.ReasonEquipment)
			continue
		}

		best, ok := s.bestInsertion(job)
		if !ok {
			s.reject(job.ID, s.rejectReason(job))
			continue
		}
		s.applyInsertion(job, best)
	}
}

// insertion is one candidate placement of a job.
type insertion struct {
	tourIdx int
	index   int
	score   constraint.Score
}

// bestInsertion scans every tour and every index for the feasible
// placement with the highest resulting score.
func (s *search) bestInsertion(job plan.JobSnapshot) (insertion, bool) {
	best := insertion{}
	found := false
	for ti := range s.cur.Tours {
		staff := s.in.Staff[ti]
		if !staff.HasEquipment(job.Equipment) {
			continue
		}
		seeds := seedsOf(s.in, s.cur.Tours[ti], s.pinned)
		for idx := 0; idx <= len(seeds); idx++ {
			sc, ok := s.tryInsertion(ti, seeds, idx, job, clock.None)
			if !ok {
				continue
			}
			if !found || sc.Better(best.score) {
				best = insertion{tourIdx: ti, index: idx, score: sc}
				found = true
			}
			s.moves++
		}
	}
	return best, found
}

// tryInsertion retimes one tour with the job spliced in and scores the
// whole schedule. The current schedule is restored before returning.
func (s *search) tryInsertion(ti int, seeds []stopSeed, idx int, job plan.JobSnapshot, fixed clock.Minute) (constraint.Score, bool) {
	trial := make([]stopSeed, 0, len(seeds)+1)
	trial = append(trial, seeds[:idx]...)
	trial = append(trial, stopSeed{job: job, fixed: fixed})
	trial = append(trial, seeds[idx:]...)

	staff := s.in.Staff[ti]
	tour, ok := buildTimeline(s.in, staff, trial)
	if !ok || !fitsWindow(s.in, staff, tour) {
		return constraint.Score{}, false
	}

	saved := s.cur.Tours[ti]
	s.cur.Tours[ti] = tour
	sc := s.engine.Evaluate(s.cand)
	s.cur.Tours[ti] = saved

	if !sc.Feasible() {
		return constraint.Score{}, false
	}
	return sc, true
}

// applyInsertion commits a previously scored placement.
func (s *search) applyInsertion(job plan.JobSnapshot, ins insertion) {
	seeds := seedsOf(s.in, s.cur.Tours[ins.tourIdx], s.pinned)
	trial := make([]stopSeed, 0, len(seeds)+1)
	trial = append(trial, seeds[:ins.index]...)
	trial = append(trial, stopSeed{job: job, fixed: clock.None})
	trial = append(trial, seeds[ins.index:]...)

	tour, _ := buildTimeline(s.in, s.in.Staff[ins.tourIdx], trial)
	s.cur.Tours[ins.tourIdx] = tour
	s.seated[job.ID] = true
}

// constructCrew seats a job needing n techs at once: every member of
// the chosen crew appends the job with one shared start time.
func (s *search) constructCrew(job plan.JobSnapshot) {
	type candidate struct {
		tourIdx  int
		earliest clock.Minute
	}
	var cands []candidate
	for ti := range s.cur.Tours {
		staff := s.in.Staff[ti]
		if !staff.HasEquipment(job.Equipment) {
			continue
		}
		seeds := seedsOf(s.in, s.cur.Tours[ti], s.pinned)
		earliest, ok := s.earliestAppend(ti, seeds, job)
		if !ok {
			continue
		}
		cands = append(cands, candidate{tourIdx: ti, earliest: earliest})
	}
	if len(cands) < job.StaffingNeeded {
		s.reject(job.ID, plan.ReasonStaffShortage)
		return
	}

	// the crews that can start soonest, sharing the latest of their
	// individual earliest starts
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].earliest < cands[j].earliest })
	crew := cands[:job.StaffingNeeded]
	shared := lo.MaxBy(crew, func(a, b candidate) bool { return a.earliest > b.earliest }).earliest

	// the shared slot can land inside a member's lunch even when every
	// individual earliest start clears it, and pushing past one break
	// can land inside another's, so advance until the slot clears all
	span := clock.Minute(job.DurationMinutes + job.BufferMinutes)
	for moved := true; moved; {
		moved = false
		for _, m := range crew {
			if adj := pushPastLunch(s.in.Staff[m.tourIdx].Day, shared, span); adj > shared {
				shared = adj
				moved = true
			}
		}
	}

	tours := make([]plan.Tour, 0, len(crew))
	for _, m := range crew {
		seeds := seedsOf(s.in, s.cur.Tours[m.tourIdx], s.pinned)
		seeds = append(seeds, stopSeed{job: job, fixed: shared})
		tour, ok := buildTimeline(s.in, s.in.Staff[m.tourIdx], seeds)
		if !ok || !fitsWindow(s.in, s.in.Staff[m.tourIdx], tour) {
			s.reject(job.ID, plan.ReasonNoFitTravel)
			return
		}
		tours = append(tours, tour)
	}

	// commit, then let the engine veto what the per-tour checks cannot
	// see, like a blown latest-finish bound
	saved := make([]plan.Tour, len(crew))
	for i, m := range crew {
		saved[i] = s.cur.Tours[m.tourIdx]
		s.cur.Tours[m.tourIdx] = tours[i]
	}
	if sc := s.engine.Evaluate(s.cand); !sc.Feasible() {
		for i, m := range crew {
			s.cur.Tours[m.tourIdx] = saved[i]
		}
		s.reject(job.ID, plan.ReasonNoFit)
		return
	}
	s.seated[job.ID] = true
}

// earliestAppend finds the soonest start if the job were appended to
// the end of a tour.
func (s *search) earliestAppend(ti int, seeds []stopSeed, job plan.JobSnapshot) (clock.Minute, bool) {
	trial := append(append([]stopSeed{}, seeds...), stopSeed{job: job, fixed: clock.None})
	staff := s.in.Staff[ti]
	tour, ok := buildTimeline(s.in, staff, trial)
	if !ok || !fitsWindow(s.in, staff, tour) {
		return clock.None, false
	}
	s.moves++
	return tour.Stops[len(tour.Stops)-1].Start, true
}

// anyEquipped reports whether at least one staff owns the gear.
func (s *search) anyEquipped(job plan.JobSnapshot) bool {
	for _, st := range s.in.Staff {
		if st.HasEquipment(job.Equipment) {
			return true
		}
	}
	return false
}

// rejectReason distinguishes a day that is simply too small from one
// where travel eats the margin.
func (s *search) rejectReason(job plan.JobSnapshot) string {
	span := job.DurationMinutes + job.BufferMinutes
	for _, st := range s.in.Staff {
		if !st.HasEquipment(job.Equipment) {
			continue
		}
		if span <= st.Day.AvailableMinutes() {
			return plan.ReasonNoFitTravel
		}
	}
	return plan.ReasonNoFit
}

// reject records a job the construction could not seat.
func (s *search) reject(jobID uuid.UUID, reason string) {
	s.cur.Unassigned = append(s.cur.Unassigned, plan.Unassigned{JobID: jobID, Reason: reason})
}
