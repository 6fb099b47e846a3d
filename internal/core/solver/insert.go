package solver

import (
	"github.com/google/uuid"

	"fieldops/internal/core/clock"
	"fieldops/internal/core/constraint"
	"fieldops/internal/core/plan"
)

// Insertion describes where an emergency job landed.
type Insertion struct {
	StaffID uuid.UUID
	Index   int
	Stop    plan.Stop

	// AddedTravel is the host tour's travel growth in minutes,
	// counting the trip home.
	AddedTravel int
}

// EmergencyInsert seats one job into a persisted schedule with minimal
// disturbance: only the host staff's tour is retimed, every other tour
// is untouched. Among feasible placements it picks the one adding the
// least travel, breaking ties by the earliest start. Stops of pinned
// jobs keep their exact times. Returns ok=false with a reason when no
// placement is feasible.
func EmergencyInsert(in *plan.SolverInput, current plan.Schedule, job plan.JobSnapshot) (plan.Schedule, Insertion, string, bool) {
	engine := constraint.NewEngine()
	pinned := make(map[uuid.UUID]bool)
	for _, j := range in.Jobs {
		if j.Pinned() {
			pinned[j.ID] = true
		}
	}

	anyEquipped := false
	best := Insertion{}
	var bestTour plan.Tour
	var bestTourIdx int
	found := false

	work := current.Clone()
	for ti := range work.Tours {
		staff, ok := in.StaffByID(work.Tours[ti].StaffID)
		if !ok || !staff.HasEquipment(job.Equipment) {
			continue
		}
		anyEquipped = true

		seeds := seedsOf(in, work.Tours[ti], pinned)
		baseTravel := tourTravelWithHome(in, staff, work.Tours[ti])
		for idx := 0; idx <= len(seeds); idx++ {
			trial := spliceSeeds(seeds, idx, stopSeed{job: job, fixed: clock.None})
			tour, ok := buildTimeline(in, staff, trial)
			if !ok || !fitsWindow(in, staff, tour) {
				continue
			}

			saved := work.Tours[ti]
			work.Tours[ti] = tour
			sc := engine.Evaluate(constraint.NewCandidate(in, &work))
			work.Tours[ti] = saved
			if !sc.Feasible() {
				continue
			}

			added := tourTravelWithHome(in, staff, tour) - baseTravel
			stop := tour.Stops[idx]
			if !found ||
				added < best.AddedTravel ||
				(added == best.AddedTravel && stop.Start < best.Stop.Start) {
				best = Insertion{StaffID: staff.ID, Index: idx, Stop: stop, AddedTravel: added}
				bestTour = tour
				bestTourIdx = ti
				found = true
			}
		}
	}

	if !found {
		reason := plan.ReasonNoFitTravel
		if !anyEquipped {
			reason = plan.ReasonEquipment
		}
		return current, Insertion{}, reason, false
	}

	work.Tours[bestTourIdx] = bestTour
	return work, best, "", true
}

// tourTravelWithHome is the tour's inter-stop travel plus the trip back
// home from the last stop.
func tourTravelWithHome(in *plan.SolverInput, staff plan.StaffSnapshot, tour plan.Tour) int {
	total := tour.TravelMinutes()
	if len(tour.Stops) == 0 {
		return total
	}
	last, ok := in.Job(tour.Stops[len(tour.Stops)-1].JobID)
	if !ok {
		return total
	}
	return total + in.Matrix.Minutes(last.Location, staff.Home)
}
