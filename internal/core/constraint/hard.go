package constraint

import (
	"github.com/google/uuid"

	"fieldops/internal/core/clock"
	"fieldops/internal/core/plan"
)

// equipmentMatch penalizes a stop whose staff lacks a required tag.
type equipmentMatch struct{}

func (equipmentMatch) Name() string { return "equipment_match" }

func (equipmentMatch) Apply(c *Candidate) Score {
	var s Score
	for _, t := range c.Sched.Tours {
		staff, ok := c.Staff(t.StaffID)
		if !ok {
			s.Hard -= int64(len(t.Stops))
			continue
		}
		for _, stop := range t.Stops {
			job, ok := c.Job(stop.JobID)
			if !ok || !staff.HasEquipment(job.Equipment) {
				s.Hard--
			}
		}
	}
	return s
}

// windowOverrun charges one point per minute a tour runs past its
// staff's window, including the trip back home after the last stop.
type windowOverrun struct{}

func (windowOverrun) Name() string { return "availability_window" }

func (windowOverrun) Apply(c *Candidate) Score {
	var s Score
	for _, t := range c.Sched.Tours {
		staff, ok := c.Staff(t.StaffID)
		if !ok || len(t.Stops) == 0 {
			continue
		}
		end := staff.Day.WindowEnd
		for _, stop := range t.Stops {
			if stop.End > end {
				s.Hard -= int64(stop.End - end)
			}
			if stop.Start < staff.Day.WindowStart {
				s.Hard -= int64(staff.Day.WindowStart - stop.Start)
			}
		}
		last := t.Stops[len(t.Stops)-1]
		if job, ok := c.Job(last.JobID); ok {
			home := last.End + clock.Minute(c.Travel(job.Location, staff.Home))
			if home > end && last.End <= end {
				s.Hard -= int64(home - end)
			}
		}
	}
	return s
}

// lunchRespect penalizes each stop overlapping the lunch interval.
type lunchRespect struct{}

func (lunchRespect) Name() string { return "lunch_respect" }

func (lunchRespect) Apply(c *Candidate) Score {
	var s Score
	for _, t := range c.Sched.Tours {
		staff, ok := c.Staff(t.StaffID)
		if !ok || staff.Day.LunchMinutes == 0 {
			continue
		}
		ls, le := staff.Day.LunchStart, staff.Day.LunchEnd()
		for _, stop := range t.Stops {
			if clock.Overlaps(stop.Start, stop.End, ls, le) {
				s.Hard--
			}
		}
	}
	return s
}

// noOverlap penalizes each overlapping pair of stops in one tour.
type noOverlap struct{}

func (noOverlap) Name() string { return "no_time_overlap" }

func (noOverlap) Apply(c *Candidate) Score {
	var s Score
	for _, t := range c.Sched.Tours {
		for i := 0; i < len(t.Stops); i++ {
			for j := i + 1; j < len(t.Stops); j++ {
				a, b := t.Stops[i], t.Stops[j]
				if clock.Overlaps(a.Start, a.End, b.Start, b.End) {
					s.Hard--
				}
			}
		}
	}
	return s
}

// jobBounds penalizes stops violating a job's own time bounds.
type jobBounds struct{}

func (jobBounds) Name() string { return "job_bounds" }

func (jobBounds) Apply(c *Candidate) Score {
	var s Score
	for _, t := range c.Sched.Tours {
		for _, stop := range t.Stops {
			job, ok := c.Job(stop.JobID)
			if !ok {
				continue
			}
			if job.EarliestStart.Set() && stop.Start < job.EarliestStart {
				s.Hard--
			}
			if job.LatestFinish.Set() && stop.End > job.LatestFinish {
				s.Hard--
			}
		}
	}
	return s
}

// staffingCoherence checks multi-staff jobs: exactly n distinct staff,
// all starting together. One point per missing or incoherent seat.
type staffingCoherence struct{}

func (staffingCoherence) Name() string { return "staffing_coherence" }

func (staffingCoherence) Apply(c *Candidate) Score {
	type seat struct {
		staff uuid.UUID
		start clock.Minute
	}
	seats := make(map[uuid.UUID][]seat)
	for _, t := range c.Sched.Tours {
		for _, stop := range t.Stops {
			if job, ok := c.Job(stop.JobID); ok && job.StaffingNeeded > 1 {
				seats[job.ID] = append(seats[job.ID], seat{staff: t.StaffID, start: stop.Start})
			}
		}
	}

	var s Score
	for jobID, got := range seats {
		job, _ := c.Job(jobID)
		distinct := make(map[uuid.UUID]struct{}, len(got))
		aligned := 0
		for _, st := range got {
			distinct[st.staff] = struct{}{}
			if st.start == got[0].start {
				aligned++
			}
		}
		if miss := job.StaffingNeeded - len(distinct); miss > 0 {
			s.Hard -= int64(miss)
		}
		if extra := len(got) - job.StaffingNeeded; extra > 0 {
			s.Hard -= int64(extra)
		}
		s.Hard -= int64(len(got) - aligned)
	}
	return s
}

// eligibleStatus penalizes stops whose job may not be scheduled.
type eligibleStatus struct{}

func (eligibleStatus) Name() string { return "job_status" }

func (eligibleStatus) Apply(c *Candidate) Score {
	var s Score
	for _, t := range c.Sched.Tours {
		for _, stop := range t.Stops {
			job, ok := c.Job(stop.JobID)
			if !ok {
				continue
			}
			switch job.Status {
			case plan.StatusApproved, plan.StatusScheduled,
				plan.StatusInProgress, plan.StatusCompleted:
			default:
				s.Hard--
			}
		}
	}
	return s
}
