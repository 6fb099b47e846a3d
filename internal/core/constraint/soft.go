package constraint

// Soft weights. Tuned by hand against dispatcher feedback; keep them in
// one place so adjustments stay a one-line change.
const (
	weightPriority     = 90
	weightTravel       = 80
	weightCityBatch    = 70
	weightPreferred    = 70
	weightTypeBatch    = 50
	weightBufferKept   = 60
	weightBacktracking = 50
	weightFCFS         = 30

	// backtrackFloorMinutes keeps short urban legs from tripping the
	// backtracking rule on tiny means.
	backtrackFloorMinutes = 10
)

// priorityReward pays out per assigned stop, scaled by job priority.
type priorityReward struct{}

func (priorityReward) Name() string { return "priority_reward" }

func (priorityReward) Apply(c *Candidate) Score {
	var s Score
	for _, t := range c.Sched.Tours {
		for _, stop := range t.Stops {
			if job, ok := c.Job(stop.JobID); ok {
				s.Soft += int64(job.Priority * weightPriority)
			}
		}
	}
	return s
}

// travelCost charges for every inter-stop travel minute.
type travelCost struct{}

func (travelCost) Name() string { return "minimize_travel" }

func (travelCost) Apply(c *Candidate) Score {
	var s Score
	for _, t := range c.Sched.Tours {
		s.Soft -= int64(weightTravel * t.TravelMinutes())
	}
	return s
}

// cityBatching rewards consecutive stops sharing a city tag.
type cityBatching struct{}

func (cityBatching) Name() string { return "city_batching" }

func (cityBatching) Apply(c *Candidate) Score {
	var s Score
	for _, t := range c.Sched.Tours {
		for i := 1; i < len(t.Stops); i++ {
			prev, pok := c.Job(t.Stops[i-1].JobID)
			cur, cok := c.Job(t.Stops[i].JobID)
			if pok && cok && prev.Location.CityTag != "" && prev.Location.CityTag == cur.Location.CityTag {
				s.Soft += weightCityBatch
			}
		}
	}
	return s
}

// preferredWindow rewards stops landing inside the customer's ask.
type preferredWindow struct{}

func (preferredWindow) Name() string { return "preferred_window" }

func (preferredWindow) Apply(c *Candidate) Score {
	var s Score
	for _, t := range c.Sched.Tours {
		for _, stop := range t.Stops {
			job, ok := c.Job(stop.JobID)
			if !ok || !job.PreferredStart.Set() || !job.PreferredEnd.Set() {
				continue
			}
			if stop.Start >= job.PreferredStart && stop.End <= job.PreferredEnd {
				s.Soft += weightPreferred
			}
		}
	}
	return s
}

// typeBatching rewards consecutive stops of the same job type.
type typeBatching struct{}

func (typeBatching) Name() string { return "type_batching" }

func (typeBatching) Apply(c *Candidate) Score {
	var s Score
	for _, t := range c.Sched.Tours {
		for i := 1; i < len(t.Stops); i++ {
			prev, pok := c.Job(t.Stops[i-1].JobID)
			cur, cok := c.Job(t.Stops[i].JobID)
			if pok && cok && prev.JobType != "" && prev.JobType == cur.JobType {
				s.Soft += weightTypeBatch
			}
		}
	}
	return s
}

// bufferKept rewards stops whose trailing buffer survives intact: the
// next departure happens at or after the buffered end, so the crew gets
// its cleanup slack instead of it being eaten by an early departure.
type bufferKept struct{}

func (bufferKept) Name() string { return "buffer_kept" }

func (bufferKept) Apply(c *Candidate) Score {
	var s Score
	for _, t := range c.Sched.Tours {
		for i, stop := range t.Stops {
			job, ok := c.Job(stop.JobID)
			if !ok || job.BufferMinutes == 0 {
				continue
			}
			if i == len(t.Stops)-1 || t.Stops[i+1].Arrive >= stop.End {
				s.Soft += weightBufferKept
			}
		}
	}
	return s
}

// backtracking penalizes a leg much longer than the tour's mean leg,
// the signature of a route doubling back on itself.
type backtracking struct{}

func (backtracking) Name() string { return "backtracking" }

func (backtracking) Apply(c *Candidate) Score {
	var s Score
	for _, t := range c.Sched.Tours {
		if len(t.Stops) < 3 {
			continue
		}
		total := 0
		for i := 1; i < len(t.Stops); i++ {
			total += t.Stops[i].TravelFromPrev
		}
		mean := total / (len(t.Stops) - 1)
		threshold := mean + mean/2
		if threshold < backtrackFloorMinutes {
			threshold = backtrackFloorMinutes
		}
		for i := 1; i < len(t.Stops); i++ {
			if t.Stops[i].TravelFromPrev > threshold {
				s.Soft -= weightBacktracking
			}
		}
	}
	return s
}

// fcfsOrder rewards tours that serve earlier-created jobs earlier.
type fcfsOrder struct{}

func (fcfsOrder) Name() string { return "fcfs_order" }

func (fcfsOrder) Apply(c *Candidate) Score {
	var s Score
	for _, t := range c.Sched.Tours {
		for i := 1; i < len(t.Stops); i++ {
			prev, pok := c.Job(t.Stops[i-1].JobID)
			cur, cok := c.Job(t.Stops[i].JobID)
			if pok && cok && !prev.CreatedAt.After(cur.CreatedAt) {
				s.Soft += weightFCFS
			}
		}
	}
	return s
}
