// Package constraint scores candidate schedules. Every rule is a pure
// function over a Candidate; the engine sums them into a (hard, soft)
// score. Hard is penalties only, feasible means hard == 0. Soft is the
// optimization target, higher is better.
package constraint

import (
	"github.com/google/uuid"

	"fieldops/internal/core/geo"
	"fieldops/internal/core/plan"
)

// Score is the additive schedule score.
type Score struct {
	Hard int64
	Soft int64
}

// Add folds another score in.
func (s Score) Add(o Score) Score { return Score{Hard: s.Hard + o.Hard, Soft: s.Soft + o.Soft} }

// Feasible reports whether no hard constraint is violated.
func (s Score) Feasible() bool { return s.Hard == 0 }

// Better reports whether s beats o: hard first, then soft.
func (s Score) Better(o Score) bool {
	if s.Hard != o.Hard {
		return s.Hard > o.Hard
	}
	return s.Soft > o.Soft
}

// Candidate bundles a schedule with the input it was built from, plus
// O(1) lookups so rules stay tight inside the search loop.
type Candidate struct {
	In    *plan.SolverInput
	Sched *plan.Schedule

	jobs  map[uuid.UUID]plan.JobSnapshot
	staff map[uuid.UUID]plan.StaffSnapshot
}

// NewCandidate indexes the input once; the schedule may be swapped via
// Rebind between evaluations.
func NewCandidate(in *plan.SolverInput, sched *plan.Schedule) *Candidate {
	c := &Candidate{
		In:    in,
		Sched: sched,
		jobs:  make(map[uuid.UUID]plan.JobSnapshot, len(in.Jobs)),
		staff: make(map[uuid.UUID]plan.StaffSnapshot, len(in.Staff)),
	}
	for _, j := range in.Jobs {
		c.jobs[j.ID] = j
	}
	for _, s := range in.Staff {
		c.staff[s.ID] = s
	}
	return c
}

// Rebind points the candidate at another schedule over the same input.
func (c *Candidate) Rebind(sched *plan.Schedule) { c.Sched = sched }

// Job resolves a stop's job snapshot.
func (c *Candidate) Job(id uuid.UUID) (plan.JobSnapshot, bool) {
	j, ok := c.jobs[id]
	return j, ok
}

// Staff resolves a tour's staff snapshot.
func (c *Candidate) Staff(id uuid.UUID) (plan.StaffSnapshot, bool) {
	s, ok := c.staff[id]
	return s, ok
}

// Travel is the precomputed travel lookup.
func (c *Candidate) Travel(from, to geo.Location) int {
	return c.In.Matrix.Minutes(from, to)
}

// Constraint is one scoring rule.
type Constraint interface {
	Name() string
	Apply(c *Candidate) Score
}

// Engine evaluates a fixed rule set over candidates.
type Engine struct {
	rules []Constraint
}

// NewEngine builds the engine with the full production rule set.
func NewEngine() *Engine {
	return &Engine{rules: []Constraint{
		equipmentMatch{},
		windowOverrun{},
		lunchRespect{},
		noOverlap{},
		jobBounds{},
		staffingCoherence{},
		eligibleStatus{},

		priorityReward{},
		travelCost{},
		cityBatching{},
		preferredWindow{},
		typeBatching{},
		bufferKept{},
		backtracking{},
		fcfsOrder{},
	}}
}

// Evaluate sums every rule over the candidate.
func (e *Engine) Evaluate(c *Candidate) Score {
	var total Score
	for _, r := range e.rules {
		total = total.Add(r.Apply(c))
	}
	return total
}

// Breakdown reports per-rule scores, used when explaining an infeasible
// or surprising result.
func (e *Engine) Breakdown(c *Candidate) map[string]Score {
	out := make(map[string]Score, len(e.rules))
	for _, r := range e.rules {
		out[r.Name()] = r.Apply(c)
	}
	return out
}
