// Package solver turns a day snapshot into a scored schedule. The
// search is greedy construction followed by timeboxed local improvement;
// it is single-threaded and, for a given input and seed, deterministic.
package solver

import (
	"context"
	"hash/fnv"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"fieldops/internal/core/constraint"
	"fieldops/internal/core/plan"
	"fieldops/internal/platform/logger"
)

const (
	// DefaultBudget applies when the request names no timeout.
	DefaultBudget = 30 * time.Second

	// MaxBudget is the server-side ceiling on one solve.
	MaxBudget = 120 * time.Second

	// overshootGrace bounds how late past the deadline a result may
	// arrive; the loop checks the clock between moves.
	overshootGrace = 250 * time.Millisecond
)

// Options tunes one solve.
type Options struct {
	// Budget is the wall-clock allowance, clamped to (0, MaxBudget].
	Budget time.Duration

	// Seed drives the search's random choices. Zero means derive one
	// from the date so repeated runs stay comparable.
	Seed int64

	// Initial seeds the search with a persisted schedule; used by
	// re-optimization. Stops whose jobs are in progress or completed
	// are pinned in place, everything else may move.
	Initial *plan.Schedule
}

// SeedForDate is the default deterministic seed for a schedule date.
func SeedForDate(date string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(date))
	return int64(h.Sum64())
}

// ClampBudget normalizes a requested timeout in seconds.
func ClampBudget(seconds int) time.Duration {
	if seconds <= 0 {
		return DefaultBudget
	}
	d := time.Duration(seconds) * time.Second
	if d > MaxBudget {
		return MaxBudget
	}
	return d
}

// search carries the in-flight state of one solve.
type search struct {
	in     *plan.SolverInput
	engine *constraint.Engine
	cand   *constraint.Candidate

	cur    *plan.Schedule
	pinned map[uuid.UUID]bool
	seated map[uuid.UUID]bool

	rng      *rand.Rand
	deadline time.Time
	moves    int64
	reopt    bool
	tabu     *tabuList
	log      logger.Logger
}

// Solve runs the full search and always returns a schedule; an
// infeasible day comes back scored, never as an error.
func Solve(ctx context.Context, in *plan.SolverInput, opts Options) plan.Schedule {
	start := time.Now()

	budget := opts.Budget
	if budget <= 0 {
		budget = DefaultBudget
	}
	if budget > MaxBudget {
		budget = MaxBudget
	}
	deadline := start.Add(budget)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	seed := opts.Seed
	if seed == 0 {
		seed = in.Seed
	}
	if seed == 0 {
		seed = SeedForDate(in.Date)
	}

	s := &search{
		in:       in,
		engine:   constraint.NewEngine(),
		pinned:   make(map[uuid.UUID]bool),
		seated:   make(map[uuid.UUID]bool),
		rng:      rand.New(rand.NewSource(seed)),
		deadline: deadline,
		reopt:    opts.Initial != nil,
		tabu:     newTabuList(tabuCapacity),
		log:      *logger.Named("solver"),
	}
	for _, j := range in.Jobs {
		if j.Pinned() {
			s.pinned[j.ID] = true
		}
	}
	s.cur = s.initial(opts.Initial)
	s.cand = constraint.NewCandidate(in, s.cur)

	// construction skips jobs already seated by the initial schedule,
	// so a re-optimization run still seats newly approved work
	s.construct()
	s.improve(ctx)

	sc := s.engine.Evaluate(s.cand)
	s.cur.Hard = sc.Hard
	s.cur.Soft = sc.Soft
	s.cur.Feasible = sc.Feasible()
	s.cur.ElapsedMS = time.Since(start).Milliseconds()
	s.cur.MovesEvaluated = s.moves

	if !s.cur.Feasible {
		s.log.Warn().
			Str("date", in.Date).
			Int64("hard", s.cur.Hard).
			Interface("breakdown", s.engine.Breakdown(s.cand)).
			Msg("solve finished infeasible")
	}
	return *s.cur
}

// initial lays out one empty tour per staff, in staff order, and folds
// in the persisted schedule when re-optimizing.
func (s *search) initial(prev *plan.Schedule) *plan.Schedule {
	sched := &plan.Schedule{Date: s.in.Date}
	sched.Tours = make([]plan.Tour, len(s.in.Staff))
	for i, st := range s.in.Staff {
		sched.Tours[i] = plan.Tour{StaffID: st.ID}
	}
	sched.Unassigned = append(sched.Unassigned, s.in.Unlocatable...)
	for _, u := range s.in.Unlocatable {
		s.seated[u.JobID] = true // keep construction away from them
	}

	if prev == nil {
		return sched
	}
	for i, st := range s.in.Staff {
		if t := prev.Tour(st.ID); t != nil {
			sched.Tours[i] = t.Clone()
			for _, stop := range t.Stops {
				s.seated[stop.JobID] = true
			}
		}
	}
	return sched
}

// expired reports whether the budget is gone. The check runs between
// move evaluations, so a result lands within overshootGrace of the
// deadline.
func (s *search) expired() bool {
	return !time.Now().Before(s.deadline)
}
