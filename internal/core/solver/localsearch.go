package solver

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"fieldops/internal/core/clock"
	"fieldops/internal/core/constraint"
	"fieldops/internal/core/plan"
)

// tabuCapacity is how many recently accepted moves stay forbidden.
const tabuCapacity = 24

// tabuList is a fixed-size ring of move signatures.
type tabuList struct {
	ring []string
	next int
	set  map[string]struct{}
}

func newTabuList(capacity int) *tabuList {
	return &tabuList{
		ring: make([]string, capacity),
		set:  make(map[string]struct{}, capacity),
	}
}

func (t *tabuList) Contains(sig string) bool {
	_, ok := t.set[sig]
	return ok
}

func (t *tabuList) Add(sig string) {
	if old := t.ring[t.next]; old != "" {
		delete(t.set, old)
	}
	t.ring[t.next] = sig
	t.set[sig] = struct{}{}
	t.next = (t.next + 1) % len(t.ring)
}

// move is one evaluated neighborhood step. unassigned is the count the
// schedule would have after applying it.
type move struct {
	sig        string
	score      constraint.Score
	unassigned int
	apply      func()
}

// betterRank prefers fewer hard violations, then fewer unassigned jobs,
// then the higher soft score.
func betterRank(aScore constraint.Score, aUn int, bScore constraint.Score, bUn int) bool {
	if aScore.Hard != bScore.Hard {
		return aScore.Hard > bScore.Hard
	}
	if aUn != bUn {
		return aUn < bUn
	}
	return aScore.Soft > bScore.Soft
}

// improve runs best-improvement local search until the budget expires
// or no operator finds a strictly better neighbor.
func (s *search) improve(ctx context.Context) {
	base := s.engine.Evaluate(s.cand)
	for {
		if s.expired() || ctx.Err() != nil {
			return
		}
		best, found := s.bestMove(ctx, base, len(s.cur.Unassigned))
		if !found {
			return
		}
		best.apply()
		s.tabu.Add(best.sig)
		base = best.score
	}
}

// bestMove scans all operators and returns the best strictly improving,
// non-tabu neighbor.
func (s *search) bestMove(ctx context.Context, base constraint.Score, baseUn int) (move, bool) {
	var best move
	found := false
	consider := func(m move, ok bool) {
		if !ok || s.tabu.Contains(m.sig) {
			return
		}
		if !betterRank(m.score, m.unassigned, base, baseUn) {
			return
		}
		if !found || betterRank(m.score, m.unassigned, best.score, best.unassigned) {
			best = m
			found = true
		}
	}

	for _, op := range []func(context.Context, func(move, bool)){
		s.relocateMoves,
		s.twoOptMoves,
		s.swapMoves,
		s.reinsertMoves,
		s.promoteMoves,
	} {
		op(ctx, consider)
		if s.expired() || ctx.Err() != nil {
			break
		}
	}
	return best, found
}

// relocateMoves tries moving each free stop to every other slot, in the
// same tour or any other.
func (s *search) relocateMoves(ctx context.Context, consider func(move, bool)) {
	for ti := range s.cur.Tours {
		for si := range s.cur.Tours[ti].Stops {
			jobID := s.cur.Tours[ti].Stops[si].JobID
			if s.pinned[jobID] || s.isCrewJob(jobID) {
				continue
			}
			job, ok := s.in.Job(jobID)
			if !ok {
				continue
			}
			for tj := range s.cur.Tours {
				src := seedsWithout(seedsOf(s.in, s.cur.Tours[ti], s.pinned), si)
				var dst []stopSeed
				if tj == ti {
					dst = src
				} else {
					dst = seedsOf(s.in, s.cur.Tours[tj], s.pinned)
				}
				for idx := 0; idx <= len(dst); idx++ {
					if s.expired() || ctx.Err() != nil {
						return
					}
					s.moves++
					m, ok := s.evalRelocate(ti, tj, si, idx, job, src, dst)
					consider(m, ok)
				}
			}
		}
	}
}

func (s *search) evalRelocate(ti, tj, si, idx int, job plan.JobSnapshot, src, dst []stopSeed) (move, bool) {
	trial := spliceSeeds(dst, idx, stopSeed{job: job, fixed: clock.None})

	if ti == tj {
		tour, ok := s.retime(ti, trial)
		if !ok {
			return move{}, false
		}
		sc, ok := s.scoreWith(map[int]plan.Tour{ti: tour})
		if !ok {
			return move{}, false
		}
		return move{
			sig:        fmt.Sprintf("rel:%s:%d:%d", job.ID, ti, idx),
			score:      sc,
			unassigned: len(s.cur.Unassigned),
			apply:      func() { s.cur.Tours[ti] = tour },
		}, true
	}

	srcTour, ok := s.retime(ti, src)
	if !ok {
		return move{}, false
	}
	dstTour, ok := s.retime(tj, trial)
	if !ok {
		return move{}, false
	}
	sc, ok := s.scoreWith(map[int]plan.Tour{ti: srcTour, tj: dstTour})
	if !ok {
		return move{}, false
	}
	return move{
		sig:        fmt.Sprintf("rel:%s:%d:%d", job.ID, tj, idx),
		score:      sc,
		unassigned: len(s.cur.Unassigned),
		apply: func() {
			s.cur.Tours[ti] = srcTour
			s.cur.Tours[tj] = dstTour
		},
	}, true
}

// twoOptMoves reverses contiguous sub-sequences within one tour.
func (s *search) twoOptMoves(ctx context.Context, consider func(move, bool)) {
	for ti := range s.cur.Tours {
		seeds := seedsOf(s.in, s.cur.Tours[ti], s.pinned)
		for i := 0; i < len(seeds)-1; i++ {
			for j := i + 1; j < len(seeds); j++ {
				if s.expired() || ctx.Err() != nil {
					return
				}
				if s.segmentPinned(seeds, i, j) {
					continue
				}
				s.moves++
				trial := reverseSeeds(seeds, i, j)
				tour, ok := s.retime(ti, trial)
				if !ok {
					continue
				}
				sc, ok := s.scoreWith(map[int]plan.Tour{ti: tour})
				if !ok {
					continue
				}
				ti := ti
				tourCopy := tour
				consider(move{
					sig:        fmt.Sprintf("2opt:%d:%d:%d", ti, i, j),
					score:      sc,
					unassigned: len(s.cur.Unassigned),
					apply:      func() { s.cur.Tours[ti] = tourCopy },
				}, true)
			}
		}
	}
}

// swapMoves exchanges two stops across tours.
func (s *search) swapMoves(ctx context.Context, consider func(move, bool)) {
	for ti := range s.cur.Tours {
		for tj := ti + 1; tj < len(s.cur.Tours); tj++ {
			a := seedsOf(s.in, s.cur.Tours[ti], s.pinned)
			b := seedsOf(s.in, s.cur.Tours[tj], s.pinned)
			for i := range a {
				for j := range b {
					if s.expired() || ctx.Err() != nil {
						return
					}
					if a[i].fixed.Set() || b[j].fixed.Set() ||
						s.isCrewJob(a[i].job.ID) || s.isCrewJob(b[j].job.ID) {
						continue
					}
					s.moves++
					ta := swapSeed(a, i, b[j])
					tb := swapSeed(b, j, a[i])
					tourA, ok := s.retime(ti, ta)
					if !ok {
						continue
					}
					tourB, ok := s.retime(tj, tb)
					if !ok {
						continue
					}
					sc, ok := s.scoreWith(map[int]plan.Tour{ti: tourA, tj: tourB})
					if !ok {
						continue
					}
					ti, tj := ti, tj
					ca, cb := tourA, tourB
					consider(move{
						sig:        fmt.Sprintf("swap:%s:%s", a[i].job.ID, b[j].job.ID),
						score:      sc,
						unassigned: len(s.cur.Unassigned),
						apply: func() {
							s.cur.Tours[ti] = ca
							s.cur.Tours[tj] = cb
						},
					}, true)
				}
			}
		}
	}
}

// reinsertMoves retries unassigned jobs against the current tours.
func (s *search) reinsertMoves(ctx context.Context, consider func(move, bool)) {
	for ui, u := range s.cur.Unassigned {
		if s.expired() || ctx.Err() != nil {
			return
		}
		if u.Reason == plan.ReasonUnlocatable {
			continue
		}
		job, ok := s.in.Job(u.JobID)
		if !ok || !job.Eligible(s.reopt) || job.StaffingNeeded > 1 {
			continue
		}
		ins, ok := s.bestInsertion(job)
		if !ok {
			continue
		}
		ui := ui
		consider(move{
			sig:        fmt.Sprintf("rein:%s", job.ID),
			score:      ins.score,
			unassigned: len(s.cur.Unassigned) - 1,
			apply: func() {
				s.applyInsertion(job, ins)
				s.cur.Unassigned = append(s.cur.Unassigned[:ui], s.cur.Unassigned[ui+1:]...)
			},
		}, true)
	}
}

// promoteMoves trades a seated stop for an unassigned higher-priority
// job at the same slot.
func (s *search) promoteMoves(ctx context.Context, consider func(move, bool)) {
	for ui, u := range s.cur.Unassigned {
		job, ok := s.in.Job(u.JobID)
		if !ok || !job.Eligible(s.reopt) || job.StaffingNeeded > 1 || job.Priority == plan.PriorityNormal {
			continue
		}
		for ti := range s.cur.Tours {
			if !s.in.Staff[ti].HasEquipment(job.Equipment) {
				continue
			}
			seeds := seedsOf(s.in, s.cur.Tours[ti], s.pinned)
			for si := range seeds {
				if s.expired() || ctx.Err() != nil {
					return
				}
				victim := seeds[si]
				if victim.fixed.Set() || victim.job.Priority >= job.Priority || s.isCrewJob(victim.job.ID) {
					continue
				}
				s.moves++
				trial := swapSeed(seeds, si, stopSeed{job: job, fixed: clock.None})
				tour, ok := s.retime(ti, trial)
				if !ok {
					continue
				}
				sc, ok := s.scoreWith(map[int]plan.Tour{ti: tour})
				if !ok {
					continue
				}
				ti, ui := ti, ui
				victimID := victim.job.ID
				tourCopy := tour
				consider(move{
					sig:        fmt.Sprintf("promo:%s:%s", job.ID, victimID),
					score:      sc,
					unassigned: len(s.cur.Unassigned),
					apply: func() {
						s.cur.Tours[ti] = tourCopy
						s.cur.Unassigned[ui] = plan.Unassigned{JobID: victimID, Reason: plan.ReasonNoFit}
						s.seated[job.ID] = true
						delete(s.seated, victimID)
					},
				}, true)
			}
		}
	}
}

// retime rebuilds one tour's timeline and window-checks it.
func (s *search) retime(ti int, seeds []stopSeed) (plan.Tour, bool) {
	staff := s.in.Staff[ti]
	tour, ok := buildTimeline(s.in, staff, seeds)
	if !ok || !fitsWindow(s.in, staff, tour) {
		return plan.Tour{}, false
	}
	return tour, true
}

// scoreWith evaluates the schedule with some tours swapped in, then
// restores it. Only feasible neighbors score.
func (s *search) scoreWith(tours map[int]plan.Tour) (constraint.Score, bool) {
	saved := make(map[int]plan.Tour, len(tours))
	for i, t := range tours {
		saved[i] = s.cur.Tours[i]
		s.cur.Tours[i] = t
	}
	sc := s.engine.Evaluate(s.cand)
	for i, t := range saved {
		s.cur.Tours[i] = t
	}
	if !sc.Feasible() {
		return constraint.Score{}, false
	}
	return sc, true
}

// isCrewJob reports whether a job needs multiple techs; the local
// search leaves crew jobs where construction put them.
func (s *search) isCrewJob(id uuid.UUID) bool {
	job, ok := s.in.Job(id)
	return ok && job.StaffingNeeded > 1
}

func (s *search) segmentPinned(seeds []stopSeed, i, j int) bool {
	for k := i; k <= j; k++ {
		if seeds[k].fixed.Set() || s.isCrewJob(seeds[k].job.ID) {
			return true
		}
	}
	return false
}

func spliceSeeds(seeds []stopSeed, idx int, seed stopSeed) []stopSeed {
	out := make([]stopSeed, 0, len(seeds)+1)
	out = append(out, seeds[:idx]...)
	out = append(out, seed)
	out = append(out, seeds[idx:]...)
	return out
}

func seedsWithout(seeds []stopSeed, idx int) []stopSeed {
	out := make([]stopSeed, 0, len(seeds)-1)
	out = append(out, seeds[:idx]...)
	out = append(out, seeds[idx+1:]...)
	return out
}

func reverseSeeds(seeds []stopSeed, i, j int) []stopSeed {
	out := make([]stopSeed, len(seeds))
	copy(out, seeds)
	for a, b := i, j; a < b; a, b = a+1, b-1 {
		out[a], out[b] = out[b], out[a]
	}
	return out
}

func swapSeed(seeds []stopSeed, idx int, seed stopSeed) []stopSeed {
	out := make([]stopSeed, len(seeds))
	copy(out, seeds)
	out[idx] = seed
	return out
}
