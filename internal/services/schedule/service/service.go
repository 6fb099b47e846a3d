// Package service implements the schedule optimizer orchestration: it
// snapshots the store, runs the solver, and persists the result under a
// per-date advisory lock.
package service

import (
	"context"

	"golang.org/x/sync/semaphore"

	"fieldops/internal/core/plan"
	"fieldops/internal/core/solver"
	"fieldops/internal/core/travel"
	"fieldops/internal/modkit"
	"fieldops/internal/modkit/repokit"
	perr "fieldops/internal/platform/errors"
	"fieldops/internal/platform/logger"

	"fieldops/internal/services/schedule/domain"
	srepo "fieldops/internal/services/schedule/repo"
)

// Config controls solver orchestration.
type Config struct {
	// MaxConcurrentSolves bounds how many solves may run at once; the
	// solver is CPU-bound and a runaway fan-out would starve the API.
	MaxConcurrentSolves int64

	// RetryAfterSeconds is the hint returned with a busy rejection.
	RetryAfterSeconds int
}

// Svc implements domain.ServicePort.
type Svc struct {
	db     repokit.TxRunner
	binder repokit.Binder[srepo.Repo]
	repo   srepo.Repo

	oracle *travel.Oracle
	sem    *semaphore.Weighted
	cfg    Config
	log    logger.Logger
}

// New constructs the service.
func New(deps modkit.Deps, oracle *travel.Oracle, cfg Config) *Svc {
	if cfg.MaxConcurrentSolves <= 0 {
		cfg.MaxConcurrentSolves = 2
	}
	if cfg.RetryAfterSeconds <= 0 {
		cfg.RetryAfterSeconds = 5
	}
	b := srepo.NewPG()
	return &Svc{
		db:     deps.PG,
		binder: b,
		repo:   b.Bind(deps.PG),
		oracle: oracle,
		sem:    semaphore.NewWeighted(cfg.MaxConcurrentSolves),
		cfg:    cfg,
		log:    *logger.Named("schedule"),
	}
}

// RetryAfterSeconds is surfaced so the transport can set a Retry-After
// header on busy rejections.
func (s *Svc) RetryAfterSeconds() int { return s.cfg.RetryAfterSeconds }

func (s *Svc) errBusy() error {
	return perr.Unavailablef("all solver slots are busy, retry in %ds", s.cfg.RetryAfterSeconds)
}

// Generate solves a date from scratch and persists the result.
func (s *Svc) Generate(ctx context.Context, in domain.GenerateRequest) (domain.ScheduleResponse, error) {
	return s.runSolve(ctx, in.ScheduleDate, in.TimeoutSeconds, in.Seed, false, true)
}

// Preview solves a date from scratch without touching the store.
func (s *Svc) Preview(ctx context.Context, in domain.GenerateRequest) (domain.ScheduleResponse, error) {
	return s.runSolve(ctx, in.ScheduleDate, in.TimeoutSeconds, in.Seed, false, false)
}

// Reoptimize re-solves a persisted day in place. In-progress and
// completed stops hold their slots; scheduled ones may move.
func (s *Svc) Reoptimize(ctx context.Context, date string, in domain.ReoptimizeRequest) (domain.ScheduleResponse, error) {
	return s.runSolve(ctx, date, in.TimeoutSeconds, in.Seed, true, true)
}

func (s *Svc) runSolve(ctx context.Context, date string, timeoutSeconds int, seed int64, reopt, persist bool) (domain.ScheduleResponse, error) {
	if !s.sem.TryAcquire(1) {
		return domain.ScheduleResponse{}, s.errBusy()
	}
	defer s.sem.Release(1)

	in, err := s.loadSnapshot(ctx, date, reopt)
	if err != nil {
		return domain.ScheduleResponse{}, err
	}

	opts := solver.Options{Budget: solver.ClampBudget(timeoutSeconds), Seed: seed}
	if reopt {
		rows, err := s.repo.AppointmentsFor(ctx, date)
		if err != nil {
			return domain.ScheduleResponse{}, err
		}
		init := persistedSchedule(in, rows)
		opts.Initial = &init
	}

	sched := solver.Solve(ctx, in, opts)
	s.log.Info().
		Str("date", date).
		Bool("feasible", sched.Feasible).
		Int("assigned", sched.AssignedCount()).
		Int("unassigned", len(sched.Unassigned)).
		Int64("elapsed_ms", sched.ElapsedMS).
		Msg("solve finished")

	if persist {
		if err := s.persist(ctx, in, sched); err != nil {
			return domain.ScheduleResponse{}, err
		}
	}
	return buildResponse(in, sched), nil
}

// buildResponse projects a solved schedule into the transport shape.
func buildResponse(in *plan.SolverInput, sched plan.Schedule) domain.ScheduleResponse {
	out := domain.ScheduleResponse{
		ScheduleDate:   sched.Date,
		IsFeasible:     sched.Feasible,
		HardScore:      sched.Hard,
		SoftScore:      sched.Soft,
		ElapsedMS:      sched.ElapsedMS,
		Assignments:    []domain.StaffAssignment{},
		UnassignedJobs: []domain.UnassignedJob{},
	}
	for _, tour := range sched.Tours {
		staff, _ := in.StaffByID(tour.StaffID)
		asg := domain.StaffAssignment{
			StaffID:   tour.StaffID.String(),
			StaffName: staff.Name,
			Jobs:      []domain.AssignedJob{},
		}
		for _, stop := range tour.Stops {
			job, ok := in.Job(stop.JobID)
			if !ok {
				continue
			}
			asg.Jobs = append(asg.Jobs, assignedJob(job, stop))
		}
		out.Assignments = append(out.Assignments, asg)
	}
	for _, u := range sched.Unassigned {
		out.UnassignedJobs = append(out.UnassignedJobs, domain.UnassignedJob{
			JobID: u.JobID.String(), Reason: u.Reason,
		})
	}
	return out
}

func assignedJob(job plan.JobSnapshot, stop plan.Stop) domain.AssignedJob {
	return domain.AssignedJob{
		JobID:             job.ID.String(),
		CustomerName:      job.CustomerName,
		Address:           job.Address,
		City:              job.Location.CityTag,
		StartTime:         stop.Start.String(),
		EndTime:           stop.End.String(),
		ArriveTime:        stop.Arrive.String(),
		DurationMinutes:   job.DurationMinutes,
		BufferMinutes:     job.BufferMinutes,
		TravelTimeMinutes: stop.TravelFromPrev,
	}
}
