package service

import (
	"context"

	"github.com/google/uuid"

	"fieldops/internal/core/plan"
	"fieldops/internal/modkit/repokit"
	perr "fieldops/internal/platform/errors"
	"fieldops/internal/services/schedule/domain"
)

// persist commits a solved schedule inside one transaction under the
// per-date advisory lock. Appointment rows of pinned jobs survive
// untouched; everything merely scheduled is replaced wholesale.
func (s *Svc) persist(ctx context.Context, in *plan.SolverInput, sched plan.Schedule) error {
	return s.db.Tx(ctx, func(q repokit.Queryer) error {
		r := s.binder.Bind(q)
		got, err := r.TryDateLock(ctx, sched.Date)
		if err != nil {
			return err
		}
		if !got {
			return perr.Conflictf("schedule for %s is being modified, retry shortly", sched.Date)
		}

		if _, err := r.DeleteScheduledFor(ctx, sched.Date); err != nil {
			return err
		}

		var newlyScheduled []uuid.UUID
		for _, tour := range sched.Tours {
			ids, err := insertTour(ctx, r, in, sched.Date, tour)
			if err != nil {
				return err
			}
			newlyScheduled = append(newlyScheduled, ids...)
		}
		_, err = r.SetJobsStatus(ctx, newlyScheduled, plan.StatusScheduled)
		return err
	})
}

// persistHostTour is the emergency-insert variant: only the host
// staff's rows are rewritten, every other tour stays as stored.
func (s *Svc) persistHostTour(ctx context.Context, in *plan.SolverInput, sched plan.Schedule, staffID uuid.UUID) error {
	return s.db.Tx(ctx, func(q repokit.Queryer) error {
		r := s.binder.Bind(q)
		got, err := r.TryDateLock(ctx, sched.Date)
		if err != nil {
			return err
		}
		if !got {
			return perr.Conflictf("schedule for %s is being modified, retry shortly", sched.Date)
		}

		if _, err := r.DeleteScheduledForStaff(ctx, sched.Date, staffID); err != nil {
			return err
		}
		tour := sched.Tour(staffID)
		if tour == nil {
			return perr.Newf(perr.ErrorCodeUnknown, "host tour %s missing from schedule", staffID)
		}
		ids, err := insertTour(ctx, r, in, sched.Date, *tour)
		if err != nil {
			return err
		}
		_, err = r.SetJobsStatus(ctx, ids, plan.StatusScheduled)
		return err
	})
}

// insertTour writes one tour's non-pinned stops in route order and
// returns the job IDs that still need the approved to scheduled
// transition. Pinned stops keep their existing rows, but still occupy
// a route_order slot so the stored ordering matches the tour.
func insertTour(ctx context.Context, r interface {
	InsertAppointment(ctx context.Context, row domain.AppointmentRow) error
}, in *plan.SolverInput, date string, tour plan.Tour) ([]uuid.UUID, error) {
	var newlyScheduled []uuid.UUID
	for order, stop := range tour.Stops {
		job, ok := in.Job(stop.JobID)
		if !ok || job.Pinned() {
			continue
		}
		row := domain.AppointmentRow{
			JobID:            stop.JobID,
			StaffID:          tour.StaffID,
			ScheduleDate:     date,
			TimeWindowStart:  stop.Start.String(),
			TimeWindowEnd:    stop.End.String(),
			EstimatedArrival: stop.Arrive.String(),
			RouteOrder:       order,
			Status:           plan.StatusScheduled,
		}
		if err := r.InsertAppointment(ctx, row); err != nil {
			return nil, err
		}
		if job.Status == plan.StatusApproved {
			newlyScheduled = append(newlyScheduled, job.ID)
		}
	}
	return newlyScheduled, nil
}
