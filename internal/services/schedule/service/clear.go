package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"fieldops/internal/core/plan"
	"fieldops/internal/modkit/repokit"
	perr "fieldops/internal/platform/errors"
	"fieldops/internal/services/schedule/domain"
)

// Clear wipes every appointment of a date behind an audit row so the
// wipe can be undone. Jobs that were merely scheduled drop back to
// approved; in-progress and completed jobs keep their status even
// though their rows are serialized and removed. Clearing an empty day
// still writes an audit row with zero counts.
func (s *Svc) Clear(ctx context.Context, in domain.ClearRequest) (domain.ClearResponse, error) {
	var out domain.ClearResponse
	err := s.db.Tx(ctx, func(q repokit.Queryer) error {
		r := s.binder.Bind(q)
		got, err := r.TryDateLock(ctx, in.ScheduleDate)
		if err != nil {
			return err
		}
		if !got {
			return perr.Conflictf("schedule for %s is being modified, retry shortly", in.ScheduleDate)
		}

		rows, err := r.AppointmentsFor(ctx, in.ScheduleDate)
		if err != nil {
			return err
		}

		audit := domain.AuditRow{
			ID:               uuid.New(),
			ScheduleDate:     in.ScheduleDate,
			ClearedAt:        time.Now().UTC(),
			ClearedBy:        in.ClearedBy,
			Notes:            in.Notes,
			AppointmentCount: len(rows),
		}
		for _, row := range rows {
			audit.Appointments = append(audit.Appointments, serializeAppointment(row))
			if row.JobStatus == plan.StatusScheduled {
				audit.JobsReset = append(audit.JobsReset, row.JobID)
			}
		}
		// crew jobs hold one row per member
		audit.JobsReset = lo.Uniq(audit.JobsReset)

		if err := r.InsertAudit(ctx, audit); err != nil {
			return err
		}
		deleted, err := r.DeleteAllFor(ctx, in.ScheduleDate)
		if err != nil {
			return err
		}
		reset, err := r.SetJobsStatus(ctx, audit.JobsReset, plan.StatusApproved)
		if err != nil {
			return err
		}

		out = domain.ClearResponse{
			AuditID:             audit.ID.String(),
			AppointmentsDeleted: int(deleted),
			JobsReset:           int(reset),
			ClearedAt:           audit.ClearedAt.Format(time.RFC3339),
		}
		return nil
	})
	if err != nil {
		return domain.ClearResponse{}, err
	}
	s.log.Info().
		Str("date", in.ScheduleDate).
		Str("audit_id", out.AuditID).
		Int("deleted", out.AppointmentsDeleted).
		Msg("schedule cleared")
	return out, nil
}

// Restore replays a clear audit. Each serialized appointment is
// re-created unless its job has since been cancelled, closed, or
// deleted; skips are logged, not fatal. The audit row is consumed on
// success, so a second restore of the same ID is NotFound.
func (s *Svc) Restore(ctx context.Context, auditID string) (domain.RestoreResponse, error) {
	id, err := uuid.Parse(auditID)
	if err != nil {
		return domain.RestoreResponse{}, perr.Validationf("audit_id %q is not a uuid", auditID)
	}

	var out domain.RestoreResponse
	err = s.db.Tx(ctx, func(q repokit.Queryer) error {
		r := s.binder.Bind(q)
		audit, err := r.AuditByID(ctx, id)
		if err != nil {
			return err
		}
		got, err := r.TryDateLock(ctx, audit.ScheduleDate)
		if err != nil {
			return err
		}
		if !got {
			return perr.Conflictf("schedule for %s is being modified, retry shortly", audit.ScheduleDate)
		}

		restorable := make(map[uuid.UUID]bool)
		restored := 0
		for _, a := range audit.Appointments {
			if _, seen := restorable[a.JobID]; !seen {
				job, err := r.JobByID(ctx, a.JobID)
				switch {
				case err != nil:
					s.log.Warn().Err(err).Str("job_id", a.JobID.String()).
						Msg("restore skipping appointment, job lookup failed")
					restorable[a.JobID] = false
				case job.Status == plan.StatusCancelled || job.Status == plan.StatusClosed:
					s.log.Warn().Str("job_id", a.JobID.String()).Str("status", job.Status).
						Msg("restore skipping appointment, job no longer schedulable")
					restorable[a.JobID] = false
				default:
					restorable[a.JobID] = true
				}
			}
			if !restorable[a.JobID] {
				continue
			}
			row := domain.AppointmentRow{
				ID:               a.AppointmentID,
				JobID:            a.JobID,
				StaffID:          a.StaffID,
				ScheduleDate:     a.ScheduleDate,
				TimeWindowStart:  a.TimeWindowStart,
				TimeWindowEnd:    a.TimeWindowEnd,
				EstimatedArrival: a.EstimatedArrival,
				RouteOrder:       a.RouteOrder,
				Status:           a.Status,
			}
			if err := r.InsertAppointment(ctx, row); err != nil {
				return err
			}
			restored++
		}

		reset := lo.Filter(audit.JobsReset, func(id uuid.UUID, _ int) bool { return restorable[id] })
		updated, err := r.SetJobsStatus(ctx, reset, plan.StatusScheduled)
		if err != nil {
			return err
		}
		if _, err := r.DeleteAudit(ctx, id); err != nil {
			return err
		}

		out = domain.RestoreResponse{
			AuditID:              id.String(),
			AppointmentsRestored: restored,
			JobsUpdated:          int(updated),
		}
		return nil
	})
	if err != nil {
		return domain.RestoreResponse{}, err
	}
	s.log.Info().
		Str("audit_id", out.AuditID).
		Int("restored", out.AppointmentsRestored).
		Msg("schedule restored from audit")
	return out, nil
}

// RecentAudits lists clear events inside the lookback window.
func (s *Svc) RecentAudits(ctx context.Context, hours int) ([]domain.AuditSummary, error) {
	if hours <= 0 {
		hours = 24
	}
	rows, err := s.repo.RecentAudits(ctx, hours)
	if err != nil {
		return nil, err
	}
	out := make([]domain.AuditSummary, 0, len(rows))
	for _, a := range rows {
		out = append(out, auditSummary(a))
	}
	return out, nil
}

// AuditByID fetches one audit with its full serialized payload.
func (s *Svc) AuditByID(ctx context.Context, auditID string) (domain.AuditDetail, error) {
	id, err := uuid.Parse(auditID)
	if err != nil {
		return domain.AuditDetail{}, perr.Validationf("audit_id %q is not a uuid", auditID)
	}
	a, err := s.repo.AuditByID(ctx, id)
	if err != nil {
		return domain.AuditDetail{}, err
	}
	detail := domain.AuditDetail{
		AuditSummary: auditSummary(a),
		Appointments: a.Appointments,
		JobsReset: lo.Map(a.JobsReset, func(id uuid.UUID, _ int) string {
			return id.String()
		}),
	}
	if detail.Appointments == nil {
		detail.Appointments = []domain.SerializedAppointment{}
	}
	if detail.JobsReset == nil {
		detail.JobsReset = []string{}
	}
	return detail, nil
}

func auditSummary(a domain.AuditRow) domain.AuditSummary {
	return domain.AuditSummary{
		AuditID:          a.ID.String(),
		ScheduleDate:     a.ScheduleDate,
		ClearedAt:        a.ClearedAt.Format(time.RFC3339),
		ClearedBy:        a.ClearedBy,
		Notes:            a.Notes,
		AppointmentCount: a.AppointmentCount,
	}
}

func serializeAppointment(row domain.AppointmentRow) domain.SerializedAppointment {
	return domain.SerializedAppointment{
		AppointmentID:    row.ID,
		JobID:            row.JobID,
		StaffID:          row.StaffID,
		ScheduleDate:     row.ScheduleDate,
		TimeWindowStart:  row.TimeWindowStart,
		TimeWindowEnd:    row.TimeWindowEnd,
		EstimatedArrival: row.EstimatedArrival,
		RouteOrder:       row.RouteOrder,
		Status:           row.Status,
	}
}
