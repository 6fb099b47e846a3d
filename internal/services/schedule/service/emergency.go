package service

import (
	"context"

	"github.com/google/uuid"

	"fieldops/internal/core/plan"
	"fieldops/internal/core/solver"
	perr "fieldops/internal/platform/errors"
	"fieldops/internal/services/schedule/domain"
)

// InsertEmergency squeezes one approved job into an already persisted
// day with minimal disturbance: only the host technician's tour is
// retimed and rewritten. A placement failure is a successful response
// with Success=false, not an error.
func (s *Svc) InsertEmergency(ctx context.Context, in domain.EmergencyInsertRequest) (domain.EmergencyInsertResponse, error) {
	jobID, err := uuid.Parse(in.JobID)
	if err != nil {
		return domain.EmergencyInsertResponse{}, perr.Validationf("job_id %q is not a uuid", in.JobID)
	}

	row, err := s.repo.JobByID(ctx, jobID)
	if err != nil {
		return domain.EmergencyInsertResponse{}, err
	}
	if row.Status != plan.StatusApproved {
		return domain.EmergencyInsertResponse{}, perr.Conflictf(
			"job %s is %s, only approved jobs can be emergency-inserted", jobID, row.Status)
	}

	snap, err := s.loadSnapshot(ctx, in.TargetDate, true)
	if err != nil {
		return domain.EmergencyInsertResponse{}, err
	}
	job, ok := snap.Job(jobID)
	if !ok {
		// present in the store but filtered out of the snapshot, which
		// means the property has no coordinates
		return domain.EmergencyInsertResponse{Success: false, Reason: plan.ReasonUnlocatable}, nil
	}
	if in.PriorityLevel > job.Priority {
		job.Priority = in.PriorityLevel
	}

	rows, err := s.repo.AppointmentsFor(ctx, in.TargetDate)
	if err != nil {
		return domain.EmergencyInsertResponse{}, err
	}
	current := persistedSchedule(snap, rows)

	updated, ins, reason, ok := solver.EmergencyInsert(snap, current, job)
	if !ok {
		s.log.Info().
			Str("job_id", jobID.String()).
			Str("date", in.TargetDate).
			Str("reason", reason).
			Msg("emergency insert found no slot")
		return domain.EmergencyInsertResponse{Success: false, Reason: reason}, nil
	}

	if err := s.persistHostTour(ctx, snap, updated, ins.StaffID); err != nil {
		return domain.EmergencyInsertResponse{}, err
	}

	staff, _ := snap.StaffByID(ins.StaffID)
	asg := assignedJob(job, ins.Stop)
	s.log.Info().
		Str("job_id", jobID.String()).
		Str("staff_id", ins.StaffID.String()).
		Int("added_travel", ins.AddedTravel).
		Msg("emergency insert placed")
	return domain.EmergencyInsertResponse{
		Success:    true,
		Assignment: &asg,
		StaffID:    ins.StaffID.String(),
		StaffName:  staff.Name,
	}, nil
}
