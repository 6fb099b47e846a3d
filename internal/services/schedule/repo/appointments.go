package repo

import (
	"context"

	"github.com/google/uuid"

	"fieldops/internal/platform/store"
	"fieldops/internal/services/schedule/domain"
)

// AppointmentsFor lists every appointment of a date in route order,
// joined with the owning job's current status.
func (r *queries) AppointmentsFor(ctx context.Context, date string) ([]domain.AppointmentRow, error) {
	const sql = `
		SELECT a.id, a.job_id, a.staff_id, a.schedule_date::text,
		       a.time_window_start::text, a.time_window_end::text,
		       COALESCE(a.estimated_arrival::text, ''), a.route_order, a.status,
		       j.status
		FROM appointments a
		JOIN jobs j ON j.id = a.job_id
		WHERE a.schedule_date = $1::date
		ORDER BY a.staff_id, a.route_order, a.id
	`
	return store.Many(ctx, r.q, func(row store.Row) (domain.AppointmentRow, error) {
		var a domain.AppointmentRow
		err := row.Scan(&a.ID, &a.JobID, &a.StaffID, &a.ScheduleDate,
			&a.TimeWindowStart, &a.TimeWindowEnd,
			&a.EstimatedArrival, &a.RouteOrder, &a.Status, &a.JobStatus)
		return a, err
	}, sql, date)
}

// InsertAppointment writes one stop. A zero ID lets the store mint one.
func (r *queries) InsertAppointment(ctx context.Context, row domain.AppointmentRow) error {
	const sql = `
		INSERT INTO appointments (
			id, job_id, staff_id, schedule_date,
			time_window_start, time_window_end, estimated_arrival,
			route_order, status, created_at, updated_at
		) VALUES (
			COALESCE(NULLIF($1::uuid, '00000000-0000-0000-0000-000000000000'::uuid), gen_random_uuid()),
			$2, $3, $4::date, $5::time, $6::time, NULLIF($7, '')::time,
			$8, $9, NOW(), NOW()
		)
	`
	return store.ExecOne(ctx, r.q, sql,
		row.ID, row.JobID, row.StaffID, row.ScheduleDate,
		row.TimeWindowStart, row.TimeWindowEnd, row.EstimatedArrival,
		row.RouteOrder, row.Status)
}

// DeleteScheduledFor removes a date's appointments whose job is still
// merely scheduled; in-progress and completed work stays.
func (r *queries) DeleteScheduledFor(ctx context.Context, date string) (int64, error) {
	const sql = `
		DELETE FROM appointments a
		USING jobs j
		WHERE j.id = a.job_id
		  AND a.schedule_date = $1::date
		  AND j.status = 'scheduled'
	`
	tag, err := store.Exec(ctx, r.q, sql, date)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// DeleteScheduledForStaff is DeleteScheduledFor scoped to one tour.
func (r *queries) DeleteScheduledForStaff(ctx context.Context, date string, staffID uuid.UUID) (int64, error) {
	const sql = `
		DELETE FROM appointments a
		USING jobs j
		WHERE j.id = a.job_id
		  AND a.schedule_date = $1::date
		  AND a.staff_id = $2
		  AND j.status = 'scheduled'
	`
	tag, err := store.Exec(ctx, r.q, sql, date, staffID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// DeleteAllFor removes every appointment of a date regardless of job
// status; only the clear path uses it, behind an audit row.
func (r *queries) DeleteAllFor(ctx context.Context, date string) (int64, error) {
	tag, err := store.Exec(ctx, r.q, `DELETE FROM appointments WHERE schedule_date = $1::date`, date)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// ScheduledMinutes sums the booked minutes of a date.
func (r *queries) ScheduledMinutes(ctx context.Context, date string) (int, error) {
	const sql = `
		SELECT COALESCE(SUM(
			EXTRACT(EPOCH FROM (a.time_window_end - a.time_window_start)) / 60
		), 0)::int
		FROM appointments a
		WHERE a.schedule_date = $1::date
	`
	return store.Scalar[int](ctx, r.q, sql, date)
}

// SetJobsStatus transitions a batch of jobs.
func (r *queries) SetJobsStatus(ctx context.Context, ids []uuid.UUID, status string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	const sql = `UPDATE jobs SET status = $2, updated_at = NOW() WHERE id = ANY($1)`
	tag, err := store.Exec(ctx, r.q, sql, ids, status)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
