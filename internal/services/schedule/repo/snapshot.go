package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"

	perr "fieldops/internal/platform/errors"
	"fieldops/internal/platform/store"
	"fieldops/internal/services/schedule/domain"
)

// ActiveTechs lists every dispatchable technician.
func (r *queries) ActiveTechs(ctx context.Context) ([]domain.StaffRow, error) {
	const sql = `
		SELECT id, name, home_lat, home_lon, COALESCE(home_city, ''), COALESCE(equipment, '{}')
		FROM staff
		WHERE active AND role = 'tech'
		ORDER BY name, id
	`
	return store.Many(ctx, r.q, func(row store.Row) (domain.StaffRow, error) {
		var s domain.StaffRow
		err := row.Scan(&s.ID, &s.Name, &s.HomeLat, &s.HomeLon, &s.HomeCity, &s.Equipment)
		return s, err
	}, sql)
}

// AvailabilityFor returns the availability entries recorded for a date.
// Staff without a row are simply absent.
func (r *queries) AvailabilityFor(ctx context.Context, date string) ([]domain.AvailabilityRow, error) {
	const sql = `
		SELECT staff_id, available,
		       window_start::text, window_end::text,
		       COALESCE(lunch_start::text, ''), COALESCE(lunch_minutes, 0)
		FROM staff_availability
		WHERE schedule_date = $1::date
	`
	return store.Many(ctx, r.q, func(row store.Row) (domain.AvailabilityRow, error) {
		var a domain.AvailabilityRow
		err := row.Scan(&a.StaffID, &a.Available,
			&a.WindowStart, &a.WindowEnd, &a.LunchStart, &a.LunchMinutes)
		return a, err
	}, sql, date)
}

const jobColumns = `
		j.id, j.customer_id, COALESCE(c.name, ''),
		COALESCE(p.address, ''), COALESCE(p.city, ''), p.lat, p.lon,
		j.job_type, j.duration_minutes, COALESCE(j.buffer_minutes, 0),
		j.priority, COALESCE(j.equipment_required, '{}'), COALESCE(j.staffing_required, 1),
		COALESCE(j.earliest_start::text, ''), COALESCE(j.latest_finish::text, ''),
		COALESCE(j.preferred_start::text, ''), COALESCE(j.preferred_end::text, ''),
		j.status, j.created_at`

func scanJob(row store.Row) (domain.JobRow, error) {
	var j domain.JobRow
	err := row.Scan(
		&j.ID, &j.CustomerID, &j.CustomerName,
		&j.Address, &j.City, &j.Lat, &j.Lon,
		&j.JobType, &j.DurationMinutes, &j.BufferMinutes,
		&j.Priority, &j.Equipment, &j.StaffingNeeded,
		&j.EarliestStart, &j.LatestFinish,
		&j.PreferredStart, &j.PreferredEnd,
		&j.Status, &j.CreatedAt,
	)
	return j, err
}

// ApprovedJobs lists every job waiting to be scheduled.
func (r *queries) ApprovedJobs(ctx context.Context) ([]domain.JobRow, error) {
	const sql = `
		SELECT ` + jobColumns + `
		FROM jobs j
		JOIN customers c ON c.id = j.customer_id
		LEFT JOIN properties p ON p.id = j.property_id
		WHERE j.status = 'approved'
		ORDER BY j.created_at, j.id
	`
	return store.Many(ctx, r.q, scanJob, sql)
}

// ScheduledJobsFor lists jobs already holding an appointment on a date,
// the input set for re-optimization.
func (r *queries) ScheduledJobsFor(ctx context.Context, date string) ([]domain.JobRow, error) {
	const sql = `
		SELECT DISTINCT ON (j.id) ` + jobColumns + `
		FROM jobs j
		JOIN customers c ON c.id = j.customer_id
		LEFT JOIN properties p ON p.id = j.property_id
		JOIN appointments a ON a.job_id = j.id
		WHERE a.schedule_date = $1::date
		  AND j.status IN ('scheduled', 'in_progress', 'completed')
		ORDER BY j.id, j.created_at
	`
	return store.Many(ctx, r.q, scanJob, sql, date)
}

// JobByID fetches one job, NotFound when absent.
func (r *queries) JobByID(ctx context.Context, id uuid.UUID) (domain.JobRow, error) {
	const sql = `
		SELECT ` + jobColumns + `
		FROM jobs j
		JOIN customers c ON c.id = j.customer_id
		LEFT JOIN properties p ON p.id = j.property_id
		WHERE j.id = $1
	`
	j, err := store.One(ctx, r.q, scanJob, sql, id)
	if err != nil {
		if errors.Is(err, perr.ErrNotFound) {
			return domain.JobRow{}, perr.NotFoundf("job %s not found", id)
		}
		return domain.JobRow{}, err
	}
	return j, nil
}
